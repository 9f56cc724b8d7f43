package state

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"frontoffice/internal/data"
	"frontoffice/internal/inventory"
	"frontoffice/internal/logger"
	"frontoffice/internal/pricing"
	"frontoffice/internal/roster"
)

var (
	inventoryKind = kind[data.InventoryItem]{key: data.KeyInventory, label: "inventory item",
		items: func(s *data.Snapshot) *[]data.InventoryItem { return &s.Inventory },
		id:    func(v *data.InventoryItem) *string { return &v.ID }}
	sponsorKind = kind[data.Sponsor]{key: data.KeySponsors, label: "sponsor",
		items: func(s *data.Snapshot) *[]data.Sponsor { return &s.Sponsors },
		id:    func(v *data.Sponsor) *string { return &v.ID }}
	dealKind = kind[data.Deal]{key: data.KeyDeals, label: "deal",
		items: func(s *data.Snapshot) *[]data.Deal { return &s.Deals },
		id:    func(v *data.Deal) *string { return &v.ID }}
	gameKind = kind[data.Game]{key: data.KeyGames, label: "game",
		items: func(s *data.Snapshot) *[]data.Game { return &s.Games },
		id:    func(v *data.Game) *string { return &v.ID }}
	staffKind = kind[data.Staff]{key: data.KeyStaff, label: "staff member",
		items: func(s *data.Snapshot) *[]data.Staff { return &s.Staff },
		id:    func(v *data.Staff) *string { return &v.ID }}
	timelineKind = kind[data.TimelineItem]{key: data.KeyTimeline, label: "timeline item",
		items: func(s *data.Snapshot) *[]data.TimelineItem { return &s.Timeline },
		id:    func(v *data.TimelineItem) *string { return &v.ID }}
	holderKind = kind[data.SeasonTicketHolder]{key: data.KeySeasonTicketHolders, label: "season ticket holder",
		items: func(s *data.Snapshot) *[]data.SeasonTicketHolder { return &s.SeasonTicketHolders },
		id:    func(v *data.SeasonTicketHolder) *string { return &v.ID }}
	saleKind = kind[data.SingleGameSale]{key: data.KeySingleGameSales, label: "single game sale",
		items: func(s *data.Snapshot) *[]data.SingleGameSale { return &s.SingleGameSales },
		id:    func(v *data.SingleGameSale) *string { return &v.ID }}
	playerKind = kind[data.Player]{key: data.KeyPlayers, label: "player",
		items: func(s *data.Snapshot) *[]data.Player { return &s.Players },
		id:    func(v *data.Player) *string { return &v.ID }}
	expenseKind = kind[data.LedgerLine]{key: data.KeyExpenses, label: "expense",
		items: func(s *data.Snapshot) *[]data.LedgerLine { return &s.Expenses },
		id:    func(v *data.LedgerLine) *string { return &v.ID }}
	revenueKind = kind[data.LedgerLine]{key: data.KeyRevenues, label: "revenue",
		items: func(s *data.Snapshot) *[]data.LedgerLine { return &s.Revenues },
		id:    func(v *data.LedgerLine) *string { return &v.ID }}
	userKind = kind[data.User]{key: data.KeyUsers, label: "user",
		items: func(s *data.Snapshot) *[]data.User { return &s.Users },
		id:    func(v *data.User) *string { return &v.ID }}
)

// =============================================================================
// INVENTORY
// =============================================================================

func (s *State) AddInventory(ctx context.Context, item data.InventoryItem) (data.InventoryItem, error) {
	return create(ctx, s, inventoryKind, item, checkInventory)
}

// UpdateInventory applies patch. A rename is carried into every deal listing the
// old name.
func (s *State) UpdateInventory(ctx context.Context, id string, patch func(*data.InventoryItem) error) (data.InventoryItem, error) {
	return update(ctx, s, inventoryKind, id, patch, func(snap *data.Snapshot, prior, next *data.InventoryItem) ([]string, error) {
		if _, err := checkInventory(snap, prior, next); err != nil {
			return nil, err
		}
		if prior.Name == next.Name {
			return nil, nil
		}
		n := inventory.NewIndex(snap.Deals).Rename(snap.Deals, prior.Name, next.Name)
		logger.LogInfo("Renamed asset %q to %q in %d deals", prior.Name, next.Name, n)
		if n == 0 {
			return nil, nil
		}
		return []string{data.KeyDeals}, nil
	})
}

// DeleteInventory removes the item and drops its name from deal asset lists.
// The deals are kept.
func (s *State) DeleteInventory(ctx context.Context, id string) error {
	return remove(ctx, s, inventoryKind, id, func(snap *data.Snapshot, removed data.InventoryItem) []string {
		n := inventory.NewIndex(snap.Deals).Remove(snap.Deals, removed.Name)
		logger.LogInfo("Removed asset %q from %d deals", removed.Name, n)
		if n == 0 {
			return nil
		}
		return []string{data.KeyDeals}
	})
}

func checkInventory(snap *data.Snapshot, prior, next *data.InventoryItem) ([]string, error) {
	next.Name = strings.TrimSpace(next.Name)
	if err := requireField(next.Name, "name"); err != nil {
		return nil, err
	}
	for _, other := range snap.Inventory {
		if other.Name == next.Name && other.ID != next.ID {
			return nil, fmt.Errorf("%w: an asset named %q already exists", ErrConflict, next.Name)
		}
	}
	return nil, nil
}

// =============================================================================
// CATEGORIES
// =============================================================================

func (s *State) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string{}, s.snap.Categories...)
}

func (s *State) AddCategory(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if err := requireField(name, "category"); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.snap.Categories {
		if c == name {
			return fmt.Errorf("%w: category %q already exists", ErrConflict, name)
		}
	}
	s.snap.Categories = append(s.snap.Categories, name)
	return s.persist(ctx, data.KeyCategories)
}

// RenameCategory renames a category and moves its inventory items along.
func (s *State) RenameCategory(ctx context.Context, from, to string) error {
	to = strings.TrimSpace(to)
	if err := requireField(to, "category"); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pos := -1
	for i, c := range s.snap.Categories {
		if c == from {
			pos = i
		} else if c == to {
			return fmt.Errorf("%w: category %q already exists", ErrConflict, to)
		}
	}
	if pos < 0 {
		return fmt.Errorf("%w: category %s", ErrNotFound, from)
	}

	s.snap.Categories[pos] = to
	keys := []string{data.KeyCategories}
	if n := inventory.RenameCategory(s.snap.Inventory, from, to); n > 0 {
		logger.LogInfo("Moved %d inventory items from category %q to %q", n, from, to)
		keys = append(keys, data.KeyInventory)
	}
	return s.persist(ctx, keys...)
}

// =============================================================================
// SPONSORS AND DEALS
// =============================================================================

func (s *State) AddSponsor(ctx context.Context, sp data.Sponsor) (data.Sponsor, error) {
	return create(ctx, s, sponsorKind, sp, checkSponsor)
}

// UpdateSponsor applies patch and carries a rename into the sponsor's deals.
func (s *State) UpdateSponsor(ctx context.Context, id string, patch func(*data.Sponsor) error) (data.Sponsor, error) {
	return update(ctx, s, sponsorKind, id, patch, func(snap *data.Snapshot, prior, next *data.Sponsor) ([]string, error) {
		if _, err := checkSponsor(snap, prior, next); err != nil {
			return nil, err
		}
		if prior.Name == next.Name {
			return nil, nil
		}
		n := 0
		for i := range snap.Deals {
			if snap.Deals[i].Sponsor == prior.Name {
				snap.Deals[i].Sponsor = next.Name
				n++
			}
		}
		if n == 0 {
			return nil, nil
		}
		logger.LogInfo("Renamed sponsor %q to %q on %d deals", prior.Name, next.Name, n)
		return []string{data.KeyDeals}, nil
	})
}

func (s *State) DeleteSponsor(ctx context.Context, id string) error {
	return remove(ctx, s, sponsorKind, id, nil)
}

func checkSponsor(_ *data.Snapshot, _, next *data.Sponsor) ([]string, error) {
	next.Name = strings.TrimSpace(next.Name)
	if next.Status == "" {
		next.Status = "Active"
	}
	return nil, requireField(next.Name, "name")
}

func (s *State) AddDeal(ctx context.Context, d data.Deal) (data.Deal, error) {
	return create(ctx, s, dealKind, d, s.checkDeal)
}

func (s *State) UpdateDeal(ctx context.Context, id string, patch func(*data.Deal) error) (data.Deal, error) {
	detached := func(d *data.Deal) error {
		d.Assets = append([]string(nil), d.Assets...)
		return patch(d)
	}
	return update(ctx, s, dealKind, id, detached, s.checkDeal)
}

// DeleteDeal leaves inventory alone; availability is derived from the
// remaining deals.
func (s *State) DeleteDeal(ctx context.Context, id string) error {
	return remove(ctx, s, dealKind, id, nil)
}

// checkDeal rejects assets that are not in the inventory. Assets already on the
// stored deal are let through so older deals stay editable.
func (s *State) checkDeal(_ *data.Snapshot, prior, next *data.Deal) ([]string, error) {
	if err := requireField(next.Sponsor, "sponsor"); err != nil {
		return nil, err
	}
	if next.Assets == nil {
		next.Assets = []string{}
	}

	var added []string
	for _, a := range next.Assets {
		if prior == nil || !prior.HasAsset(a) {
			added = append(added, a)
		}
	}
	if err := s.catalog.ValidateAssets(added); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	if next.Status == "" {
		next.Status = data.DealNegotiating
	}
	if next.PaymentStatus == "" {
		next.PaymentStatus = data.PaymentPending
	}

	// Derived amounts follow their inputs unless the client sent its own value.
	assetsChanged := prior != nil && !slices.Equal(prior.Assets, next.Assets)
	if strings.TrimSpace(next.Budget) == "" || (assetsChanged && next.Budget == prior.Budget) {
		next.Budget = s.catalog.DealBudget(next.Assets)
	}
	feeInputsChanged := prior != nil &&
		(prior.ActualValue != next.ActualValue || prior.PaymentMethod != next.PaymentMethod)
	if strings.TrimSpace(next.ProcessingFee) == "" || (feeInputsChanged && next.ProcessingFee == prior.ProcessingFee) {
		next.ProcessingFee = pricing.DealProcessingFee(next.ActualValue, 0, next.PaymentMethod)
	}
	return nil, nil
}

// =============================================================================
// TICKETS
// =============================================================================

func (s *State) AddSeasonTicketHolder(ctx context.Context, h data.SeasonTicketHolder) (data.SeasonTicketHolder, error) {
	return create(ctx, s, holderKind, h, checkHolder)
}

func (s *State) UpdateSeasonTicketHolder(ctx context.Context, id string, patch func(*data.SeasonTicketHolder) error) (data.SeasonTicketHolder, error) {
	return update(ctx, s, holderKind, id, patch, checkHolder)
}

func (s *State) DeleteSeasonTicketHolder(ctx context.Context, id string) error {
	return remove(ctx, s, holderKind, id, nil)
}

// checkHolder scopes the record to a fiscal year and stores the breakdown of
// its gross value.
func checkHolder(_ *data.Snapshot, _, next *data.SeasonTicketHolder) ([]string, error) {
	if err := requireField(next.Name, "name"); err != nil {
		return nil, err
	}
	if err := requireField(next.Year, "year"); err != nil {
		return nil, err
	}
	if next.Status == "" {
		next.Status = "Active"
	}
	if next.SeatCount == "" {
		next.SeatCount = "1"
	}
	if next.Value == "" {
		next.Value = "$0"
	}
	b := pricing.TicketBreakdown(next.Value, data.PaymentMethod(next.PaymentMethod))
	next.Subtotal, next.Tax, next.CCFee, next.TicketFee = b.Net, b.Tax, b.CCFee, b.TicketFee
	return nil, nil
}

func (s *State) AddSingleGameSale(ctx context.Context, sale data.SingleGameSale) (data.SingleGameSale, error) {
	return create(ctx, s, saleKind, sale, checkSale)
}

func (s *State) UpdateSingleGameSale(ctx context.Context, id string, patch func(*data.SingleGameSale) error) (data.SingleGameSale, error) {
	return update(ctx, s, saleKind, id, patch, checkSale)
}

func (s *State) DeleteSingleGameSale(ctx context.Context, id string) error {
	return remove(ctx, s, saleKind, id, nil)
}

func checkSale(snap *data.Snapshot, _, next *data.SingleGameSale) ([]string, error) {
	if err := requireField(next.GameID, "gameId"); err != nil {
		return nil, err
	}
	if indexOf(snap.Games, gameKind, next.GameID) < 0 {
		return nil, fmt.Errorf("%w: game %s does not exist", ErrInvalid, next.GameID)
	}
	if next.Quantity <= 0 {
		next.Quantity = 1
	}
	if next.Status == "" {
		next.Status = data.SalePaid
	}
	b := pricing.TicketBreakdown(next.Price, data.PaymentMethod(next.PaymentMethod))
	next.Subtotal, next.Tax, next.CCFee, next.TicketFee = b.Net, b.Tax, b.CCFee, b.TicketFee
	return nil, nil
}

// =============================================================================
// PLAYERS
// =============================================================================

// AddPlayer registers a player and prices the registration.
func (s *State) AddPlayer(ctx context.Context, p data.Player) (data.Player, error) {
	return create(ctx, s, playerKind, p, checkPlayer)
}

// UpdatePlayer reprices the record against the version last saved, so a Pay
// Balance builds on what was already paid.
func (s *State) UpdatePlayer(ctx context.Context, id string, patch func(*data.Player) error) (data.Player, error) {
	return update(ctx, s, playerKind, id, patch, checkPlayer)
}

func (s *State) DeletePlayer(ctx context.Context, id string) error {
	return remove(ctx, s, playerKind, id, nil)
}

func checkPlayer(_ *data.Snapshot, prior, next *data.Player) ([]string, error) {
	if err := requireField(next.Name, "name"); err != nil {
		return nil, err
	}
	if next.SeasonType == "" {
		next.SeasonType = data.SeasonFull
	}
	if next.PaymentType == "" {
		next.PaymentType = data.PayFull
	}
	if next.PaymentMethod == "" {
		next.PaymentMethod = data.PaymentCheck
	}
	if next.Status == "" {
		next.Status = "Active"
	}
	roster.Plan(prior, next.SeasonType, next.PaymentType, next.PaymentMethod).Apply(next)
	return nil, nil
}

// =============================================================================
// OPERATIONS
// =============================================================================

func (s *State) AddGame(ctx context.Context, g data.Game) (data.Game, error) {
	return create(ctx, s, gameKind, g, checkGame)
}

func (s *State) UpdateGame(ctx context.Context, id string, patch func(*data.Game) error) (data.Game, error) {
	return update(ctx, s, gameKind, id, patch, checkGame)
}

func (s *State) DeleteGame(ctx context.Context, id string) error {
	return remove(ctx, s, gameKind, id, nil)
}

func checkGame(_ *data.Snapshot, _, next *data.Game) ([]string, error) {
	if next.Location == "" {
		next.Location = "Home"
	}
	if next.Status == "" {
		next.Status = "Scheduled"
	}
	return nil, requireField(next.Date, "date")
}

func (s *State) AddStaff(ctx context.Context, m data.Staff) (data.Staff, error) {
	return create(ctx, s, staffKind, m, nil)
}

func (s *State) UpdateStaff(ctx context.Context, id string, patch func(*data.Staff) error) (data.Staff, error) {
	return update(ctx, s, staffKind, id, patch, nil)
}

func (s *State) DeleteStaff(ctx context.Context, id string) error {
	return remove(ctx, s, staffKind, id, nil)
}

func (s *State) AddTimelineItem(ctx context.Context, t data.TimelineItem) (data.TimelineItem, error) {
	return create(ctx, s, timelineKind, t, nil)
}

func (s *State) UpdateTimelineItem(ctx context.Context, id string, patch func(*data.TimelineItem) error) (data.TimelineItem, error) {
	return update(ctx, s, timelineKind, id, patch, nil)
}

func (s *State) DeleteTimelineItem(ctx context.Context, id string) error {
	return remove(ctx, s, timelineKind, id, nil)
}

// =============================================================================
// LEDGER
// =============================================================================

func checkLedger(_ *data.Snapshot, _, next *data.LedgerLine) ([]string, error) {
	if err := requireField(next.Category, "category"); err != nil {
		return nil, err
	}
	return nil, requireField(next.Year, "year")
}

func (s *State) AddExpense(ctx context.Context, l data.LedgerLine) (data.LedgerLine, error) {
	return create(ctx, s, expenseKind, l, checkLedger)
}

func (s *State) UpdateExpense(ctx context.Context, id string, patch func(*data.LedgerLine) error) (data.LedgerLine, error) {
	return update(ctx, s, expenseKind, id, patch, checkLedger)
}

func (s *State) DeleteExpense(ctx context.Context, id string) error {
	return remove(ctx, s, expenseKind, id, nil)
}

func (s *State) AddRevenue(ctx context.Context, l data.LedgerLine) (data.LedgerLine, error) {
	return create(ctx, s, revenueKind, l, checkLedger)
}

func (s *State) UpdateRevenue(ctx context.Context, id string, patch func(*data.LedgerLine) error) (data.LedgerLine, error) {
	return update(ctx, s, revenueKind, id, patch, checkLedger)
}

func (s *State) DeleteRevenue(ctx context.Context, id string) error {
	return remove(ctx, s, revenueKind, id, nil)
}

// =============================================================================
// USERS
// =============================================================================

// UserByEmail looks a user up case-insensitively.
func (s *State) UserByEmail(email string) (data.User, bool) {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range list(s, userKind) {
		if strings.ToLower(u.Email) == email {
			return u, true
		}
	}
	return data.User{}, false
}

func (s *State) User(id string) (data.User, error) {
	return get(s, userKind, id)
}

// SetUserPassword stores a new password value, normally a bcrypt hash.
func (s *State) SetUserPassword(ctx context.Context, id, password string) error {
	_, err := update(ctx, s, userKind, id, func(u *data.User) error {
		u.Password = password
		return nil
	}, nil)
	return err
}

func (s *State) AddUser(ctx context.Context, u data.User) (data.User, error) {
	return create(ctx, s, userKind, u, func(snap *data.Snapshot, _, next *data.User) ([]string, error) {
		if err := requireField(next.Email, "email"); err != nil {
			return nil, err
		}
		for _, other := range snap.Users {
			if strings.EqualFold(other.Email, next.Email) {
				return nil, fmt.Errorf("%w: user %s already exists", ErrConflict, next.Email)
			}
		}
		return nil, nil
	})
}
