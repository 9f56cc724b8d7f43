package data

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
)

// Collection keys, as used by the key-based read/write API.
const (
	KeyUsers               = "users"
	KeyPlayers             = "players"
	KeyDeals               = "deals"
	KeySeasonTicketHolders = "seasonTicketHolders"
	KeySingleGameSales     = "singleGameSales"
	KeyInventory           = "inventory"
	KeySponsors            = "sponsors"
	KeyGames               = "games"
	KeyStaff               = "staff"
	KeyTimeline            = "timeline"
	KeyExpenses            = "expenses"
	KeyRevenues            = "revenues"
	KeyCategories          = "categories"
)

// Keys lists every collection in a stable order.
var Keys = []string{
	KeyUsers, KeyPlayers, KeyDeals, KeySeasonTicketHolders, KeySingleGameSales,
	KeyInventory, KeySponsors, KeyGames, KeyStaff, KeyTimeline,
	KeyExpenses, KeyRevenues, KeyCategories,
}

var ErrUnknownCollection = errors.New("unknown collection")

// Snapshot is the full set of collections at one point in time.
type Snapshot struct {
	Users               []User               `json:"users"`
	Players             []Player             `json:"players"`
	Deals               []Deal               `json:"deals"`
	SeasonTicketHolders []SeasonTicketHolder `json:"seasonTicketHolders"`
	SingleGameSales     []SingleGameSale     `json:"singleGameSales"`
	Inventory           []InventoryItem      `json:"inventory"`
	Sponsors            []Sponsor            `json:"sponsors"`
	Games               []Game               `json:"games"`
	Staff               []Staff              `json:"staff"`
	Timeline            []TimelineItem       `json:"timeline"`
	Expenses            []LedgerLine         `json:"expenses"`
	Revenues            []LedgerLine         `json:"revenues"`
	Categories          []string             `json:"categories"`
}

// NewSnapshot returns a snapshot whose collections are empty rather than nil, so
// they encode as [] instead of null.
func NewSnapshot() *Snapshot {
	s := &Snapshot{}
	s.normalize()
	return s
}

func (s *Snapshot) normalize() {
	if s.Users == nil {
		s.Users = []User{}
	}
	if s.Players == nil {
		s.Players = []Player{}
	}
	if s.Deals == nil {
		s.Deals = []Deal{}
	}
	for i := range s.Deals {
		if s.Deals[i].Assets == nil {
			s.Deals[i].Assets = []string{}
		}
	}
	if s.SeasonTicketHolders == nil {
		s.SeasonTicketHolders = []SeasonTicketHolder{}
	}
	if s.SingleGameSales == nil {
		s.SingleGameSales = []SingleGameSale{}
	}
	if s.Inventory == nil {
		s.Inventory = []InventoryItem{}
	}
	if s.Sponsors == nil {
		s.Sponsors = []Sponsor{}
	}
	if s.Games == nil {
		s.Games = []Game{}
	}
	if s.Staff == nil {
		s.Staff = []Staff{}
	}
	if s.Timeline == nil {
		s.Timeline = []TimelineItem{}
	}
	if s.Expenses == nil {
		s.Expenses = []LedgerLine{}
	}
	if s.Revenues == nil {
		s.Revenues = []LedgerLine{}
	}
	if s.Categories == nil {
		s.Categories = []string{}
	}
}

// Clone returns a deep copy.
func (s *Snapshot) Clone() *Snapshot {
	c := *s
	c.Users = append([]User(nil), s.Users...)
	c.Players = append([]Player(nil), s.Players...)
	c.Deals = make([]Deal, len(s.Deals))
	for i, d := range s.Deals {
		d.Assets = append([]string(nil), d.Assets...)
		c.Deals[i] = d
	}
	c.SeasonTicketHolders = append([]SeasonTicketHolder(nil), s.SeasonTicketHolders...)
	c.SingleGameSales = append([]SingleGameSale(nil), s.SingleGameSales...)
	c.Inventory = append([]InventoryItem(nil), s.Inventory...)
	c.Sponsors = append([]Sponsor(nil), s.Sponsors...)
	c.Games = append([]Game(nil), s.Games...)
	c.Staff = append([]Staff(nil), s.Staff...)
	c.Timeline = append([]TimelineItem(nil), s.Timeline...)
	c.Expenses = append([]LedgerLine(nil), s.Expenses...)
	c.Revenues = append([]LedgerLine(nil), s.Revenues...)
	c.Categories = append([]string(nil), s.Categories...)
	c.normalize()
	return &c
}

// collection returns a pointer to the slice stored under key.
func (s *Snapshot) collection(key string) (interface{}, error) {
	switch key {
	case KeyUsers:
		return &s.Users, nil
	case KeyPlayers:
		return &s.Players, nil
	case KeyDeals:
		return &s.Deals, nil
	case KeySeasonTicketHolders:
		return &s.SeasonTicketHolders, nil
	case KeySingleGameSales:
		return &s.SingleGameSales, nil
	case KeyInventory:
		return &s.Inventory, nil
	case KeySponsors:
		return &s.Sponsors, nil
	case KeyGames:
		return &s.Games, nil
	case KeyStaff:
		return &s.Staff, nil
	case KeyTimeline:
		return &s.Timeline, nil
	case KeyExpenses:
		return &s.Expenses, nil
	case KeyRevenues:
		return &s.Revenues, nil
	case KeyCategories:
		return &s.Categories, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, key)
}

// SetRaw replaces one collection from its JSON encoding. The list is decoded
// into a fresh slice, so nothing from the previous records survives.
func (s *Snapshot) SetRaw(key string, raw json.RawMessage) error {
	target, err := s.collection(key)
	if err != nil {
		return err
	}
	if len(raw) == 0 || string(raw) == "null" {
		raw = json.RawMessage("[]")
	}

	fresh := reflect.New(reflect.TypeOf(target).Elem())
	if err := unmarshalJSON(string(raw), fresh.Interface()); err != nil {
		return fmt.Errorf("decoding %s: %w", key, err)
	}
	if key != KeyCategories {
		if err := checkIDs(raw); err != nil {
			return fmt.Errorf("decoding %s: %w", key, err)
		}
	}

	reflect.ValueOf(target).Elem().Set(fresh.Elem())
	s.normalize()
	return nil
}

// checkIDs requires every record to carry an id, unique within the list. The
// SQL tables key on it.
func checkIDs(raw json.RawMessage) error {
	var records []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &records); err != nil {
		return err
	}
	seen := make(map[string]bool, len(records))
	for i, r := range records {
		if r.ID == "" {
			return fmt.Errorf("record %d has no id", i)
		}
		if seen[r.ID] {
			return fmt.Errorf("duplicate id %q", r.ID)
		}
		seen[r.ID] = true
	}
	return nil
}

// Raw returns the JSON encoding of one collection.
func (s *Snapshot) Raw(key string) (json.RawMessage, error) {
	target, err := s.collection(key)
	if err != nil {
		return nil, err
	}
	encoded, err := marshalJSON(target)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", key, err)
	}
	return json.RawMessage(encoded), nil
}

// ValidKey reports whether key names a collection.
func ValidKey(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}

// =============================================================================
// UTILITY FUNCTIONS (JSON)
// =============================================================================

func marshalJSON(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

func unmarshalJSON(data string, v interface{}) error {
	if err := json.Unmarshal([]byte(data), v); err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return nil
}
