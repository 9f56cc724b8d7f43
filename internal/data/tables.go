package data

// =============================================================================
// TABLE DESCRIPTORS
// =============================================================================

type columnKind int

const (
	kindText columnKind = iota
	kindInt
	kindJSON
)

// column maps a JSON field of a stored record onto a SQL column.
type column struct {
	name  string
	field string
	kind  columnKind
}

// table describes how one collection is laid out in SQL. A scalar table holds a
// list of plain strings in its single column.
type table struct {
	key     string
	name    string
	columns []column
	scalar  bool
}

func text(name, field string) column { return column{name: name, field: field, kind: kindText} }

var tables = []table{
	{key: KeyUsers, name: "users", columns: []column{
		text("id", "id"), text("name", "name"), text("email", "email"),
		text("password", "password"), text("role", "role"),
	}},
	{key: KeyPlayers, name: "players", columns: []column{
		text("id", "id"), text("name", "name"), text("email", "email"), text("phone", "phone"),
		text("season_type", "seasonType"), text("payment_type", "paymentType"),
		text("payment_method", "paymentMethod"), text("amount_due", "amountDue"),
		text("paid_amount", "paidAmount"), text("fees", "fees"), text("balance", "balance"),
		text("status", "status"), text("notes", "notes"), text("payment_link", "paymentLink"),
	}},
	{key: KeyDeals, name: "deals", columns: []column{
		text("id", "id"), text("sponsor", "sponsor"),
		{name: "assets", field: "assets", kind: kindJSON},
		text("start_date", "start"), text("end_date", "end"), text("budget", "budget"),
		text("actual_value", "actualValue"), text("payment_method", "paymentMethod"),
		text("processing_fee", "processingFee"), text("fulfillment_fee", "fulfillmentFee"),
		text("payment_status", "paymentStatus"), text("status", "status"),
		text("invoice_id", "invoiceId"),
	}},
	{key: KeySeasonTicketHolders, name: "season_ticket_holders", columns: []column{
		text("id", "id"), text("name", "name"), text("contact", "contact"), text("phone", "phone"),
		text("email", "email"), text("status", "status"), text("section", "section"),
		text("seat_count", "seatCount"), text("item_value", "value"), text("fiscal_year", "year"),
		text("unit_price", "unitPrice"), text("subtotal", "subtotal"), text("tax", "tax"),
		text("cc_fee", "ccFee"), text("ticket_fee", "ticketFee"), text("payment_method", "paymentMethod"),
	}},
	{key: KeySingleGameSales, name: "single_game_sales", columns: []column{
		text("id", "id"), text("game_id", "gameId"), text("customer", "customer"),
		{name: "quantity", field: "quantity", kind: kindInt},
		text("section", "section"), text("price", "price"), text("fees", "fees"),
		text("status", "status"), text("subtotal", "subtotal"), text("tax", "tax"),
		text("cc_fee", "ccFee"), text("ticket_fee", "ticketFee"), text("payment_method", "paymentMethod"),
	}},
	{key: KeyInventory, name: "inventory", columns: []column{
		text("id", "id"), text("name", "name"), text("category", "category"), text("item_value", "value"),
	}},
	{key: KeySponsors, name: "sponsors", columns: []column{
		text("id", "id"), text("name", "name"), text("contact", "contact"), text("phone", "phone"),
		text("email", "email"), text("status", "status"),
	}},
	{key: KeyGames, name: "games", columns: []column{
		text("id", "id"), text("game_date", "date"), text("game_time", "time"),
		text("opponent", "opponent"), text("location", "location"), text("status", "status"),
	}},
	{key: KeyStaff, name: "staff", columns: []column{
		text("id", "id"), text("name", "name"), text("role", "role"), text("status", "status"),
	}},
	{key: KeyTimeline, name: "timeline", columns: []column{
		text("id", "id"), text("slot_time", "time"), text("activity", "activity"),
		text("assigned", "assigned"), text("status", "status"),
	}},
	{key: KeyExpenses, name: "expenses", columns: []column{
		text("id", "id"), text("category", "category"), text("budget", "budget"),
		text("actual", "actual"), text("fiscal_year", "year"),
	}},
	{key: KeyRevenues, name: "revenues", columns: []column{
		text("id", "id"), text("category", "category"), text("budget", "budget"),
		text("actual", "actual"), text("fiscal_year", "year"),
	}},
	{key: KeyCategories, name: "categories", scalar: true, columns: []column{
		text("name", ""),
	}},
}

func tableFor(key string) (table, bool) {
	for _, t := range tables {
		if t.key == key {
			return t, true
		}
	}
	return table{}, false
}
