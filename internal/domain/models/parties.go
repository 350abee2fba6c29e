package models

// Buyer is a counterparty on sales.
type Buyer struct {
	ID      string
	Name    string
	Contact string
	TaxID   string
}

// Supplier is a counterparty on purchases.
type Supplier struct {
	ID      string
	Name    string
	Contact string
	TaxID   string
}
