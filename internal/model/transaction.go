package model

import "time"

// Transaction types. Every transaction is exactly one of the two.
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// Transaction is a single income or expense record in the `transactions`
// collection. Amount is stored with at most two decimal places; the
// validator enforces this before a document is ever constructed.
type Transaction struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Type        string    `json:"type"`
	Amount      float64   `json:"amount"`
	CategoryID  string    `json:"categoryId,omitempty"`
	Description string    `json:"description,omitempty"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TransactionFilter narrows List queries. Zero values mean "no filter".
type TransactionFilter struct {
	Type       string
	CategoryID string
	From       time.Time
	To         time.Time
	Page       int
	Limit      int
}

// TransactionUpdate carries the fields of a partial update. Nil means
// "leave unchanged".
type TransactionUpdate struct {
	Type        *string
	Amount      *float64
	CategoryID  *string
	Description *string
	Date        *time.Time
}

// CategoryTotal is one row of the per-category stats breakdown.
type CategoryTotal struct {
	CategoryID string  `json:"categoryId"`
	Type       string  `json:"type"`
	Total      float64 `json:"total"`
	Count      int64   `json:"count"`
}

// TransactionStats is the aggregated summary returned by the stats endpoint.
type TransactionStats struct {
	Income     float64         `json:"income"`
	Expense    float64         `json:"expense"`
	Balance    float64         `json:"balance"`
	ByCategory []CategoryTotal `json:"byCategory"`
}
