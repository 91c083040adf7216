package domain

// LineType indicates whether a journal line is a Debit or a Credit.
type LineType string

const (
	Debit  LineType = "DEBIT"
	Credit LineType = "CREDIT"
)

func (t LineType) IsValid() bool {
	return t == Debit || t == Credit
}

// JournalEntryLine is a single debit or credit against one account.
type JournalEntryLine struct {
	ID        EntityID  `json:"id"`
	AccountID AccountID `json:"accountId"`
	Amount    Money     `json:"-"`
	Type      LineType  `json:"type"`
}
