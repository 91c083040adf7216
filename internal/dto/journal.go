package dto

import (
	"time"

	"github.com/SscSPs/banking_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/banking_ledger/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// Posting statuses returned by POST /ledger/entries.
const (
	EntryStatusPending   = "Pending"
	EntryStatusDuplicate = "Duplicate"
)

// LineRequest is one debit or credit of a posting request.
type LineRequest struct {
	AccountID string          `json:"accountId" binding:"required"`
	Amount    decimal.Decimal `json:"amount" swaggertype:"string" example:"150.00"`
	Currency  string          `json:"currency" binding:"required"`
}

// PostJournalEntryRequest defines the body of POST /ledger/entries.
type PostJournalEntryRequest struct {
	TenantID       string        `json:"tenantId"`
	Reference      string        `json:"reference"`
	Narration      string        `json:"narration"`
	Debits         []LineRequest `json:"debits" binding:"required,min=1,dive"`
	Credits        []LineRequest `json:"credits" binding:"required,min=1,dive"`
	IdempotencyKey string        `json:"idempotencyKey,omitempty"`
}

// ToCommand converts the request to the service command for tenant.
func (r PostJournalEntryRequest) ToCommand(tenant string) portssvc.PostJournalEntryCommand {
	return portssvc.PostJournalEntryCommand{
		TenantID:       tenant,
		Reference:      r.Reference,
		Narrative:      r.Narration,
		Debits:         toLineAmounts(r.Debits),
		Credits:        toLineAmounts(r.Credits),
		IdempotencyKey: r.IdempotencyKey,
	}
}

func toLineAmounts(lines []LineRequest) []portssvc.LineAmount {
	out := make([]portssvc.LineAmount, len(lines))
	for i, l := range lines {
		out[i] = portssvc.LineAmount{AccountID: l.AccountID, Amount: l.Amount, Currency: l.Currency}
	}
	return out
}

// PostJournalEntryResponse is returned for an accepted or replayed posting.
type PostJournalEntryResponse struct {
	ID     *string `json:"id"`
	Status string  `json:"status"`
}

// ToPostJournalEntryResponse converts a posting result to its response DTO.
func ToPostJournalEntryResponse(res *portssvc.PostJournalEntryResult) PostJournalEntryResponse {
	resp := PostJournalEntryResponse{Status: EntryStatusPending}
	if res.Duplicate {
		resp.Status = EntryStatusDuplicate
	}
	if res.EntryID != nil {
		id := res.EntryID.String()
		resp.ID = &id
	}
	return resp
}

// JournalLineResponse defines the data returned for a journal entry line.
type JournalLineResponse struct {
	LineID    string `json:"lineId"`
	AccountID string `json:"accountId"`
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
	Type      string `json:"type"` // DEBIT or CREDIT
}

// JournalEntryResponse defines the data returned for a journal entry.
type JournalEntryResponse struct {
	ID          string                `json:"id"`
	TenantID    string                `json:"tenantId"`
	Reference   string                `json:"reference"`
	Description string                `json:"description"`
	EntryDate   time.Time             `json:"entryDate"`
	Status      string                `json:"status"`
	PostedAt    *time.Time            `json:"postedAt,omitempty"`
	Total       string                `json:"total"`
	Lines       []JournalLineResponse `json:"lines"`
}

// ToJournalEntryResponse converts a domain.JournalEntry to its response DTO.
func ToJournalEntryResponse(e *domain.JournalEntry) JournalEntryResponse {
	lines := e.Lines()
	resp := JournalEntryResponse{
		ID:          e.ID.String(),
		TenantID:    e.TenantID.String(),
		Reference:   e.Reference,
		Description: e.Description,
		EntryDate:   e.EntryDate,
		Status:      string(e.Status),
		PostedAt:    e.PostedAt,
		Total:       e.TotalDebits().Amount().StringFixed(e.TotalDebits().Scale()),
		Lines:       make([]JournalLineResponse, len(lines)),
	}
	for i, l := range lines {
		resp.Lines[i] = JournalLineResponse{
			LineID:    l.ID.String(),
			AccountID: l.AccountID.String(),
			Amount:    l.Amount.Amount().StringFixed(l.Amount.Scale()),
			Currency:  l.Amount.Currency().String(),
			Type:      string(l.Type),
		}
	}
	return resp
}

// JournalEntryPageResponse is one page of an account statement.
type JournalEntryPageResponse struct {
	Entries       []JournalEntryResponse `json:"entries"`
	NextPageToken string                 `json:"nextPageToken,omitempty"`
}

func ToJournalEntryPageResponse(page *portssvc.EntryPage) JournalEntryPageResponse {
	resp := JournalEntryPageResponse{
		Entries:       make([]JournalEntryResponse, len(page.Entries)),
		NextPageToken: page.NextPageToken,
	}
	for i, e := range page.Entries {
		resp.Entries[i] = ToJournalEntryResponse(e)
	}
	return resp
}
