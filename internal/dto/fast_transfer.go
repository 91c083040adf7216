package dto

import portssvc "github.com/SscSPs/banking_ledger/internal/core/ports/services"

// Fast transfer statuses.
const (
	TransferStatusSuccess   = "Success"
	TransferStatusDuplicate = "Duplicate"
)

// FastTransferRequest defines the body of POST /ledger/fast-transfer.
type FastTransferRequest struct {
	SourceAccountID      string `json:"sourceAccountId" binding:"required"`
	DestinationAccountID string `json:"destinationAccountId" binding:"required"`
	Minor                int64  `json:"minor" example:"150000"`
	Currency             string `json:"currency" binding:"required,currency" example:"NGN"`
	Narration            string `json:"narration"`
	TenantID             string `json:"tenantId"`
	IdempotencyKey       string `json:"idempotencyKey" binding:"required"`
}

// ToCommand converts the request to the service command for tenant.
func (r FastTransferRequest) ToCommand(tenant string) portssvc.FastTransferCommand {
	return portssvc.FastTransferCommand{
		IdempotencyKey:       r.IdempotencyKey,
		TenantID:             tenant,
		SourceAccountID:      r.SourceAccountID,
		DestinationAccountID: r.DestinationAccountID,
		AmountMinor:          r.Minor,
		Currency:             r.Currency,
		Narration:            r.Narration,
	}
}

// FastTransferResponse is returned for a completed or replayed fast transfer.
type FastTransferResponse struct {
	Status    string  `json:"status"`
	EntryID   *string `json:"entryId"`
	Duplicate bool    `json:"duplicate,omitempty"`
}

// ToFastTransferResponse converts a transfer result to its response DTO.
func ToFastTransferResponse(res portssvc.FastTransferResult) FastTransferResponse {
	if res.Duplicate {
		return FastTransferResponse{Status: TransferStatusDuplicate, Duplicate: true}
	}
	return FastTransferResponse{Status: TransferStatusSuccess, EntryID: res.EntryID}
}
