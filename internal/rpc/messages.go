package rpc

// Amount is a value in minor units. Scale 0 means the currency's own scale.
type Amount struct {
	Minor    int64  `json:"minor"`
	Currency string `json:"currency"`
	Scale    int32  `json:"scale,omitempty"`
}

type PostEntryRequest struct {
	SourceAccountId      string `json:"sourceAccountId"`
	DestinationAccountId string `json:"destinationAccountId"`
	Amount               Amount `json:"amount"`
	Narration            string `json:"narration"`
	TenantId             string `json:"tenantId"`
	IdempotencyKey       string `json:"idempotencyKey"`
}

// Statuses returned in PostEntryResponse.
const (
	StatusSuccess   = "Success"
	StatusDuplicate = "Duplicate"
)

type PostEntryResponse struct {
	Status  string `json:"status"`
	EntryId string `json:"entryId,omitempty"`
}

type GetBalanceRequest struct {
	TenantId  string `json:"tenantId"`
	AccountId string `json:"accountId"`
}

type GetBalanceResponse struct {
	AccountId string `json:"accountId"`
	Balance   Amount `json:"balance"`
	Source    string `json:"source"`
}
