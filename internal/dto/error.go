package dto

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code  string `json:"code" example:"INSUFFICIENT_FUNDS"`
	Error string `json:"error"`
}
