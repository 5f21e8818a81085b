package handler

// errorResponse documents the envelope rendered by the API error handler.
type errorResponse struct {
	Error string `json:"error" example:"confirmed payment required"`
	Kind  string `json:"kind"  example:"PaymentRequired"`
}
