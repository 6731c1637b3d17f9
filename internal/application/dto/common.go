package dto

// ErrorResponse is the uniform error payload for the HTTP API.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
