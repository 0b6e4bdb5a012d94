package model

// APIResponse wraps successful payloads.
type APIResponse struct {
	Data any   `json:"data,omitempty"`
	Meta *Meta `json:"meta,omitempty"`
}

// ErrorResponse is the body of every rejected request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

type Meta struct {
	Total int `json:"total"`
}
