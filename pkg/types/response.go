package types

type SuccessEnvelope struct {
	Data    any    `json:"data"`
	Outcome string `json:"outcome,omitempty"`
	Message string `json:"message,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error   APIError `json:"error"`
	Outcome string   `json:"outcome,omitempty"`
}
