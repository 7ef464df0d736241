package dto

// ErrorResponse cuerpo de error HTTP. Code es el tipo de error estable.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MessageResponse confirmación simple.
type MessageResponse struct {
	Message string `json:"message"`
}
