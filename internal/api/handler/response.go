package handler

const statusSuccess = "success"

// messageResponse is returned by operations that only acknowledge success.
type messageResponse struct {
	Status  string `json:"status" example:"success"`
	Message string `json:"message"`
}

// payloadResponse carries a result. Payload is rendered as null when empty.
type payloadResponse struct {
	Status  string `json:"status" example:"success"`
	Payload any    `json:"payload"`
}

func message(msg string) messageResponse {
	return messageResponse{Status: statusSuccess, Message: msg}
}

func payload(v any) payloadResponse {
	return payloadResponse{Status: statusSuccess, Payload: v}
}

// ErrorResponse is the envelope for every failed request.
type ErrorResponse struct {
	Status string `json:"status" example:"error"`
	Error  string `json:"error"`
}

// NewErrorResponse builds the error envelope for msg.
func NewErrorResponse(msg string) ErrorResponse {
	return ErrorResponse{Status: "error", Error: msg}
}
