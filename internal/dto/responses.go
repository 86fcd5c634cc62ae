package dto

// Meta carries the status code and success flag of every response.
type Meta struct {
	StatusCode int  `json:"statusCode"`
	Success    bool `json:"success"`
}

// SuccessPayload is the data half of a successful envelope.
type SuccessPayload struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ErrorPayload is the error half of a failed envelope.
type ErrorPayload struct {
	Message string `json:"message"`
	Error   any    `json:"error,omitempty"`
}

// SuccessResponse is the uniform envelope for successful responses.
type SuccessResponse struct {
	Meta Meta           `json:"meta"`
	Data SuccessPayload `json:"data"`
}

// ErrorResponse is the uniform envelope for failed responses.
type ErrorResponse struct {
	Meta  Meta         `json:"meta"`
	Error ErrorPayload `json:"error"`
}

// NewSuccess builds a success envelope.
func NewSuccess(statusCode int, message string, data any) SuccessResponse {
	return SuccessResponse{
		Meta: Meta{StatusCode: statusCode, Success: true},
		Data: SuccessPayload{Message: message, Data: data},
	}
}

// NewError builds an error envelope.
func NewError(statusCode int, message string, details any) ErrorResponse {
	return ErrorResponse{
		Meta:  Meta{StatusCode: statusCode, Success: false},
		Error: ErrorPayload{Message: message, Error: details},
	}
}

// AccountInfo is the public view of an account returned by auth endpoints.
type AccountInfo struct {
	ID                     string `json:"id"`
	Username               string `json:"username"`
	Email                  string `json:"email"`
	Status                 string `json:"status"`
	TwoFactorEnabled       bool   `json:"twoFactorEnabled"`
	NeedsProfileCompletion bool   `json:"needToCompleteData"`
}
