package http

// ApiResponse is the success envelope of every endpoint.
type ApiResponse struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

func NewApiResponse(statusCode int, data any, message string) ApiResponse {
	return ApiResponse{
		StatusCode: statusCode,
		Data:       data,
		Message:    message,
		Success:    statusCode < 400,
	}
}

// ErrorResponse is written by ErrorHandler.
type ErrorResponse struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Success    bool     `json:"success"`
	Errors     []string `json:"errors"`
}
