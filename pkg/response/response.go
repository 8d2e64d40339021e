package response

// Response is the envelope every endpoint answers with.
type Response struct {
	Success    bool        `json:"success"`
	StatusCode int         `json:"status_code"`
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// Paged wraps a page of items together with the total row count.
type Paged struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
	Pages int         `json:"pages"`
}

// Success returns a success response wrapping the data
func Success(statusCode int, data interface{}) Response {
	return Response{
		Success:    true,
		StatusCode: statusCode,
		Data:       data,
	}
}

// Error returns an error response carrying the message
func Error(statusCode int, err string) Response {
	return Response{
		Success:    false,
		StatusCode: statusCode,
		Error:      err,
	}
}

// ErrorWithData is Error plus a payload, used when the client needs details
// such as the conflicting reservations of a rejected booking.
func ErrorWithData(statusCode int, err string, data interface{}) Response {
	r := Error(statusCode, err)
	r.Data = data
	return r
}
