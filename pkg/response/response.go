package response

import "donation-api/pkg/pagination"

// Response is the envelope every endpoint returns.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
}

// Success wraps data in a successful envelope
func Success(message string, data interface{}) Response {
	return Response{
		Success: true,
		Message: message,
		Data:    data,
	}
}

// Error returns a failed envelope. detail is optional and usually only set in development.
func Error(message string, detail string) Response {
	return Response{
		Success: false,
		Message: message,
		Error:   detail,
	}
}

// ValidationError returns a failed envelope with itemized field errors
func ValidationError(message string, errs []string) Response {
	return Response{
		Success: false,
		Message: message,
		Errors:  errs,
	}
}

// Paginated is the data shape used by list endpoints
type Paginated struct {
	Items      interface{} `json:"items"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int         `json:"total_pages"`
}

// NewPaginated wraps one page of items with the window it was read with
func NewPaginated(items interface{}, total int64, p pagination.Params) Paginated {
	return Paginated{
		Items:      items,
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: p.Pages(total),
	}
}
