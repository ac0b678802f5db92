package errors

// ErrorResponse is the body of every non-2xx API response
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Display       string         `json:"message"`
	Code          string         `json:"code,omitempty"`
	InternalError string         `json:"internal_error,omitempty"`
	Details       map[string]any `json:"details,omitempty"`
}

// CodeFromErr returns the code of the first sentinel the error is marked with
func CodeFromErr(err error) string {
	for e := range statusCodeMap {
		if Is(err, e) {
			if ie, ok := e.(*InternalError); ok {
				return ie.Code
			}
		}
	}
	return ErrCodeSystemError
}
