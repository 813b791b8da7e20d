package salesdk

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// APIError is the JSON error envelope the API speaks. Handlers write it,
// clients parse it back, so both sides share one taxonomy.
type APIError struct {
	StatusCode  int    `json:"-"`
	Code        string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

func (e *APIError) Error() string {
	if e.Description == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError writes the error as a JSON response with its status code.
func (e *APIError) WriteError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(e)
}

// WithDescription returns a copy of the error with a different description.
// The predefined errors stay immutable.
func (e *APIError) WithDescription(desc string) *APIError {
	clone := *e
	clone.Description = desc
	return &clone
}

// Predefined API errors.
var (
	ErrMissingFields = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        "missing_fields",
		Description: "One or more required fields are missing.",
	}

	ErrMissingLocation = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        "missing_location",
		Description: "A location is required to check in.",
	}

	ErrInvalidCredentials = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        "invalid_credentials",
		Description: "Incorrect email or password.",
	}

	ErrDuplicateEmail = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        "duplicate_email",
		Description: "An account with this email already exists.",
	}

	ErrUnauthenticated = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        "unauthenticated",
		Description: "A valid bearer token is required.",
	}

	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        "server_error",
		Description: "Something went wrong. Please try again.",
	}
)

// parseErrorResponse decodes a non-2xx response body into an APIError. A
// body that isn't the standard envelope still yields a usable error with
// the response status code.
func parseErrorResponse(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        "server_error",
			Description: fmt.Sprintf("reading error response: %v", err),
		}
	}

	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Code == "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        "server_error",
			Description: fmt.Sprintf("unexpected response (status %d)", resp.StatusCode),
		}
	}

	apiErr.StatusCode = resp.StatusCode
	return &apiErr
}
