package sdk

import (
	"errors"
	"fmt"

	"github.com/imroc/req/v3"
)

var (
	ErrNoServerURL   = errors.New("sdk: server url missing")
	ErrNoAccessToken = errors.New("sdk: access token missing")
	ErrMissingField  = errors.New("sdk: missing required field")
)

// fallbackDetail is used when the server error body carries no detail.
const fallbackDetail = "Unknown error"

// APIError is a non-2xx response from the backend. The server encodes the
// user-facing message in the `detail` field.
type APIError struct {
	StatusCode int    `json:"-"`
	Detail     string `json:"detail"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Detail)
}

// handleAPIError handles the common error pattern: transport failures are
// wrapped with the operation name, API failures surface the server detail.
func handleAPIError(resp *req.Response, requestErr error, operation string) error {
	if requestErr != nil {
		return fmt.Errorf("%s: %w", operation, requestErr)
	}

	// got a response, but the api returned an error
	if resp.IsErrorState() {
		apiErr, ok := resp.ErrorResult().(*APIError)
		if !ok || apiErr == nil {
			apiErr = &APIError{}
		}
		apiErr.StatusCode = resp.StatusCode
		if apiErr.Detail == "" {
			apiErr.Detail = fallbackDetail
		}
		return fmt.Errorf("%s: %w", operation, apiErr)
	}

	return nil
}
