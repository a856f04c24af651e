package google

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

var (
	// ErrUnauthorized indicates the stored credential was rejected,
	// usually because the user revoked the app's access.
	ErrUnauthorized = errors.New("google: unauthorized")

	// ErrRateLimited indicates the Sheets API rate limit was exceeded.
	ErrRateLimited = errors.New("google: rate limit exceeded")
)

// wrapAPIError classifies googleapi errors worth distinguishing and
// annotates everything with the failing operation.
func wrapAPIError(op string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%s: %w: %v", op, ErrUnauthorized, err)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%s: %w: %v", op, ErrRateLimited, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
