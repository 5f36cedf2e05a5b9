package provider

import (
	"errors"
	"fmt"

	"golang.org/x/oauth2"
)

// Upstream operations reported in UpstreamError.Op.
const (
	OpTokenExchange = "token_exchange"
	OpProfileFetch  = "profile_fetch"
)

// UpstreamError reports a failed call to the identity provider.
// StatusCode and Body are set when the provider answered.
type UpstreamError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s failed with status %d: %s", e.Op, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsUpstreamError reports whether err is (or wraps) an *UpstreamError.
func IsUpstreamError(err error) bool {
	var upstream *UpstreamError
	return errors.As(err, &upstream)
}

// exchangeError converts an oauth2 exchange failure, pulling the status and
// body out of *oauth2.RetrieveError when the provider responded.
func exchangeError(err error) *UpstreamError {
	ue := &UpstreamError{Op: OpTokenExchange, Err: err}
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		if re.Response != nil {
			ue.StatusCode = re.Response.StatusCode
		}
		ue.Body = string(re.Body)
	}
	return ue
}
