package web

import "fmt"

// MissingCodeError is a callback that arrived without an authorization code,
// usually because the user declined consent at the provider.
type MissingCodeError struct {
	ProviderError    string
	ErrorDescription string
}

func (e *MissingCodeError) Error() string {
	if e.ProviderError == "" {
		return "authorization code not provided"
	}
	return fmt.Sprintf("authorization code not provided: %s: %s", e.ProviderError, e.ErrorDescription)
}
