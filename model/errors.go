package model

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrEmptyResponse is returned when a provider answers without any text.
var ErrEmptyResponse = errors.New("empty response")

// ErrorKind separates failures that deserve a same-provider retry from the rest.
type ErrorKind int

const (
	// KindGeneric covers transport, auth, malformed responses and any other non-quota failure.
	KindGeneric ErrorKind = iota
	// KindQuota marks rate-limit or usage-quota exhaustion.
	KindQuota
)

func (k ErrorKind) String() string {
	if k == KindQuota {
		return "quota"
	}
	return "generic"
}

// quotaSignatures are matched case-insensitively against error text.
var quotaSignatures = []string{
	"429",
	"quota",
	"resource_exhausted",
	"too many requests",
	"rate limit",
}

// ProviderError is the error type adapters return.
type ProviderError struct {
	Provider string
	Kind     ErrorKind
	Status   int
	Err      error
}

// NewProviderError wraps err and classifies it from the HTTP status and the
// error text.
func NewProviderError(provider string, status int, err error) *ProviderError {
	kind := KindGeneric
	if status == http.StatusTooManyRequests || hasQuotaSignature(err) {
		kind = KindQuota
	}
	return &ProviderError{Provider: provider, Kind: kind, Status: status, Err: err}
}

func (e *ProviderError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: %s error (status %d): %v", e.Provider, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %s error: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Classify returns the kind of err. Errors that are not *ProviderError are
// classified by their text.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindGeneric
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	if hasQuotaSignature(err) {
		return KindQuota
	}
	return KindGeneric
}

// IsQuota reports whether err is a quota/rate-limit failure.
func IsQuota(err error) bool {
	return err != nil && Classify(err) == KindQuota
}

func hasQuotaSignature(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, sig := range quotaSignatures {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}
