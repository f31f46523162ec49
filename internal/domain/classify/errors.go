package classify

import "errors"

// ErrQuotaExceeded indicates the classification provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("classifier quota exceeded")

// ErrMalformedResponse indicates the provider responded with output that does not match the expected schema.
var ErrMalformedResponse = errors.New("classifier returned malformed response")
