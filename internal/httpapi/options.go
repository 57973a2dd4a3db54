package httpapi

import (
	"net/http"
	"time"
)

// Options controls HTTP API runtime behavior.
type Options struct {
	// ConvertTimeout bounds a single request (fetch + conversion).
	ConvertTimeout time.Duration

	// FetchTimeout is the timeout of the upstream subscription request.
	FetchTimeout time.Duration

	// MaxBodyBytes caps the subscription body size.
	MaxBodyBytes int64

	UserAgent string

	// Client is used for upstream requests when set.
	Client *http.Client
}

func (o Options) withDefaults() Options {
	if o.ConvertTimeout <= 0 {
		o.ConvertTimeout = 60 * time.Second
	}
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = 15 * time.Second
	}
	return o
}
