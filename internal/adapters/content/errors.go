package content

import "errors"

var (
	// ErrMalformedPayload is returned when the provider answers with text that
	// cannot be decoded into the requested shape
	ErrMalformedPayload = errors.New("malformed provider payload")

	// ErrEmptyResponse is returned when the provider answers with no text at all
	ErrEmptyResponse = errors.New("empty provider response")

	// ErrOffline is returned for requests that need a live provider
	ErrOffline = errors.New("content provider offline")
)
