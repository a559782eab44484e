package protocol

import "errors"

// Sentinel kinds for protocol decode errors.
var (
	ErrMalformedHandshake = errors.New("malformed handshake line")
	ErrMalformedBatchLine = errors.New("malformed batch line")
)
