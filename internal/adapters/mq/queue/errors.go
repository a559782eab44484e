package queue

import "errors"

// Sentinel kinds for queue errors.
var (
	ErrShutdown = errors.New("queue shut down")
)
