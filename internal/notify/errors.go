package notify

import "errors"

var (
	// ErrMissingCredentials is returned when a channel has no configured transport.
	ErrMissingCredentials = errors.New("notify: missing credentials")
	// ErrQueueFull is returned when the in-process queue cannot accept a job.
	ErrQueueFull = errors.New("notify: queue full")
	// ErrRejected is returned when a provider refuses a message outright.
	ErrRejected = errors.New("notify: message rejected by provider")
	// ErrUnknownChannel is returned for jobs naming no supported channel.
	ErrUnknownChannel = errors.New("notify: unknown channel")
)
