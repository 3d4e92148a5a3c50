// Package llmclient holds the model adapters behind the conductor's single
// chat call. Retries are deliberately absent: a failed turn returns a
// deterministic apology rather than risking inconsistent state.
package llmclient

import (
	"context"
	"errors"
)

// ErrEmptyResponse indicates the model returned no usable content.
var ErrEmptyResponse = errors.New("llmclient: empty response from model")

// Message is one prompt entry on the wire.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client is the abstract chat call. Implementations fix their own model and
// sampling configuration.
type Client interface {
	Name() string
	Chat(ctx context.Context, messages []Message) (string, error)
}

// PermanentError indicates an error that will not resolve with retries.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func NewPermanentError(err error) error {
	return &PermanentError{Err: err}
}
