// Package extract turns text into structured data through a rate-limited,
// retrying client for an external language-extraction backend.
package extract

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
)

// Request is one call to a backend. Instructions followed by Text is the
// exact payload; backends with a system channel send Instructions there.
type Request struct {
	SchemaID        string
	Instructions    string
	Text            string
	Temperature     float64
	MaxOutputTokens int
}

// Prompt returns the single-message form of the request.
func (r Request) Prompt() string {
	return r.Instructions + r.Text
}

// Backend is an extraction service returning the raw response body, which
// should be a JSON object.
type Backend interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}

// ErrMalformedResponse is wrapped when a response is not a JSON object of the
// expected shape.
var ErrMalformedResponse = eris.New("malformed extraction response")

// ErrEmptyResponse is wrapped when a backend answers without any text.
var ErrEmptyResponse = eris.New("empty extraction response")

// Failure is returned once every attempt for a schema has failed.
type Failure struct {
	Schema   string
	Attempts int
	Err      error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("extract %s: failed after %d attempt(s): %v", f.Schema, f.Attempts, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}
