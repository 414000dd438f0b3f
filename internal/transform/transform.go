package transform

import (
	"context"
	"errors"
	"fmt"
)

// Transformer turns captured text into its transformed version
type Transformer interface {
	Transform(ctx context.Context, req Request) (Result, error)
}

// Request is one transformation call
type Request struct {
	Text     string
	Action   string
	Template string // must contain the {text} placeholder
	Language string
}

// Result is a successful transformation
type Result struct {
	Text         string
	InputTokens  int64
	OutputTokens int64
}

// Kind classifies a transformation failure
type Kind int

const (
	// Connection means the service could not be reached
	Connection Kind = iota
	// Service means the service answered with an error or an unusable reply
	Service
	// UnknownAction means no template exists for the action
	UnknownAction
	// Config means the client is not usable (missing API key, ...)
	Config
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case Connection:
		return "connection"
	case Service:
		return "service"
	case UnknownAction:
		return "unknown_action"
	case Config:
		return "config"
	default:
		return "unknown"
	}
}

// Error is the error type returned by transformers
type Error struct {
	Kind       Kind
	StatusCode int // set for Service errors reported over HTTP
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a transform *Error of kind k
func IsKind(err error, k Kind) bool {
	var te *Error
	return errors.As(err, &te) && te.Kind == k
}

// IsUnknownAction reports whether err means the action has no template
func IsUnknownAction(err error) bool {
	return IsKind(err, UnknownAction)
}

// Func adapts a plain function to Transformer
type Func func(ctx context.Context, req Request) (Result, error)

// Transform calls f
func (f Func) Transform(ctx context.Context, req Request) (Result, error) {
	return f(ctx, req)
}
