package notify

import (
	"context"
	"errors"
)

// Template codes understood by every sender.
const (
	CodeForgotPassword  = "forgot-password"
	CodePasswordChanged = "password-changed"
)

var (
	ErrNoTargets       = errors.New("notice has no targets")
	ErrUnknownTemplate = errors.New("unknown notice template")
	ErrDeliveryFailed  = errors.New("notice delivery failed")
)

// Target addresses a recipient by user id, by email, or both.
type Target struct {
	ID    int64  `json:"id,omitempty"`
	Email string `json:"email,omitempty"`
}

// Notice is a templated message for one or more recipients.
type Notice struct {
	Code    string         `json:"code"`
	Targets []Target       `json:"targets"`
	Params  map[string]any `json:"params,omitempty"`
}

// Validate checks the notice is addressable.
func (n Notice) Validate() error {
	if n.Code == "" {
		return ErrUnknownTemplate
	}
	if len(n.Targets) == 0 {
		return ErrNoTargets
	}
	for _, t := range n.Targets {
		if t.ID == 0 && t.Email == "" {
			return ErrNoTargets
		}
	}
	return nil
}

// Sender delivers notices. Implementations must honor ctx cancellation.
type Sender interface {
	Send(ctx context.Context, n Notice) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, n Notice) error

func (f SenderFunc) Send(ctx context.Context, n Notice) error {
	return f(ctx, n)
}
