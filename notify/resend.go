package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/labstack/gommon/log"
	"github.com/resend/resend-go/v2"
)

// EmailResolver looks up the address of a target known only by user id.
type EmailResolver func(ctx context.Context, userID int64) (string, error)

type emailAPI interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ResendSender renders notices with the embedded templates and delivers
// them through the Resend email API, one message per target.
type ResendSender struct {
	api      emailAPI
	from     string
	renderer *Renderer
	resolve  EmailResolver
	logger   *log.Logger
}

// NewResendSender builds a sender from an API key. resolve may be nil when
// every notice addresses targets by email.
func NewResendSender(apiKey, from string, resolve EmailResolver, logger *log.Logger) (*ResendSender, error) {
	if apiKey == "" {
		return nil, errors.New("resend api key required")
	}
	return newResendSender(resend.NewClient(apiKey).Emails, from, resolve, logger)
}

func newResendSender(api emailAPI, from string, resolve EmailResolver, logger *log.Logger) (*ResendSender, error) {
	if from == "" {
		return nil, errors.New("resend from address required")
	}
	renderer, err := NewRenderer()
	if err != nil {
		return nil, err
	}
	return &ResendSender{
		api:      api,
		from:     from,
		renderer: renderer,
		resolve:  resolve,
		logger:   logger,
	}, nil
}

// Send renders n and delivers it to each target. ctx bounds every API call.
func (s *ResendSender) Send(ctx context.Context, n Notice) error {
	if err := n.Validate(); err != nil {
		return err
	}
	subject, html, err := s.renderer.Render(n)
	if err != nil {
		return err
	}

	for _, t := range n.Targets {
		if err := ctx.Err(); err != nil {
			return err
		}

		to := t.Email
		if to == "" {
			if s.resolve == nil {
				return fmt.Errorf("%w: no email resolver for user %d", ErrDeliveryFailed, t.ID)
			}
			to, err = s.resolve(ctx, t.ID)
			if err != nil {
				return fmt.Errorf("%w: resolve user %d: %v", ErrDeliveryFailed, t.ID, err)
			}
		}

		sent, err := s.api.SendWithContext(ctx, &resend.SendEmailRequest{
			From:    s.from,
			To:      []string{to},
			Subject: subject,
			Html:    html,
		})
		if err != nil {
			if s.logger != nil {
				s.logger.Errorf("resend delivery of %s to %s failed: %v", n.Code, to, err)
			}
			return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
		}
		if s.logger != nil {
			s.logger.Infof("resend delivered %s to %s id=%s", n.Code, to, sent.Id)
		}
	}
	return nil
}
