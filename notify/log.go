package notify

import (
	"context"
	"sort"

	"github.com/labstack/gommon/log"
)

// LogSender writes notices to a logger instead of delivering them. It is
// meant for local development and tests.
type LogSender struct {
	logger *log.Logger
	// ShowParams logs parameter values. Reset links carry live tokens, so this
	// should stay off outside local development.
	ShowParams bool
}

func NewLogSender(logger *log.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, n Notice) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := n.Validate(); err != nil {
		return err
	}

	keys := make([]string, 0, len(n.Params))
	for k := range n.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	s.logger.Infof("notice code=%s targets=%d", n.Code, len(n.Targets))
	for _, t := range n.Targets {
		s.logger.Infof("  to id=%d email=%s", t.ID, t.Email)
	}
	for _, k := range keys {
		if s.ShowParams {
			s.logger.Infof("  %s: %v", k, n.Params[k])
		} else {
			s.logger.Infof("  %s: <redacted>", k)
		}
	}
	return nil
}
