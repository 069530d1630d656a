package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const serviceTokenTTL = time.Minute

// HTTPSender posts notices to a notification service as JSON. Each request
// carries a short-lived HS256 service token in the Authorization header.
type HTTPSender struct {
	endpoint   string
	signingKey []byte
	issuer     string
	audience   string
	client     *http.Client
	now        func() time.Time
}

// HTTPSenderConfig configures an HTTPSender.
type HTTPSenderConfig struct {
	BaseURL    string
	SigningKey []byte
	Issuer     string
	Audience   string
	Client     *http.Client
}

func NewHTTPSender(cfg HTTPSenderConfig) (*HTTPSender, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("notify base url required")
	}
	if len(cfg.SigningKey) < 32 {
		return nil, errors.New("notify signing key must be at least 32 bytes")
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "gorecover"
	}
	if cfg.Audience == "" {
		cfg.Audience = "notify"
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: 10 * time.Second}
	}
	key := make([]byte, len(cfg.SigningKey))
	copy(key, cfg.SigningKey)
	return &HTTPSender{
		endpoint:   strings.TrimRight(cfg.BaseURL, "/") + "/v1/notices",
		signingKey: key,
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
		client:     cfg.Client,
		now:        time.Now,
	}, nil
}

func (s *HTTPSender) serviceToken() (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Issuer:    s.issuer,
		Audience:  jwt.ClaimStrings{s.audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(serviceTokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
}

func (s *HTTPSender) Send(ctx context.Context, n Notice) error {
	if err := n.Validate(); err != nil {
		return err
	}
	body, err := json.Marshal(n)
	if err != nil {
		return err
	}
	token, err := s.serviceToken()
	if err != nil {
		return fmt.Errorf("sign service token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: notify service returned %s", ErrDeliveryFailed, resp.Status)
	}
	return nil
}
