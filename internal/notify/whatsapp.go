package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"gradepulse/internal/config"
	"gradepulse/internal/logger"
	"gradepulse/pkg/errors"

	"github.com/rs/zerolog"
)

const whatsAppPrefix = "whatsapp:"

// WhatsAppClient sends messages through a Twilio-compatible Messages API.
type WhatsAppClient struct {
	cfg        config.WhatsAppConfig
	httpClient *http.Client
	log        zerolog.Logger
}

type messageResponse struct {
	SID     string `json:"sid"`
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewWhatsAppClient(cfg config.WhatsAppConfig) *WhatsAppClient {
	return &WhatsAppClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		log: logger.Component("whatsapp"),
	}
}

func (c *WhatsAppClient) Send(ctx context.Context, to, body string) error {
	form := url.Values{}
	form.Set("To", withPrefix(to))
	form.Set("From", withPrefix(c.cfg.From))
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json",
		strings.TrimRight(c.cfg.BaseURL, "/"), url.PathEscape(c.cfg.AccountSID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.cfg.AccountSID, c.cfg.AuthToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NewRetryableError(err, "HTTP request failed")
	}
	defer resp.Body.Close()

	var msg messageResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(raw, &msg)

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		c.log.Debug().Str("to", to).Str("sid", msg.SID).Str("status", msg.Status).Msg("WhatsApp message accepted")
		return nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return errors.NewRetryableError(fmt.Errorf("HTTP %d", resp.StatusCode), "messaging provider unavailable")
	}
	return fmt.Errorf("%w: HTTP %d code %d: %s", errors.ErrProviderError, resp.StatusCode, msg.Code, msg.Message)
}

func withPrefix(number string) string {
	if strings.HasPrefix(number, whatsAppPrefix) {
		return number
	}
	return whatsAppPrefix + number
}
