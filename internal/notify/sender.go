// Package notify delivers reply SMS through the Twilio Messages REST API.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/monosms/sms-agent/internal/config"
)

type Sender struct {
	accountSID string
	authToken  string
	from       string
	baseURL    string
	client     *http.Client
	log        *zap.Logger
}

func NewSender(cfg config.SMSConfig, log *zap.Logger) *Sender {
	base := cfg.BaseURL
	if base == "" {
		base = "https://api.twilio.com"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Sender{
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		from:       cfg.FromNumber,
		baseURL:    strings.TrimRight(base, "/"),
		client:     &http.Client{Timeout: timeout},
		log:        log,
	}
}

// Send delivers one message to the given number. One attempt, no retry;
// failures are logged and returned to the caller.
func (s *Sender) Send(ctx context.Context, to, body string) error {
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", s.from)
	form.Set("Body", body)

	endpoint := s.baseURL + "/2010-04-01/Accounts/" + s.accountSID + "/Messages.json"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build sms request: %w", err)
	}
	req.SetBasicAuth(s.accountSID, s.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := s.client.Do(req)
	if err != nil {
		s.log.Error("sms send failed", zap.String("to", to), zap.Error(err))
		return fmt.Errorf("sms request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode/100 != 2 {
		err := fmt.Errorf("sms provider status %d", res.StatusCode)
		s.log.Error("sms send failed", zap.String("to", to), zap.Error(err))
		return err
	}

	var out struct {
		SID    string `json:"sid"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err == nil {
		s.log.Info("sms sent", zap.String("to", to), zap.String("sid", out.SID), zap.String("status", out.Status))
	}
	return nil
}
