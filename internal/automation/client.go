// Package automation submits task descriptions to the external blockchain
// automation provider. The provider owns the task lifecycle after
// submission; repetition is entirely its concern.
package automation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/monosms/sms-agent/internal/util"
)

// Task is the job description posted to the provider.
type Task struct {
	Payload Payload `json:"payload"`
	Task    string  `json:"task"` // "swap" | "send"
	Times   int     `json:"times"`
	Repeat  int     `json:"repeat"` // milliseconds between repetitions
	Name    string  `json:"name"`
	Enabled bool    `json:"enabled"`
}

type Payload struct {
	FromToken      string `json:"fromToken,omitempty"` // swap
	ToToken        string `json:"toToken,omitempty"`   // swap
	Token          string `json:"token,omitempty"`     // send
	ToAddress      string `json:"toAddress,omitempty"` // send
	Amount         string `json:"amount"`
	AccountAddress string `json:"accountAddress"`
	ValidatorSalt  string `json:"validatorSalt"`
}

type Client struct {
	endpoint string
	account  string
	salt     string
	client   *http.Client
}

func NewClient(baseURL, agentPath, account, salt string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		endpoint: strings.TrimRight(baseURL, "/") + agentPath,
		account:  account,
		salt:     salt,
		client:   &http.Client{Timeout: timeout},
	}
}

// Swap submits a swap task. Returns the provider-assigned task id, which may
// be empty when the provider does not include one.
func (c *Client) Swap(ctx context.Context, fromToken, toToken, amount string, times, repeatMS int) (string, error) {
	return c.submit(ctx, Task{
		Payload: Payload{
			FromToken:      fromToken,
			ToToken:        toToken,
			Amount:         amount,
			AccountAddress: c.account,
			ValidatorSalt:  c.salt,
		},
		Task:    "swap",
		Times:   times,
		Repeat:  repeatMS,
		Name:    "sms-swap-" + util.NewULID(),
		Enabled: true,
	})
}

// Send submits a transfer task.
func (c *Client) Send(ctx context.Context, token, toAddress, amount string, times, repeatMS int) (string, error) {
	return c.submit(ctx, Task{
		Payload: Payload{
			Token:          token,
			ToAddress:      toAddress,
			Amount:         amount,
			AccountAddress: c.account,
			ValidatorSalt:  c.salt,
		},
		Task:    "send",
		Times:   times,
		Repeat:  repeatMS,
		Name:    "sms-send-" + util.NewULID(),
		Enabled: true,
	})
}

func (c *Client) submit(ctx context.Context, t Task) (string, error) {
	b, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("marshal task: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("build task request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("automation request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode/100 != 2 {
		return "", fmt.Errorf("automation provider status %d", res.StatusCode)
	}

	// The 2xx body may carry a task id; its absence is not an error.
	var out map[string]any
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", nil
	}
	if id, ok := out["id"]; ok {
		return fmt.Sprint(id), nil
	}
	return "", nil
}
