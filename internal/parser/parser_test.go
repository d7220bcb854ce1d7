package parser

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monosms/sms-agent/internal/llm"
	"github.com/monosms/sms-agent/internal/model"
)

// completionServer fakes an OpenAI-compatible endpoint returning the given
// choice content. The last request body is captured for inspection.
func completionServer(t *testing.T, content string, status int, lastReq *llm.CompletionRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if lastReq != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(lastReq))
		}
		if status/100 != 2 {
			http.Error(w, "upstream failure", status)
			return
		}
		resp := llm.CompletionResponse{
			Choices: []llm.Choice{{Message: llm.ChoiceMessage{Role: "assistant", Content: content}}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func newParser(srvURL string) *Parser {
	return New(llm.NewClient(srvURL, "test-key", 2*time.Second), "qwen3-0.6b-mlx")
}

func TestParseExtractsCommandFromNoisyResponse(t *testing.T) {
	content := `Here is the parsed command:
{"action":"send","amount":"1","tokenFrom":"BREWIT","recipientAddress":"vijayankith.eth","recurring":3,"timeGap":30000}
Let me know if you need anything else.`

	var captured llm.CompletionRequest
	srv := completionServer(t, content, http.StatusOK, &captured)
	defer srv.Close()

	cmd, err := newParser(srv.URL).Parse(context.Background(), "send 1 BREWIT to vijayankith.eth for 3 times for every 30 seconds", "+15551234567")
	require.NoError(t, err)

	assert.Equal(t, model.ActionSend, cmd.Action)
	assert.Equal(t, "1", cmd.Amount)
	assert.Equal(t, "BREWIT", cmd.TokenFrom)
	assert.Equal(t, "vijayankith.eth", cmd.RecipientAddress)
	assert.Equal(t, 3, cmd.Recurring)
	assert.Equal(t, 30000, cmd.TimeGap)

	// request shape: fixed system turn, literal user text, constrained schema
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "user", captured.Messages[1].Role)
	assert.Contains(t, captured.Messages[1].Content, "send 1 BREWIT to vijayankith.eth")
	require.NotNil(t, captured.ResponseFormat)
	assert.Equal(t, "json_schema", captured.ResponseFormat.Type)
	require.NotNil(t, captured.ResponseFormat.JSONSchema)
	assert.Equal(t, []any{"action"}, captured.ResponseFormat.JSONSchema.Schema["required"])
}

func TestParseOmittedFieldsStayZero(t *testing.T) {
	srv := completionServer(t, `{"action":"swap","amount":"1","tokenFrom":"MON","tokenTo":"USDT"}`, http.StatusOK, nil)
	defer srv.Close()

	cmd, err := newParser(srv.URL).Parse(context.Background(), "SWAP 1 MON TO USDT", "+15551234567")
	require.NoError(t, err)

	assert.Equal(t, model.ActionSwap, cmd.Action)
	assert.Empty(t, cmd.RecipientAddress)
	assert.Zero(t, cmd.Recurring)
	assert.Zero(t, cmd.TimeGap)
}

func TestParseCompletionErrorIsParseError(t *testing.T) {
	srv := completionServer(t, "", http.StatusInternalServerError, nil)
	defer srv.Close()

	_, err := newParser(srv.URL).Parse(context.Background(), "swap 1 mon to usdt", "+15551234567")

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "completion", perr.Stage)
}

func TestParseNoJSONIsParseError(t *testing.T) {
	srv := completionServer(t, "I could not figure out what you meant.", http.StatusOK, nil)
	defer srv.Close()

	_, err := newParser(srv.URL).Parse(context.Background(), "hello", "+15551234567")

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "extract", perr.Stage)
}

func TestParseUndecodableJSONIsParseError(t *testing.T) {
	srv := completionServer(t, `{"action": 42}`, http.StatusOK, nil)
	defer srv.Close()

	_, err := newParser(srv.URL).Parse(context.Background(), "hello", "+15551234567")

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "decode", perr.Stage)
}

func TestParseEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(llm.CompletionResponse{})
	}))
	defer srv.Close()

	_, err := newParser(srv.URL).Parse(context.Background(), "hello", "+15551234567")

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "completion", perr.Stage)
}

func TestParseSingleAttempt(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newParser(srv.URL).Parse(context.Background(), "hello", "+15551234567")
	require.Error(t, err)
	assert.True(t, errors.As(err, new(*ParseError)))
	assert.Equal(t, 1, calls)
}
