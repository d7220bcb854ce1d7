// Package parser converts free-text SMS bodies into structured commands by
// delegating extraction to a schema-constrained language model completion.
package parser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/monosms/sms-agent/internal/llm"
	"github.com/monosms/sms-agent/internal/model"
)

const (
	temperature = 0.1
	maxTokens   = 200
	schemaName  = "command_parser_response"
)

const systemPrompt = `You are a command parser for SMS-based blockchain interactions.
Extract the action and parameters from user messages.

Supported actions:
1. swap: User wants to execute a swap transaction
2. send: User wants to send tokens to a specific address

CRITICAL RULES:
- SWAP: Use for "swap", "exchange", "convert", "SWAP" commands
- SEND: Use for "send", "transfer", "SEND" to addresses
- PERCENTAGES: Extract percentage for "50%", "25%" amounts
- "ALL": Extract "ALL" as amount for full balance operations
- TIMING: If the user says "for X times" or "every Y seconds/minutes", extract recurring (number of times) and timeGap (milliseconds between executions). If not present, omit from output.

EXAMPLES:
- "swap 1 mon to usdt" -> action: "swap", amount: "1", tokenFrom: "MON", tokenTo: "USDT"
- "send 1 usdt to 0x1234...abcd" -> action: "send", amount: "1", tokenFrom: "USDT", recipientAddress: "0x1234...abcd"
- "send 1 brewit to vijayankith.eth for 3 times for every 30 seconds" -> action: "send", amount: "1", tokenFrom: "BREWIT", recipientAddress: "vijayankith.eth", recurring: 3, timeGap: 30000
- "send 2 usdt to alice.eth for 5 times every 10 seconds" -> action: "send", amount: "2", tokenFrom: "USDT", recipientAddress: "alice.eth", recurring: 5, timeGap: 10000
- "send 0.5 mon to 0xabc... for 2 times every 1 minute" -> action: "send", amount: "0.5", tokenFrom: "MON", recipientAddress: "0xabc...", recurring: 2, timeGap: 60000

For amounts, support: "1 MON", "50%", "ALL", "100 USDT"
For tokens, support: MON, USDT, USDC, BREWIT
For addresses, support: ENS names (wallet.eth) and hex addresses (0x1234...)
For timing: recurring (number of times), timeGap (milliseconds between executions)

ALWAYS respond with ONLY a valid JSON object containing the parsed command. If timing is not present in the message, omit recurring and timeGap from the output.`

// ParseError is any failure to turn a message body into a command: the
// completion call itself, a response without a JSON object, or undecodable
// JSON.
type ParseError struct {
	Stage string // "completion" | "extract" | "decode"
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return "parse " + e.Stage + " failed"
	}
	return fmt.Sprintf("parse %s failed: %v", e.Stage, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Completer is the completion endpoint dependency.
type Completer interface {
	ChatCompletion(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error)
}

type Parser struct {
	completer Completer
	model     string
}

func New(completer Completer, modelName string) *Parser {
	return &Parser{completer: completer, model: modelName}
}

// commandSchema constrains the model output: action is required and
// enum-limited, everything else is optional.
func commandSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"action": map[string]any{
				"type":        "string",
				"enum":        []string{"swap", "send"},
				"description": "The action to perform",
			},
			"amount": map[string]any{
				"type":        "string",
				"description": `Amount to swap or send (e.g., "1", "50%", "ALL")`,
			},
			"tokenFrom": map[string]any{
				"type":        "string",
				"description": `Source token symbol (e.g., "MON", "USDT")`,
			},
			"tokenTo": map[string]any{
				"type":        "string",
				"description": `Destination token symbol (e.g., "USDT", "MON")`,
			},
			"recipientAddress": map[string]any{
				"type":        "string",
				"description": `Recipient address for send action (e.g., "wallet.eth", "0x1234...")`,
			},
			"recurring": map[string]any{
				"type":        "number",
				"description": `Number of times to repeat the action (e.g., 3 for "3 times"; extract if present in the message)`,
			},
			"timeGap": map[string]any{
				"type":        "number",
				"description": `Time gap in milliseconds between executions (e.g., 30000 for "30 seconds"; extract if present in the message)`,
			},
		},
		"required":             []string{"action"},
		"additionalProperties": false,
	}
}

// Parse interprets one message body. One completion attempt per message; all
// failure modes surface as *ParseError.
func (p *Parser) Parse(ctx context.Context, body, sender string) (model.ParsedCommand, error) {
	req := llm.CompletionRequest{
		Model: p.model,
		Messages: []llm.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf("Parse this SMS command: %q", body)},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
		ResponseFormat: &llm.ResponseFormat{
			Type: "json_schema",
			JSONSchema: &llm.JSONSchema{
				Name:   schemaName,
				Strict: true,
				Schema: commandSchema(),
			},
		},
	}

	res, err := p.completer.ChatCompletion(ctx, req)
	if err != nil {
		return model.ParsedCommand{}, &ParseError{Stage: "completion", Err: err}
	}
	if len(res.Choices) == 0 {
		return model.ParsedCommand{}, &ParseError{Stage: "completion", Err: errors.New("no choices in response")}
	}

	content := res.Choices[0].Message.Content

	// The model may wrap the JSON in commentary; take the first balanced
	// object and discard the rest.
	raw := extractJSON(content)
	if raw == "" {
		return model.ParsedCommand{}, &ParseError{Stage: "extract", Err: errors.New("no JSON object in response")}
	}

	var cmd model.ParsedCommand
	if err := json.Unmarshal([]byte(raw), &cmd); err != nil {
		return model.ParsedCommand{}, &ParseError{Stage: "decode", Err: err}
	}

	return cmd, nil
}
