package model

import "strings"

// Action is the high-level intent of a parsed command.
type Action string

const (
	ActionSwap Action = "swap"
	ActionSend Action = "send"
)

func (a Action) String() string { return string(a) }

func (a Action) Valid() bool {
	return a == ActionSwap || a == ActionSend
}

// ParseAction normalizes input. Returns (value, true) if it names a known
// action; otherwise ("", false).
func ParseAction(s string) (Action, bool) {
	switch Action(strings.ToLower(strings.TrimSpace(s))) {
	case ActionSwap:
		return ActionSwap, true
	case ActionSend:
		return ActionSend, true
	default:
		return "", false
	}
}

// InboundMessage is one received SMS. It lives for a single webhook
// invocation and is never persisted.
type InboundMessage struct {
	Sender    string // E.164 phone number
	Body      string // raw text
	MessageID string // provider-assigned id
}

// ParsedCommand is the structured result of interpreting an inbound message.
// Action is always set; every other field is optional and its zero value
// means the model output omitted it.
type ParsedCommand struct {
	Action           Action `json:"action"`
	Amount           string `json:"amount,omitempty"`           // decimal quantity, "50%", or "ALL"
	TokenFrom        string `json:"tokenFrom,omitempty"`
	TokenTo          string `json:"tokenTo,omitempty"`
	RecipientAddress string `json:"recipientAddress,omitempty"` // hex address or ENS name
	Recurring        int    `json:"recurring,omitempty"`        // repetition count
	TimeGap          int    `json:"timeGap,omitempty"`          // milliseconds between repetitions
}
