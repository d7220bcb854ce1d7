// Package dispatcher validates parsed commands, resolves tokens and
// recipients, submits automation tasks, and replies to the sender. Each
// inbound message makes at most one automation submission and exactly one
// reply SMS.
package dispatcher

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/monosms/sms-agent/internal/metrics"
	"github.com/monosms/sms-agent/internal/model"
	"github.com/monosms/sms-agent/internal/token"
)

// DefaultTimeGapMS is the baseline gap between repeated executions when the
// command does not specify one.
const DefaultTimeGapMS = 3000

// Automation submits task descriptions to the external automation provider.
type Automation interface {
	Swap(ctx context.Context, fromToken, toToken, amount string, times, repeatMS int) (taskID string, err error)
	Send(ctx context.Context, tok, toAddress, amount string, times, repeatMS int) (taskID string, err error)
}

// AddressResolver normalizes a recipient identifier into a canonical
// address. ok is false for anything unresolvable.
type AddressResolver interface {
	Resolve(ctx context.Context, identifier string) (address string, ok bool)
}

// Notifier delivers the reply SMS.
type Notifier interface {
	Send(ctx context.Context, to, body string) error
}

type Dispatcher struct {
	registry   *token.Registry
	resolver   AddressResolver
	automation Automation
	notifier   Notifier
	timeGapMS  int
	log        *zap.Logger
}

func New(registry *token.Registry, resolver AddressResolver, auto Automation, notifier Notifier, timeGapMS int, log *zap.Logger) *Dispatcher {
	if timeGapMS <= 0 {
		timeGapMS = DefaultTimeGapMS
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		registry:   registry,
		resolver:   resolver,
		automation: auto,
		notifier:   notifier,
		timeGapMS:  timeGapMS,
		log:        log,
	}
}

func (d *Dispatcher) repetition(cmd model.ParsedCommand) (times, repeatMS int) {
	times = 1
	if cmd.Recurring > 0 {
		times = cmd.Recurring
	}
	repeatMS = d.timeGapMS
	if cmd.TimeGap > 0 {
		repeatMS = cmd.TimeGap
	}
	return times, repeatMS
}

// DispatchSwap handles a swap command end to end.
func (d *Dispatcher) DispatchSwap(ctx context.Context, msg model.InboundMessage, cmd model.ParsedCommand) error {
	if cmd.TokenFrom == "" || cmd.TokenTo == "" || cmd.Amount == "" {
		metrics.MessagesTotal.WithLabelValues("swap", "validation_failed").Inc()
		return d.reply(ctx, msg, swapUsageReply)
	}

	from, err := d.registry.FindBySymbol(cmd.TokenFrom)
	if err != nil {
		return d.lookupFailure(ctx, msg, "swap", err)
	}
	to, err := d.registry.FindBySymbol(cmd.TokenTo)
	if err != nil {
		return d.lookupFailure(ctx, msg, "swap", err)
	}

	times, repeatMS := d.repetition(cmd)

	d.log.Info("executing swap",
		zap.String("sender", msg.Sender),
		zap.String("amount", cmd.Amount),
		zap.String("from", from.Symbol),
		zap.String("to", to.Symbol),
		zap.Int("times", times),
		zap.Int("repeat_ms", repeatMS),
	)

	taskID, err := d.automation.Swap(ctx, from.Address, to.Address, cmd.Amount, times, repeatMS)
	if err != nil {
		metrics.MessagesTotal.WithLabelValues("swap", "provider_failed").Inc()
		d.log.Error("swap failed", zap.String("sender", msg.Sender), zap.Error(err))
		return d.reply(ctx, msg, swapFailureReply(err))
	}

	metrics.MessagesTotal.WithLabelValues("swap", "submitted").Inc()
	return d.reply(ctx, msg, swapSuccessReply(cmd.Amount, from, to, taskID))
}

// DispatchSend handles a send command end to end.
//
// The parser is not required to disambiguate direction for a one-sided
// transfer, so the token symbol is accepted from either field: tokenTo
// first, tokenFrom as fallback.
func (d *Dispatcher) DispatchSend(ctx context.Context, msg model.InboundMessage, cmd model.ParsedCommand) error {
	symbol := cmd.TokenTo
	if symbol == "" {
		symbol = cmd.TokenFrom
	}

	if symbol == "" || cmd.RecipientAddress == "" || cmd.Amount == "" {
		metrics.MessagesTotal.WithLabelValues("send", "validation_failed").Inc()
		return d.reply(ctx, msg, sendUsageReply)
	}

	tok, err := d.registry.FindBySymbol(symbol)
	if err != nil {
		return d.lookupFailure(ctx, msg, "send", err)
	}

	// Recipient resolution happens strictly after token validation.
	resolved, ok := d.resolver.Resolve(ctx, cmd.RecipientAddress)
	if !ok {
		metrics.MessagesTotal.WithLabelValues("send", "lookup_failed").Inc()
		return d.reply(ctx, msg, invalidRecipientReply)
	}

	times, repeatMS := d.repetition(cmd)

	d.log.Info("executing send",
		zap.String("sender", msg.Sender),
		zap.String("amount", cmd.Amount),
		zap.String("token", tok.Symbol),
		zap.String("to", resolved),
		zap.Int("times", times),
		zap.Int("repeat_ms", repeatMS),
	)

	taskID, err := d.automation.Send(ctx, tok.Address, resolved, cmd.Amount, times, repeatMS)
	if err != nil {
		metrics.MessagesTotal.WithLabelValues("send", "provider_failed").Inc()
		d.log.Error("send failed", zap.String("sender", msg.Sender), zap.Error(err))
		return d.reply(ctx, msg, sendFailureReply(err))
	}

	metrics.MessagesTotal.WithLabelValues("send", "submitted").Inc()
	return d.reply(ctx, msg, sendSuccessReply(cmd.Amount, tok, resolved, cmd.RecipientAddress, taskID))
}

// DispatchUnknown replies to actions outside the known kinds. The parser's
// schema should prevent these, but the boundary is handled anyway; nothing
// reaches the automation provider.
func (d *Dispatcher) DispatchUnknown(ctx context.Context, msg model.InboundMessage) error {
	metrics.MessagesTotal.WithLabelValues("unknown", "unknown_action").Inc()
	return d.reply(ctx, msg, unknownCommandReply)
}

func (d *Dispatcher) lookupFailure(ctx context.Context, msg model.InboundMessage, action string, err error) error {
	if errors.Is(err, token.ErrUnknownToken) {
		metrics.MessagesTotal.WithLabelValues(action, "lookup_failed").Inc()
		return d.reply(ctx, msg, unsupportedTokenReply(d.registry.Symbols()))
	}
	// ErrNotLoaded: startup is required to load the registry before the
	// gateway accepts traffic, so this is a wiring bug, not a user error.
	return fmt.Errorf("token lookup: %w", err)
}

func (d *Dispatcher) reply(ctx context.Context, msg model.InboundMessage, body string) error {
	if err := d.notifier.Send(ctx, msg.Sender, body); err != nil {
		return fmt.Errorf("send reply to %s: %w", msg.Sender, err)
	}
	return nil
}
