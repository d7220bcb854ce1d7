package token

import (
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/monosms/sms-agent/internal/config"
	"github.com/monosms/sms-agent/internal/model"
)

var (
	// ErrNotLoaded is returned by lookups before Load has completed.
	ErrNotLoaded = errors.New("token registry not initialized")
	// ErrUnknownToken is returned when no token matches the lookup key.
	ErrUnknownToken = errors.New("unknown token")
	// ErrNoValidTokens is returned by Load when filtering leaves nothing.
	ErrNoValidTokens = errors.New("no valid tokens configured")
)

// Registry is the load-once catalog of supported assets. Load must complete
// during startup, before the gateway accepts traffic; afterwards the cached
// set is read-only and safe for concurrent lookups.
type Registry struct {
	loaded    bool
	ordered   []model.Token
	bySymbol  map[string]model.Token
	byAddress map[string]model.Token
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Load validates and caches the configured token list. Entries failing
// validation are discarded; zero valid entries is fatal. Calling Load again
// after a successful load is a no-op.
func (r *Registry) Load(entries []config.TokenConfig) error {
	if r.loaded {
		return nil
	}

	ordered := make([]model.Token, 0, len(entries))
	bySymbol := make(map[string]model.Token, len(entries))
	byAddress := make(map[string]model.Token, len(entries))

	for _, e := range entries {
		if !validEntry(e) {
			continue
		}
		t := model.Token{
			Symbol:   e.Symbol,
			Name:     e.Name,
			Address:  e.Address,
			Decimals: e.Decimals,
			Logo:     e.Logo,
		}
		key := strings.ToLower(t.Symbol)
		if _, dup := bySymbol[key]; dup {
			continue
		}
		ordered = append(ordered, t)
		bySymbol[key] = t
		byAddress[strings.ToLower(t.Address)] = t
	}

	if len(ordered) == 0 {
		return ErrNoValidTokens
	}

	r.ordered = ordered
	r.bySymbol = bySymbol
	r.byAddress = byAddress
	r.loaded = true

	return nil
}

func validEntry(e config.TokenConfig) bool {
	if e.Symbol == "" || e.Name == "" || e.Logo == "" || e.Decimals < 0 {
		return false
	}
	return len(e.Address) == 42 && strings.HasPrefix(e.Address, "0x") && common.IsHexAddress(e.Address)
}

// FindBySymbol looks a token up by its case-insensitive symbol.
func (r *Registry) FindBySymbol(symbol string) (model.Token, error) {
	if !r.loaded {
		return model.Token{}, ErrNotLoaded
	}
	t, ok := r.bySymbol[strings.ToLower(strings.TrimSpace(symbol))]
	if !ok {
		return model.Token{}, ErrUnknownToken
	}
	return t, nil
}

// FindByAddress looks a token up by its case-insensitive address string.
func (r *Registry) FindByAddress(address string) (model.Token, error) {
	if !r.loaded {
		return model.Token{}, ErrNotLoaded
	}
	t, ok := r.byAddress[strings.ToLower(strings.TrimSpace(address))]
	if !ok {
		return model.Token{}, ErrUnknownToken
	}
	return t, nil
}

// Symbols returns the supported symbols in configuration order.
func (r *Registry) Symbols() []string {
	out := make([]string, len(r.ordered))
	for i, t := range r.ordered {
		out[i] = t.Symbol
	}
	return out
}
