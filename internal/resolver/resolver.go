// Package resolver normalizes user-supplied recipient identifiers (hex
// addresses or ENS-style names) into canonical on-chain addresses.
package resolver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// IsName reports whether the identifier is an ENS-style name.
func IsName(identifier string) bool {
	return len(identifier) > 4 && strings.HasSuffix(strings.ToLower(identifier), ".eth")
}

type Resolver struct {
	endpoint string
	client   *http.Client
}

func New(endpoint string, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Resolver{
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   &http.Client{Timeout: timeout},
	}
}

// Resolve turns an identifier into an EIP-55 checksummed address.
//
// Literal 0x + 40 hex addresses are normalized locally with no network call.
// ENS-style names go to the external resolution service, one attempt, no
// retry. Malformed input, lookup misses, and transport errors all come back
// as (_, false): an unresolvable recipient is a normal outcome, not a fault.
func (r *Resolver) Resolve(ctx context.Context, identifier string) (string, bool) {
	identifier = strings.TrimSpace(identifier)

	if strings.HasPrefix(identifier, "0x") && len(identifier) == 42 && common.IsHexAddress(identifier) {
		return common.HexToAddress(identifier).Hex(), true
	}

	if !IsName(identifier) {
		return "", false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint+"/"+url.PathEscape(identifier), nil)
	if err != nil {
		return "", false
	}

	res, err := r.client.Do(req)
	if err != nil {
		return "", false
	}
	defer res.Body.Close()

	if res.StatusCode/100 != 2 {
		return "", false
	}

	var out struct {
		Address string `json:"address"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", false
	}
	if out.Address == "" || !common.IsHexAddress(out.Address) {
		return "", false
	}

	return common.HexToAddress(out.Address).Hex(), true
}
