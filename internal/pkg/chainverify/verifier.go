// Package chainverify checks that an expected stablecoin payment has arrived
// at the platform wallet by querying public block-explorer APIs. The
// explorers are treated as untrusted, eventually-consistent oracles: every
// call re-queries, nothing is cached, and a missing transfer is a normal
// negative result rather than an error.
package chainverify

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"
)

// recentTransferLimit is how many of the newest inbound transfers each
// explorer query requests.
const recentTransferLimit = 50

var (
	// ErrAPIKeyMissing means the explorer credential is not configured.
	// This is an operator error, not retryable by the paying user.
	ErrAPIKeyMissing = errors.New("explorer API key is not configured")
	// ErrAddressMissing means the caller passed no receiving address
	ErrAddressMissing = errors.New("receiving address is required")
	// ErrUnknownNetwork means the network kind is not one of the two
	// supported chains
	ErrUnknownNetwork = errors.New("unsupported payment network")
)

// Result is the outcome of a verification query. Matched=false with a nil
// error means the explorer answered but no transfer satisfied the match
// rule ("no matching payment yet", a retryable state for the user).
type Result struct {
	Matched bool   `json:"matched"`
	TxRef   string `json:"tx_ref,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// transfer is the normalized view of one inbound token transfer row,
// whichever explorer it came from.
type transfer struct {
	TxRef  string
	To     string
	Value  string
	Symbol string
}

// Verifier queries explorer APIs for the configured networks. It is a pure
// read-through oracle: no caching, no side effects.
type Verifier struct {
	networks   map[NetworkKind]NetworkConfig
	httpClient *http.Client
}

// NewVerifier creates a verifier over the given network configurations
func NewVerifier(configs ...NetworkConfig) *Verifier {
	networks := make(map[NetworkKind]NetworkConfig, len(configs))
	for _, cfg := range configs {
		networks[cfg.Kind] = cfg
	}
	return &Verifier{
		networks: networks,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// NewVerifierFromEnv creates a verifier configured for both supported
// networks from environment variables
func NewVerifierFromEnv() *Verifier {
	return NewVerifier(TronConfigFromEnv(), BSCConfigFromEnv())
}

// Network returns the configuration for a network kind
func (v *Verifier) Network(kind NetworkKind) (NetworkConfig, bool) {
	cfg, ok := v.networks[kind]
	return cfg, ok
}

// Verify checks whether a transfer of exactly amount (human units) to the
// given address exists among the most recent inbound stablecoin transfers
// on the given network. The first match in the explorer's
// reverse-chronological order wins. Transactions matched by earlier
// verifications are not excluded; see the audit trail for replay tracking.
func (v *Verifier) Verify(ctx context.Context, network NetworkKind, address string, amount string) (*Result, error) {
	cfg, ok := v.networks[network]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNetwork, network)
	}
	if strings.TrimSpace(address) == "" {
		return nil, ErrAddressMissing
	}
	if cfg.APIKey == "" {
		return nil, ErrAPIKeyMissing
	}

	expected, err := ToBaseUnits(amount, cfg.Decimals)
	if err != nil {
		return nil, err
	}

	var transfers []transfer
	switch cfg.Kind {
	case NetworkTron:
		transfers, err = v.fetchTronTransfers(ctx, cfg, address)
	case NetworkBSC:
		transfers, err = v.fetchScanTransfers(ctx, cfg, address)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownNetwork, network)
	}
	if err != nil {
		return nil, fmt.Errorf("explorer query failed for %s: %w", network, err)
	}

	for _, t := range transfers {
		if matches(t, address, expected, cfg.TokenSymbol) {
			return &Result{Matched: true, TxRef: t.TxRef}, nil
		}
	}

	return &Result{
		Matched: false,
		Reason:  fmt.Sprintf("no transfer of %s %s to %s among the %d most recent", amount, cfg.TokenSymbol, address, recentTransferLimit),
	}, nil
}

// matches applies the match rule: recipient equal case-insensitively,
// on-chain integer amount exactly equal, token symbol equal.
func matches(t transfer, address string, expected *big.Int, symbol string) bool {
	if !strings.EqualFold(t.To, address) {
		return false
	}
	if t.Symbol != symbol {
		return false
	}
	value, ok := new(big.Int).SetString(strings.TrimSpace(t.Value), 10)
	if !ok {
		return false
	}
	return value.Cmp(expected) == 0
}
