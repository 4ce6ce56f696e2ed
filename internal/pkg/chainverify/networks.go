package chainverify

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/lumeboard/lumeboard/internal/pkg/env"
)

// NetworkKind identifies one of the two supported payment networks
type NetworkKind string

const (
	// NetworkTron is USDT as a TRC20 token on Tron (6 decimals)
	NetworkTron NetworkKind = "tron"
	// NetworkBSC is USDT as a BEP20 token on BSC (18 decimals)
	NetworkBSC NetworkKind = "bsc"
)

const (
	tronDecimals = 6
	bscDecimals  = 18

	defaultTronAPIBaseURL = "https://api.trongrid.io"
	defaultBSCAPIBaseURL  = "https://api.bscscan.com"

	// Mainnet USDT contracts
	defaultTronUSDTContract = "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t"
	defaultBSCUSDTContract  = "0x55d398326f99059fF775485246999027B3197955"

	defaultTokenSymbol = "USDT"
)

// NetworkConfig carries everything needed to query one network's explorer
// API for inbound stablecoin transfers to the platform wallet.
type NetworkConfig struct {
	Kind            NetworkKind
	APIBaseURL      string
	APIKey          string
	WalletAddress   string
	ContractAddress string
	TokenSymbol     string
	Decimals        int
}

// TronConfigFromEnv builds the Tron network configuration from environment
func TronConfigFromEnv() NetworkConfig {
	return NetworkConfig{
		Kind:            NetworkTron,
		APIBaseURL:      strings.TrimRight(env.GetEnv("TRON_API_BASE_URL", defaultTronAPIBaseURL), "/"),
		APIKey:          strings.TrimSpace(env.GetEnv("TRON_API_KEY", "")),
		WalletAddress:   strings.TrimSpace(env.GetEnv("TRON_WALLET_ADDRESS", "")),
		ContractAddress: strings.TrimSpace(env.GetEnv("TRON_USDT_CONTRACT", defaultTronUSDTContract)),
		TokenSymbol:     env.GetEnv("TRON_TOKEN_SYMBOL", defaultTokenSymbol),
		Decimals:        tronDecimals,
	}
}

// BSCConfigFromEnv builds the BSC network configuration from environment
func BSCConfigFromEnv() NetworkConfig {
	return NetworkConfig{
		Kind:            NetworkBSC,
		APIBaseURL:      strings.TrimRight(env.GetEnv("BSC_API_BASE_URL", defaultBSCAPIBaseURL), "/"),
		APIKey:          strings.TrimSpace(env.GetEnv("BSC_API_KEY", "")),
		WalletAddress:   strings.TrimSpace(env.GetEnv("BSC_WALLET_ADDRESS", "")),
		ContractAddress: strings.TrimSpace(env.GetEnv("BSC_USDT_CONTRACT", defaultBSCUSDTContract)),
		TokenSymbol:     env.GetEnv("BSC_TOKEN_SYMBOL", defaultTokenSymbol),
		Decimals:        bscDecimals,
	}
}

// ToBaseUnits converts a human-unit decimal amount ("50", "19.99") into the
// token's integer base-unit representation. Excess fractional digits are
// dropped by floor truncation, never rounded: "0.0000019" at 6 decimals is
// 1, not 2.
func ToBaseUnits(amount string, decimals int) (*big.Int, error) {
	s := strings.TrimSpace(amount)
	if s == "" {
		return nil, fmt.Errorf("amount is empty")
	}
	if strings.HasPrefix(s, "-") {
		return nil, fmt.Errorf("amount must not be negative: %s", amount)
	}

	intPart := s
	fracPart := ""
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		intPart = s[:idx]
		fracPart = s[idx+1:]
	}
	if intPart == "" {
		intPart = "0"
	}
	if !isDigits(intPart) || (fracPart != "" && !isDigits(fracPart)) {
		return nil, fmt.Errorf("invalid amount: %s", amount)
	}

	// Truncate the fraction at the network's exponent, then pad
	if len(fracPart) > decimals {
		fracPart = fracPart[:decimals]
	}
	fracPart += strings.Repeat("0", decimals-len(fracPart))

	value, ok := new(big.Int).SetString(intPart+fracPart, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount: %s", amount)
	}
	return value, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
