package chainverify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// Etherscan-family token transfer listing (BscScan shares the contract).
// The API key travels as the apikey query parameter. status "0" with
// message "No transactions found" is an empty result, not an error.
type scanTransferResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Result  []struct {
		Hash        string `json:"hash"`
		To          string `json:"to"`
		Value       string `json:"value"`
		TokenSymbol string `json:"tokenSymbol"`
	} `json:"result"`
}

func (v *Verifier) fetchScanTransfers(ctx context.Context, cfg NetworkConfig, address string) ([]transfer, error) {
	u, err := url.Parse(cfg.APIBaseURL + "/api")
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("module", "account")
	q.Set("action", "tokentx")
	q.Set("address", address)
	q.Set("contractaddress", cfg.ContractAddress)
	q.Set("page", "1")
	q.Set("offset", strconv.Itoa(recentTransferLimit))
	q.Set("sort", "desc")
	q.Set("apikey", cfg.APIKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("scan request failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var out scanTransferResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	if out.Status != "1" && out.Message != "No transactions found" {
		return nil, fmt.Errorf("scan API error: %s", out.Message)
	}

	transfers := make([]transfer, 0, len(out.Result))
	for _, row := range out.Result {
		transfers = append(transfers, transfer{
			TxRef:  row.Hash,
			To:     row.To,
			Value:  row.Value,
			Symbol: row.TokenSymbol,
		})
	}
	return transfers, nil
}
