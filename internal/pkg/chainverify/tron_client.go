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

// TronGrid TRC20 transfer listing. The API key travels in the
// TRON-PRO-API-KEY header; rows arrive newest first.
type tronTransferResponse struct {
	Data []struct {
		TransactionID string `json:"transaction_id"`
		To            string `json:"to"`
		Value         string `json:"value"`
		TokenInfo     struct {
			Symbol string `json:"symbol"`
		} `json:"token_info"`
	} `json:"data"`
}

func (v *Verifier) fetchTronTransfers(ctx context.Context, cfg NetworkConfig, address string) ([]transfer, error) {
	u, err := url.Parse(fmt.Sprintf("%s/v1/accounts/%s/transactions/trc20", cfg.APIBaseURL, url.PathEscape(address)))
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("only_to", "true")
	q.Set("limit", strconv.Itoa(recentTransferLimit))
	q.Set("contract_address", cfg.ContractAddress)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("TRON-PRO-API-KEY", cfg.APIKey)

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("trongrid request failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var out tronTransferResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}

	transfers := make([]transfer, 0, len(out.Data))
	for _, row := range out.Data {
		transfers = append(transfers, transfer{
			TxRef:  row.TransactionID,
			To:     row.To,
			Value:  row.Value,
			Symbol: row.TokenInfo.Symbol,
		})
	}
	return transfers, nil
}
