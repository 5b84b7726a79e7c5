package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// IPCountryLookup construye un CountryLookupFunc contra un servicio de
// geolocalización por IP que responda {"country_code": "XX"}. Es best-effort:
// cualquier fallo deja el DefaultCountryCode, no afecta la sesión.
func IPCountryLookup(endpoint string) CountryLookupFunc {
	httpc := &http.Client{Timeout: 5 * time.Second}
	return func(ctx context.Context) (string, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return "", err
		}
		resp, err := httpc.Do(req)
		if err != nil {
			return "", err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("geo: estado %d", resp.StatusCode)
		}
		var body struct {
			CountryCode string `json:"country_code"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return "", err
		}
		return body.CountryCode, nil
	}
}
