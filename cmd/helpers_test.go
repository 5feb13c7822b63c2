package cmd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jonandersen/backspread/internal/config"
	"github.com/jonandersen/backspread/pkg/tdapi"
)

// testNow is the clock used by command tests.
var testNow = time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)

const testQuotes = `{
  "SPY": {"symbol": "SPY", "description": "SPDR S&P 500", "bidPrice": 99.9, "askPrice": 100.1, "lastPrice": 100, "totalVolume": 51234567},
  "QQQ": {"symbol": "QQQ", "bidPrice": 399.5, "askPrice": 400.5, "lastPrice": 400, "totalVolume": 999}
}`

// testChain has a 25 and a 32 DTE expiration; a 30 DTE target picks 32.
const testChain = `{
  "symbol": "SPY",
  "status": "SUCCESS",
  "underlyingPrice": 100,
  "putExpDateMap": {
    "2024-01-26:25": {
      "90.0": [{"putCall": "PUT", "symbol": "SPY_012624P90", "description": "SPY Jan 26 2024 90 Put", "bid": 0.5, "ask": 0.7, "strikePrice": 90, "daysToExpiration": 25}]
    },
    "2024-02-02:32": {
      "85.0": [{"putCall": "PUT", "symbol": "SPY_020224P85", "description": "SPY Feb 2 2024 85 Put", "bid": 0.9, "ask": 1.1, "strikePrice": 85, "daysToExpiration": 32}],
      "90.0": [{"putCall": "PUT", "symbol": "SPY_020224P90", "description": "SPY Feb 2 2024 90 Put", "bid": 1.4, "ask": 1.6, "strikePrice": 90, "daysToExpiration": 32}],
      "95.0": [{"putCall": "PUT", "symbol": "SPY_020224P95", "description": "SPY Feb 2 2024 95 Put", "bid": 2.0, "ask": 2.2, "strikePrice": 95, "daysToExpiration": 32}]
    }
  },
  "callExpDateMap": {
    "2024-02-02:32": {
      "105.0": [{"putCall": "CALL", "symbol": "SPY_020224C105", "description": "SPY Feb 2 2024 105 Call", "bid": 1.1, "ask": 1.3, "strikePrice": 105, "daysToExpiration": 32}],
      "115.0": [{"putCall": "CALL", "symbol": "SPY_020224C115", "description": "SPY Feb 2 2024 115 Call", "bid": 0.7, "ask": 0.9, "strikePrice": 115, "daysToExpiration": 32}]
    }
  }
}`

// fakeAPI serves quotes and chains and records the requests it saw.
type fakeAPI struct {
	*httptest.Server
	chainQuery map[string]string
	calls      int
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	api := &fakeAPI{}
	api.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		api.calls++
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.URL.Path == "/v1/marketdata/chains":
			api.chainQuery = map[string]string{}
			for k := range r.URL.Query() {
				api.chainQuery[k] = r.URL.Query().Get(k)
			}
			_, _ = w.Write([]byte(testChain))
		case strings.HasSuffix(r.URL.Path, "/quotes"):
			symbol := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/v1/marketdata/"), "/quotes")
			if symbol != "SPY" && symbol != "QQQ" {
				_, _ = w.Write([]byte(`{}`))
				return
			}
			_, _ = w.Write([]byte(testQuotes))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(api.Close)
	return api
}

// testToken is a tdapi.TokenProvider with a fixed access token.
type testToken string

func (t testToken) Token() (string, error) {
	return string(t), nil
}

// clientsFor returns a clientFactory pointing at url.
func clientsFor(url string) clientFactory {
	return func(ctx context.Context) (*tdapi.Client, error) {
		return tdapi.NewClient(url, testToken("test-token")), nil
	}
}

// envLookup is a config.LookupFunc over a map.
func envLookup(env map[string]string) config.LookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}
