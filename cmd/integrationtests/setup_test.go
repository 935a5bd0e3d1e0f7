package integrationtests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"auction-engine/internal/app"
	"auction-engine/internal/config"
	"auction-engine/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const adminID = "admin"

func testConfig() config.Config {
	return config.Config{
		DatabaseDriver:     "memory",
		LockBackend:        "memory",
		LockWaitTimeout:    2 * time.Second,
		Transport:          "log",
		SweepInterval:      30 * time.Second,
		EndingSoonWindow:   5 * time.Minute,
		NotifyWorkers:      2,
		NotifyMaxAttempts:  1,
		NotifyRetryDelay:   10 * time.Millisecond,
		EnforceCeiling:     true,
		MinAuctionDuration: 10 * time.Minute,
		StartGracePeriod:   5 * time.Minute,
		DefaultRunTime:     time.Hour,
		AdminIDs:           []string{adminID},
	}
}

// SetupTestRouter wires a seeded in-memory engine behind the real router.
// Seeded listings: listing1 and listing2 with one unit, listing3 with three.
// Seeded bidders: user1, user2, user3.
func SetupTestRouter(t *testing.T) (*gin.Engine, *app.App) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	a, err := app.Build(testConfig(), app.Options{Seed: true})
	require.NoError(t, err)
	a.Dispatcher.Start()
	t.Cleanup(func() { _ = a.Close() })

	return server.SetupRouter(a.Service), a
}

// ExecuteRequestAndParse executes an HTTP request on the given router and parses the response
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	var err error

	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		if err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}

	return resp, w
}

// data returns the data object of a successful response
func data(t *testing.T, resp map[string]any) map[string]any {
	t.Helper()
	d, ok := resp["data"].(map[string]any)
	require.True(t, ok, "response has no data object: %v", resp)
	return d
}

// scheduleAuction schedules an auction on listingID starting in a minute and
// running for an hour, and returns its id
func scheduleAuction(t *testing.T, router *gin.Engine, listingID string, pricing map[string]any) string {
	t.Helper()

	now := time.Now().UTC()
	body := map[string]any{
		"listing_id":    listingID,
		"admin_id":      adminID,
		"start":         now.Add(time.Minute).Format(time.RFC3339),
		"end":           now.Add(time.Hour).Format(time.RFC3339),
		"start_price":   "100",
		"min_increment": "5",
	}
	for k, v := range pricing {
		body[k] = v
	}

	resp, w := ExecuteRequestAndParse(t, router, http.MethodPost, "/auctions", body)
	require.Equal(t, http.StatusCreated, w.Code, resp)
	return data(t, resp)["auction_id"].(string)
}

// runningAuction schedules an auction and starts it immediately
func runningAuction(t *testing.T, router *gin.Engine, listingID string, pricing map[string]any) string {
	t.Helper()

	id := scheduleAuction(t, router, listingID, pricing)
	resp, w := ExecuteRequestAndParse(t, router, http.MethodPost, "/auctions/"+id+"/start", map[string]any{"admin_id": adminID})
	require.Equal(t, http.StatusOK, w.Code, resp)
	return id
}

func placeBid(t *testing.T, router *gin.Engine, auctionID, bidderID, amount string) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()
	return ExecuteRequestAndParse(t, router, http.MethodPost, "/auctions/"+auctionID+"/bids",
		map[string]any{"bidder_id": bidderID, "amount": amount})
}
