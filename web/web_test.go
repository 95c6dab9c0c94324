package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
)

const testTable = `- id: 1
  valid_from: 2008-01-01
  valid_until: 2009-01-01
  replaced_by_id: 2
  value: "0.175"
  is_default: true
- id: 2
  valid_from: 2009-01-01
  value: "0.15"
  is_default: true
- id: 3
  valid_from: 2008-01-01
  value: "0.05"
`

func testServer(t *testing.T) (*Server, *http.ServeMux) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "rates.yaml")
	err := os.WriteFile(path, []byte(testTable), 0o644)
	assert.NoError(t, err)

	server := New(8179, path)
	err = server.load(context.Background())
	assert.NoError(t, err)

	return server, server.router()
}

func get(t *testing.T, mux *http.ServeMux, url string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestAPIListRates(t *testing.T) {
	_, mux := testServer(t)

	rec := get(t, mux, "/api/rates")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var response RatesResponse
	err := json.NewDecoder(rec.Body).Decode(&response)
	assert.NoError(t, err)
	assert.Equal(t, 3, len(response.Rates))
}

func TestAPIRatesAt(t *testing.T) {
	_, mux := testServer(t)

	t.Run("ReplacedRateExcluded", func(t *testing.T) {
		rec := get(t, mux, "/api/rates/at?time=2009-07-01")

		assert.Equal(t, http.StatusOK, rec.Code)

		var response RatesResponse
		err := json.NewDecoder(rec.Body).Decode(&response)
		assert.NoError(t, err)

		ids := make([]int64, len(response.Rates))
		for i, r := range response.Rates {
			ids[i] = r.ID
		}
		assert.Equal(t, []int64{2, 3}, ids)
	})

	t.Run("InvalidTime", func(t *testing.T) {
		rec := get(t, mux, "/api/rates/at?time=yesterday")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAPIRatesDuring(t *testing.T) {
	_, mux := testServer(t)

	t.Run("SpansReplacement", func(t *testing.T) {
		rec := get(t, mux, "/api/rates/during?from=2008-06-01&to=2009-06-01")

		assert.Equal(t, http.StatusOK, rec.Code)

		var response RatesResponse
		err := json.NewDecoder(rec.Body).Decode(&response)
		assert.NoError(t, err)

		ids := make([]int64, len(response.Rates))
		for i, r := range response.Rates {
			ids[i] = r.ID
		}
		assert.Equal(t, []int64{1, 3}, ids)
	})

	t.Run("MissingBound", func(t *testing.T) {
		rec := get(t, mux, "/api/rates/during?from=2008-06-01")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("InvertedRange", func(t *testing.T) {
		rec := get(t, mux, "/api/rates/during?from=2009-06-01&to=2008-06-01")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAPIDefaultRate(t *testing.T) {
	_, mux := testServer(t)

	rec := get(t, mux, "/api/rates/default?time=2009-07-01")

	assert.Equal(t, http.StatusOK, rec.Code)

	var response RateResponse
	err := json.NewDecoder(rec.Body).Decode(&response)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), response.ID)
	assert.Equal(t, "0.15", response.Value)
}

func TestAPIGetRate(t *testing.T) {
	_, mux := testServer(t)

	t.Run("Found", func(t *testing.T) {
		rec := get(t, mux, "/api/rates/1")

		assert.Equal(t, http.StatusOK, rec.Code)

		var response RateResponse
		err := json.NewDecoder(rec.Body).Decode(&response)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), response.ID)
		assert.Equal(t, "0.175", response.Value)
		assert.NotZero(t, response.ReplacedBy)
		assert.Equal(t, int64(2), *response.ReplacedBy)
	})

	t.Run("NotFound", func(t *testing.T) {
		rec := get(t, mux, "/api/rates/99")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("BadID", func(t *testing.T) {
		rec := get(t, mux, "/api/rates/abc")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAPIResolveRate(t *testing.T) {
	_, mux := testServer(t)

	t.Run("FollowsChainForward", func(t *testing.T) {
		rec := get(t, mux, "/api/rates/1/at?time=2009-07-01")

		assert.Equal(t, http.StatusOK, rec.Code)

		var response RateResponse
		err := json.NewDecoder(rec.Body).Decode(&response)
		assert.NoError(t, err)
		assert.Equal(t, int64(2), response.ID)
	})

	t.Run("FollowsChainBackward", func(t *testing.T) {
		rec := get(t, mux, "/api/rates/2/at?time=2008-07-01")

		assert.Equal(t, http.StatusOK, rec.Code)

		var response RateResponse
		err := json.NewDecoder(rec.Body).Decode(&response)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), response.ID)
	})

	t.Run("BeforeChainStart", func(t *testing.T) {
		rec := get(t, mux, "/api/rates/1/at?time=2005-01-01")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestAPIRateChanges(t *testing.T) {
	_, mux := testServer(t)

	rec := get(t, mux, "/api/rates/1/changes?until=2030-01-01")

	assert.Equal(t, http.StatusOK, rec.Code)

	var response map[string][]ChangeResponse
	err := json.NewDecoder(rec.Body).Decode(&response)
	assert.NoError(t, err)

	changes := response["changes"]
	assert.Equal(t, 1, len(changes))
	assert.NotZero(t, changes[0].Rate)
	assert.Equal(t, int64(2), changes[0].Rate.ID)
}

func TestAPIReload(t *testing.T) {
	server, mux := testServer(t)

	// Replace the table on disk; the reload endpoint should pick it up.
	updated := strings.Replace(testTable, `value: "0.05"`, `value: "0.09"`, 1)
	err := os.WriteFile(server.sourceFile, []byte(updated), 0o644)
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/reload", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	rec = get(t, mux, "/api/rates/3")
	var response RateResponse
	err = json.NewDecoder(rec.Body).Decode(&response)
	assert.NoError(t, err)
	assert.Equal(t, "0.09", response.Value)
}

func TestAPIReloadKeepsSnapshotOnFailure(t *testing.T) {
	server, mux := testServer(t)

	// A chain pointing at a missing record must be rejected as a whole.
	broken := strings.Replace(testTable, "replaced_by_id: 2", "replaced_by_id: 99", 1)
	err := os.WriteFile(server.sourceFile, []byte(broken), 0o644)
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/reload", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// Old data still served.
	rec = get(t, mux, "/api/rates/1")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIHealthz(t *testing.T) {
	_, mux := testServer(t)

	rec := get(t, mux, "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var response map[string]any
	err := json.NewDecoder(rec.Body).Decode(&response)
	assert.NoError(t, err)
	assert.Equal(t, "ok", response["status"].(string))
	assert.Equal(t, float64(3), response["records"].(float64))
}
