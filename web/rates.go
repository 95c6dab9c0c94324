package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/robinvdvleuten/ratebook/cache"
	"github.com/robinvdvleuten/ratebook/chain"
	"github.com/robinvdvleuten/ratebook/record"
)

// RateResponse is the JSON shape of a single record.
type RateResponse struct {
	ID         int64   `json:"id"`
	ValidFrom  string  `json:"validFrom"`
	ValidUntil *string `json:"validUntil,omitempty"`
	ReplacedBy *int64  `json:"replacedBy,omitempty"`
	Value      string  `json:"value"`
	Default    bool    `json:"default"`
}

// RatesResponse wraps a list of records.
type RatesResponse struct {
	Rates []RateResponse `json:"rates"`
}

// ChangeResponse is one entry of a changes listing. Rate is null when
// the record expires without a replacement.
type ChangeResponse struct {
	Rate *RateResponse `json:"rate"`
}

// writeJSONResponse writes a JSON response to the http.ResponseWriter.
func writeJSONResponse(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func convertRecord(r record.Record) RateResponse {
	resp := RateResponse{
		ID:        r.ID,
		ValidFrom: r.ValidFrom.Format(time.RFC3339),
		Value:     r.Value,
		Default:   r.IsDefault,
	}
	if r.ValidUntil != nil {
		until := r.ValidUntil.Format(time.RFC3339)
		resp.ValidUntil = &until
	}
	if r.ReplacedBy != nil {
		succ := *r.ReplacedBy
		resp.ReplacedBy = &succ
	}
	return resp
}

func convertRecords(records []record.Record) *RatesResponse {
	rates := make([]RateResponse, len(records))
	for i, r := range records {
		rates[i] = convertRecord(r)
	}
	return &RatesResponse{Rates: rates}
}

// queryTime reads a time query parameter; a missing parameter means the
// current instant. The bool result reports whether parsing succeeded.
func queryTime(w http.ResponseWriter, r *http.Request, name string) (time.Time, bool) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return time.Now(), true
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	http.Error(w, "invalid "+name+" (expected YYYY-MM-DD or RFC 3339): "+value, http.StatusBadRequest)
	return time.Time{}, false
}

// pathID reads the {id} path segment.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		http.Error(w, "invalid record id: "+raw, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// handleListRates handles GET /api/rates.
func (s *Server) handleListRates(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, convertRecords(s.book.All()))
}

// handleRatesAt handles GET /api/rates/at?time=2024-01-01.
func (s *Server) handleRatesAt(w http.ResponseWriter, r *http.Request) {
	at, ok := queryTime(w, r, "time")
	if !ok {
		return
	}
	writeJSONResponse(w, convertRecords(s.book.ValidAt(at)))
}

// handleRatesDuring handles GET /api/rates/during?from=...&to=...
func (s *Server) handleRatesDuring(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("from") == "" || r.URL.Query().Get("to") == "" {
		http.Error(w, "both from and to must be provided", http.StatusBadRequest)
		return
	}
	from, ok := queryTime(w, r, "from")
	if !ok {
		return
	}
	to, ok := queryTime(w, r, "to")
	if !ok {
		return
	}

	records, err := s.book.ValidDuring(from, to)
	if err != nil {
		var rangeErr *chain.InvalidRangeError
		if errors.As(err, &rangeErr) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSONResponse(w, convertRecords(records))
}

// handleDefaultRate handles GET /api/rates/default?time=2024-01-01.
func (s *Server) handleDefaultRate(w http.ResponseWriter, r *http.Request) {
	at, ok := queryTime(w, r, "time")
	if !ok {
		return
	}

	rec, found := s.book.DefaultAt(at)
	if !found {
		http.Error(w, "no default record at "+at.Format(time.RFC3339), http.StatusNotFound)
		return
	}
	resp := convertRecord(rec)
	writeJSONResponse(w, &resp)
}

// handleGetRate handles GET /api/rates/{id}.
func (s *Server) handleGetRate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	rec, err := s.book.FindOne(id)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	resp := convertRecord(rec)
	writeJSONResponse(w, &resp)
}

// handleResolveRate handles GET /api/rates/{id}/at?time=2024-01-01,
// following the record's replacement chain.
func (s *Server) handleResolveRate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	at, ok := queryTime(w, r, "time")
	if !ok {
		return
	}

	rec, found, err := s.book.At(id, at)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	if !found {
		http.Error(w, "record does not resolve at "+at.Format(time.RFC3339), http.StatusNotFound)
		return
	}
	resp := convertRecord(rec)
	writeJSONResponse(w, &resp)
}

// handleRateChanges handles GET /api/rates/{id}/changes?until=2030-01-01.
func (s *Server) handleRateChanges(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	until, ok := queryTime(w, r, "until")
	if !ok {
		return
	}

	changes, err := s.book.ChangesUntil(id, until)
	if err != nil {
		writeLookupError(w, err)
		return
	}

	out := make([]ChangeResponse, len(changes))
	for i, change := range changes {
		if change != nil {
			resp := convertRecord(*change)
			out[i] = ChangeResponse{Rate: &resp}
		}
	}
	writeJSONResponse(w, map[string][]ChangeResponse{"changes": out})
}

// handleReload handles POST /api/reload.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.book.Reload(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	s.broadcast("reload")
	writeJSONResponse(w, map[string]string{"status": "reloaded"})
}

// handleHealthz handles GET /healthz.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, map[string]any{
		"status":  "ok",
		"version": s.Version,
		"records": len(s.book.All()),
	})
}

func writeLookupError(w http.ResponseWriter, err error) {
	var notFound *cache.NotFoundError
	if errors.As(err, &notFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
