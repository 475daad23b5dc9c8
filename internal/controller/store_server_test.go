package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/verticalview/client-portal/internal/core/domain"
)

type storeRequest struct {
	method string
	table  string
	id     string
	filter string
	fields domain.Fields
}

// storeServer answers the record API for one base from in-memory tables.
type storeServer struct {
	*httptest.Server

	mu       sync.Mutex
	tables   map[string][]domain.Record
	requests []storeRequest
	nextID   int
}

func newStoreServer(t *testing.T, baseID string) *storeServer {
	t.Helper()
	s := &storeServer{tables: map[string][]domain.Record{}}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/"), "/")
		if len(parts) < 2 || parts[0] != baseID {
			http.NotFound(w, r)
			return
		}
		table := parts[1]
		id := ""
		if len(parts) > 2 {
			id = parts[2]
		}
		s.handle(w, r, table, id)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *storeServer) handle(w http.ResponseWriter, r *http.Request, table, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req := storeRequest{method: r.Method, table: table, id: id, filter: r.URL.Query().Get("filterByFormula")}
	if r.Body != nil && (r.Method == http.MethodPost || r.Method == http.MethodPatch) {
		var body struct {
			Fields domain.Fields `json:"fields"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		req.fields = body.Fields
	}
	s.requests = append(s.requests, req)

	switch {
	case r.Method == http.MethodGet && id == "":
		records := s.tables[table]
		if strings.HasPrefix(req.filter, "RECORD_ID()=") {
			records = nil
			for _, rec := range s.tables[table] {
				if req.filter == fmt.Sprintf("RECORD_ID()='%s'", rec.ID) {
					records = append(records, rec)
				}
			}
		}
		if records == nil {
			records = []domain.Record{}
		}
		writeStoreJSON(w, http.StatusOK, map[string]any{"records": records})
	case r.Method == http.MethodGet:
		rec, ok := s.find(table, id)
		if !ok {
			writeStoreJSON(w, http.StatusNotFound, map[string]any{"error": "NOT_FOUND"})
			return
		}
		writeStoreJSON(w, http.StatusOK, rec)
	case r.Method == http.MethodPost:
		s.nextID++
		rec := domain.Record{ID: fmt.Sprintf("recNew%d", s.nextID), Fields: req.fields}
		s.tables[table] = append(s.tables[table], rec)
		writeStoreJSON(w, http.StatusOK, rec)
	case r.Method == http.MethodPatch:
		for i, rec := range s.tables[table] {
			if rec.ID != id {
				continue
			}
			merged := domain.Fields{}
			for k, v := range rec.Fields {
				merged[k] = v
			}
			for k, v := range req.fields {
				merged[k] = v
			}
			s.tables[table][i].Fields = merged
			writeStoreJSON(w, http.StatusOK, s.tables[table][i])
			return
		}
		writeStoreJSON(w, http.StatusNotFound, map[string]any{"error": "NOT_FOUND"})
	default:
		writeStoreJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": map[string]string{"type": "METHOD_NOT_ALLOWED", "message": r.Method}})
	}
}

func (s *storeServer) find(table, id string) (domain.Record, bool) {
	for _, rec := range s.tables[table] {
		if rec.ID == id {
			return rec, true
		}
	}
	return domain.Record{}, false
}

func (s *storeServer) seed(table string, records ...domain.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[table] = append(s.tables[table], records...)
}

func (s *storeServer) requestsSince(n int) []storeRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]storeRequest(nil), s.requests[n:]...)
}

func (s *storeServer) requestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func writeStoreJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
