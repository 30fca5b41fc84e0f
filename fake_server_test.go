package iiasa_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"sync/atomic"
	"testing"

	iiasa "github.com/Renato-Rodrigues/ecemf-mc"
)

const (
	testUsername = "alice"
	testPassword = "secret"
	userToken    = "alice-token"
	anonToken    = "anonymous-token"
)

type fakeObservation struct {
	RunID    int64   `json:"runId"`
	Variable string  `json:"variable"`
	Region   string  `json:"region"`
	Unit     string  `json:"unit"`
	Year     int64   `json:"year"`
	Value    float64 `json:"value"`
}

// fakeServer mimics the IIASA authentication service and one scenario database
// served under /ecemf/.
type fakeServer struct {
	*httptest.Server

	runs      []iiasa.Run
	variables []string
	regions   []string
	data      []fakeObservation

	// failBulk makes the time-series endpoint answer 500.
	failBulk atomic.Bool

	bulkCalls atomic.Int32

	mu          sync.Mutex
	lastFilters map[string]json.RawMessage
}

func newFakeServer(t testing.TB) *fakeServer {
	s := &fakeServer{
		runs: []iiasa.Run{
			{ID: 1, Model: "REMIND 2.1", Scenario: "DIAG-Base", Version: 1, IsDefault: false, CreateUser: "bob", CreateDate: "2022-01-01"},
			{ID: 2, Model: "REMIND 2.1", Scenario: "DIAG-Base", Version: 2, IsDefault: true, CreateUser: "bob", CreateDate: "2022-02-01",
				Metadata: map[string]json.RawMessage{"category": json.RawMessage(`{"value":"C1"}`), "warming": json.RawMessage(`1.5`)}},
			{ID: 3, Model: "MESSAGEix", Scenario: "DIAG-C400", Version: 1, IsDefault: true, CreateUser: "carol", CreateDate: "2022-03-01",
				Metadata: map[string]json.RawMessage{"category": json.RawMessage(`"C2"`), "source": json.RawMessage(`{"doi":"10.5281/zenodo.1"}`)}},
		},
		variables: []string{"Emissions|CO2", "Emissions|CH4", "Primary Energy"},
		regions:   []string{"World", "EU27"},
		data: []fakeObservation{
			{RunID: 2, Variable: "Primary Energy", Region: "EU27", Unit: "EJ/yr", Year: 2030, Value: 50.5},
			{RunID: 2, Variable: "Emissions|CO2", Region: "EU27", Unit: "Mt CO2/yr", Year: 2030, Value: 2000},
			{RunID: 2, Variable: "Emissions|CO2", Region: "EU27", Unit: "Mt CO2/yr", Year: 2020, Value: 2500},
			{RunID: 2, Variable: "Emissions|CH4", Region: "World", Unit: "Mt CH4/yr", Year: 2020, Value: 300},
			{RunID: 1, Variable: "Primary Energy", Region: "EU27", Unit: "EJ/yr", Year: 2030, Value: 40},
			{RunID: 3, Variable: "Primary Energy", Region: "EU27", Unit: "EJ/yr", Year: 2030, Value: 60},
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /legacy/login/", s.handleLogin)
	mux.HandleFunc("GET /legacy/anonym/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, anonToken)
	})
	mux.HandleFunc("GET /legacy/applications", s.authorized(s.handleApplications))
	mux.HandleFunc("GET /ecemf/runs", s.authorized(s.handleRuns))
	mux.HandleFunc("GET /ecemf/ts", s.authorized(s.handleVariables))
	mux.HandleFunc("GET /ecemf/nodes", s.authorized(s.handleRegions))
	mux.HandleFunc("POST /ecemf/runs/bulk/ts", s.authorized(s.handleBulk))

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func (s *fakeServer) config(creds *iiasa.Credentials) *iiasa.Config {
	return &iiasa.Config{AuthURL: s.URL, Credentials: creds}
}

// lastFilter decodes the named filter of the last time-series request.
func (s *fakeServer) lastFilter(t testing.TB, name string, out any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.lastFilters[name]
	if !ok {
		t.Fatalf("filter %q was not sent", name)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("decode filter %q: %v", name, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *fakeServer) authorized(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("Authorization") {
		case "Bearer " + userToken, "Bearer " + anonToken:
			h(w, r)
		default:
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "missing or invalid token"})
		}
	}
}

func (s *fakeServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	if req.Username != testUsername || req.Password != testPassword {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid credentials"})
		return
	}
	writeJSON(w, http.StatusOK, userToken)
}

func (s *fakeServer) handleApplications(w http.ResponseWriter, r *http.Request) {
	apps := []map[string]any{
		{"name": "IXSE_PUBLIC", "config": []map[string]string{{"path": "baseUrl", "value": s.URL + "/public/"}}},
		{"name": "IXSE_BROKEN", "config": []map[string]string{{"path": "uiUrl", "value": s.URL}}},
	}
	if r.Header.Get("Authorization") == "Bearer "+userToken {
		apps = append(apps, map[string]any{
			"name": "IXSE_ECEMF", "config": []map[string]string{{"path": "baseUrl", "value": s.URL + "/ecemf/"}},
		})
	}
	writeJSON(w, http.StatusOK, apps)
}

func (s *fakeServer) handleRuns(w http.ResponseWriter, r *http.Request) {
	defaultOnly := r.URL.Query().Get("getOnlyDefaultRuns") == "true"
	withMeta := r.URL.Query().Get("includeMetadata") == "true"

	runs := make([]iiasa.Run, 0)
	for _, run := range s.runs {
		if defaultOnly && !run.IsDefault {
			continue
		}
		if !withMeta {
			run.Metadata = nil
		}
		runs = append(runs, run)
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *fakeServer) handleVariables(w http.ResponseWriter, _ *http.Request) {
	vars := make([]map[string]string, 0)
	for _, v := range s.variables {
		vars = append(vars, map[string]string{"variable": v, "unit": ""})
	}
	writeJSON(w, http.StatusOK, vars)
}

func (s *fakeServer) handleRegions(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("hierarchy") != "*" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "hierarchy is required"})
		return
	}
	regions := make([]map[string]string, 0)
	for _, n := range s.regions {
		regions = append(regions, map[string]string{"name": n, "hierarchy": "common"})
	}
	writeJSON(w, http.StatusOK, regions)
}

func (s *fakeServer) handleBulk(w http.ResponseWriter, r *http.Request) {
	s.bulkCalls.Add(1)
	if s.failBulk.Load() {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "database is on fire"})
		return
	}

	var req struct {
		Filters map[string]json.RawMessage `json:"filters"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	s.mu.Lock()
	s.lastFilters = req.Filters
	s.mu.Unlock()

	var runs []int64
	var variables, regions []string
	_ = json.Unmarshal(req.Filters["runs"], &runs)
	_ = json.Unmarshal(req.Filters["variables"], &variables)
	_ = json.Unmarshal(req.Filters["regions"], &regions)

	out := make([]fakeObservation, 0)
	for _, d := range s.data {
		if !slices.Contains(runs, d.RunID) {
			continue
		}
		if len(variables) > 0 && !slices.Contains(variables, d.Variable) {
			continue
		}
		if len(regions) > 0 && !slices.Contains(regions, d.Region) {
			continue
		}
		out = append(out, d)
	}
	writeJSON(w, http.StatusOK, out)
}
