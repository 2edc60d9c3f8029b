package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"marketterm/internal/launchpad"
)

func TestSearchInstrumentsNormalizes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/instruments/search" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "ap l" {
			t.Errorf("q = %q, want %q", got, "ap l")
		}
		json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{
				{"symbol": " aapl ", "name": " Apple Inc. ", "exchange": "nasdaq", "price": 231.5},
				{"symbol": "", "name": "No symbol"},
				{"symbol": "MSFT", "name": "Microsoft", "exchange": "NASDAQ"},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	got, err := c.SearchInstruments(context.Background(), "ap l")
	if err != nil {
		t.Fatalf("SearchInstruments: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (symbol-less entry dropped)", len(got))
	}
	if got[0].Symbol != "AAPL" || got[0].Exchange != "NASDAQ" || got[0].Name != "Apple Inc." {
		t.Errorf("first result not normalized: %+v", got[0])
	}
	if got[0].Price != 231.5 {
		t.Errorf("price = %v, want 231.5", got[0].Price)
	}
}

func TestSearchInstrumentsRetriesTransientFailure(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{{"symbol": "SPY"}},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	got, err := c.SearchInstruments(context.Background(), "sp")
	if err != nil {
		t.Fatalf("SearchInstruments: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if len(got) != 1 || got[0].Symbol != "SPY" {
		t.Errorf("results = %+v", got)
	}
}

func TestLayoutsRoundTrip(t *testing.T) {
	var stored []launchpad.LayoutPreset

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/user/layouts" {
			t.Errorf("path = %q", r.URL.Path)
		}
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(map[string]any{"items": stored})
		case http.MethodPut:
			var payload struct {
				Items []launchpad.LayoutPreset `json:"items"`
			}
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				t.Errorf("decoding PUT body: %v", err)
			}
			stored = payload.Items
		default:
			t.Errorf("method = %q", r.Method)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	ctx := context.Background()

	items := []launchpad.LayoutPreset{{
		ID:     "l1",
		Name:   "Desk",
		Panels: []launchpad.PanelConfig{{ID: "p1", Type: launchpad.PanelChart, Symbol: "AAPL", Linked: true}},
	}}
	if err := c.PutLayouts(ctx, items); err != nil {
		t.Fatalf("PutLayouts: %v", err)
	}

	got, err := c.GetLayouts(ctx)
	if err != nil {
		t.Fatalf("GetLayouts: %v", err)
	}
	if len(got) != 1 || got[0].ID != "l1" || len(got[0].Panels) != 1 {
		t.Errorf("layouts = %+v", got)
	}
	if got[0].Panels[0].Symbol != "AAPL" {
		t.Errorf("panel symbol = %q", got[0].Panels[0].Symbol)
	}
}

func TestPutLayoutsSurfacesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	if err := c.PutLayouts(context.Background(), nil); err == nil {
		t.Fatal("expected error on 500 response")
	}
}

func TestQueryAI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/ai/query" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		var req struct {
			Query string `json:"q"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(map[string]string{"answer": "echo: " + req.Query})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	answer, err := c.QueryAI(context.Background(), "top gainers")
	if err != nil {
		t.Fatalf("QueryAI: %v", err)
	}
	if answer != "echo: top gainers" {
		t.Errorf("answer = %q", answer)
	}
}
