package devserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"marketterm/internal/launchpad"
)

type fakeKV struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: make(map[string][]byte)}
}

func (f *fakeKV) Get(key string, dest any) bool {
	f.mu.Lock()
	raw, ok := f.data[key]
	f.mu.Unlock()
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (f *fakeKV) Put(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.data[key] = raw
	f.mu.Unlock()
	return nil
}

func newTestServer(t *testing.T) (*httptest.Server, *fakeKV) {
	t.Helper()
	kv := newFakeKV()
	srv := httptest.NewServer(New(kv, 600, nil).Router())
	t.Cleanup(srv.Close)
	return srv, kv
}

func TestSearchRanking(t *testing.T) {
	tests := []struct {
		query string
		first string
	}{
		{"GS", "GS"},       // exact beats the GOOGL/GLD prefix matches
		{"AAP", "AAPL"},    // symbol prefix
		{"OOG", "GOOGL"},   // symbol substring
		{"russell", "IWM"}, // name substring
		{"BRK.B", "BRK.B"},
	}
	for _, tt := range tests {
		got := searchInstruments(tt.query, 10)
		if len(got) == 0 {
			t.Errorf("searchInstruments(%q) returned nothing", tt.query)
			continue
		}
		if got[0].Symbol != tt.first {
			t.Errorf("searchInstruments(%q)[0] = %s, want %s", tt.query, got[0].Symbol, tt.first)
		}
	}

	if got := searchInstruments("", 10); len(got) != 0 {
		t.Errorf("empty query returned %d results", len(got))
	}
	if got := searchInstruments("zzzz", 10); len(got) != 0 {
		t.Errorf("no-match query returned %d results", len(got))
	}
	if got := searchInstruments("a", 3); len(got) > 3 {
		t.Errorf("limit ignored: %d results", len(got))
	}
}

func TestSearchEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/instruments/search?q=aapl")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Items []Instrument `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if len(payload.Items) == 0 || payload.Items[0].Symbol != "AAPL" {
		t.Errorf("items = %+v", payload.Items)
	}
	if payload.Items[0].Price <= 0 {
		t.Errorf("search results should carry a live price, got %v", payload.Items[0].Price)
	}
}

func TestLayoutsEndpointRoundTrip(t *testing.T) {
	srv, kv := newTestServer(t)

	// Empty store returns an empty items list, not an error.
	resp, err := http.Get(srv.URL + "/api/v1/user/layouts")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	var payload struct {
		Items []launchpad.LayoutPreset `json:"items"`
	}
	json.NewDecoder(resp.Body).Decode(&payload)
	resp.Body.Close()
	if len(payload.Items) != 0 {
		t.Errorf("fresh store returned %d layouts", len(payload.Items))
	}

	body, _ := json.Marshal(map[string]any{
		"items": []launchpad.LayoutPreset{{ID: "l1", Name: "Desk"}},
	})
	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/api/v1/user/layouts", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	putResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT: %v", err)
	}
	putResp.Body.Close()
	if putResp.StatusCode != http.StatusOK {
		t.Fatalf("PUT status = %d", putResp.StatusCode)
	}

	var stored []launchpad.LayoutPreset
	if !kv.Get(layoutsStoreKey, &stored) || len(stored) != 1 || stored[0].ID != "l1" {
		t.Errorf("stored = %+v", stored)
	}

	resp, err = http.Get(srv.URL + "/api/v1/user/layouts")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	json.NewDecoder(resp.Body).Decode(&payload)
	resp.Body.Close()
	if len(payload.Items) != 1 || payload.Items[0].Name != "Desk" {
		t.Errorf("items after PUT = %+v", payload.Items)
	}
}

func TestAIQueryEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/v1/ai/query", "application/json",
		strings.NewReader(`{"q":"top gainers"}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var payload struct {
		Answer string `json:"answer"`
	}
	json.NewDecoder(resp.Body).Decode(&payload)
	if !strings.Contains(payload.Answer, "top gainers") {
		t.Errorf("answer = %q, want the query echoed", payload.Answer)
	}

	// Missing query is a 400.
	resp, err = http.Post(srv.URL+"/api/v1/ai/query", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty query status = %d, want 400", resp.StatusCode)
	}
}

func TestQuoteStreamPublishesSubscribedSymbols(t *testing.T) {
	srv, _ := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/quotes"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dialing: %v", err)
	}
	defer conn.Close()

	sub := map[string]any{"op": "subscribe", "symbols": []string{"AAPL"}}
	if err := conn.WriteJSON(sub); err != nil {
		t.Fatalf("subscribing: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var tick struct {
		Symbol string  `json:"symbol"`
		Price  float64 `json:"price"`
	}
	if err := conn.ReadJSON(&tick); err != nil {
		t.Fatalf("reading tick: %v", err)
	}
	if tick.Symbol != "AAPL" {
		t.Errorf("tick symbol = %q, want AAPL", tick.Symbol)
	}
	if tick.Price <= 0 {
		t.Errorf("tick price = %v", tick.Price)
	}
}
