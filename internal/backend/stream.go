package backend

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Quote is one price tick from the stream.
type Quote struct {
	Symbol string    `json:"symbol"`
	Price  float64   `json:"price"`
	Time   time.Time `json:"time"`
}

// subscribeMessage is the client-to-server frame selecting the symbols the
// stream should publish.
type subscribeMessage struct {
	Op      string   `json:"op"`
	Symbols []string `json:"symbols"`
}

// QuoteStream maintains a websocket connection to the quote feed with
// automatic reconnect. Subscriptions survive reconnects: the current symbol
// set is replayed on every successful dial.
type QuoteStream struct {
	url    string
	log    *slog.Logger
	quotes chan Quote

	mu      sync.Mutex
	symbols map[string]struct{}
	conn    *websocket.Conn

	// writeMu serializes frame writes; the connection allows only one
	// concurrent writer, and Subscribe can race the reconnect loop's
	// initial frame.
	writeMu sync.Mutex
}

// NewQuoteStream creates a stream for the given websocket URL. Nothing
// connects until Run is called.
func NewQuoteStream(url string, log *slog.Logger) *QuoteStream {
	return &QuoteStream{
		url:     url,
		log:     log,
		quotes:  make(chan Quote, 64),
		symbols: make(map[string]struct{}),
	}
}

// Quotes returns the tick channel. Ticks are dropped, not queued, when the
// consumer falls behind.
func (s *QuoteStream) Quotes() <-chan Quote {
	return s.quotes
}

// Subscribe replaces the subscribed symbol set. Safe to call before Run and
// while disconnected; the set is sent on the next (re)connect.
func (s *QuoteStream) Subscribe(symbols ...string) {
	s.mu.Lock()
	s.symbols = make(map[string]struct{}, len(symbols))
	for _, sym := range symbols {
		if sym != "" {
			s.symbols[sym] = struct{}{}
		}
	}
	conn := s.conn
	msg := s.subscribeFrameLocked()
	s.mu.Unlock()

	if conn != nil {
		if err := s.writeFrame(conn, msg); err != nil && s.log != nil {
			s.log.Debug("quote subscribe write failed", "error", err)
		}
	}
}

func (s *QuoteStream) writeFrame(conn *websocket.Conn, msg subscribeMessage) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return conn.WriteJSON(msg)
}

func (s *QuoteStream) subscribeFrameLocked() subscribeMessage {
	symbols := make([]string, 0, len(s.symbols))
	for sym := range s.symbols {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	return subscribeMessage{Op: "subscribe", Symbols: symbols}
}

// Run connects and pumps ticks until ctx is cancelled, redialing with
// capped exponential backoff after any failure. It blocks; run it on its
// own goroutine.
func (s *QuoteStream) Run(ctx context.Context) {
	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		if ctx.Err() != nil {
			return
		}

		err := s.connectAndRead(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil && s.log != nil {
			s.log.Warn("quote stream disconnected", "error", err, "retry_in", backoff)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

func (s *QuoteStream) connectAndRead(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	s.mu.Lock()
	s.conn = conn
	msg := s.subscribeFrameLocked()
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.conn = nil
		s.mu.Unlock()
	}()

	if err := s.writeFrame(conn, msg); err != nil {
		return err
	}

	// Close the socket when ctx is cancelled so ReadJSON unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		var q Quote
		if err := conn.ReadJSON(&q); err != nil {
			return err
		}
		if q.Symbol == "" {
			continue
		}
		select {
		case s.quotes <- q:
		default:
			// Consumer is behind; a fresher tick is coming anyway.
		}
	}
}
