package util

import "time"

// Session labels for US equities, regular NYSE/Nasdaq hours.
const (
	SessionPre    = "pre"
	SessionOpen   = "open"
	SessionPost   = "post"
	SessionClosed = "closed"
)

var newYork = mustLoadLocation("America/New_York")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		// Embedded tzdata absent; fall back to a fixed ET offset.
		return time.FixedZone("ET", -5*60*60)
	}
	return loc
}

// MarketSession classifies t against the US equity trading day:
// pre-market 04:00-09:30, regular 09:30-16:00, post-market 16:00-20:00 ET.
// Weekends are closed. Exchange holidays are not modelled.
func MarketSession(t time.Time) string {
	et := t.In(newYork)
	switch et.Weekday() {
	case time.Saturday, time.Sunday:
		return SessionClosed
	}

	minutes := et.Hour()*60 + et.Minute()
	switch {
	case minutes < 4*60:
		return SessionClosed
	case minutes < 9*60+30:
		return SessionPre
	case minutes < 16*60:
		return SessionOpen
	case minutes < 20*60:
		return SessionPost
	default:
		return SessionClosed
	}
}

// IsMarketOpen reports whether regular trading hours are in effect at t.
func IsMarketOpen(t time.Time) bool {
	return MarketSession(t) == SessionOpen
}
