package utils

import "time"

// -----------------------------------------------------------------------------

// SessionHint caches one exchange calendar and reports whether its session is
// currently open. Used to annotate exchange-traded instruments in listings.
type SessionHint struct {
	calendar *TradingCalendar
}

// -----------------------------------------------------------------------------

// NewStockSessionHint builds the hint for US stock listings.
func NewStockSessionHint() *SessionHint {
	return &SessionHint{calendar: GetCalendar("AAPL")}
}

// -----------------------------------------------------------------------------

// Open returns a pointer so callers can distinguish "closed" from "unknown".
func (sh *SessionHint) Open() *bool {
	if sh == nil || sh.calendar == nil {
		return nil
	}
	open := sh.calendar.IsOpenOnMinute(time.Now())
	return &open
}
