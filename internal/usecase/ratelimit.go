package usecase

import (
	"fmt"
	"sync"
	"time"
)

// LimitInfo is a snapshot of a daily counter.
type LimitInfo struct {
	Count int
	Limit int
}

func (i LimitInfo) Remaining() int {
	if r := i.Limit - i.Count; r > 0 {
		return r
	}
	return 0
}

// BudgetExhaustedError signals that a daily analysis budget is spent.
// Cached verdicts are served regardless; only new analyses are refused.
type BudgetExhaustedError struct {
	Scope string // "global" or "client"
	Limit int
	Count int
}

func (e *BudgetExhaustedError) Error() string {
	return fmt.Sprintf("%s daily limit reached: %d/%d new analyses", e.Scope, e.Count, e.Limit)
}

// DailyLimiter counts new analyses against a bound within a civil-date
// window. The window is the current date in the configured location; the
// counter resets when the date rolls over.
type DailyLimiter struct {
	limit int
	loc   *time.Location

	// now is injectable for window tests.
	now func() time.Time

	mu         sync.Mutex
	windowDate string
	count      int
}

// NewDailyLimiter creates a limiter bounded at limit per civil day in loc.
func NewDailyLimiter(limit int, loc *time.Location) *DailyLimiter {
	return &DailyLimiter{
		limit: limit,
		loc:   loc,
		now:   time.Now,
	}
}

// Precheck reports the current window state without consuming budget.
// Returns a BudgetExhaustedError when the bound has been reached.
func (l *DailyLimiter) Precheck() (LimitInfo, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.rollWindow()
	info := LimitInfo{Count: l.count, Limit: l.limit}
	if l.count >= l.limit {
		return info, &BudgetExhaustedError{Scope: "global", Limit: l.limit, Count: l.count}
	}
	return info, nil
}

// Commit atomically checks and increments the counter. Called only when a
// cache miss has been committed to proceed to upstream work.
func (l *DailyLimiter) Commit() (LimitInfo, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.rollWindow()
	if l.count >= l.limit {
		return LimitInfo{Count: l.count, Limit: l.limit},
			&BudgetExhaustedError{Scope: "global", Limit: l.limit, Count: l.count}
	}
	l.count++
	return LimitInfo{Count: l.count, Limit: l.limit}, nil
}

// rollWindow resets the counter when the civil date has advanced.
// Callers must hold l.mu.
func (l *DailyLimiter) rollWindow() {
	date := l.now().In(l.loc).Format(time.DateOnly)
	if date != l.windowDate {
		l.windowDate = date
		l.count = 0
	}
}

// ClientLimiter bounds per-client daily analyses, keyed by the caller's
// self-reported client id. The canonical enforcer is the browser extension;
// this is the server-side backstop applied only when an id is supplied.
type ClientLimiter struct {
	limit int
	loc   *time.Location
	now   func() time.Time

	mu         sync.Mutex
	windowDate string
	counts     map[string]int
}

// NewClientLimiter creates a per-client limiter bounded at limit per day.
func NewClientLimiter(limit int, loc *time.Location) *ClientLimiter {
	return &ClientLimiter{
		limit:  limit,
		loc:    loc,
		now:    time.Now,
		counts: make(map[string]int),
	}
}

// Commit atomically checks and increments one client's counter.
func (l *ClientLimiter) Commit(clientID string) (LimitInfo, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	date := l.now().In(l.loc).Format(time.DateOnly)
	if date != l.windowDate {
		l.windowDate = date
		l.counts = make(map[string]int)
	}

	count := l.counts[clientID]
	if count >= l.limit {
		return LimitInfo{Count: count, Limit: l.limit},
			&BudgetExhaustedError{Scope: "client", Limit: l.limit, Count: count}
	}
	l.counts[clientID] = count + 1
	return LimitInfo{Count: count + 1, Limit: l.limit}, nil
}
