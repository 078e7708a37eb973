package rates

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	SourceAuto   Source = "auto"
	SourceManual Source = "manual"
)

// Source tells whether a form session's rate came from a lookup or the user.
type Source string

// Session tracks the rate field of one trip/expense form.
//
// Once the user types a rate, the session goes manual and stays there:
// date-only changes must never clobber the entered value. Only changing the
// currency pair re-arms automatic resolution.
type Session struct {
	resolver *Resolver
	from, to string
	date     time.Time
	rate     decimal.Decimal
	source   Source
}

func NewSession(resolver *Resolver, from, to string, date time.Time) *Session {
	s := &Session{
		resolver: resolver,
		from:     strings.ToUpper(strings.TrimSpace(from)),
		to:       strings.ToUpper(strings.TrimSpace(to)),
		date:     date,
		source:   SourceAuto,
	}
	return s
}

// Rate returns the current rate, resolving lazily while the session is auto.
func (s *Session) Rate(ctx context.Context) decimal.Decimal {
	if s.source == SourceManual {
		return s.rate
	}
	if s.rate.IsZero() {
		s.rate = s.resolver.Resolve(ctx, s.from, s.to, s.date)
	}
	return s.rate
}

// Source reports whether the session is auto or manual.
func (s *Session) Source() Source {
	return s.source
}

// SetRate records a user-entered rate and pins the session to manual.
func (s *Session) SetRate(rate decimal.Decimal) {
	s.rate = rate
	s.source = SourceManual
}

// SetDate updates the date. An auto session drops its cached rate so the
// next read refetches; a manual session keeps the entered value untouched.
func (s *Session) SetDate(date time.Time) {
	s.date = date
	if s.source == SourceAuto {
		s.rate = decimal.Decimal{}
	}
}

// SetPair switches the currency pair. This is the one transition that
// reverts a manual session to auto.
func (s *Session) SetPair(from, to string) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))
	if from == s.from && to == s.to {
		return
	}
	s.from, s.to = from, to
	s.rate = decimal.Decimal{}
	s.source = SourceAuto
}
