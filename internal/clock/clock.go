// Package clock abstracts the current time so that expiry decisions can be
// driven by a fake clock in tests. All timestamps are UTC.
package clock

import "time"

// Clock supplies the current time. Every expiry and validity check in the
// service layer goes through a Clock instead of calling time.Now directly.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// System returns a Clock backed by the wall clock.
func System() Clock { return systemClock{} }

// Fake is a manually advanced Clock for tests.
type Fake struct {
	Current time.Time
}

// NewFake returns a Fake pinned to the given instant.
func NewFake(t time.Time) *Fake { return &Fake{Current: t.UTC()} }

func (f *Fake) Now() time.Time { return f.Current }

// Advance moves the fake clock forward by d.
func (f *Fake) Advance(d time.Duration) { f.Current = f.Current.Add(d) }
