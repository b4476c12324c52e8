// Package lifecycle resolves a subscription's validity window and state.
//
// Resolution is pure: Resolve never touches the subscription. Dates that have
// become final are reported in Snapshot.Changes and must be persisted by the
// caller (Commit applies them to the in-memory value). A tentative date is
// recomputed on every call until it is memoized.
package lifecycle

import (
	"time"

	"github.com/Freeeeeet/volleyball_school/internal/clock"
	"github.com/Freeeeeet/volleyball_school/internal/model"
)

// GracePeriodDays is how long after purchase the first training may still
// start the validity clock.
const GracePeriodDays = 10

type State int

const (
	Tentative State = iota
	Memoized
)

func (s State) String() string {
	if s == Memoized {
		return "memoized"
	}
	return "tentative"
}

// Date is a resolved civil date with its memoization state.
type Date struct {
	Value time.Time
	State State
}

// Changes is the set of fields that became final during resolution.
type Changes struct {
	StartDate  *time.Time
	EndDate    *time.Time
	Deactivate bool
}

func (c Changes) Empty() bool {
	return c.StartDate == nil && c.EndDate == nil && !c.Deactivate
}

// Snapshot is the state of a subscription at one instant.
type Snapshot struct {
	Start     Date
	End       Date
	Remaining int
	Active    bool
	Changes   Changes
}

// Resolver evaluates subscriptions against the school's location.
type Resolver struct {
	Location *time.Location
}

func NewResolver(loc *time.Location) Resolver {
	return Resolver{Location: loc}
}

// StartDate resolves when the validity clock started.
func (r Resolver) StartDate(sub *model.Subscription, now time.Time) Date {
	if sub.StartDate != nil {
		return Date{Value: *sub.StartDate, State: Memoized}
	}

	today := clock.Date(now.In(r.Location))
	graceDeadline := clock.AddDays(sub.PurchaseDate, GracePeriodDays)

	if first, ok := earliest(sub.Trainings); ok && !first.Date.After(graceDeadline) {
		// Upcoming first training can still be cancelled, so the start stays open.
		if today.After(first.Date) {
			return Date{Value: first.Date, State: Memoized}
		}
		return Date{Value: first.Date, State: Tentative}
	}

	if today.After(graceDeadline) {
		return Date{Value: sub.PurchaseDate, State: Memoized}
	}
	return Date{Value: sub.PurchaseDate, State: Tentative}
}

// EndDate resolves the last valid day given the resolved start.
func (r Resolver) EndDate(sub *model.Subscription, start Date) Date {
	if sub.EndDate != nil {
		return Date{Value: *sub.EndDate, State: Memoized}
	}
	if start.State == Memoized {
		return Date{Value: clock.AddDays(start.Value, sub.ValidityDays), State: Memoized}
	}
	return Date{Value: clock.AddDays(sub.PurchaseDate, sub.ValidityDays), State: Tentative}
}

// Resolve computes the full snapshot of sub at now.
func (r Resolver) Resolve(sub *model.Subscription, now time.Time) Snapshot {
	start := r.StartDate(sub, now)
	end := r.EndDate(sub, start)

	snap := Snapshot{
		Start:     start,
		End:       end,
		Remaining: sub.Remaining(),
	}

	if !sub.IsActive {
		return snap
	}

	if start.State == Memoized && sub.StartDate == nil {
		v := start.Value
		snap.Changes.StartDate = &v
	}
	if end.State == Memoized && sub.EndDate == nil {
		v := end.Value
		snap.Changes.EndDate = &v
	}

	today := clock.Date(now.In(r.Location))
	switch {
	case today.After(end.Value):
		snap.Changes.Deactivate = true
	case snap.Remaining <= 0:
		// The last slot is spent only once its training can no longer be cancelled.
		if last, ok := latest(sub.Trainings, r.Location); ok && !now.Before(last.StartsAt(r.Location).Add(-model.CancellationCutoff)) {
			snap.Changes.Deactivate = true
		} else {
			snap.Active = true
		}
	default:
		snap.Active = true
	}

	return snap
}

// Applicable reports whether a snapshot can pay for a training on sessionDate.
func (r Resolver) Applicable(snap Snapshot, sessionDate time.Time, now time.Time) bool {
	today := clock.Date(now.In(r.Location))
	return snap.Active &&
		!snap.End.Value.Before(sessionDate) &&
		!sessionDate.Before(today) &&
		snap.Remaining > 0
}

// Commit applies changes to sub.
func Commit(sub *model.Subscription, c Changes) {
	if c.StartDate != nil {
		v := *c.StartDate
		sub.StartDate = &v
	}
	if c.EndDate != nil {
		v := *c.EndDate
		sub.EndDate = &v
	}
	if c.Deactivate {
		sub.IsActive = false
	}
}

func earliest(trainings []model.LinkedTraining) (model.LinkedTraining, bool) {
	if len(trainings) == 0 {
		return model.LinkedTraining{}, false
	}
	first := trainings[0]
	for _, t := range trainings[1:] {
		if t.Date.Before(first.Date) {
			first = t
		}
	}
	return first, true
}

func latest(trainings []model.LinkedTraining, loc *time.Location) (model.LinkedTraining, bool) {
	if len(trainings) == 0 {
		return model.LinkedTraining{}, false
	}
	last := trainings[0]
	for _, t := range trainings[1:] {
		if t.StartsAt(loc).After(last.StartsAt(loc)) {
			last = t
		}
	}
	return last, true
}
