// Package calendar arranges trainings into per-court weekly grids.
package calendar

import (
	"sort"
	"time"

	"github.com/Freeeeeet/volleyball_school/internal/clock"
	"github.com/Freeeeeet/volleyball_school/internal/model"
)

const DaysInWeek = 7

// Cell is one calendar day; Training is nil for an empty day.
type Cell struct {
	Date     time.Time
	Training *model.Training
}

// Week is seven consecutive days starting on Monday.
type Week [DaysInWeek]Cell

// CourtRow is the grid of one court.
type CourtRow struct {
	CourtID int64
	Weeks   []Week
}

// Grid is the timetable of several courts over the same weeks.
type Grid struct {
	Start time.Time
	Weeks int
	Rows  []CourtRow
}

type cellKey struct {
	courtID int64
	date    time.Time
}

// Build groups trainings by court and lays them out over `weeks` weeks
// beginning at start. Courts appear in ascending ID order. Trainings outside
// the range are ignored. If two trainings share a (court, date) key the first
// one wins.
func Build(trainings []*model.Training, start time.Time, weeks int) Grid {
	start = clock.Date(start)
	grid := Grid{Start: start, Weeks: weeks}
	if weeks <= 0 {
		return grid
	}

	byKey := make(map[cellKey]*model.Training, len(trainings))
	courts := make(map[int64]struct{})
	for _, t := range trainings {
		courts[t.CourtID] = struct{}{}
		key := cellKey{courtID: t.CourtID, date: clock.Date(t.Date)}
		if _, exists := byKey[key]; !exists {
			byKey[key] = t
		}
	}

	courtIDs := make([]int64, 0, len(courts))
	for id := range courts {
		courtIDs = append(courtIDs, id)
	}
	sort.Slice(courtIDs, func(i, j int) bool { return courtIDs[i] < courtIDs[j] })

	for _, courtID := range courtIDs {
		row := CourtRow{CourtID: courtID, Weeks: make([]Week, weeks)}
		for w := 0; w < weeks; w++ {
			for d := 0; d < DaysInWeek; d++ {
				date := clock.AddDays(start, w*DaysInWeek+d)
				row.Weeks[w][d] = Cell{Date: date, Training: byKey[cellKey{courtID: courtID, date: date}]}
			}
		}
		grid.Rows = append(grid.Rows, row)
	}

	return grid
}

// End returns the first day after the grid.
func (g Grid) End() time.Time {
	return clock.AddDays(g.Start, g.Weeks*DaysInWeek)
}

// Row returns the row of a court.
func (g Grid) Row(courtID int64) (CourtRow, bool) {
	for _, r := range g.Rows {
		if r.CourtID == courtID {
			return r, true
		}
	}
	return CourtRow{}, false
}
