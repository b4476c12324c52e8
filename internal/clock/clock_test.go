package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestISOWeekday(t *testing.T) {
	tests := []struct {
		date time.Time
		want int
	}{
		{NewDate(2020, time.October, 5), 1},
		{NewDate(2020, time.October, 6), 2},
		{NewDate(2020, time.October, 10), 6},
		{NewDate(2020, time.October, 11), 7},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ISOWeekday(tt.date), tt.date.Format("2006-01-02"))
	}
}

func TestMondayOf(t *testing.T) {
	assert.Equal(t, NewDate(2020, time.October, 5), MondayOf(NewDate(2020, time.October, 10)))
	assert.Equal(t, NewDate(2020, time.October, 5), MondayOf(NewDate(2020, time.October, 11)))
	assert.Equal(t, NewDate(2020, time.October, 5), MondayOf(NewDate(2020, time.October, 5)))
}

func TestTodayUsesLocation(t *testing.T) {
	moscow := time.FixedZone("MSK", 3*60*60)
	// 22:30 UTC is already the next day in Moscow.
	c := Fixed(time.Date(2020, time.October, 9, 22, 30, 0, 0, time.UTC))

	assert.Equal(t, NewDate(2020, time.October, 10), Today(c, moscow))
	assert.Equal(t, NewDate(2020, time.October, 9), Today(c, time.UTC))
}

func TestAt(t *testing.T) {
	moscow := time.FixedZone("MSK", 3*60*60)
	got := At(NewDate(2020, time.October, 13), 18, 30, moscow)

	assert.Equal(t, time.Date(2020, time.October, 13, 15, 30, 0, 0, time.UTC), got.UTC())
}
