package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProperty_HasCalendarFeed(t *testing.T) {
	var p Property
	assert.False(t, p.HasCalendarFeed())

	empty := ""
	p.CalendarURL = &empty
	assert.False(t, p.HasCalendarFeed())

	url := "https://feeds.example.com/p.ics"
	p.CalendarURL = &url
	assert.True(t, p.HasCalendarFeed())
}

func TestReservation_IsCurrent(t *testing.T) {
	r := Reservation{
		CheckIn:  time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		CheckOut: time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC),
	}

	assert.False(t, r.IsCurrent(time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)))
	assert.True(t, r.IsCurrent(r.CheckIn), "check-in day counts as current")
	assert.True(t, r.IsCurrent(time.Date(2026, 9, 3, 12, 0, 0, 0, time.UTC)))
	assert.False(t, r.IsCurrent(r.CheckOut), "checkout day does not")
}
