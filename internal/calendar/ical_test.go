package calendar

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayflow-pms/backend/internal/storage/models"
)

const sampleFeed = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Airbnb Inc//Hosting Calendar 1.0//EN
BEGIN:VEVENT
UID:evt-1@airbnb.com
DTSTART;VALUE=DATE:20260901
DTEND;VALUE=DATE:20260905
SUMMARY:Reserved - John
STATUS:CONFIRMED
END:VEVENT
BEGIN:VEVENT
UID:evt-2@airbnb.com
DTSTART:20261001T150000Z
DTEND:20261005T110000Z
SUMMARY:Long booking with a folded
 summary line
END:VEVENT
END:VCALENDAR
`

func TestParse(t *testing.T) {
	p := NewParser()

	events, err := p.Parse(strings.NewReader(sampleFeed))
	require.NoError(t, err)
	require.Len(t, events, 2)

	first := events[0]
	assert.Equal(t, "evt-1@airbnb.com", first.UID)
	assert.Equal(t, "Reserved - John", first.Summary)
	assert.Equal(t, "confirmed", first.Status, "status is lower-cased")
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), first.Start)
	assert.Equal(t, time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC), first.End)

	second := events[1]
	assert.Equal(t, "Long booking with a foldedsummary line", second.Summary, "continuation lines are unfolded")
	assert.Equal(t, time.Date(2026, 10, 1, 15, 0, 0, 0, time.UTC), second.Start)
}

func TestParse_SkipsEventsWithoutDates(t *testing.T) {
	feed := `BEGIN:VCALENDAR
BEGIN:VEVENT
UID:no-dates
SUMMARY:Broken event
END:VEVENT
BEGIN:VEVENT
UID:good
DTSTART:20260901T120000Z
DTEND:20260902T120000Z
END:VEVENT
END:VCALENDAR
`
	p := NewParser()

	events, err := p.Parse(strings.NewReader(feed))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "good", events[0].UID)
}

func TestParse_RejectsNonICalInput(t *testing.T) {
	p := NewParser()

	_, err := p.Parse(strings.NewReader("<html><body>not a calendar</body></html>"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not an iCal document")
}

func TestParse_UnescapesValues(t *testing.T) {
	feed := `BEGIN:VCALENDAR
BEGIN:VEVENT
UID:escaped
SUMMARY:Dinner\, drinks\; more
DTSTART:20260901
DTEND:20260902
END:VEVENT
END:VCALENDAR
`
	p := NewParser()

	events, err := p.Parse(strings.NewReader(feed))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Dinner, drinks; more", events[0].Summary)
}

func TestParseDateTime(t *testing.T) {
	tests := []struct {
		value string
		want  time.Time
	}{
		{"20260901T150405Z", time.Date(2026, 9, 1, 15, 4, 5, 0, time.UTC)},
		{"20260901", time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)},
		{"2026-09-01", time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)},
		{"garbage", time.Time{}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseDateTime(tt.value), tt.value)
	}
}

func TestFilterByDateRange(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2026, 9, d, 0, 0, 0, 0, time.UTC) }
	events := []models.CalendarEvent{
		{UID: "before", Start: day(1), End: day(3)},
		{UID: "overlapping", Start: day(4), End: day(8)},
		{UID: "inside", Start: day(6), End: day(7)},
		{UID: "after", Start: day(10), End: day(12)},
	}

	filtered := FilterByDateRange(events, day(5), day(9))

	require.Len(t, filtered, 2)
	assert.Equal(t, "overlapping", filtered[0].UID)
	assert.Equal(t, "inside", filtered[1].UID)
}
