package calendar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValidatorForTest(t *testing.T) *Aggregator {
	properties, reservations := newStorageForTest(t)
	return NewAggregator(properties, reservations)
}

func TestValidateFeedURL_EmptyURL(t *testing.T) {
	a := newValidatorForTest(t)

	result := a.ValidateFeedURL(context.Background(), "   ")
	assert.False(t, result.Valid)
	assert.Equal(t, ErrorTypeURLInvalid, result.ErrorType)
	assert.NotEmpty(t, result.Suggestions)
}

func TestValidateFeedURL_BadSchemeRejectedWithoutFetch(t *testing.T) {
	var fetched int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&fetched, 1)
	}))
	defer server.Close()

	a := newValidatorForTest(t)

	for _, raw := range []string{
		"ftp://calendars.example.com/feed.ics",
		"not a url at all",
		"/relative/path.ics",
	} {
		result := a.ValidateFeedURL(context.Background(), raw)
		assert.False(t, result.Valid, raw)
		assert.Equal(t, ErrorTypeURLInvalid, result.ErrorType, raw)
	}

	assert.Equal(t, int32(0), atomic.LoadInt32(&fetched), "malformed URLs must be rejected before any fetch")
}

func TestValidateFeedURL_NonICalContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>a login page</html>"))
	}))
	defer server.Close()

	a := newValidatorForTest(t)

	result := a.ValidateFeedURL(context.Background(), server.URL)
	assert.False(t, result.Valid)
	assert.Equal(t, ErrorTypeParse, result.ErrorType)
}

func TestValidateFeedURL_EmptyCalendarIsParseError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("BEGIN:VCALENDAR\nEND:VCALENDAR\n"))
	}))
	defer server.Close()

	a := newValidatorForTest(t)

	result := a.ValidateFeedURL(context.Background(), server.URL)
	assert.False(t, result.Valid)
	assert.Equal(t, ErrorTypeParse, result.ErrorType)
	assert.Equal(t, 0, result.EventsFound)
}

func TestValidateFeedURL_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	a := newValidatorForTest(t)
	a.parser = NewParserWithTimeout(20 * time.Millisecond)

	result := a.ValidateFeedURL(context.Background(), server.URL)
	assert.False(t, result.Valid)
	assert.Equal(t, ErrorTypeTimeout, result.ErrorType)
}

func TestValidateFeedURL_ValidFeed(t *testing.T) {
	server := feedServer(t, [2]time.Time{day(10), day(14)}, [2]time.Time{day(20), day(22)})

	a := newValidatorForTest(t)

	result := a.ValidateFeedURL(context.Background(), server.URL)
	require.True(t, result.Valid)
	assert.Empty(t, result.ErrorType)
	assert.Equal(t, 2, result.EventsFound)

	require.NotNil(t, result.SampleEvent)
	assert.Equal(t, "Blocked", result.SampleEvent.Title)
	assert.Equal(t, day(10), result.SampleEvent.Start)
	assert.Equal(t, "2026-09-14", result.SampleEvent.Checkout)
}
