package calendar

import (
	"context"
	"errors"
	"net/url"
	"os"
	"strings"
	"time"
)

// Validation error categories
const (
	ErrorTypeURLInvalid = "URL_INVALID"
	ErrorTypeParse      = "PARSE_ERROR"
	ErrorTypeTimeout    = "TIMEOUT"
	ErrorTypeUnknown    = "UNKNOWN"
)

// ValidationResult reports whether a candidate iCal feed URL is usable.
type ValidationResult struct {
	Valid       bool         `json:"valid"`
	ErrorType   string       `json:"error_type,omitempty"`
	Message     string       `json:"message,omitempty"`
	Suggestions []string     `json:"suggestions,omitempty"`
	EventsFound int          `json:"events_found"`
	SampleEvent *SampleEvent `json:"sample_event,omitempty"`
}

// SampleEvent is a normalized preview of one event from a validated feed.
type SampleEvent struct {
	Title    string    `json:"title"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Checkout string    `json:"checkout"`
}

// ValidateFeedURL checks that a URL points at a parseable iCal feed with at
// least one event. Malformed input is rejected before any network fetch.
func (a *Aggregator) ValidateFeedURL(ctx context.Context, rawURL string) ValidationResult {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ValidationResult{
			Valid:       false,
			ErrorType:   ErrorTypeURLInvalid,
			Message:     "URL is empty",
			Suggestions: []string{"Paste the iCal export URL from your booking channel"},
		}
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return ValidationResult{
			Valid:     false,
			ErrorType: ErrorTypeURLInvalid,
			Message:   "URL must start with http:// or https://",
			Suggestions: []string{
				"Check the URL for typos",
				"Airbnb and Vrbo calendar exports are always https URLs",
			},
		}
	}

	events, err := a.parser.FetchAndParse(ctx, rawURL)
	if err != nil {
		return classifyFetchError(err)
	}

	if len(events) == 0 {
		return ValidationResult{
			Valid:     false,
			ErrorType: ErrorTypeParse,
			Message:   "The feed parsed but contains no events",
			Suggestions: []string{
				"Confirm the calendar has at least one booking or block",
				"Some channels only export future events",
			},
		}
	}

	result := ValidationResult{
		Valid:       true,
		EventsFound: len(events),
	}

	first := events[0]
	title := first.Summary
	if title == "" {
		title = "Reservation"
	}
	result.SampleEvent = &SampleEvent{
		Title:    title,
		Start:    first.Start,
		End:      first.End,
		Checkout: first.End.Format("2006-01-02"),
	}

	return result
}

// classifyFetchError maps a fetch/parse failure to a validation category.
func classifyFetchError(err error) ValidationResult {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) || isTimeout(err) {
		return ValidationResult{
			Valid:     false,
			ErrorType: ErrorTypeTimeout,
			Message:   "The calendar server did not respond in time",
			Suggestions: []string{
				"Try again in a few minutes",
				"Confirm the URL is reachable from this server",
			},
		}
	}

	msg := err.Error()
	if strings.Contains(msg, "not an iCal document") || strings.Contains(msg, "reading calendar") {
		return ValidationResult{
			Valid:     false,
			ErrorType: ErrorTypeParse,
			Message:   "The URL did not return valid iCal data",
			Suggestions: []string{
				"Make sure the URL is the .ics export link, not the calendar page",
			},
		}
	}

	return ValidationResult{
		Valid:     false,
		ErrorType: ErrorTypeUnknown,
		Message:   msg,
		Suggestions: []string{
			"Verify the URL in a browser",
		},
	}
}

// isTimeout reports whether an error chain contains a network timeout.
func isTimeout(err error) bool {
	var timeoutErr interface{ Timeout() bool }
	return errors.As(err, &timeoutErr) && timeoutErr.Timeout()
}
