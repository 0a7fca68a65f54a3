// Package calendar provides iCal feed parsing and the merged property
// calendar view.
package calendar

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/stayflow-pms/backend/internal/storage/models"
)

// defaultFetchTimeout bounds how long a feed fetch may take.
const defaultFetchTimeout = 10 * time.Second

// Parser parses iCal/ICS calendar feeds.
type Parser struct {
	httpClient *http.Client
}

// NewParser creates a new iCal parser with the default fetch timeout.
func NewParser() *Parser {
	return NewParserWithTimeout(defaultFetchTimeout)
}

// NewParserWithTimeout creates a new iCal parser with an explicit fetch timeout.
func NewParserWithTimeout(timeout time.Duration) *Parser {
	return &Parser{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchAndParse downloads and parses an iCal feed from a URL.
func (p *Parser) FetchAndParse(ctx context.Context, url string) ([]models.CalendarEvent, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating feed request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching calendar: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("calendar returned status %d", resp.StatusCode)
	}

	return p.Parse(resp.Body)
}

// Parse reads and parses iCal data from a reader. Only VEVENT components
// with valid DTSTART and DTEND values are returned.
func (p *Parser) Parse(r io.Reader) ([]models.CalendarEvent, error) {
	var events []models.CalendarEvent
	var currentEvent *models.CalendarEvent
	var currentField string
	var multilineValue strings.Builder
	sawCalendar := false

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()

		// Handle line continuation (lines starting with space or tab)
		if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
			if currentField != "" {
				multilineValue.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, " "), "\t"))
			}
			continue
		}

		// Process previous multiline field
		if currentField != "" && currentEvent != nil {
			setEventField(currentEvent, currentField, multilineValue.String())
			currentField = ""
			multilineValue.Reset()
		}

		// Parse field:value
		colonIdx := strings.Index(line, ":")
		if colonIdx == -1 {
			continue
		}

		field := line[:colonIdx]
		value := line[colonIdx+1:]

		// Handle property parameters (e.g., DTSTART;VALUE=DATE:20231215)
		if semicolonIdx := strings.Index(field, ";"); semicolonIdx != -1 {
			field = field[:semicolonIdx]
		}

		switch field {
		case "BEGIN":
			if value == "VCALENDAR" {
				sawCalendar = true
			}
			if value == "VEVENT" {
				currentEvent = &models.CalendarEvent{}
			}
		case "END":
			if value == "VEVENT" && currentEvent != nil {
				if !currentEvent.Start.IsZero() && !currentEvent.End.IsZero() {
					events = append(events, *currentEvent)
				}
				currentEvent = nil
			}
		case "UID", "SUMMARY", "STATUS", "DTSTART", "DTEND":
			if currentEvent != nil {
				currentField = field
				multilineValue.WriteString(value)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading calendar: %w", err)
	}

	if !sawCalendar {
		return nil, fmt.Errorf("not an iCal document: missing BEGIN:VCALENDAR")
	}

	return events, nil
}

// setEventField sets a field on a CalendarEvent.
func setEventField(event *models.CalendarEvent, field, value string) {
	// Unescape common iCal escape sequences
	value = strings.ReplaceAll(value, "\\n", "\n")
	value = strings.ReplaceAll(value, "\\,", ",")
	value = strings.ReplaceAll(value, "\\;", ";")
	value = strings.ReplaceAll(value, "\\\\", "\\")

	switch field {
	case "UID":
		event.UID = value
	case "SUMMARY":
		event.Summary = value
	case "STATUS":
		event.Status = strings.ToLower(value)
	case "DTSTART":
		event.Start = parseDateTime(value)
	case "DTEND":
		event.End = parseDateTime(value)
	}
}

// parseDateTime parses an iCal date/time value.
func parseDateTime(value string) time.Time {
	// Common iCal date formats
	formats := []string{
		"20060102T150405Z",     // UTC datetime
		"20060102T150405",      // Local datetime
		"20060102",             // Date only
		"2006-01-02T15:04:05Z", // ISO 8601 with dashes
		"2006-01-02",           // ISO 8601 date
	}

	for _, format := range formats {
		if t, err := time.Parse(format, value); err == nil {
			return t
		}
	}

	return time.Time{}
}

// FilterByDateRange returns events that overlap with the given date range.
func FilterByDateRange(events []models.CalendarEvent, start, end time.Time) []models.CalendarEvent {
	var filtered []models.CalendarEvent
	for _, e := range events {
		// Event overlaps if it starts before range ends and ends after range starts
		if e.Start.Before(end) && e.End.After(start) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}
