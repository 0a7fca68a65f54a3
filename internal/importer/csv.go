// Package importer provides batch import of property records from CSV
// exports.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/stayflow-pms/backend/internal/storage"
	"github.com/stayflow-pms/backend/internal/storage/models"
)

// RowError records a single row that could not be imported.
type RowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// Result reports the outcome of an import run.
type Result struct {
	PropertiesCount int        `json:"properties_count"`
	Errors          []RowError `json:"errors,omitempty"`
}

// Importer bulk-upserts property rows from a CSV export. Rows are
// processed strictly in order; a malformed row is recorded and skipped,
// never aborting the rest of the file.
type Importer struct {
	properties *storage.PropertyRepository
}

// NewImporter creates a new CSV importer.
func NewImporter(properties *storage.PropertyRepository) *Importer {
	return &Importer{properties: properties}
}

// ImportFile imports properties from a CSV file on disk.
func (i *Importer) ImportFile(ctx context.Context, path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening import file: %w", err)
	}
	defer f.Close()

	return i.Import(ctx, f)
}

// Import imports properties from CSV data. The first row is the header;
// recognized columns are NICKNAME, TITLE, TYPE_OF_UNIT (or TYPE OF UNIT),
// ADDRESS, and TAGS. Unknown columns are ignored. The importer returns an
// error only for stream-level failures; per-row problems land in the
// result's error list.
func (i *Importer) Import(ctx context.Context, r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("import file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	columns := headerIndex(header)
	result := &Result{}

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				result.Errors = append(result.Errors, RowError{Line: line, Message: err.Error()})
				continue
			}
			return nil, fmt.Errorf("reading row %d: %w", line, err)
		}

		if err := i.importRow(ctx, columns, record); err != nil {
			result.Errors = append(result.Errors, RowError{Line: line, Message: err.Error()})
			continue
		}
		result.PropertiesCount++
	}

	return result, nil
}

// importRow maps one record to a property and upserts it by nickname.
func (i *Importer) importRow(ctx context.Context, columns map[string]int, record []string) error {
	field := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	nickname := field("NICKNAME")
	title := field("TITLE")
	if nickname == "" {
		nickname = title
	}
	if nickname == "" {
		return fmt.Errorf("row has neither NICKNAME nor TITLE")
	}

	unitType := field("TYPE_OF_UNIT")
	if unitType == "" {
		unitType = field("TYPE OF UNIT")
	}

	var tags []string
	if raw := field("TAGS"); raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
	}

	existing, err := i.properties.GetByName(ctx, nickname)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("looking up %q: %w", nickname, err)
	}

	if existing != nil {
		existing.Title = title
		existing.PropertyType = unitType
		existing.Address = field("ADDRESS")
		existing.Tags = tags
		if err := i.properties.Update(ctx, existing); err != nil {
			return fmt.Errorf("updating %q: %w", nickname, err)
		}
		return nil
	}

	property := &models.Property{
		// CSV exports carry no PMS identifier; a synthetic key keeps the
		// remote-id uniqueness invariant intact.
		RemoteID:     "csv-" + uuid.NewString(),
		Name:         nickname,
		Title:        title,
		PropertyType: unitType,
		Address:      field("ADDRESS"),
		Tags:         tags,
		Active:       true,
	}

	if err := i.properties.Create(ctx, property); err != nil {
		return fmt.Errorf("creating %q: %w", nickname, err)
	}
	return nil
}

// headerIndex maps normalized column names to their positions.
func headerIndex(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for idx, name := range header {
		name = strings.ToUpper(strings.TrimSpace(name))
		// Strip a UTF-8 BOM on the first column of Excel exports
		name = strings.TrimPrefix(name, "\ufeff")
		columns[name] = idx
	}
	return columns
}
