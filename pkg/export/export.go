// Package export renders the availability hits of a scan session into the
// supported output formats and writes per-address result documents.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/lI-Isekai-Il/EA-Email-Finder/pkg/domain"
)

// jsonEntry is the wire shape of one availability hit in a JSON export.
type jsonEntry struct {
	Email string `json:"email"`
	Date  string `json:"date"`
}

// JSON renders the records as an indented JSON array. Timestamps are
// normalized to RFC3339 in UTC, so exporting the same records always
// produces identical bytes. An empty record set renders as an empty array.
func JSON(records []domain.AvailableRecord) ([]byte, error) {
	entries := make([]jsonEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, jsonEntry{
			Email: rec.Email,
			Date:  rec.CheckedAt.UTC().Format(time.RFC3339),
		})
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("could not encode records: %w", err)
	}

	return append(data, '\n'), nil
}

// Text renders the records as one address per line.
func Text(records []domain.AvailableRecord) []byte {
	var b strings.Builder
	for _, rec := range records {
		b.WriteString(rec.Email)
		b.WriteByte('\n')
	}

	return []byte(b.String())
}

// WriteFile renders the records in the given format and writes them to path,
// replacing any previous export.
func WriteFile(path string, format domain.OutputFormat, records []domain.AvailableRecord) error {
	var (
		data []byte
		err  error
	)

	switch format {
	case domain.FormatJSON:
		data, err = JSON(records)
		if err != nil {
			return err
		}
	case domain.FormatText:
		data = Text(records)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("could not write export: %w", err)
	}

	return nil
}
