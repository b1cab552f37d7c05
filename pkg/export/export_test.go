package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lI-Isekai-Il/EA-Email-Finder/pkg/domain"
)

func sampleRecords() []domain.AvailableRecord {
	return []domain.AvailableRecord{
		{Email: "first@example.com", CheckedAt: time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)},
		{Email: "second@example.com", CheckedAt: time.Date(2025, 3, 14, 10, 0, 0, 0, time.FixedZone("CET", 3600))},
	}
}

func TestJSON(t *testing.T) {
	data, err := JSON(sampleRecords())
	require.NoError(t, err)

	var entries []struct {
		Email string `json:"email"`
		Date  string `json:"date"`
	}
	require.NoError(t, json.Unmarshal(data, &entries))
	require.Len(t, entries, 2)
	require.Equal(t, "first@example.com", entries[0].Email)
	require.Equal(t, "2025-03-14T09:26:53Z", entries[0].Date)
	// The CET timestamp comes out normalized to UTC.
	require.Equal(t, "2025-03-14T09:00:00Z", entries[1].Date)
}

func TestJSON_EmptyRecordsRenderAsEmptyArray(t *testing.T) {
	data, err := JSON(nil)
	require.NoError(t, err)
	require.Equal(t, "[]\n", string(data))
}

func TestJSON_SameRecordsSameBytes(t *testing.T) {
	first, err := JSON(sampleRecords())
	require.NoError(t, err)

	second, err := JSON(sampleRecords())
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestText(t *testing.T) {
	data := Text(sampleRecords())
	require.Equal(t, "first@example.com\nsecond@example.com\n", string(data))
}

func TestText_Empty(t *testing.T) {
	require.Empty(t, Text(nil))
}

func TestWriteFile(t *testing.T) {
	tests := []struct {
		name   string
		format domain.OutputFormat
	}{
		{name: "json", format: domain.FormatJSON},
		{name: "text", format: domain.FormatText},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out."+test.name)
			require.NoError(t, WriteFile(path, test.format, sampleRecords()))

			got, err := os.ReadFile(path)
			require.NoError(t, err)

			var want []byte
			if test.format == domain.FormatJSON {
				want, err = JSON(sampleRecords())
				require.NoError(t, err)
			} else {
				want = Text(sampleRecords())
			}
			require.Equal(t, want, got)
		})
	}
}

func TestWriteFile_ReplacesPreviousExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, WriteFile(path, domain.FormatText, sampleRecords()))
	require.NoError(t, WriteFile(path, domain.FormatText, sampleRecords()[:1]))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "first@example.com\n", string(got))
}

func TestWriteFile_UnknownFormat(t *testing.T) {
	err := WriteFile(filepath.Join(t.TempDir(), "out"), domain.OutputFormat("yaml"), sampleRecords())
	require.Error(t, err)
}
