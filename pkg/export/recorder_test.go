package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lI-Isekai-Il/EA-Email-Finder/pkg/domain"
)

func TestSafeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "someone@example.com", want: "someone_at_example_dot_com"},
		{in: "John.Doe@Example.COM", want: "john_dot_doe_at_example_dot_com"},
		{in: "user+tag@mail.io", want: "user_tag_at_mail_dot_io"},
		{in: "weird résumé@x.y", want: "weird_r_sum__at_x_dot_y"},
		{in: "under_score@ok.net", want: "under_score_at_ok_dot_net"},
	}

	for _, test := range tests {
		t.Run(test.in, func(t *testing.T) {
			require.Equal(t, test.want, SafeName(test.in))
		})
	}
}

func TestRecorder_Record(t *testing.T) {
	tests := []struct {
		name  string
		class domain.Classification
		dir   string
	}{
		{name: "available", class: domain.ClassificationAvailable, dir: "available"},
		{name: "taken", class: domain.ClassificationTaken, dir: "not_available_email"},
		{name: "unavailable", class: domain.ClassificationUnavailable, dir: "ea_not_available"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			root := t.TempDir()
			rec := NewRecorder(root)
			require.True(t, rec.Enabled())

			checkedAt := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
			res := domain.CheckResult{
				Email:          "someone@example.com",
				EA:             domain.EAStatusLinked,
				Classification: test.class,
				CheckedAt:      checkedAt,
			}
			require.NoError(t, rec.Record(res))

			path := filepath.Join(root, test.dir,
				fmt.Sprintf("someone_at_example_dot_com_%d.json", checkedAt.Unix()))
			data, err := os.ReadFile(path)
			require.NoError(t, err)

			var got domain.CheckResult
			require.NoError(t, json.Unmarshal(data, &got))
			require.Equal(t, res.Email, got.Email)
			require.Equal(t, test.class, got.Classification)
		})
	}
}

func TestRecorder_RepeatChecksKeepSeparateArtifacts(t *testing.T) {
	root := t.TempDir()
	rec := NewRecorder(root)

	res := domain.CheckResult{
		Email:          "someone@example.com",
		Classification: domain.ClassificationAvailable,
		CheckedAt:      time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC),
	}
	require.NoError(t, rec.Record(res))

	res.CheckedAt = res.CheckedAt.Add(time.Minute)
	require.NoError(t, rec.Record(res))

	files, err := os.ReadDir(filepath.Join(root, "available"))
	require.NoError(t, err)
	require.Len(t, files, 2)
}

func TestRecorder_Disabled(t *testing.T) {
	rec := NewRecorder("")
	require.False(t, rec.Enabled())
	require.NoError(t, rec.Record(domain.CheckResult{Email: "someone@example.com"}))

	var nilRec *Recorder
	require.False(t, nilRec.Enabled())
	require.NoError(t, nilRec.Record(domain.CheckResult{Email: "someone@example.com"}))
}
