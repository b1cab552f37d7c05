package filestore_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lI-Isekai-Il/EA-Email-Finder/pkg/domain"
	"github.com/lI-Isekai-Il/EA-Email-Finder/pkg/serrors"
	"github.com/lI-Isekai-Il/EA-Email-Finder/pkg/session/filestore"

	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *filestore.FileStore {
	t.Helper()

	return filestore.New(filepath.Join(t.TempDir(), "session.json"))
}

func sampleSession() *domain.ScanSession {
	sess := domain.NewScanSession("email.txt",
		[]string{"a@x.com", "b@x.com", "c@x.com"},
		domain.FormatJSON,
		"out.json")
	_ = sess.TransitionTo(domain.SessionStatusRunning)
	_ = sess.RecordOutcome(domain.ClassificationAvailable, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	_ = sess.RecordOutcome(domain.ClassificationUnavailable, time.Date(2025, 6, 1, 12, 0, 5, 0, time.UTC))

	return sess
}

func TestFileStore_LoadMissing(t *testing.T) {
	st := newStore(t)

	sess, err := st.Load(context.Background())
	require.NoError(t, err)
	require.Nil(t, sess, "a missing file means no session")
}

func TestFileStore_SaveLoadRoundTrip(t *testing.T) {
	st := newStore(t)
	saved := sampleSession()

	require.NoError(t, st.Save(context.Background(), saved))

	loaded, err := st.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, loaded)

	require.Equal(t, saved.ID, loaded.ID)
	require.Equal(t, saved.Version, loaded.Version)
	require.Equal(t, saved.Source, loaded.Source)
	require.Equal(t, saved.Entries, loaded.Entries)
	require.Equal(t, saved.Cursor, loaded.Cursor)
	require.Equal(t, saved.Format, loaded.Format)
	require.Equal(t, saved.OutputPath, loaded.OutputPath)
	require.Equal(t, saved.Status, loaded.Status)
	require.Equal(t, saved.Tallies, loaded.Tallies)

	require.Len(t, loaded.Available, 1)
	require.Equal(t, saved.Available[0].Email, loaded.Available[0].Email)
	require.True(t, saved.Available[0].CheckedAt.Equal(loaded.Available[0].CheckedAt))
}

func TestFileStore_SaveReplacesPrevious(t *testing.T) {
	st := newStore(t)
	sess := sampleSession()

	require.NoError(t, st.Save(context.Background(), sess))
	require.NoError(t, sess.RecordOutcome(domain.ClassificationTaken, time.Now()))
	require.NoError(t, st.Save(context.Background(), sess))

	loaded, err := st.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, loaded.Cursor)
	require.Equal(t, 1, loaded.Tallies.Taken)
}

func TestFileStore_SaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	st := filestore.New(filepath.Join(dir, "session.json"))

	require.NoError(t, st.Save(context.Background(), sampleSession()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "session.json", entries[0].Name())
}

func TestFileStore_LoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	st := filestore.New(path)
	_, err := st.Load(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, serrors.ErrSessionStore)
}

func TestFileStore_LoadIgnoresUnknownFields(t *testing.T) {
	st := newStore(t)
	sess := sampleSession()
	require.NoError(t, st.Save(context.Background(), sess))

	// simulate a newer binary having written extra fields
	b, err := os.ReadFile(st.Path())
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(b, &doc))
	doc["futureField"] = map[string]any{"nested": true}
	doc["anotherAddition"] = 42
	b, err = json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(st.Path(), b, 0o600))

	loaded, err := st.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, sess.ID, loaded.ID)
	require.Equal(t, sess.Cursor, loaded.Cursor)
}

func TestFileStore_Archive(t *testing.T) {
	dir := t.TempDir()
	st := filestore.New(filepath.Join(dir, "session.json"))
	sess := sampleSession()

	require.NoError(t, st.Save(context.Background(), sess))
	require.NoError(t, st.Archive(context.Background(), sess))

	// the original path is free again
	loaded, err := st.Load(context.Background())
	require.NoError(t, err)
	require.Nil(t, loaded)

	// and the document still exists under an archive name
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Contains(t, entries[0].Name(), "session.json.")
	require.Contains(t, entries[0].Name(), ".done")
}

func TestFileStore_ArchiveMissingIsNoop(t *testing.T) {
	st := newStore(t)
	require.NoError(t, st.Archive(context.Background(), sampleSession()))
}
