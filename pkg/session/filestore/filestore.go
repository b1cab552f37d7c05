// Package filestore provides a session.Store implementation that persists the
// session as a single JSON document on the local filesystem.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lI-Isekai-Il/EA-Email-Finder/pkg/domain"
	"github.com/lI-Isekai-Il/EA-Email-Finder/pkg/serrors"
	"github.com/lI-Isekai-Il/EA-Email-Finder/pkg/session"
)

// FileStore stores one session document at a fixed path. Saves are atomic:
// the document is written to a temporary file in the destination directory
// and renamed over the target, so a crash mid-save leaves the previous
// document untouched. Loading tolerates unknown fields, letting newer
// documents open under older binaries.
type FileStore struct {
	path string
}

// New returns a FileStore persisting to path.
func New(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the location of the session document.
func (f *FileStore) Path() string { return f.path }

// Load reads and decodes the session document. A missing file means no
// session exists and returns (nil, nil).
func (f *FileStore) Load(_ context.Context) (*domain.ScanSession, error) {
	b, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrSessionStore, err, "could not read session file")
	}

	var sess domain.ScanSession
	if err := json.Unmarshal(b, &sess); err != nil {
		return nil, serrors.Wrap(serrors.ErrSessionStore, err, "could not decode session file %s", f.path)
	}

	return &sess, nil
}

// Save writes the session document via a temp file and rename.
func (f *FileStore) Save(_ context.Context, sess *domain.ScanSession) error {
	b, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return serrors.Wrap(serrors.ErrSessionStore, err, "could not encode session")
	}
	b = append(b, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".session-*.tmp")
	if err != nil {
		return serrors.Wrap(serrors.ErrSessionStore, err, "could not create temp file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)

		return serrors.Wrap(serrors.ErrSessionStore, err, "could not write session")
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)

		return serrors.Wrap(serrors.ErrSessionStore, err, "could not flush session")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)

		return serrors.Wrap(serrors.ErrSessionStore, err, "could not close temp file")
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		_ = os.Remove(tmpName)

		return serrors.Wrap(serrors.ErrSessionStore, err, "could not replace session file")
	}

	return nil
}

// Archive renames the session document aside, suffixed with a short session
// id, so the path is free for the next session. A missing document is not an
// error.
func (f *FileStore) Archive(_ context.Context, sess *domain.ScanSession) error {
	dest := fmt.Sprintf("%s.%s.done", f.path, shortID(sess.ID))
	if err := os.Rename(f.path, dest); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return serrors.Wrap(serrors.ErrSessionStore, err, "could not archive session file")
	}

	return nil
}

func shortID(id domain.SessionID) string {
	s := id.String()
	if len(s) > 8 {
		return s[:8]
	}

	return s
}

// Ensure FileStore conforms to the session.Store interface at compile time.
var _ session.Store = (*FileStore)(nil)
