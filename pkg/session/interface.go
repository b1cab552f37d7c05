// Package session defines the persistence interface for resumable scan
// sessions. A store holds at most one live session document at a time and the
// scan engine is its only writer.
package session

import (
	"context"

	"github.com/lI-Isekai-Il/EA-Email-Finder/pkg/domain"
)

// Store is the abstraction over session persistence.
//
//go:generate mockgen -package mocksession -source=interface.go -destination=mock/mocksession.go *
type Store interface {
	// Load returns the stored session, or nil when none exists. Unreadable or
	// corrupt documents are reported with an ErrSessionStore kind.
	Load(ctx context.Context) (*domain.ScanSession, error)
	// Save durably replaces the stored session. The previously stored
	// document survives intact when the write fails partway.
	Save(ctx context.Context, sess *domain.ScanSession) error
	// Archive moves the stored session document aside so a new session can
	// start, keeping the old document around for inspection.
	Archive(ctx context.Context, sess *domain.ScanSession) error
}
