package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SessionVersion is the schema version written into persisted session
// documents. Loaders ignore unknown fields, so bumping this is only needed
// when a field changes meaning.
const SessionVersion = 1

// SessionID uniquely identifies a scan session.
// It wraps uuid.UUID to provide type safety at the domain layer.
type SessionID uuid.UUID

// NewSessionID returns a random session identifier.
func NewSessionID() SessionID { return SessionID(uuid.New()) }

// String returns the canonical textual form of the identifier.
func (id SessionID) String() string { return uuid.UUID(id).String() }

// MarshalText implements encoding.TextMarshaler so the identifier serializes
// as its canonical string inside session documents.
func (id SessionID) MarshalText() ([]byte, error) {
	return []byte(uuid.UUID(id).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *SessionID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return fmt.Errorf("could not parse session id: %w", err)
	}
	*id = SessionID(u)

	return nil
}

// SessionStatus represents the lifecycle state of a scan session.
type SessionStatus string

const (
	// SessionStatusIdle indicates the session has been created but processing
	// has not started yet.
	SessionStatusIdle SessionStatus = "IDLE"
	// SessionStatusRunning indicates addresses are being processed.
	SessionStatusRunning SessionStatus = "RUNNING"
	// SessionStatusPaused indicates processing was interrupted cooperatively
	// and the session can be resumed.
	SessionStatusPaused SessionStatus = "PAUSED"
	// SessionStatusCompleted indicates every address was classified and the
	// results were exported. Terminal.
	SessionStatusCompleted SessionStatus = "COMPLETED"
	// SessionStatusFailed indicates the session halted on an unrecoverable
	// error (a session store failure). Terminal.
	SessionStatusFailed SessionStatus = "FAILED"
)

// validStatusTransitions enumerates the allowed session lifecycle moves.
// Completed and Failed are terminal.
var validStatusTransitions = map[SessionStatus][]SessionStatus{ //nolint: gochecknoglobals
	SessionStatusIdle:      {SessionStatusRunning},
	SessionStatusRunning:   {SessionStatusCompleted, SessionStatusPaused, SessionStatusFailed},
	SessionStatusPaused:    {SessionStatusRunning, SessionStatusFailed},
	SessionStatusCompleted: {},
	SessionStatusFailed:    {},
}

// CanTransitionTo reports whether moving from s to next is a legal lifecycle
// transition.
func (s SessionStatus) CanTransitionTo(next SessionStatus) bool {
	for _, allowed := range validStatusTransitions[s] {
		if next == allowed {
			return true
		}
	}

	return false
}

// OutputFormat selects the export encoding for a session's results.
type OutputFormat string

const (
	// FormatJSON exports results as a JSON array of email/date objects.
	FormatJSON OutputFormat = "json"
	// FormatText exports results as one address per line.
	FormatText OutputFormat = "txt"
)

// ParseOutputFormat validates a user-supplied format string.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatText:
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown output format %q (expected json or txt)", s)
	}
}

// AvailableRecord is one address that classified as AVAILABLE, together with
// the UTC time the classification was assigned. The stored time is
// authoritative: exports reuse it instead of the export time, so re-exporting
// an old session reproduces the original dates.
type AvailableRecord struct {
	// Email is the available address.
	Email string `json:"email"`
	// CheckedAt is when the address classified as AVAILABLE, in UTC.
	CheckedAt time.Time `json:"checkedAt"`
}

// Tallies counts terminal classifications per class.
type Tallies struct {
	// Available counts AVAILABLE classifications.
	Available int `json:"available"`
	// Taken counts TAKEN classifications.
	Taken int `json:"taken"`
	// Unavailable counts UNAVAILABLE classifications.
	Unavailable int `json:"unavailable"`
}

// Processed returns the total number of classified addresses.
func (t Tallies) Processed() int { return t.Available + t.Taken + t.Unavailable }

// ScanSession is the unit of resumable batch work. The entry list and its
// order are fixed at creation; Cursor is the index of the next unprocessed
// entry and only ever moves forward, one entry at a time, after that entry's
// classification has been recorded. A single owner mutates the session;
// everyone else works on snapshots.
type ScanSession struct {
	// ID is the unique identifier of the session.
	ID SessionID `json:"id"`
	// Version is the persisted schema version.
	Version int `json:"version"`

	// Source is the path of the input list the entries were read from.
	Source string `json:"source"`
	// Entries is the ordered list of raw addresses to process.
	Entries []string `json:"entries"`
	// Cursor is the index of the next entry to process. Entries before the
	// cursor have been classified exactly once.
	Cursor int `json:"cursor"`

	// Format is the export encoding chosen at session creation.
	Format OutputFormat `json:"format"`
	// OutputPath is the destination of the exported results.
	OutputPath string `json:"outputPath"`

	// Available accumulates the AVAILABLE classifications in processing order.
	Available []AvailableRecord `json:"available"`
	// Tallies counts classifications per class.
	Tallies Tallies `json:"tallies"`

	// Status is the current lifecycle state of the session.
	Status SessionStatus `json:"status"`

	// CreatedAt is when the session was created.
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is when the session was last mutated.
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewScanSession creates an idle session over the given ordered entry list.
func NewScanSession(source string, entries []string, format OutputFormat, outputPath string) *ScanSession {
	now := time.Now().UTC()

	return &ScanSession{
		ID:         NewSessionID(),
		Version:    SessionVersion,
		Source:     source,
		Entries:    entries,
		Format:     format,
		OutputPath: outputPath,
		Status:     SessionStatusIdle,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// TransitionTo moves the session to the next lifecycle state, rejecting
// illegal transitions.
func (s *ScanSession) TransitionTo(next SessionStatus) error {
	if !s.Status.CanTransitionTo(next) {
		return fmt.Errorf("invalid session transition from %s to %s", s.Status, next)
	}
	s.Status = next
	s.UpdatedAt = time.Now().UTC()

	return nil
}

// Current returns the entry under the cursor. ok is false once every entry
// has been processed.
func (s *ScanSession) Current() (entry string, ok bool) {
	if s.Cursor >= len(s.Entries) {
		return "", false
	}

	return s.Entries[s.Cursor], true
}

// RecordOutcome stores the classification for the entry under the cursor and
// advances the cursor past it. Recording and advancing are a single step so
// the cursor can never move without an outcome and no entry is ever counted
// twice. checkedAt is stored (in UTC) with AVAILABLE records.
func (s *ScanSession) RecordOutcome(outcome Classification, checkedAt time.Time) error {
	if s.Cursor >= len(s.Entries) {
		return fmt.Errorf("no entry under cursor %d (total %d)", s.Cursor, len(s.Entries))
	}

	switch outcome {
	case ClassificationAvailable:
		s.Available = append(s.Available, AvailableRecord{
			Email:     s.Entries[s.Cursor],
			CheckedAt: checkedAt.UTC(),
		})
		s.Tallies.Available++
	case ClassificationTaken:
		s.Tallies.Taken++
	case ClassificationUnavailable:
		s.Tallies.Unavailable++
	default:
		return fmt.Errorf("unknown classification %q", outcome)
	}

	s.Cursor++
	s.UpdatedAt = checkedAt.UTC()

	return nil
}

// Done reports whether every entry has been processed.
func (s *ScanSession) Done() bool { return s.Cursor >= len(s.Entries) }

// Remaining returns the number of unprocessed entries.
func (s *ScanSession) Remaining() int { return len(s.Entries) - s.Cursor }
