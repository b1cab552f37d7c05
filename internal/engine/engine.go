// Package engine drives a scan session from its cursor to the end of the
// entry list: it checks each address against both endpoints, classifies it,
// persists progress, and exports the results on completion.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/lI-Isekai-Il/EA-Email-Finder/internal/config"
	"github.com/lI-Isekai-Il/EA-Email-Finder/internal/pacer"
	"github.com/lI-Isekai-Il/EA-Email-Finder/pkg/checker"
	"github.com/lI-Isekai-Il/EA-Email-Finder/pkg/domain"
	"github.com/lI-Isekai-Il/EA-Email-Finder/pkg/export"
	"github.com/lI-Isekai-Il/EA-Email-Finder/pkg/logger"
	"github.com/lI-Isekai-Il/EA-Email-Finder/pkg/session"
)

// Endpoint labels used in logs and metrics.
const (
	endpointEA        = "ea"
	endpointMicrosoft = "microsoft"
)

// Options configure how a run persists progress and reports it.
// These settings are typically derived from application configuration.
type Options struct {
	// SaveEvery persists the session after every N recorded outcomes. Values
	// below 1 behave as 1. Pauses and completion always persist regardless.
	SaveEvery int
	// OnProgress, when set, is called synchronously after every recorded
	// outcome.
	OnProgress func(Progress)
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		SaveEvery: cfg.Session.SaveEvery,
	}
}

// Deps are the collaborators a run needs.
type Deps struct {
	// EA answers registration-status checks.
	EA checker.EAChecker
	// Microsoft answers signup-availability checks.
	Microsoft checker.MSChecker
	// EAPacer spaces and retries EA checks.
	EAPacer *pacer.Controller
	// MicrosoftPacer spaces and retries Microsoft checks.
	MicrosoftPacer *pacer.Controller
	// Store persists the session between outcomes.
	Store session.Store
	// Recorder writes optional per-address artifacts. May be nil.
	Recorder *export.Recorder
	// Meter provides the instruments the engine reports on.
	Meter metric.MeterProvider
}

// Progress describes one recorded outcome, for live reporting.
type Progress struct {
	// Processed is the number of classified entries so far.
	Processed int
	// Total is the session entry count.
	Total int
	// Result is the outcome that was just recorded.
	Result domain.CheckResult
}

// Snapshot is a point-in-time copy of the run state, safe to read from other
// goroutines.
type Snapshot struct {
	// SessionID identifies the session being processed.
	SessionID string `json:"sessionId"`
	// Status is the session lifecycle state.
	Status domain.SessionStatus `json:"status"`
	// Source is the input list path.
	Source string `json:"source"`
	// Processed is the number of classified entries.
	Processed int `json:"processed"`
	// Total is the session entry count.
	Total int `json:"total"`
	// Tallies counts classifications per class.
	Tallies domain.Tallies `json:"tallies"`
	// Current is the address under check, empty between entries.
	Current string `json:"current,omitempty"`
	// UpdatedAt is when the session was last mutated.
	UpdatedAt time.Time `json:"updatedAt"`
}

// Summary describes how a run ended.
type Summary struct {
	// SessionID identifies the session.
	SessionID string
	// Status is the session state the run ended in.
	Status domain.SessionStatus
	// Total is the session entry count.
	Total int
	// Tallies counts classifications per class.
	Tallies domain.Tallies
	// OutputPath is where completed sessions exported their results.
	OutputPath string
	// Format is the export encoding.
	Format domain.OutputFormat
}

// Engine runs one scan session at a time. It owns the session value for the
// duration of Run; other goroutines observe progress through Snapshot.
type Engine struct {
	options Options

	// ea answers registration-status checks.
	ea checker.EAChecker
	// microsoft answers signup-availability checks.
	microsoft checker.MSChecker
	// eaPacer spaces and retries EA checks.
	eaPacer *pacer.Controller
	// microsoftPacer spaces and retries Microsoft checks.
	microsoftPacer *pacer.Controller
	// store persists the session between outcomes.
	store session.Store
	// recorder writes optional per-address artifacts.
	recorder *export.Recorder
	// metrics holds the engine instruments.
	metrics *engineMetrics

	// mu protects snap.
	mu sync.Mutex
	// snap is the latest run state, copied out by Snapshot.
	snap Snapshot
}

// New creates an Engine from its collaborators.
func New(deps Deps, options Options) (*Engine, error) {
	if options.SaveEvery < 1 {
		options.SaveEvery = 1
	}

	m, err := newEngineMetrics(deps.Meter)
	if err != nil {
		return nil, fmt.Errorf("could not create engine metrics: %w", err)
	}

	return &Engine{
		options:        options,
		ea:             deps.EA,
		microsoft:      deps.Microsoft,
		eaPacer:        deps.EAPacer,
		microsoftPacer: deps.MicrosoftPacer,
		store:          deps.Store,
		recorder:       deps.Recorder,
		metrics:        m,
	}, nil
}

// Snapshot returns a copy of the current run state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.snap
}

// Run processes the session until every entry is classified, the context is
// cancelled, or persistence fails. Cancellation is cooperative: the in-flight
// endpoint attempt finishes (or times out on its own clock) and the session
// pauses before the next attempt, so a paused run reports no error. A session
// that is already completed returns its summary untouched.
func (e *Engine) Run(ctx context.Context, sess *domain.ScanSession) (*Summary, error) {
	if sess.Status == domain.SessionStatusCompleted {
		return e.summarize(sess), nil
	}

	// Attempts and persistence keep working while the run context winds down.
	detached := context.WithoutCancel(ctx)

	if sess.Status != domain.SessionStatusRunning {
		if err := sess.TransitionTo(domain.SessionStatusRunning); err != nil {
			return e.summarize(sess), fmt.Errorf("could not start session: %w", err)
		}
	}
	e.updateSnapshot(sess, "")
	if err := e.persist(detached, sess); err != nil {
		return e.summarize(sess), err
	}

	logger.Info(ctx, "session running",
		zap.String("sessionID", sess.ID.String()),
		zap.Int("entries", len(sess.Entries)),
		zap.Int("cursor", sess.Cursor))

	sinceSave := 0
	for !sess.Done() {
		if ctx.Err() != nil {
			return e.pause(detached, sess)
		}

		entry, _ := sess.Current()
		e.updateSnapshot(sess, entry)
		entryCtx := logger.WithFields(ctx,
			zap.String("email", entry),
			zap.Int("position", sess.Cursor+1),
			zap.Int("total", len(sess.Entries)))

		res, err := e.checkEntry(entryCtx, detached, entry)
		if err != nil {
			return e.pause(detached, sess)
		}

		if err := sess.RecordOutcome(res.Classification, res.CheckedAt); err != nil {
			return e.summarize(sess), fmt.Errorf("could not record outcome: %w", err)
		}
		e.metrics.recordClassification(entryCtx, res.Classification)
		e.updateSnapshot(sess, "")

		logger.Info(entryCtx, "address classified",
			zap.String("classification", string(res.Classification)))

		if err := e.recorder.Record(res); err != nil {
			logger.Warn(entryCtx, "could not write artifact", zap.Error(err))
		}

		sinceSave++
		if sinceSave >= e.options.SaveEvery {
			if err := e.persist(detached, sess); err != nil {
				return e.summarize(sess), err
			}
			sinceSave = 0
		}

		if e.options.OnProgress != nil {
			e.options.OnProgress(Progress{
				Processed: sess.Tallies.Processed(),
				Total:     len(sess.Entries),
				Result:    res,
			})
		}
	}

	return e.complete(detached, sess)
}

// checkEntry produces the classification for one entry. A non-nil error means
// the run context was cancelled and nothing should be recorded.
func (e *Engine) checkEntry(ctx, detached context.Context, entry string) (domain.CheckResult, error) {
	res := domain.CheckResult{Email: entry}

	addr, err := domain.ParseEmailAddress(entry)
	if err != nil {
		res.EA = domain.EAStatusIndeterminate
		res.Note = "invalid address syntax"
		res.CheckedAt = time.Now().UTC()
		res.Classification = domain.Classify(res.EA, res.Microsoft)

		return res, nil
	}

	res.EA, err = e.checkEA(ctx, detached, addr)
	if err != nil {
		return res, err
	}

	if res.EA == domain.EAStatusLinked {
		res.Microsoft, err = e.checkMicrosoft(ctx, detached, addr)
		if err != nil {
			return res, err
		}
	}

	switch {
	case res.EA == domain.EAStatusNotLinked:
		res.Note = "not registered to an EA account"
	case res.EA == domain.EAStatusIndeterminate:
		res.Note = "registration check gave no verdict"
	case res.Microsoft == domain.MSStatusIndeterminate:
		res.Note = "availability check gave no verdict"
	}

	res.CheckedAt = time.Now().UTC()
	res.Classification = domain.Classify(res.EA, res.Microsoft)

	return res, nil
}

// checkEA runs the EA stage under its pacer. An indeterminate verdict stands
// in for exhausted retries and permanent failures; a cancelled run context
// surfaces as an error instead.
func (e *Engine) checkEA(ctx, detached context.Context, addr domain.EmailAddress) (domain.EAStatus, error) {
	var status domain.EAStatus

	start := time.Now()
	err := e.eaPacer.Do(ctx, func(context.Context) error {
		var cerr error
		status, cerr = e.ea.Check(detached, addr)

		return cerr
	})
	e.metrics.recordCheck(ctx, endpointEA, time.Since(start), err)

	if err != nil {
		if ctx.Err() != nil {
			return status, ctx.Err()
		}

		logger.Warn(ctx, "registration check failed", zap.Error(err))

		return domain.EAStatusIndeterminate, nil
	}

	return status, nil
}

// checkMicrosoft runs the Microsoft stage under its pacer, with the same
// error handling as checkEA.
func (e *Engine) checkMicrosoft(ctx, detached context.Context, addr domain.EmailAddress) (domain.MSStatus, error) {
	var status domain.MSStatus

	start := time.Now()
	err := e.microsoftPacer.Do(ctx, func(context.Context) error {
		var cerr error
		status, cerr = e.microsoft.Check(detached, addr)

		return cerr
	})
	e.metrics.recordCheck(ctx, endpointMicrosoft, time.Since(start), err)

	if err != nil {
		if ctx.Err() != nil {
			return status, ctx.Err()
		}

		logger.Warn(ctx, "availability check failed", zap.Error(err))

		return domain.MSStatusIndeterminate, nil
	}

	return status, nil
}

// pause transitions the session to PAUSED and persists it. Pausing is a
// normal way for a run to end, so no error is reported unless persistence
// fails.
func (e *Engine) pause(ctx context.Context, sess *domain.ScanSession) (*Summary, error) {
	if err := sess.TransitionTo(domain.SessionStatusPaused); err != nil {
		return e.summarize(sess), fmt.Errorf("could not pause session: %w", err)
	}
	e.updateSnapshot(sess, "")

	if err := e.persist(ctx, sess); err != nil {
		return e.summarize(sess), err
	}

	logger.Info(ctx, "session paused",
		zap.String("sessionID", sess.ID.String()),
		zap.Int("cursor", sess.Cursor),
		zap.Int("remaining", sess.Remaining()))

	return e.summarize(sess), nil
}

// complete transitions the session to COMPLETED, persists it, exports the
// results, and archives the session document. The completed state is saved
// before exporting so an export failure can be retried without rerunning any
// checks.
func (e *Engine) complete(ctx context.Context, sess *domain.ScanSession) (*Summary, error) {
	if err := sess.TransitionTo(domain.SessionStatusCompleted); err != nil {
		return e.summarize(sess), fmt.Errorf("could not complete session: %w", err)
	}
	e.updateSnapshot(sess, "")

	if err := e.persist(ctx, sess); err != nil {
		return e.summarize(sess), err
	}

	if err := export.WriteFile(sess.OutputPath, sess.Format, sess.Available); err != nil {
		return e.summarize(sess), fmt.Errorf("could not export results: %w", err)
	}

	if err := e.store.Archive(ctx, sess); err != nil {
		return e.summarize(sess), fmt.Errorf("could not archive session: %w", err)
	}

	logger.Info(ctx, "session completed",
		zap.String("sessionID", sess.ID.String()),
		zap.Int("available", sess.Tallies.Available),
		zap.Int("taken", sess.Tallies.Taken),
		zap.Int("unavailable", sess.Tallies.Unavailable),
		zap.String("output", sess.OutputPath))

	return e.summarize(sess), nil
}

// persist saves the session. A failed save marks the session FAILED, because
// continuing to check addresses whose outcomes cannot be recorded would waste
// them.
func (e *Engine) persist(ctx context.Context, sess *domain.ScanSession) error {
	if err := e.store.Save(ctx, sess); err != nil {
		logger.Error(ctx, "could not persist session", zap.Error(err))

		if terr := sess.TransitionTo(domain.SessionStatusFailed); terr == nil {
			e.updateSnapshot(sess, "")
		}

		return fmt.Errorf("could not persist session: %w", err)
	}

	return nil
}

// summarize builds a Summary from the session's current state.
func (e *Engine) summarize(sess *domain.ScanSession) *Summary {
	return &Summary{
		SessionID:  sess.ID.String(),
		Status:     sess.Status,
		Total:      len(sess.Entries),
		Tallies:    sess.Tallies,
		OutputPath: sess.OutputPath,
		Format:     sess.Format,
	}
}

// updateSnapshot publishes the session state for Snapshot readers.
func (e *Engine) updateSnapshot(sess *domain.ScanSession, current string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.snap = Snapshot{
		SessionID: sess.ID.String(),
		Status:    sess.Status,
		Source:    sess.Source,
		Processed: sess.Tallies.Processed(),
		Total:     len(sess.Entries),
		Tallies:   sess.Tallies,
		Current:   current,
		UpdatedAt: sess.UpdatedAt,
	}
}
