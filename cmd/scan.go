package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lI-Isekai-Il/EA-Email-Finder/internal/api"
	"github.com/lI-Isekai-Il/EA-Email-Finder/internal/config"
	"github.com/lI-Isekai-Il/EA-Email-Finder/internal/engine"
	"github.com/lI-Isekai-Il/EA-Email-Finder/pkg/domain"
	"github.com/lI-Isekai-Il/EA-Email-Finder/pkg/export"
	"github.com/lI-Isekai-Il/EA-Email-Finder/pkg/logger"
	"github.com/lI-Isekai-Il/EA-Email-Finder/pkg/session/filestore"
)

// setupServer starts the local status server in the background and returns a
// function that shuts it down. An empty HTTP address disables the server.
func setupServer(ctx context.Context, cfg *config.Config, eng *engine.Engine) func(ctx context.Context) {
	if cfg.HTTP.Addr == "" {
		return func(context.Context) {}
	}

	server := api.NewServer(api.Deps{Status: eng}, api.NewOptions(cfg))

	go func() {
		logger.Info(ctx, "starting status server...", zap.String("addr", cfg.HTTP.Addr))
		if err := server.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error(ctx, "could not start status server", zap.Error(err))
			}
		}
	}()

	return func(ctx context.Context) {
		logger.Info(ctx, "stopping status server...")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(ctx, "could not stop status server", zap.Error(err))
		}
	}
}

// openSession picks the session the scan will run: the stored one when
// resuming, otherwise a fresh one built from the input flags. An unfinished
// stored session blocks a fresh scan unless --discard is given, so progress
// is never thrown away silently.
func openSession(
	ctx context.Context,
	store *filestore.FileStore,
	resume, discard bool,
	input, format, output string,
) *domain.ScanSession {
	existing, err := store.Load(ctx)
	if err != nil {
		logger.Fatal(ctx, "could not load session", zap.Error(err))
	}

	if resume {
		if existing == nil {
			logger.Fatal(ctx, "no session to resume", zap.String("path", store.Path()))
		}
		if existing.Status == domain.SessionStatusCompleted || existing.Status == domain.SessionStatusFailed {
			logger.Fatal(ctx, "stored session is finished, start a new scan",
				zap.String("status", string(existing.Status)))
		}
		logger.Info(ctx, "resuming session",
			zap.String("sessionID", existing.ID.String()),
			zap.Int("cursor", existing.Cursor),
			zap.Int("entries", len(existing.Entries)))

		return existing
	}

	if existing != nil && existing.Status != domain.SessionStatusCompleted && !discard {
		logger.Fatal(ctx, "an unfinished session exists; rerun with --resume to continue it or --discard to drop it",
			zap.String("sessionID", existing.ID.String()),
			zap.Int("remaining", existing.Remaining()))
	}

	if input == "" {
		logger.Fatal(ctx, "an input file is required to start a new scan")
	}

	fmtParsed, err := domain.ParseOutputFormat(format)
	if err != nil {
		logger.Fatal(ctx, "invalid output format", zap.Error(err))
	}
	if output == "" {
		output = "available." + string(fmtParsed)
	}

	entries, err := engine.ReadAddressList(input)
	if err != nil {
		logger.Fatal(ctx, "could not read input file", zap.Error(err))
	}
	if len(entries) == 0 {
		logger.Fatal(ctx, "input file contains no addresses", zap.String("input", input))
	}

	return domain.NewScanSession(input, entries, fmtParsed, output)
}

func scanCommand(cfg *config.Config) *cobra.Command {
	var (
		input   string
		format  string
		output  string
		resume  bool
		discard bool
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Runs a batch scan over an address list, resumable across restarts",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			store := filestore.New(cfg.Session.Path)
			sess := openSession(ctx, store, resume, discard, input, format, output)

			mp, err := api.NewMeterProvider()
			if err != nil {
				logger.Fatal(ctx, "could not create meter provider", zap.Error(err))
			}

			stack := newCheckStack(ctx, cfg)
			stack.prime(ctx)

			options := engine.NewOptions(cfg)
			options.OnProgress = func(p engine.Progress) {
				fmt.Printf("[%d/%d] %s -> %s\n", p.Processed, p.Total, p.Result.Email, p.Result.Classification)
			}

			eng, err := engine.New(engine.Deps{
				EA:             stack.ea,
				Microsoft:      stack.microsoft,
				EAPacer:        stack.eaPacer,
				MicrosoftPacer: stack.msPacer,
				Store:          store,
				Recorder:       export.NewRecorder(cfg.Artifacts.Dir),
				Meter:          mp,
			}, options)
			if err != nil {
				logger.Fatal(ctx, "could not create scan engine", zap.Error(err))
			}

			stopWebserver := setupServer(ctx, cfg, eng)

			summary, runErr := eng.Run(ctx, sess)

			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
			defer cancel()
			stopWebserver(shutdownCtx)

			if runErr != nil {
				logger.Fatal(ctx, "scan halted", zap.Error(runErr))
			}
			printSummary(summary)
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Path of the address list, one address per line")
	cmd.Flags().StringVar(&format, "format", string(domain.FormatJSON), "Output format: json or txt")
	cmd.Flags().StringVar(&output, "output", "", "Path of the exported results (default available.<format>)")
	cmd.Flags().BoolVar(&resume, "resume", false, "Continue the stored session instead of starting a new scan")
	cmd.Flags().BoolVar(&discard, "discard", false, "Drop an unfinished stored session and start over")

	return cmd
}

// printSummary writes the per-outcome totals the scan ended with.
func printSummary(s *engine.Summary) {
	fmt.Printf("\nsession %s %s: %d/%d processed\n",
		s.SessionID, s.Status, s.Tallies.Processed(), s.Total)
	fmt.Printf("  available:   %d\n", s.Tallies.Available)
	fmt.Printf("  taken:       %d\n", s.Tallies.Taken)
	fmt.Printf("  unavailable: %d\n", s.Tallies.Unavailable)
	if s.Status == domain.SessionStatusCompleted {
		fmt.Printf("  results written to %s\n", s.OutputPath)
	} else if s.Status == domain.SessionStatusPaused {
		fmt.Println("  rerun with --resume to continue")
	}
}
