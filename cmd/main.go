// Package main provides the CLI entrypoint for the email availability finder.
// It wires subcommands (scan, check, export), loads configuration, and initializes logging.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"net/http/cookiejar"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lI-Isekai-Il/EA-Email-Finder/internal/config"
	"github.com/lI-Isekai-Il/EA-Email-Finder/internal/pacer"
	"github.com/lI-Isekai-Il/EA-Email-Finder/pkg/checker/ea"
	"github.com/lI-Isekai-Il/EA-Email-Finder/pkg/checker/mslive"
	"github.com/lI-Isekai-Il/EA-Email-Finder/pkg/logger"
)

// checkStack bundles the two endpoint clients with their pacing controllers.
// Each endpoint gets its own controller so a backoff on one never stalls the
// other.
type checkStack struct {
	ea        *ea.Client
	eaPacer   *pacer.Controller
	microsoft *mslive.Client
	msPacer   *pacer.Controller
}

// newCheckStack builds the endpoint clients and their pacers from
// configuration. Each client gets its own cookie jar so session cookies from
// one service never leak into requests to the other.
func newCheckStack(ctx context.Context, cfg *config.Config) *checkStack {
	eaJar, err := cookiejar.New(nil)
	if err != nil {
		logger.Fatal(ctx, "could not create cookie jar", zap.Error(err))
	}
	msJar, err := cookiejar.New(nil)
	if err != nil {
		logger.Fatal(ctx, "could not create cookie jar", zap.Error(err))
	}

	pacing := pacer.NewOptions(cfg)

	return &checkStack{
		ea: ea.New(&http.Client{Jar: eaJar}, ea.Options{
			BaseURL:   cfg.EA.BaseURL,
			UserAgent: cfg.Client.UserAgent,
			Timeout:   cfg.EA.Timeout,
		}),
		eaPacer: pacer.New(pacing),
		microsoft: mslive.New(&http.Client{Jar: msJar}, mslive.Options{
			BaseURL:   cfg.Microsoft.BaseURL,
			UserAgent: cfg.Client.UserAgent,
			Timeout:   cfg.Microsoft.Timeout,
		}),
		msPacer: pacer.New(pacing),
	}
}

// prime warms both clients' cookie jars. Failures are logged and ignored:
// checks work without the cookies, they just look less like the browser flow.
func (s *checkStack) prime(ctx context.Context) {
	if err := s.ea.Prime(ctx); err != nil {
		logger.Warn(ctx, "could not prime EA client", zap.Error(err))
	}
	if err := s.microsoft.Prime(ctx); err != nil {
		logger.Warn(ctx, "could not prime Microsoft client", zap.Error(err))
	}
}

// main sets up the root Cobra command, loads configuration and logging, and
// registers subcommands before executing the CLI.
func main() {
	rootCmd := &cobra.Command{
		Use: "emailfinder",
	}

	// there is no way to access flags before command execution in cobra.
	// configPath here is parsed using the standard flags package.
	// following line is just added to prevent errors when Cobra is parsing the flags.
	rootCmd.PersistentFlags().StringP("config", "c", "config.yml", "Config File Path")

	configPath := flag.String("c", "config.yml", "The config file path")
	flag.Parse()

	log.Println("loading config ...")
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("could not load config file", err)
	}

	logger.Setup(cfg.Environment)

	ctx := context.Background()

	defer func() {
		if p := recover(); p != nil {
			logger.Error(ctx, "captured panic, exiting...", zap.Any("panic", p))
			_ = logger.Get(ctx).Sync()

			panic(p)
		}
	}()

	rootCmd.AddCommand(
		scanCommand(cfg),
		checkCommand(cfg),
		exportCommand(cfg),
	)

	err = rootCmd.Execute()
	_ = logger.Get(ctx).Sync()
	if err != nil {
		os.Exit(1) //nolint: gocritic
	}
}
