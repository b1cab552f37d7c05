package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lI-Isekai-Il/EA-Email-Finder/internal/config"
	"github.com/lI-Isekai-Il/EA-Email-Finder/pkg/domain"
	"github.com/lI-Isekai-Il/EA-Email-Finder/pkg/logger"
)

func checkCommand(cfg *config.Config) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Checks a single address and prints its classification",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			addr, err := domain.ParseEmailAddress(email)
			if err != nil {
				fmt.Printf("%s\n  invalid address: %v\n  classification: %s\n",
					email, err, domain.ClassificationUnavailable)
				os.Exit(1)
			}

			stack := newCheckStack(ctx, cfg)
			stack.prime(ctx)

			eaStatus := domain.EAStatusIndeterminate
			if err := stack.eaPacer.Do(ctx, func(ctx context.Context) error {
				var cerr error
				eaStatus, cerr = stack.ea.Check(ctx, addr)

				return cerr
			}); err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Warn(ctx, "registration check failed", zap.Error(err))
			}

			// the availability stage only matters for linked addresses
			msStatus := domain.MSStatus("")
			if eaStatus == domain.EAStatusLinked {
				msStatus = domain.MSStatusIndeterminate
				if err := stack.msPacer.Do(ctx, func(ctx context.Context) error {
					var cerr error
					msStatus, cerr = stack.microsoft.Check(ctx, addr)

					return cerr
				}); err != nil {
					if ctx.Err() != nil {
						return
					}
					logger.Warn(ctx, "availability check failed", zap.Error(err))
				}
			}

			printCheck(addr, eaStatus, msStatus)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "The address to check")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

// printCheck writes the per-stage verdicts and the final classification for
// one address.
func printCheck(addr domain.EmailAddress, ea domain.EAStatus, ms domain.MSStatus) {
	fmt.Println(addr.String())

	switch ea {
	case domain.EAStatusLinked:
		fmt.Println("  ea account:     linked")
	case domain.EAStatusNotLinked:
		fmt.Println("  ea account:     not linked")
	default:
		fmt.Println("  ea account:     unknown")
	}

	switch ms {
	case domain.MSStatusAvailable:
		fmt.Println("  ms sign-in:     available")
	case domain.MSStatusTaken:
		fmt.Println("  ms sign-in:     taken")
	case domain.MSStatusIndeterminate:
		fmt.Println("  ms sign-in:     unknown")
	default:
		fmt.Println("  ms sign-in:     skipped")
	}

	fmt.Printf("  classification: %s\n", domain.Classify(ea, ms))
}
