// Package checker defines the interfaces and shared types used to query the
// upstream endpoints that judge an email address: the EA registration-status
// check and the Microsoft signup-availability check.
package checker

import (
	"context"

	"github.com/lI-Isekai-Il/EA-Email-Finder/pkg/domain"
)

// EAChecker is the abstraction for the EA registration-status stage.
//
//go:generate mockgen -package mockchecker -source=interface.go -destination=mock/mockchecker.go *
type EAChecker interface {
	// Check returns the registration-status verdict for addr. Decisive
	// verdicts (Linked, NotLinked) come with a nil error; Indeterminate comes
	// with a semantic error kind describing the failure.
	Check(ctx context.Context, addr domain.EmailAddress) (domain.EAStatus, error)
}

// MSChecker is the abstraction for the Microsoft signup-availability stage.
type MSChecker interface {
	// Check returns the signup-availability verdict for addr. Decisive
	// verdicts (Available, Taken) come with a nil error; Indeterminate comes
	// with a semantic error kind describing the failure.
	Check(ctx context.Context, addr domain.EmailAddress) (domain.MSStatus, error)
}
