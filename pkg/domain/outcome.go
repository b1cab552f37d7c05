package domain

import "time"

// EAStatus is the verdict of the EA registration-status check for one address.
type EAStatus string

const (
	// EAStatusLinked indicates the address is registered to an EA account.
	EAStatusLinked EAStatus = "LINKED"
	// EAStatusNotLinked indicates the address is not registered to any EA account.
	EAStatusNotLinked EAStatus = "NOT_LINKED"
	// EAStatusIndeterminate indicates the check could not produce a decisive
	// verdict (transport failure, unexpected response, retries exhausted).
	EAStatusIndeterminate EAStatus = "INDETERMINATE"
)

// MSStatus is the verdict of the Microsoft signup-availability check for one
// address. The zero value means the check was never performed.
type MSStatus string

const (
	// MSStatusAvailable indicates the address can be registered as a Microsoft
	// sign-in name.
	MSStatusAvailable MSStatus = "AVAILABLE"
	// MSStatusTaken indicates the address is already in use as a Microsoft
	// sign-in name.
	MSStatusTaken MSStatus = "TAKEN"
	// MSStatusIndeterminate indicates the check could not produce a decisive
	// verdict.
	MSStatusIndeterminate MSStatus = "INDETERMINATE"
)

// Classification is the terminal outcome assigned to an address exactly once
// per scan.
type Classification string

const (
	// ClassificationAvailable means the address is EA linked and free to claim
	// as a Microsoft sign-in name.
	ClassificationAvailable Classification = "AVAILABLE"
	// ClassificationTaken means the address is EA linked but already claimed
	// as a Microsoft sign-in name.
	ClassificationTaken Classification = "TAKEN"
	// ClassificationUnavailable covers everything else: not EA linked, invalid
	// syntax, or an indeterminate verdict at either stage.
	ClassificationUnavailable Classification = "UNAVAILABLE"
)

// Classify maps the two stage verdicts to a terminal classification. The
// Microsoft verdict may be the zero value when the stage was skipped because
// the address is not EA linked; that always classifies as UNAVAILABLE. An
// indeterminate verdict at either stage never upgrades to AVAILABLE or TAKEN.
func Classify(ea EAStatus, ms MSStatus) Classification {
	if ea != EAStatusLinked {
		return ClassificationUnavailable
	}

	switch ms {
	case MSStatusAvailable:
		return ClassificationAvailable
	case MSStatusTaken:
		return ClassificationTaken
	default:
		return ClassificationUnavailable
	}
}

// CheckResult captures the full two stage verdict for one address. It is used
// for single-address checks and per-address result artifacts; batch sessions
// persist only the accumulated AVAILABLE records.
type CheckResult struct {
	// Email is the checked address.
	Email string `json:"email"`
	// EA is the EA registration-status verdict.
	EA EAStatus `json:"eaStatus"`
	// Microsoft is the signup-availability verdict; empty when the stage was
	// skipped.
	Microsoft MSStatus `json:"microsoftStatus,omitempty"`
	// Classification is the terminal outcome derived from the stage verdicts.
	Classification Classification `json:"classification"`
	// Note is a short human-readable explanation of the outcome.
	Note string `json:"note,omitempty"`
	// CheckedAt is when the classification was assigned, in UTC.
	CheckedAt time.Time `json:"checkedAt"`
}
