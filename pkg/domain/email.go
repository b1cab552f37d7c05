package domain

import (
	"strings"

	"github.com/lI-Isekai-Il/EA-Email-Finder/pkg/serrors"
)

// EmailAddress is a syntactically vetted email address. Values are only
// produced by ParseEmailAddress, so holders can assume the address has
// exactly one "@" separating a non-empty local part and domain.
type EmailAddress string

// ParseEmailAddress validates raw input as an address the upstream checkers
// will accept. Leading and trailing whitespace is trimmed. The address must be
// non-empty and contain exactly one "@" with non-empty parts on both sides;
// anything else is rejected with an ErrInvalidAddress kind. No network calls
// are made and no deliverability guarantees are implied.
func ParseEmailAddress(raw string) (EmailAddress, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", serrors.With(serrors.ErrInvalidAddress, "empty address")
	}
	if strings.ContainsAny(s, " \t") {
		return "", serrors.With(serrors.ErrInvalidAddress, "address contains whitespace: %q", s)
	}

	local, dom, found := strings.Cut(s, "@")
	if !found {
		return "", serrors.With(serrors.ErrInvalidAddress, "missing @ in address: %q", s)
	}
	if strings.Contains(dom, "@") {
		return "", serrors.With(serrors.ErrInvalidAddress, "multiple @ in address: %q", s)
	}
	if local == "" {
		return "", serrors.With(serrors.ErrInvalidAddress, "empty local part: %q", s)
	}
	if dom == "" {
		return "", serrors.With(serrors.ErrInvalidAddress, "empty domain: %q", s)
	}

	return EmailAddress(s), nil
}

// String returns the address as a plain string.
func (a EmailAddress) String() string { return string(a) }
