package domain

import "strings"

// OrganisationCategoryLocalAuthority is the category whose establishment
// number doubles as the local-authority id on submissions.
const OrganisationCategoryLocalAuthority = "Local Authority"

const unknownSubmitter = "Unknown"

// Identity is the already-authenticated caller, as asserted by the sign-in
// provider's token.
type Identity struct {
	Email                string
	OrganisationID       OrganisationID
	OrganisationCategory string
	EstablishmentNumber  string
}

// SubmittedBy returns the caller's email, or "Unknown" when absent.
func (i Identity) SubmittedBy() string {
	if e := strings.TrimSpace(i.Email); e != "" {
		return e
	}
	return unknownSubmitter
}

// IsLocalAuthority reports whether the caller acts for a local authority.
func (i Identity) IsLocalAuthority() bool {
	return strings.EqualFold(strings.TrimSpace(i.OrganisationCategory), OrganisationCategoryLocalAuthority)
}

// LocalAuthorityID returns the establishment number for local-authority
// callers and nil for everyone else.
func (i Identity) LocalAuthorityID() *string {
	if !i.IsLocalAuthority() || strings.TrimSpace(i.EstablishmentNumber) == "" {
		return nil
	}
	la := strings.TrimSpace(i.EstablishmentNumber)
	return &la
}
