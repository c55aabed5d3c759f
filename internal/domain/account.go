package domain

import "time"

// Provider identifies the mail backend of an account.
type Provider string

const (
	ProviderGmail  Provider = "gmail"
	ProviderIMAP   Provider = "imap"
	ProviderProton Provider = "proton"
)

// ParseProvider returns the Provider named by s.
func ParseProvider(s string) (Provider, bool) {
	switch p := Provider(s); p {
	case ProviderGmail, ProviderIMAP, ProviderProton:
		return p, true
	}
	return "", false
}

type Account struct {
	ID          string
	Email       string
	Provider    Provider
	DisplayName string
	// Server is the host:port of the IMAP endpoint. Empty for gmail.
	Server    string
	CreatedAt time.Time
}

// Label returns the name shown in section titles.
func (a Account) Label() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return a.Email
}

// UsesLabels reports whether the provider supports label-kind containers.
func (a Account) UsesLabels() bool {
	switch a.Provider {
	case ProviderGmail, ProviderProton:
		return true
	}
	return false
}

// ArchivesByLabel reports whether archiving on this provider only removes
// the inbox label, leaving no distinct archive container to assign.
func (a Account) ArchivesByLabel() bool {
	return a.Provider == ProviderGmail
}
