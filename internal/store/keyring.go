package store

import (
	"encoding/json"
	"fmt"

	"github.com/zalando/go-keyring"
	"golang.org/x/oauth2"
)

const (
	serviceName     = "mailroles"
	imapServiceName = "mailroles-imap"
)

// KeyringTokenStore persists account secrets in the OS keyring
// (macOS Keychain, Windows Credential Manager, or Linux Secret Service).
// Gmail accounts store an OAuth2 token, IMAP accounts a password.
type KeyringTokenStore struct{}

// NewKeyringTokenStore returns a new KeyringTokenStore.
func NewKeyringTokenStore() *KeyringTokenStore {
	return &KeyringTokenStore{}
}

// SaveToken stores the given OAuth2 token in the OS keyring under the account ID.
func (k *KeyringTokenStore) SaveToken(accountID string, token *oauth2.Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}
	if err := keyring.Set(serviceName, accountID, string(data)); err != nil {
		return fmt.Errorf("failed to save token to keyring: %w", err)
	}
	return nil
}

// LoadToken retrieves the OAuth2 token for the given account ID from the OS keyring.
func (k *KeyringTokenStore) LoadToken(accountID string) (*oauth2.Token, error) {
	data, err := keyring.Get(serviceName, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load token from keyring: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal([]byte(data), &token); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token: %w", err)
	}
	return &token, nil
}

// DeleteToken removes the OAuth2 token for the given account ID from the OS keyring.
func (k *KeyringTokenStore) DeleteToken(accountID string) error {
	if err := keyring.Delete(serviceName, accountID); err != nil {
		return fmt.Errorf("failed to delete token from keyring: %w", err)
	}
	return nil
}

// SavePassword stores an IMAP password under the account ID.
func (k *KeyringTokenStore) SavePassword(accountID, password string) error {
	if err := keyring.Set(imapServiceName, accountID, password); err != nil {
		return fmt.Errorf("failed to save password to keyring: %w", err)
	}
	return nil
}

// LoadPassword retrieves the IMAP password for the account ID.
func (k *KeyringTokenStore) LoadPassword(accountID string) (string, error) {
	password, err := keyring.Get(imapServiceName, accountID)
	if err != nil {
		return "", fmt.Errorf("failed to load password from keyring: %w", err)
	}
	return password, nil
}

// DeletePassword removes the IMAP password for the account ID.
func (k *KeyringTokenStore) DeletePassword(accountID string) error {
	if err := keyring.Delete(imapServiceName, accountID); err != nil {
		return fmt.Errorf("failed to delete password from keyring: %w", err)
	}
	return nil
}
