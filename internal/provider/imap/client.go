// Package imap lists the folders of an IMAP account.
package imap

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strings"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"

	"github.com/lu-zhengda/mailroles/internal/domain"
	"github.com/lu-zhengda/mailroles/internal/provider"
	"github.com/lu-zhengda/mailroles/internal/store"
)

const nonExistentAttr = "\\NonExistent"

// attrRoles maps lowercased SPECIAL-USE attributes (RFC 6154) to roles.
var attrRoles = map[string]domain.Role{
	"sent":    domain.RoleSent,
	"drafts":  domain.RoleDrafts,
	"junk":    domain.RoleSpam,
	"archive": domain.RoleArchive,
	"trash":   domain.RoleTrash,
}

// Provider implements the provider.ContainerProvider interface over IMAP
// with implicit TLS.
type Provider struct {
	account   domain.Account
	secrets   *store.KeyringTokenStore
	tlsConfig *tls.Config
}

// New creates a provider for account. The password is read from the keyring.
func New(account domain.Account, secrets *store.KeyringTokenStore) *Provider {
	host, _, err := net.SplitHostPort(account.Server)
	if err != nil {
		host = account.Server
	}
	return &Provider{
		account:   account,
		secrets:   secrets,
		tlsConfig: &tls.Config{ServerName: host},
	}
}

// Authenticate checks that the stored credentials are accepted by the server.
func (p *Provider) Authenticate(ctx context.Context) error {
	c, err := p.connect(ctx)
	if err != nil {
		return fmt.Errorf("failed to authenticate imap: %w", err)
	}
	defer c.Logout()
	return nil
}

// ListContainers returns every selectable mailbox as a folder container.
func (p *Provider) ListContainers(ctx context.Context) ([]domain.Container, error) {
	c, err := p.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer c.Logout()

	mailboxes := make(chan *imap.MailboxInfo, 16)
	done := make(chan error, 1)
	go func() {
		done <- c.List("", "*", mailboxes)
	}()

	var containers []domain.Container
	for mbox := range mailboxes {
		if cont, ok := mapMailbox(p.account.ID, mbox); ok {
			containers = append(containers, cont)
		}
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("failed to list imap mailboxes: %w", err)
	}
	return containers, nil
}

func (p *Provider) connect(ctx context.Context) (*client.Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	password, err := p.secrets.LoadPassword(p.account.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load imap password: %w", err)
	}

	c, err := client.DialTLS(p.account.Server, p.tlsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", p.account.Server, err)
	}
	if err := c.Login(p.account.Email, password); err != nil {
		c.Logout()
		return nil, fmt.Errorf("failed to log in as %s: %w", p.account.Email, err)
	}
	return c, nil
}

// mapMailbox converts a LIST response entry. It reports false for mailboxes
// that cannot be opened.
func mapMailbox(accountID string, mbox *imap.MailboxInfo) (domain.Container, bool) {
	if !canOpen(mbox) {
		return domain.Container{}, false
	}
	c := domain.Container{
		AccountID: accountID,
		Path:      normalizePath(mbox.Name, mbox.Delimiter),
		Kind:      domain.KindFolder,
		RemoteID:  mbox.Name,
	}
	for _, attr := range mbox.Attributes {
		attr = strings.TrimPrefix(attr, "\\")
		attr = strings.ToLower(attr)
		if role, ok := attrRoles[attr]; ok {
			c.Role = role
		}
	}
	if strings.EqualFold(mbox.Name, imap.InboxName) {
		c.Role = domain.RoleInbox
	}
	return c, true
}

func canOpen(mbox *imap.MailboxInfo) bool {
	for _, attr := range mbox.Attributes {
		if attr == imap.NoSelectAttr || attr == nonExistentAttr {
			return false
		}
	}
	return true
}

// normalizePath rewrites the server hierarchy delimiter to domain.PathDelimiter.
func normalizePath(name, delim string) string {
	if delim == "" || delim == domain.PathDelimiter {
		return name
	}
	return strings.ReplaceAll(name, delim, domain.PathDelimiter)
}

// Compile-time interface compliance check.
var _ provider.ContainerProvider = (*Provider)(nil)
