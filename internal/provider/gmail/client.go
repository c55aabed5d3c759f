package gmail

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/lu-zhengda/mailroles/internal/domain"
	"github.com/lu-zhengda/mailroles/internal/provider"
)

const userID = "me"

// TokenStore persists OAuth tokens per account.
type TokenStore interface {
	SaveToken(accountID string, token *oauth2.Token) error
	LoadToken(accountID string) (*oauth2.Token, error)
}

// Provider lists the labels of one Gmail account.
type Provider struct {
	accountID string
	tokens    TokenStore
	service   *gmailapi.Service
}

func New(accountID string, tokens TokenStore) *Provider {
	return &Provider{accountID: accountID, tokens: tokens}
}

// Authenticate runs the browser OAuth flow and stores the resulting token.
func (p *Provider) Authenticate(ctx context.Context) error {
	token, err := authorize(ctx)
	if err != nil {
		return fmt.Errorf("failed to authenticate gmail: %w", err)
	}
	if err := p.tokens.SaveToken(p.accountID, token); err != nil {
		return fmt.Errorf("failed to save gmail token: %w", err)
	}
	return p.connect(ctx, token)
}

// connect builds the API client around token. The token source refreshes
// expired access tokens on demand.
func (p *Provider) connect(ctx context.Context, token *oauth2.Token) error {
	ts := oauthConfig("").TokenSource(ctx, token)
	srv, err := gmailapi.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return fmt.Errorf("failed to create gmail service: %w", err)
	}
	p.service = srv
	return nil
}

func (p *Provider) ensureConnected(ctx context.Context) error {
	if p.service != nil {
		return nil
	}
	token, err := p.tokens.LoadToken(p.accountID)
	if err != nil {
		return fmt.Errorf("failed to load gmail token: %w", err)
	}
	return p.connect(ctx, token)
}

// ListContainers returns the account's labels as containers.
func (p *Provider) ListContainers(ctx context.Context) ([]domain.Container, error) {
	if err := p.ensureConnected(ctx); err != nil {
		return nil, err
	}
	resp, err := p.service.Users.Labels.List(userID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list gmail labels: %w", err)
	}
	return mapLabels(p.accountID, resp.Labels), nil
}

// GetProfile returns the address of the authorized mailbox.
func (p *Provider) GetProfile(ctx context.Context) (string, error) {
	if err := p.ensureConnected(ctx); err != nil {
		return "", err
	}
	profile, err := p.service.Users.GetProfile(userID).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to get gmail profile: %w", err)
	}
	return profile.EmailAddress, nil
}

var _ provider.ContainerProvider = (*Provider)(nil)
