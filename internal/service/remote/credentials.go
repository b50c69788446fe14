package remote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/pymetra/registration/internal/model"
	"github.com/pymetra/registration/internal/repository"
)

// OAuthCredentials stores the Google OAuth token in the database and refreshes it on demand
type OAuthCredentials struct {
	config *oauth2.Config
	repo   repository.CredentialRepository
	now    func() time.Time

	mu     sync.Mutex // serializes token persistence and guards source
	source oauth2.TokenSource
}

func NewOAuthCredentials(clientID, clientSecret, redirectURL string, repo repository.CredentialRepository) *OAuthCredentials {
	return &OAuthCredentials{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       Scopes,
			Endpoint:     google.Endpoint,
		},
		repo: repo,
		now:  time.Now,
	}
}

// AuthCodeURL returns the consent page URL. Offline access with a forced
// consent prompt makes Google issue a refresh token every time.
func (c *OAuthCredentials) AuthCodeURL(state string) string {
	return c.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades an authorization code for a token and stores it
func (c *OAuthCredentials) Exchange(ctx context.Context, code string) error {
	token, err := c.config.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange code: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.source = nil

	if token.RefreshToken == "" {
		// keep a refresh token granted earlier
		if stored, err := c.repo.ByProvider(ctx, model.CredentialProviderGoogle); err == nil {
			token.RefreshToken = stored.RefreshToken
		}
	}
	return c.save(ctx, token)
}

// Valid reports whether a usable token is stored. It never calls Google.
func (c *OAuthCredentials) Valid(ctx context.Context) bool {
	cred, err := c.repo.ByProvider(ctx, model.CredentialProviderGoogle)
	if err != nil {
		if !errors.Is(err, repository.ErrCredentialNotFound) {
			slog.Warn("failed to load google credential", "error", err)
		}
		return false
	}
	return usable(cred, c.now())
}

func usable(cred *model.Credential, now time.Time) bool {
	if cred.RefreshToken != "" {
		return true
	}
	if cred.AccessToken == "" {
		return false
	}
	return cred.Expiry == nil || cred.Expiry.After(now)
}

// TokenSource returns the shared source that refreshes the stored token when
// it expires and writes refreshed tokens back to the database. Every caller
// gets the same source until the next Exchange or Disconnect, so concurrent
// calls refresh at most once.
func (c *OAuthCredentials) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.source != nil {
		return c.source, nil
	}

	cred, err := c.repo.ByProvider(ctx, model.CredentialProviderGoogle)
	if err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, err
	}

	stored := toToken(cred)
	// refreshes outlive the request that happened to trigger them
	c.source = &persistingSource{
		base:  c.config.TokenSource(context.Background(), stored),
		owner: c,
		last:  stored.AccessToken,
	}
	return c.source, nil
}

// Disconnect forgets the stored token
func (c *OAuthCredentials) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.source = nil
	return c.repo.Delete(ctx, model.CredentialProviderGoogle)
}

func (c *OAuthCredentials) save(ctx context.Context, token *oauth2.Token) error {
	cred := &model.Credential{
		Provider:     model.CredentialProviderGoogle,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		Scopes:       strings.Join(c.config.Scopes, " "),
		UpdatedAt:    c.now(),
	}
	if !token.Expiry.IsZero() {
		expiry := token.Expiry
		cred.Expiry = &expiry
	}
	if err := c.repo.Save(ctx, cred); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

func toToken(cred *model.Credential) *oauth2.Token {
	token := &oauth2.Token{
		AccessToken:  cred.AccessToken,
		RefreshToken: cred.RefreshToken,
		TokenType:    cred.TokenType,
	}
	if cred.Expiry != nil {
		token.Expiry = *cred.Expiry
	}
	return token
}

type persistingSource struct {
	base  oauth2.TokenSource
	owner *OAuthCredentials

	mu   sync.Mutex
	last string
}

func (s *persistingSource) Token() (*oauth2.Token, error) {
	token, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if token.AccessToken == s.last {
		return token, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.owner.mu.Lock()
	err = s.owner.save(ctx, token)
	s.owner.mu.Unlock()
	if err != nil {
		// the refreshed token is still usable for this call
		slog.Warn("failed to persist refreshed google token", "error", err)
		return token, nil
	}
	s.last = token.AccessToken
	slog.Debug("google token refreshed", "expiry", token.Expiry)
	return token, nil
}
