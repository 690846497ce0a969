// Package oauth implements Google sign-in with the authorization code flow.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	appidentity "github.com/seafresh/backend/internal/application/identity"
	"github.com/seafresh/backend/internal/domain/shared"
	"github.com/seafresh/backend/internal/infrastructure/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// ErrExchangeFailed is returned when Google rejects the authorization code
var ErrExchangeFailed = shared.NewDomainError("OAUTH_EXCHANGE_FAILED", "Google sign-in failed. Please try again")

// GoogleProvider implements identity.OAuthProvider
type GoogleProvider struct {
	config      *oauth2.Config
	userInfoURL string
	httpClient  *http.Client
}

var _ appidentity.OAuthProvider = (*GoogleProvider)(nil)

// Option customises a GoogleProvider
type Option func(*GoogleProvider)

// WithEndpoint points the provider at another authorization server
func WithEndpoint(endpoint oauth2.Endpoint, userInfoURL string) Option {
	return func(p *GoogleProvider) {
		p.config.Endpoint = endpoint
		p.userInfoURL = userInfoURL
	}
}

// WithHTTPClient sets the client used for the token exchange and profile fetch
func WithHTTPClient(c *http.Client) Option {
	return func(p *GoogleProvider) { p.httpClient = c }
}

// NewGoogleProvider creates the provider from configuration
func NewGoogleProvider(cfg config.GoogleOAuthConfig, opts ...Option) (*GoogleProvider, error) {
	if !cfg.Enabled() {
		return nil, errors.New("oauth: google client id and secret are required")
	}
	if cfg.RedirectURL == "" {
		return nil, errors.New("oauth: google redirect url is required")
	}
	p := &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		userInfoURL: googleUserInfoURL,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// AuthCodeURL returns the consent screen URL carrying state
func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

type googleUserInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Exchange trades the code for a token and loads the user's profile
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*appidentity.GoogleProfile, error) {
	if code == "" {
		return nil, ErrExchangeFailed
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)

	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.config.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: userinfo: %v", ErrExchangeFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: userinfo returned HTTP %d", ErrExchangeFailed, resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: decode userinfo: %v", ErrExchangeFailed, err)
	}
	if info.Sub == "" || info.Email == "" {
		return nil, fmt.Errorf("%w: profile is missing id or email", ErrExchangeFailed)
	}

	return &appidentity.GoogleProfile{
		ID:            info.Sub,
		Email:         info.Email,
		EmailVerified: info.EmailVerified,
		Name:          info.Name,
		Picture:       info.Picture,
	}, nil
}
