package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// GoogleLoginProvider is the login provider name stored with linked Google
// accounts.
const GoogleLoginProvider = "Google"

var (
	ErrInvalidGoogleToken    = errors.New("invalid google id token")
	ErrInvalidGoogleAudience = errors.New("invalid google audience")
	ErrUnverifiedGoogleEmail = errors.New("google email is not verified")
)

// GoogleIdentity is the account a Google ID token was issued for.
type GoogleIdentity struct {
	Subject string
	Email   string
}

// GoogleOAuthProvider checks Google ID tokens against the tokeninfo endpoint.
type GoogleOAuthProvider struct {
	clientID string
	service  *oauth2.Service
}

// NewGoogleOAuthProvider creates a provider accepting tokens issued to
// clientID. opts are passed to the Google API client.
func NewGoogleOAuthProvider(ctx context.Context, clientID string, opts ...option.ClientOption) (*GoogleOAuthProvider, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(&http.Client{})}, opts...)

	service, err := oauth2.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return &GoogleOAuthProvider{
		clientID: clientID,
		service:  service,
	}, nil
}

// ValidateIDToken resolves idToken to the Google account it belongs to.
func (p *GoogleOAuthProvider) ValidateIDToken(ctx context.Context, idToken string) (*GoogleIdentity, error) {
	tokenInfo, err := p.service.Tokeninfo().IdToken(idToken).Context(ctx).Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code < http.StatusInternalServerError {
			return nil, fmt.Errorf("%w: %w", ErrInvalidGoogleToken, err)
		}
		return nil, err
	}

	if tokenInfo.Audience != p.clientID {
		return nil, ErrInvalidGoogleAudience
	}
	if tokenInfo.Email != "" && !tokenInfo.VerifiedEmail {
		return nil, ErrUnverifiedGoogleEmail
	}

	return &GoogleIdentity{
		Subject: tokenInfo.UserId,
		Email:   tokenInfo.Email,
	}, nil
}
