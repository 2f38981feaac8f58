package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

const signInEndpoint = "https://identitytoolkit.googleapis.com/v1/accounts:signInWithPassword"

// FirebaseProvider implements Provider against Firebase Authentication.
// Admin operations go through the Admin SDK; credential verification uses
// the Identity Toolkit sign-in endpoint, which is the only password check
// Firebase exposes to servers.
type FirebaseProvider struct {
	client    *auth.Client
	webAPIKey string
	httpc     *http.Client
}

func NewFirebaseProvider(ctx context.Context, credentialsFile, webAPIKey string) (*FirebaseProvider, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase auth client: %w", err)
	}
	return &FirebaseProvider{
		client:    client,
		webAPIKey: webAPIKey,
		httpc:     http.DefaultClient,
	}, nil
}

func (p *FirebaseProvider) CreateIdentity(ctx context.Context, email, password, displayName string) (string, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(displayName).
		EmailVerified(true)

	u, err := p.client.CreateUser(ctx, params)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return "", ErrIdentityExists
		}
		return "", fmt.Errorf("failed to create firebase user: %w", err)
	}
	return u.UID, nil
}

func (p *FirebaseProvider) VerifyCredentials(ctx context.Context, email, password string) (string, error) {
	body, err := json.Marshal(map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s?key=%s", signInEndpoint, p.webAPIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("identity toolkit request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", ErrInvalidCredentials
	}

	var result struct {
		LocalID string `json:"localId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode sign-in response: %w", err)
	}
	if result.LocalID == "" {
		return "", ErrInvalidCredentials
	}
	return result.LocalID, nil
}

func (p *FirebaseProvider) DeleteIdentity(ctx context.Context, uid string) error {
	if err := p.client.DeleteUser(ctx, uid); err != nil {
		if auth.IsUserNotFound(err) {
			return ErrIdentityNotFound
		}
		return fmt.Errorf("failed to delete firebase user: %w", err)
	}
	return nil
}

func (p *FirebaseProvider) LookupByEmail(ctx context.Context, email string) (string, error) {
	u, err := p.client.GetUserByEmail(ctx, email)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return "", ErrIdentityNotFound
		}
		return "", fmt.Errorf("failed to look up firebase user: %w", err)
	}
	return u.UID, nil
}
