package service

import (
	"context"
	"errors"

	"bliss-balance-backend/internal/domain"
	"bliss-balance-backend/internal/identity"
	"bliss-balance-backend/internal/repository"
	"bliss-balance-backend/internal/security"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type authService struct {
	accountRepo repository.AccountRepository
	idp         identity.Provider
	tokens      security.TokenManager
}

func NewAuthService(accountRepo repository.AccountRepository, idp identity.Provider, tokens security.TokenManager) AuthService {
	return &authService{
		accountRepo: accountRepo,
		idp:         idp,
		tokens:      tokens,
	}
}

// Login verifies credentials with the identity provider, then resolves the
// account record the uid maps to. Deactivated accounts cannot sign in even
// with valid credentials.
func (s *authService) Login(ctx context.Context, email, password string) (*domain.Account, string, string, error) {
	uid, err := s.idp.VerifyCredentials(ctx, email, password)
	if err != nil {
		return nil, "", "", ErrInvalidCredentials
	}

	account, err := s.accountRepo.GetByID(ctx, uid)
	if err != nil {
		return nil, "", "", ErrInvalidCredentials
	}
	if !account.Active {
		return nil, "", "", domain.ErrAccountInactive
	}

	access, err := s.tokens.GenerateAccessToken(account.ID, account.Email, account.Role)
	if err != nil {
		return nil, "", "", err
	}
	refresh, err := s.tokens.GenerateRefreshToken(account.ID, account.Email)
	if err != nil {
		return nil, "", "", err
	}
	return account, access, refresh, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	claims, err := s.tokens.ValidateToken(refreshToken)
	if err != nil {
		return "", "", err
	}
	if claims.Type != security.TokenTypeRefresh {
		return "", "", security.ErrWrongTokenType
	}

	account, err := s.accountRepo.GetByID(ctx, claims.AccountID)
	if err != nil {
		return "", "", err
	}
	if !account.Active {
		return "", "", domain.ErrAccountInactive
	}

	access, err := s.tokens.GenerateAccessToken(account.ID, account.Email, account.Role)
	if err != nil {
		return "", "", err
	}
	refresh, err := s.tokens.GenerateRefreshToken(account.ID, account.Email)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}
