// Package services contains server-side business logic. This file implements
// AuthService, which handles login, refresh token rotation, logout, and the
// expired-token sweep behind the session API.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sweetshop/backend/internal/common"
	"github.com/sweetshop/backend/internal/dbx"
	"github.com/sweetshop/backend/internal/server/auth"
	"github.com/sweetshop/backend/internal/server/config"
	"github.com/sweetshop/backend/internal/server/repositories/repomanager"
)

// TokenPair is the result of a successful login or refresh: a signed access
// token, the opaque refresh token replacing any previous one, the scheme the
// client must use in the Authorization header, and the access token's
// lifetime in seconds.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int64
}

// AuthService owns the session lifecycle:
// - Login: verify credentials and mint a token pair
// - Refresh: rotate the refresh token and mint a new access token
// - Logout: revoke a refresh token
// - CleanupExpiredTokens: sweep expired rows
type AuthService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	codec                        *auth.TokenCodec
	refreshTokenValidityDuration time.Duration
}

// NewAuthService constructs an AuthService using repositories and server config.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *AuthService {
	return &AuthService{
		db:                           db,
		repomanager:                  m,
		codec:                        auth.NewTokenCodec([]byte(cfg.SecretKey), cfg.AccessTokenValidityDuration),
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// Codec exposes the access-token codec so the HTTP layer can verify tokens
// minted here.
func (s *AuthService) Codec() *auth.TokenCodec {
	return s.codec
}

// Login verifies the email/password pair and, on success, revokes any refresh
// tokens the user still holds and issues a fresh pair. An unknown email, a
// wrong password, and a disabled account are indistinguishable to the caller:
// all three return ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, common.ErrorInternal
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, common.ErrInvalidCredentials
	}
	if !user.Enabled {
		return nil, common.ErrInvalidCredentials
	}

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repoTx := s.repomanager.RefreshTokens(tx)
		if err := repoTx.DeleteAllByUser(ctx, user.ID); err != nil {
			return fmt.Errorf("error revoking refresh tokens: %v", err)
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, user.ID, user.Email, user.Roles, tx)
		return genErr
	}); err != nil {
		return nil, err
	}
	return pair, nil
}

// Refresh validates a refresh token, rotates it transactionally, and returns
// a fresh TokenPair. The presented value is claimed by a conditional delete
// inside the transaction, so when two callers race with the same token
// exactly one wins; the loser sees ErrInvalidToken. An expired token is
// removed and reported as ErrExpiredToken.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	repo := s.repomanager.RefreshTokens(s.db)

	token, err := repo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, common.ErrorInternal
	}
	if token.Expired(time.Now()) {
		if err := repo.Delete(ctx, refreshToken); err != nil {
			return nil, common.ErrorInternal
		}
		return nil, common.ErrExpiredToken
	}

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repoTx := s.repomanager.RefreshTokens(tx)
		userID, err := repoTx.DeleteReturningUser(ctx, refreshToken)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrInvalidToken
			}
			return fmt.Errorf("error claiming refresh token: %v", err)
		}
		user, err := s.repomanager.Users(tx).GetByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("error loading token owner: %v", err)
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, user.ID, user.Email, user.Roles, tx)
		return genErr
	}); err != nil {
		return nil, err
	}
	return pair, nil
}

// Logout revokes the presented refresh token. Revoking a token that no longer
// exists is not an error; logout always succeeds.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	repo := s.repomanager.RefreshTokens(s.db)
	if err := repo.Delete(ctx, refreshToken); err != nil {
		return common.ErrorInternal
	}
	return nil
}

// CleanupExpiredTokens removes every refresh token whose expiry has passed
// and reports how many rows were deleted.
func (s *AuthService) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	repo := s.repomanager.RefreshTokens(s.db)
	n, err := repo.DeleteExpired(ctx, time.Now())
	if err != nil {
		return 0, common.ErrorInternal
	}
	return n, nil
}

func (s *AuthService) generateTokenPair(ctx context.Context, userID, email string, roles []string, tx dbx.DBTX) (*TokenPair, error) {
	access, err := s.codec.Issue(email, roles)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refreshRepo := s.repomanager.RefreshTokens(tx)
	if err := refreshRepo.Create(ctx, userID, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    common.TokenTypeBearer,
		ExpiresIn:    int64(s.codec.TTL().Seconds()),
	}, nil
}
