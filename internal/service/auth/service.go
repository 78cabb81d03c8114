package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/medgrid/emr-admin/internal/email"
	"github.com/medgrid/emr-admin/internal/model"
	"github.com/medgrid/emr-admin/internal/repository"
	"github.com/medgrid/emr-admin/internal/service/lookup"
	"github.com/medgrid/emr-admin/pkg/auth"
	apperrors "github.com/medgrid/emr-admin/pkg/errors"
)

const (
	otpExpiry        = 10 * time.Minute
	maxLoginAttempts = 5
	lockoutDuration  = 15 * time.Minute
	bcryptCost       = 12
)

type Servicer interface {
	Login(ctx context.Context, email, password string) (*model.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*model.TokenResponse, error)
	ValidateToken(ctx context.Context, token string) (*model.TokenClaims, error)
	RequestPasswordReset(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) error
	ResetPassword(ctx context.Context, req *model.ResetPasswordRequest) error
}

type Service struct {
	userRepo  repository.UserRepository
	tokenRepo repository.TokenRepository
	jwtSvc    auth.JWTService
	emailSvc  email.Service
	lookup    *lookup.Service
}

func NewService(userRepo repository.UserRepository, tokenRepo repository.TokenRepository,
	jwtSvc auth.JWTService, emailSvc email.Service, lookupSvc *lookup.Service) *Service {
	return &Service{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		jwtSvc:    jwtSvc,
		emailSvc:  emailSvc,
		lookup:    lookupSvc,
	}
}

func (s *Service) Login(ctx context.Context, emailAddr, password string) (*model.TokenResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		return nil, model.ErrInvalidCredentials
	}
	if !user.Active {
		return nil, model.ErrInvalidCredentials
	}

	if user.LockedUntil != nil {
		if time.Now().Before(*user.LockedUntil) {
			return nil, model.ErrAccountLocked
		}
		user.LockedUntil = nil
		user.FailedLoginAttempts = 0
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		user.FailedLoginAttempts++
		if user.FailedLoginAttempts >= maxLoginAttempts {
			until := time.Now().Add(lockoutDuration)
			user.LockedUntil = &until
		}
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to update login attempts: %w", err)
		}
		return nil, model.ErrInvalidCredentials
	}

	user.FailedLoginAttempts = 0
	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update login timestamp: %w", err)
	}

	return s.generateTokens(ctx, user)
}

func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*model.TokenResponse, error) {
	claims, err := s.jwtSvc.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}

	user, err := s.userRepo.Get(ctx, claims.UserID)
	if err != nil {
		return nil, apperrors.Unauthorized(fmt.Errorf("user not found: %w", err))
	}

	return s.generateTokens(ctx, user)
}

func (s *Service) ValidateToken(_ context.Context, token string) (*model.TokenClaims, error) {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}
	return claims, nil
}

// RequestPasswordReset stores a fresh 6-digit code and mails it. The
// response never reveals whether the address exists.
func (s *Service) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	user, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		return nil
	}

	code, err := generateOTP()
	if err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}

	if err := s.tokenRepo.StoreOTP(ctx, user.ID, code, time.Now().Add(otpExpiry)); err != nil {
		return fmt.Errorf("failed to store reset code: %w", err)
	}

	if err := s.emailSvc.SendPasswordResetOTP(ctx, emailAddr, code); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}

	return nil
}

// VerifyOTP checks a code without consuming it, so the reset form can
// validate the code step before the new password is chosen.
func (s *Service) VerifyOTP(ctx context.Context, emailAddr, code string) error {
	user, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		return model.ErrInvalidOTP
	}
	if err := s.tokenRepo.ValidateOTP(ctx, user.ID, code); err != nil {
		return model.ErrInvalidOTP
	}
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, req *model.ResetPasswordRequest) error {
	// Validation precedes any lookup or write.
	if req.Password != req.ConfirmPassword {
		return apperrors.Validation("passwords do not match")
	}
	if len(req.Password) < 8 {
		return apperrors.Validation("password must be at least 8 characters")
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return model.ErrInvalidOTP
	}

	if err := s.tokenRepo.ConsumeOTP(ctx, user.ID, req.Code); err != nil {
		return model.ErrInvalidOTP
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, user.ID, string(hashed)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

func (s *Service) generateTokens(ctx context.Context, user *model.User) (*model.TokenResponse, error) {
	roleNames, err := s.lookup.RoleNames(ctx)
	if err != nil {
		return nil, err
	}

	access, err := s.jwtSvc.GenerateAccessToken(user, roleNames[user.RoleID])
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := s.jwtSvc.GenerateRefreshToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &model.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         user,
		Role:         roleNames[user.RoleID],
	}, nil
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
