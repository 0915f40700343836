package services

import (
	"context"
	"log"
	"time"

	"copyflow/internal/models/db_models"
	"copyflow/internal/models/request_models"
	"copyflow/internal/repositories"
	"copyflow/pkg/memcache"
	"copyflow/pkg/utils"
)

const resetTokenTTL = 30 * time.Minute

type AccountServiceInterface interface {
	Login(ctx context.Context, request request_models.LoginRequest) (string, error)
	CreateAccount(ctx context.Context, request request_models.SignUpRequest) error

	// RequestPasswordReset issues a single-use token. The token is always
	// generated-or-skipped silently so the endpoint does not leak whether an
	// email is registered.
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, request request_models.ResetPasswordRequest) error
}

type AccountService struct {
	profileRepo repositories.IProfileRepository
	resetTokens memcache.ResetTokenStore
}

func NewAccountService(profileRepo repositories.IProfileRepository, resetTokens memcache.ResetTokenStore) AccountServiceInterface {
	return &AccountService{
		profileRepo: profileRepo,
		resetTokens: resetTokens,
	}
}

func (a *AccountService) Login(ctx context.Context, request request_models.LoginRequest) (string, error) {

	profile, err := a.profileRepo.FindByEmail(ctx, request.Email)
	if err != nil {
		return "", utils.ErrDatabaseError
	}
	if profile == nil {
		return "", utils.ErrAccountNotFound
	}

	if err := utils.ComparePasswords(profile.PasswordHash, request.Password); err != nil {
		return "", utils.ErrInvalidCredentials
	}

	token, err := utils.CreateToken(profile.ID, profile.Role)
	if err != nil {
		return "", utils.ErrInvalidCredentials
	}

	return token, nil
}

func (a *AccountService) CreateAccount(ctx context.Context, request request_models.SignUpRequest) error {

	existing, err := a.profileRepo.FindByEmail(ctx, request.Email)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if existing != nil {
		return utils.ErrEmailAlreadyExists
	}

	hashedPassword, err := utils.HashPassword(request.Password)
	if err != nil {
		return utils.ErrDatabaseError
	}

	profile := &db_models.Profile{
		Name:         request.DisplayName,
		Email:        request.Email,
		PasswordHash: hashedPassword,
		Role:         "user",
		Plan:         db_models.PlanFree,
	}

	if err := a.profileRepo.Insert(ctx, profile); err != nil {
		return utils.ErrDatabaseError
	}

	return nil
}

func (a *AccountService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	profile, err := a.profileRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", utils.ErrDatabaseError
	}
	if profile == nil {
		// Same response as the happy path; do not reveal registration state.
		log.Printf("password reset requested for unknown email")
		return "", nil
	}

	token, err := utils.GenerateSecureToken(32)
	if err != nil {
		return "", err
	}
	a.resetTokens.Set(token, profile.Email, resetTokenTTL)

	return token, nil
}

func (a *AccountService) ResetPassword(ctx context.Context, request request_models.ResetPasswordRequest) error {
	email := a.resetTokens.Consume(request.Token)
	if email == "" {
		return utils.ErrInvalidResetToken
	}

	profile, err := a.profileRepo.FindByEmail(ctx, email)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if profile == nil {
		return utils.ErrAccountNotFound
	}

	hashedPassword, err := utils.HashPassword(request.NewPassword)
	if err != nil {
		return utils.ErrDatabaseError
	}

	return a.profileRepo.UpdatePassword(ctx, profile.ID, hashedPassword)
}
