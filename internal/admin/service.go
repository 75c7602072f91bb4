package admin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lumenworks/vision-cms-backend/pkg/auth"
	"github.com/lumenworks/vision-cms-backend/pkg/config"
	"github.com/lumenworks/vision-cms-backend/pkg/db"
	"github.com/lumenworks/vision-cms-backend/pkg/db/models"
	pkgerrors "github.com/lumenworks/vision-cms-backend/pkg/errors"
	"github.com/lumenworks/vision-cms-backend/pkg/logger"
	"github.com/lumenworks/vision-cms-backend/pkg/security"
)

// SignupInput carries the fields for the one-time admin signup.
type SignupInput struct {
	FirstName  string `json:"firstname" validate:"required"`
	LastName   string `json:"lastname" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8"`
	AccessCode string `json:"accesscode"`
}

// LoginResult is returned after a successful login.
type LoginResult struct {
	Token   string
	Account *models.AdminAccount
}

// Service implements the admin gate: one-time signup, login with
// lock-on-wrong-password, a credential check, and explicit unlock.
type Service struct {
	repo     *Repository
	jwt      config.JWTConfig
	password config.PasswordConfig
	logg     *logger.Logger
	now      func() time.Time
}

// NewService wires the admin service.
func NewService(repo *Repository, jwt config.JWTConfig, password config.PasswordConfig, logg *logger.Logger) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("admin repository required")
	}
	return &Service{
		repo:     repo,
		jwt:      jwt,
		password: password,
		logg:     logg,
		now:      time.Now,
	}, nil
}

// Signup creates the single admin account. Once one exists, further signups
// are rejected.
func (s *Service) Signup(ctx context.Context, input SignupInput) (*models.AdminAccount, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "failed to persist records")
	}
	if count > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "Admin account already exists")
	}

	hash, err := security.HashPassword(input.Password, s.password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
	}

	account := &models.AdminAccount{
		FirstName:  input.FirstName,
		LastName:   input.LastName,
		Email:      normalizeEmail(input.Email),
		Password:   hash,
		AccessCode: input.AccessCode,
	}
	if err := s.repo.Create(ctx, account); err != nil {
		// Two racing signups can both pass the count check; the unique
		// email index settles it.
		if db.IsUniqueViolation(err, "admin_email_unique") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "Admin account already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "failed to persist records")
	}
	if s.logg != nil {
		s.logg.Info(ctx, "admin account created")
	}
	return account, nil
}

// Login verifies credentials and mints a session token. A wrong password
// locks the account immediately; a locked account cannot log in until
// unlocked.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	account, err := s.verify(ctx, email, password, true)
	if err != nil {
		return nil, err
	}

	token, err := auth.MintAdminToken(s.jwt, s.now(), account.ID, account.Email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting session token")
	}
	return &LoginResult{Token: token, Account: account}, nil
}

// Check verifies credentials without minting a token. It shares the login
// lockout behavior.
func (s *Service) Check(ctx context.Context, email, password string) (*models.AdminAccount, error) {
	return s.verify(ctx, email, password, true)
}

// Unlock clears the lockout flag when the correct credentials are presented.
// A wrong password here does not lock further.
func (s *Service) Unlock(ctx context.Context, email, password string) error {
	account, err := s.find(ctx, email)
	if err != nil {
		return err
	}

	match, err := security.VerifyPassword(password, account.Password)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verifying password")
	}
	if !match {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "Incorrect password")
	}

	if err := s.repo.SetLocked(ctx, account.ID, false); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "failed to persist records")
	}
	if s.logg != nil {
		s.logg.Info(ctx, "admin account unlocked")
	}
	return nil
}

func (s *Service) verify(ctx context.Context, email, password string, lockOnMismatch bool) (*models.AdminAccount, error) {
	account, err := s.find(ctx, email)
	if err != nil {
		return nil, err
	}
	if account.IsLocked {
		return nil, pkgerrors.New(pkgerrors.CodeLocked, "Account is locked")
	}

	match, err := security.VerifyPassword(password, account.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verifying password")
	}
	if !match {
		if lockOnMismatch {
			if lockErr := s.repo.SetLocked(ctx, account.ID, true); lockErr != nil && s.logg != nil {
				s.logg.Error(ctx, "locking admin account failed", lockErr)
			}
		}
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "Incorrect password! Account locked.")
	}
	return account, nil
}

func (s *Service) find(ctx context.Context, email string) (*models.AdminAccount, error) {
	account, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "failed to persist records")
	}
	if account == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Admin not found")
	}
	return account, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
