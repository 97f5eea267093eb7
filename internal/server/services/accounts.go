// Package services contains server-side business logic. This file implements
// AccountService: registration with email verification, login issuing
// session JWTs, and the password-reset flow.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/calcpay/server/internal/common"
	"github.com/calcpay/server/internal/dbx"
	"github.com/calcpay/server/internal/logging"
	"github.com/calcpay/server/internal/server/auth"
	"github.com/calcpay/server/internal/server/config"
	"github.com/calcpay/server/internal/server/models"
	"github.com/calcpay/server/internal/server/notify"
	"github.com/calcpay/server/internal/server/password"
	"github.com/calcpay/server/internal/server/repositories/repomanager"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 4

// resetTokenBytes is the entropy of a reset token before hex encoding.
const resetTokenBytes = 32

// AccountService provides the account lifecycle operations:
//   - Register: create an unverified account and email its code
//   - Verify: consume a verification code
//   - Login: verify credentials and mint a session token
//   - RequestPasswordReset / ResetPassword: credential recovery
type AccountService struct {
	db                   *sql.DB
	repomanager          repomanager.RepositoryManager
	hasher               password.Hasher
	notifier             notify.Notifier
	logger               logging.Logger
	jwtSecret            []byte
	sessionTokenValidity time.Duration
	resetTokenValidity   time.Duration
	verificationCodeTTL  time.Duration
	publicBaseURL        string
}

// NewAccountService constructs an AccountService using repositories and
// server config.
func NewAccountService(
	db *sql.DB,
	m repomanager.RepositoryManager,
	hasher password.Hasher,
	notifier notify.Notifier,
	logger logging.Logger,
	cfg *config.Config,
) *AccountService {
	return &AccountService{
		db:                   db,
		repomanager:          m,
		hasher:               hasher,
		notifier:             notifier,
		logger:               logger.With("module", "account_service"),
		jwtSecret:            []byte(cfg.SecretKey),
		sessionTokenValidity: cfg.SessionTokenValidity,
		resetTokenValidity:   cfg.ResetTokenValidity,
		verificationCodeTTL:  cfg.VerificationCodeTTL,
		publicBaseURL:        cfg.PublicBaseURL,
	}
}

// Register creates an unverified account, stores its 4-digit verification
// code, and emails the code to the new address. The account is persisted
// even when the email cannot be delivered; delivery failures are only
// logged.
func (s *AccountService) Register(ctx context.Context, email, plaintext, firstName, lastName string) (*models.Account, error) {

	if err := validateRegistration(email, plaintext, firstName, lastName); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		return nil, common.ErrorInternal
	}

	code, err := common.MakeVerificationCode()
	if err != nil {
		return nil, common.ErrorInternal
	}

	account := &models.Account{
		Email:            email,
		PasswordHash:     hash,
		FirstName:        firstName,
		LastName:         lastName,
		VerificationCode: &code,
	}
	if s.verificationCodeTTL > 0 {
		expiresAt := time.Now().Add(s.verificationCodeTTL)
		account.VerificationCodeExpiresAt = &expiresAt
	}

	repo := s.repomanager.Accounts(s.db)
	account, err = repo.Create(ctx, account)
	if err != nil {
		if errors.Is(err, common.ErrorDuplicateEmail) {
			return nil, common.ErrorDuplicateEmail
		}
		return nil, common.ErrorInternal
	}

	// The account transition is already persisted; a failed send must not
	// undo it.
	subject := "Account verification code"
	body := fmt.Sprintf("Hello %s, your verification code is: %s", firstName, code)
	if msgID, err := s.notifier.Send(ctx, email, subject, body); err != nil {
		s.logger.Error(ctx, "verification email delivery failed", "email", email, "error", err)
	} else {
		s.logger.Info(ctx, "verification email sent", "email", email, "message_id", msgID)
	}

	return account, nil
}

// Verify consumes a verification code. The stored code is compared as an
// exact string; once consumed it is cleared, so a second submission of the
// same code fails with ErrorInvalidCode. Verification is one-way.
func (s *AccountService) Verify(ctx context.Context, email, code string) error {

	repo := s.repomanager.Accounts(s.db)
	account, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return common.ErrorInternal
	}

	if account.VerificationCode == nil || *account.VerificationCode != code {
		return common.ErrorInvalidCode
	}

	// An expired code is rejected the same way as a wrong one.
	if account.VerificationCodeExpiresAt != nil && account.VerificationCodeExpiresAt.Before(time.Now()) {
		return common.ErrorInvalidCode
	}

	if err := repo.MarkVerified(ctx, account.ID); err != nil {
		return common.ErrorInternal
	}

	return nil
}

// Login checks the password of a verified account and returns a signed
// session token embedding the account id and email.
func (s *AccountService) Login(ctx context.Context, email, plaintext string) (string, error) {

	repo := s.repomanager.Accounts(s.db)
	account, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorNotFound
		}
		return "", common.ErrorInternal
	}

	if !account.IsVerified {
		return "", common.ErrorNotVerified
	}

	if !s.hasher.Check(plaintext, account.PasswordHash) {
		return "", common.ErrorWrongPassword
	}

	token, err := auth.GenerateToken(account.ID, account.Email, s.jwtSecret, s.sessionTokenValidity)
	if err != nil {
		return "", common.ErrorInternal
	}

	return token, nil
}

// RequestPasswordReset issues a reset token for a verified account and
// emails a reset link. It never reveals whether the email matches an
// account: for an unknown or unverified address it silently does nothing.
// A new request overwrites any prior pending token.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {

	repo := s.repomanager.Accounts(s.db)
	account, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return common.ErrorInternal
	}
	if !account.IsVerified {
		return nil
	}

	token, err := common.MakeRandHexString(resetTokenBytes)
	if err != nil {
		return common.ErrorInternal
	}
	expiresAt := time.Now().Add(s.resetTokenValidity)

	if err := repo.SetResetToken(ctx, account.ID, token, expiresAt); err != nil {
		return common.ErrorInternal
	}

	link := fmt.Sprintf("%s/reset-password.html?token=%s", s.publicBaseURL, token)
	subject := "Password reset"
	body := fmt.Sprintf("Hello %s,\n\nTo reset your password, open the following link:\n%s\n\nIf you did not request this, please ignore this email.\n", account.FirstName, link)
	if msgID, err := s.notifier.Send(ctx, account.Email, subject, body); err != nil {
		s.logger.Error(ctx, "reset email delivery failed", "email", account.Email, "error", err)
	} else {
		s.logger.Info(ctx, "reset email sent", "email", account.Email, "message_id", msgID)
	}

	return nil
}

// ResetPassword consumes a reset token and stores a new password hash.
// Unknown, expired and already-consumed tokens are indistinguishable to the
// caller: all fail with ErrorInvalidOrExpiredToken. A new password equal to
// the current one fails with ErrorSamePassword and leaves the token intact,
// so the same token may be retried with a different password.
func (s *AccountService) ResetPassword(ctx context.Context, token, newPassword string) error {

	if token == "" {
		return common.ErrorInvalidOrExpiredToken
	}
	if len(newPassword) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", common.ErrorValidation, MinPasswordLength)
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)

		account, err := repo.GetByResetToken(ctx, token, time.Now())
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrorInvalidOrExpiredToken
			}
			return common.ErrorInternal
		}

		if s.hasher.Check(newPassword, account.PasswordHash) {
			return common.ErrorSamePassword
		}

		hash, err := s.hasher.Hash(newPassword)
		if err != nil {
			return common.ErrorInternal
		}

		// Clears the reset token in the same statement.
		if err := repo.UpdatePassword(ctx, account.ID, hash); err != nil {
			return common.ErrorInternal
		}

		return nil
	})
}

func validateRegistration(email, plaintext, firstName, lastName string) error {
	if email == "" || plaintext == "" || firstName == "" || lastName == "" {
		return fmt.Errorf("%w: all fields are required", common.ErrorValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: malformed email address", common.ErrorValidation)
	}
	if len(plaintext) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", common.ErrorValidation, MinPasswordLength)
	}
	return nil
}
