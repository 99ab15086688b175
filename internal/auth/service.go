// Package auth implements the account state machine: registration,
// OTP verification, login, password forgot/reset/change. Handlers stay
// thin and call into here, every outcome is a domain error from
// errors.go or a value.
package auth

import (
	"errors"
	"time"

	"bookdrop/library-api/internal/model"
	"bookdrop/library-api/internal/service"
	"bookdrop/library-api/security"
	"bookdrop/library-api/validators"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	idCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	idLength  = 16

	// New registrations for an email that already has this many
	// pending unverified attempts are rejected until the cleanup
	// sweep prunes them.
	maxPendingAttempts = 3
)

// Mailer delivers one message. The auth core only ever looks at the
// returned error, never at delivery details.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

type Service struct {
	db       *gorm.DB
	hasher   *security.ArgonHash
	tokens   *security.TokenIssuer
	mailer   Mailer
	otpTTL   time.Duration
	resetTTL time.Duration

	// FrontendURL is the base for the reset link sent by mail
	FrontendURL string

	now func() time.Time
}

func NewService(db *gorm.DB, hasher *security.ArgonHash, tokens *security.TokenIssuer, mailer Mailer, otpTTL, resetTTL time.Duration, frontendURL string) *Service {
	return &Service{
		db:          db,
		hasher:      hasher,
		tokens:      tokens,
		mailer:      mailer,
		otpTTL:      otpTTL,
		resetTTL:    resetTTL,
		FrontendURL: frontendURL,
		now:         time.Now,
	}
}

// Register creates a new unverified account and mails it a one-time
// verification code. A verified account with the same email blocks the
// registration entirely, unverified ones do too once there are
// maxPendingAttempts of them.
func (s *Service) Register(name, email, password string) (*model.User, error) {
	if name == "" || email == "" || password == "" {
		return nil, ErrMissingField
	}

	if err := validators.EmailValidator(email); err != nil {
		return nil, ErrInvalidEmail
	}

	var verifiedCount int64
	err := s.db.Model(model.User{}).
		Where("email = ? AND account_verified = ?", email, true).
		Count(&verifiedCount).Error
	if err != nil {
		zap.L().Error("Failed to check for existing account", zap.Error(err))
		return nil, ErrInternal
	}

	if verifiedCount > 0 {
		return nil, ErrDuplicateAccount
	}

	var pendingCount int64
	err = s.db.Model(model.User{}).
		Where("email = ? AND account_verified = ?", email, false).
		Count(&pendingCount).Error
	if err != nil {
		zap.L().Error("Failed to count registration attempts", zap.Error(err))
		return nil, ErrInternal
	}

	if pendingCount >= maxPendingAttempts {
		return nil, ErrTooManyAttempts
	}

	if err := validators.PasswordValidator(password); err != nil {
		return nil, ErrInvalidPassword
	}

	hash, err := s.hasher.GenerateFromPassword(password)
	if err != nil {
		zap.L().Error("Failed to hash password", zap.Error(err))
		return nil, ErrInternal
	}

	userID, err := gonanoid.Generate(idCharset, idLength)
	if err != nil {
		zap.L().Error("Failed to generate user ID", zap.Error(err))
		return nil, ErrInternal
	}

	code, err := security.GenerateOTP()
	if err != nil {
		zap.L().Error("Failed to generate verification code", zap.Error(err))
		return nil, ErrInternal
	}

	expire := s.now().Add(s.otpTTL)

	user := &model.User{
		ID:                     userID,
		Name:                   name,
		Email:                  email,
		PasswordHash:           hash,
		Role:                   model.RoleUser,
		AccountVerified:        false,
		VerificationCode:       &code,
		VerificationCodeExpire: &expire,
	}

	if err := s.db.Create(user).Error; err != nil {
		zap.L().Error("Failed to create user", zap.Error(err))
		return nil, ErrInternal
	}

	err = s.mailer.Send(email, "Your Verification Code", service.VerificationOTPBody(code, s.otpTTL))
	if err != nil {
		zap.L().Error("Failed to send verification email", zap.Error(err))
		return nil, ErrDeliveryFailed
	}

	return user, nil
}

// RegisterAdmin creates an already-verified admin account. The OTP
// round-trip is skipped because only an authenticated admin can reach
// this, the email was never the thing being proven.
func (s *Service) RegisterAdmin(name, email, password string) (*model.User, error) {
	if name == "" || email == "" || password == "" {
		return nil, ErrMissingField
	}

	if err := validators.EmailValidator(email); err != nil {
		return nil, ErrInvalidEmail
	}

	if err := validators.PasswordValidator(password); err != nil {
		return nil, ErrInvalidPassword
	}

	var verifiedCount int64
	err := s.db.Model(model.User{}).
		Where("email = ? AND account_verified = ?", email, true).
		Count(&verifiedCount).Error
	if err != nil {
		zap.L().Error("Failed to check for existing account", zap.Error(err))
		return nil, ErrInternal
	}

	if verifiedCount > 0 {
		return nil, ErrDuplicateAccount
	}

	hash, err := s.hasher.GenerateFromPassword(password)
	if err != nil {
		zap.L().Error("Failed to hash password", zap.Error(err))
		return nil, ErrInternal
	}

	userID, err := gonanoid.Generate(idCharset, idLength)
	if err != nil {
		zap.L().Error("Failed to generate user ID", zap.Error(err))
		return nil, ErrInternal
	}

	user := &model.User{
		ID:              userID,
		Name:            name,
		Email:           email,
		PasswordHash:    hash,
		Role:            model.RoleAdmin,
		AccountVerified: true,
	}

	if err := s.db.Create(user).Error; err != nil {
		zap.L().Error("Failed to create admin", zap.Error(err))
		return nil, ErrInternal
	}

	return user, nil
}

// VerifyOTP confirms a pending registration. When several unverified
// records exist for the email the newest one is authoritative and the
// older siblings are dropped. The code is single-use: the same update
// that marks the account verified also nulls it out.
func (s *Service) VerifyOTP(email string, otp int64) (*model.User, string, error) {
	if email == "" {
		return nil, "", ErrMissingField
	}

	var entries []model.User
	err := s.db.
		Where("email = ? AND account_verified = ?", email, false).
		Order("created_at desc").
		Find(&entries).Error
	if err != nil {
		zap.L().Error("Failed to load registration attempts", zap.Error(err))
		return nil, "", ErrInternal
	}

	if len(entries) == 0 {
		return nil, "", ErrNotFound
	}

	user := entries[0]

	if len(entries) > 1 {
		err = s.db.
			Where("email = ? AND account_verified = ? AND id <> ?", email, false, user.ID).
			Delete(model.User{}).Error
		if err != nil {
			zap.L().Error("Failed to prune duplicate registration attempts", zap.Error(err))
			return nil, "", ErrInternal
		}
	}

	if user.VerificationCode == nil || *user.VerificationCode != otp {
		return nil, "", ErrInvalidOtp
	}

	if user.VerificationCodeExpire == nil || s.now().After(*user.VerificationCodeExpire) {
		return nil, "", ErrExpired
	}

	err = s.db.Model(&user).Updates(map[string]any{
		"account_verified":         true,
		"verification_code":        nil,
		"verification_code_expire": nil,
	}).Error
	if err != nil {
		zap.L().Error("Failed to mark account verified", zap.Error(err))
		return nil, "", ErrInternal
	}

	user.AccountVerified = true
	user.VerificationCode = nil
	user.VerificationCodeExpire = nil

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		zap.L().Error("Failed to issue session token", zap.Error(err))
		return nil, "", ErrInternal
	}

	return &user, token, nil
}

// Login checks the credentials of a verified account. Unknown email
// and wrong password come back as the same error so callers can't
// probe which addresses are registered.
func (s *Service) Login(email, password string) (*model.User, string, error) {
	if email == "" || password == "" {
		return nil, "", ErrMissingField
	}

	var user model.User
	err := s.db.
		Where("email = ? AND account_verified = ?", email, true).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}

		zap.L().Error("Failed to look up user", zap.Error(err))
		return nil, "", ErrInternal
	}

	ok, err := s.hasher.VerifyPasswd(password, user.PasswordHash)
	if err != nil {
		zap.L().Error("Failed to verify password", zap.Error(err))
		return nil, "", ErrInternal
	}

	if !ok {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		zap.L().Error("Failed to issue session token", zap.Error(err))
		return nil, "", ErrInternal
	}

	return &user, token, nil
}

// ForgotPassword stores the digest of a fresh reset token and mails
// the raw token to the account. If the mail can't be delivered the
// token fields are rolled back so the account ends up exactly as
// before the request.
func (s *Service) ForgotPassword(email string) error {
	if email == "" {
		return ErrMissingField
	}

	var user model.User
	err := s.db.
		Where("email = ? AND account_verified = ?", email, true).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidEmail
		}

		zap.L().Error("Failed to look up user", zap.Error(err))
		return ErrInternal
	}

	raw, digest, err := security.NewResetToken()
	if err != nil {
		zap.L().Error("Failed to generate reset token", zap.Error(err))
		return ErrInternal
	}

	expire := s.now().Add(s.resetTTL)

	err = s.db.Model(&user).Updates(map[string]any{
		"reset_password_token":  digest,
		"reset_password_expire": expire,
	}).Error
	if err != nil {
		zap.L().Error("Failed to store reset token", zap.Error(err))
		return ErrInternal
	}

	resetURL := s.FrontendURL + "/password/reset/" + raw

	err = s.mailer.Send(user.Email, "Reset Password", service.PasswordResetBody(resetURL, s.resetTTL))
	if err != nil {
		zap.L().Error("Failed to send reset email, rolling back token", zap.Error(err))

		rbErr := s.db.Model(&user).Updates(map[string]any{
			"reset_password_token":  nil,
			"reset_password_expire": nil,
		}).Error
		if rbErr != nil {
			zap.L().Error("Failed to roll back reset token", zap.Error(rbErr))
		}

		return ErrDeliveryFailed
	}

	return nil
}

// ResetPassword consumes a raw reset token and replaces the account
// password, logging the user in with a fresh session token.
func (s *Service) ResetPassword(rawToken, password, confirmPassword string) (*model.User, string, error) {
	if rawToken == "" || password == "" || confirmPassword == "" {
		return nil, "", ErrMissingField
	}

	digest := security.HashResetToken(rawToken)

	var user model.User
	err := s.db.
		Where("reset_password_token = ? AND reset_password_expire > ? AND account_verified = ?",
			digest, s.now(), true).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidResetToken
		}

		zap.L().Error("Failed to look up reset token", zap.Error(err))
		return nil, "", ErrInternal
	}

	if password != confirmPassword {
		return nil, "", ErrPasswordMismatch
	}

	if err := validators.PasswordValidator(password); err != nil {
		return nil, "", ErrInvalidPassword
	}

	hash, err := s.hasher.GenerateFromPassword(password)
	if err != nil {
		zap.L().Error("Failed to hash password", zap.Error(err))
		return nil, "", ErrInternal
	}

	err = s.db.Model(&user).Updates(map[string]any{
		"password_hash":         hash,
		"reset_password_token":  nil,
		"reset_password_expire": nil,
	}).Error
	if err != nil {
		zap.L().Error("Failed to update password", zap.Error(err))
		return nil, "", ErrInternal
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		zap.L().Error("Failed to issue session token", zap.Error(err))
		return nil, "", ErrInternal
	}

	return &user, token, nil
}

// ChangePassword replaces the password of an authenticated account.
// The caller's existing session stays valid, no new token is issued.
func (s *Service) ChangePassword(userID, oldPassword, newPassword, confirmNewPassword string) error {
	if oldPassword == "" || newPassword == "" || confirmNewPassword == "" {
		return ErrMissingField
	}

	var user model.User
	err := s.db.Where("id = ?", userID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}

		zap.L().Error("Failed to look up user", zap.Error(err))
		return ErrInternal
	}

	ok, err := s.hasher.VerifyPasswd(oldPassword, user.PasswordHash)
	if err != nil {
		zap.L().Error("Failed to verify password", zap.Error(err))
		return ErrInternal
	}

	if !ok {
		return ErrInvalidCredentials
	}

	if newPassword != confirmNewPassword {
		return ErrPasswordMismatch
	}

	if err := validators.PasswordValidator(newPassword); err != nil {
		return ErrInvalidPassword
	}

	if newPassword == oldPassword {
		return ErrNoOpChange
	}

	hash, err := s.hasher.GenerateFromPassword(newPassword)
	if err != nil {
		zap.L().Error("Failed to hash password", zap.Error(err))
		return ErrInternal
	}

	err = s.db.Model(&user).Update("password_hash", hash).Error
	if err != nil {
		zap.L().Error("Failed to update password", zap.Error(err))
		return ErrInternal
	}

	return nil
}

// UserByID loads one account, used by the auth middleware and /me.
func (s *Service) UserByID(id string) (*model.User, error) {
	var user model.User

	err := s.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		zap.L().Error("Failed to look up user", zap.Error(err))
		return nil, ErrInternal
	}

	return &user, nil
}
