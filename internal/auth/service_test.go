package auth

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"bookdrop/library-api/internal/model"
	"bookdrop/library-api/internal/service"
	"bookdrop/library-api/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type fakeMailer struct {
	sent []sentMail
	fail bool
}

func (m *fakeMailer) Send(to, subject, htmlBody string) error {
	if m.fail {
		return errors.New("smtp down")
	}

	m.sent = append(m.sent, sentMail{to, subject, htmlBody})
	return nil
}

var testDBCounter int

func testService(t *testing.T) (*Service, *fakeMailer, *time.Time) {
	t.Helper()

	testDBCounter++
	dsn := fmt.Sprintf("file:authtest%d?mode=memory&cache=shared", testDBCounter)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.User{}))

	mailer := &fakeMailer{}
	tokens := security.NewTokenIssuer("test-secret", time.Hour)

	s := NewService(db, security.NewArgon(), tokens, mailer,
		15*time.Minute, 15*time.Minute, "http://localhost:5173")

	now := time.Now()
	s.now = func() time.Time { return now }

	return s, mailer, &now
}

func pendingUser(t *testing.T, s *Service, email string) model.User {
	t.Helper()

	var user model.User
	err := s.db.
		Where("email = ? AND account_verified = ?", email, false).
		Order("created_at desc").
		First(&user).Error
	require.NoError(t, err)

	return user
}

func TestRegisterCreatesPendingRecord(t *testing.T) {
	s, mailer, _ := testService(t)

	_, err := s.Register("Alice", "a@x.com", "pass1234")
	require.NoError(t, err)

	user := pendingUser(t, s, "a@x.com")
	assert.False(t, user.AccountVerified)
	assert.Equal(t, model.RoleUser, user.Role)
	require.NotNil(t, user.VerificationCode)
	require.NotNil(t, user.VerificationCodeExpire)
	assert.True(t, user.VerificationCodeExpire.After(time.Now()))

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "a@x.com", mailer.sent[0].To)
	assert.Contains(t, mailer.sent[0].Body, fmt.Sprint(*user.VerificationCode))
}

func TestRegisterMissingFields(t *testing.T) {
	s, _, _ := testService(t)

	_, err := s.Register("", "a@x.com", "pass1234")
	assert.Equal(t, ErrMissingField, err)

	_, err = s.Register("Alice", "", "pass1234")
	assert.Equal(t, ErrMissingField, err)

	_, err = s.Register("Alice", "a@x.com", "")
	assert.Equal(t, ErrMissingField, err)
}

func TestRegisterPasswordBounds(t *testing.T) {
	s, _, _ := testService(t)

	_, err := s.Register("Alice", "a@x.com", "short")
	assert.Equal(t, ErrInvalidPassword, err)

	_, err = s.Register("Alice", "a@x.com", strings.Repeat("x", 17))
	assert.Equal(t, ErrInvalidPassword, err)
}

func TestRegisterRejectsVerifiedDuplicate(t *testing.T) {
	s, _, _ := testService(t)

	_, err := s.Register("Alice", "a@x.com", "pass1234")
	require.NoError(t, err)

	user := pendingUser(t, s, "a@x.com")
	_, _, err = s.VerifyOTP("a@x.com", *user.VerificationCode)
	require.NoError(t, err)

	_, err = s.Register("Alice", "a@x.com", "pass1234")
	assert.Equal(t, ErrDuplicateAccount, err)
}

func TestRegisterCapsPendingAttempts(t *testing.T) {
	s, _, _ := testService(t)

	for i := 0; i < 3; i++ {
		_, err := s.Register("Alice", "a@x.com", "pass1234")
		require.NoError(t, err)
	}

	_, err := s.Register("Alice", "a@x.com", "pass1234")
	assert.Equal(t, ErrTooManyAttempts, err)
}

func TestVerifyOTPHappyPathIsSingleUse(t *testing.T) {
	s, _, _ := testService(t)

	_, err := s.Register("Alice", "a@x.com", "pass1234")
	require.NoError(t, err)

	pending := pendingUser(t, s, "a@x.com")
	code := *pending.VerificationCode

	user, token, err := s.VerifyOTP("a@x.com", code)
	require.NoError(t, err)
	assert.True(t, user.AccountVerified)
	assert.Nil(t, user.VerificationCode)
	assert.Nil(t, user.VerificationCodeExpire)
	assert.NotEmpty(t, token)

	var stored model.User
	require.NoError(t, s.db.Where("id = ?", user.ID).First(&stored).Error)
	assert.True(t, stored.AccountVerified)
	assert.Nil(t, stored.VerificationCode)
	assert.Nil(t, stored.VerificationCodeExpire)

	// Code was cleared in the same update, replaying it finds nothing
	_, _, err = s.VerifyOTP("a@x.com", code)
	assert.Equal(t, ErrNotFound, err)
}

func TestVerifyOTPWrongCode(t *testing.T) {
	s, _, _ := testService(t)

	_, err := s.Register("Alice", "a@x.com", "pass1234")
	require.NoError(t, err)

	pending := pendingUser(t, s, "a@x.com")

	_, _, err = s.VerifyOTP("a@x.com", *pending.VerificationCode+1)
	assert.Equal(t, ErrInvalidOtp, err)

	stored := pendingUser(t, s, "a@x.com")
	assert.False(t, stored.AccountVerified)
}

func TestVerifyOTPExpired(t *testing.T) {
	s, _, now := testService(t)

	_, err := s.Register("Alice", "a@x.com", "pass1234")
	require.NoError(t, err)

	pending := pendingUser(t, s, "a@x.com")

	*now = now.Add(16 * time.Minute)

	_, _, err = s.VerifyOTP("a@x.com", *pending.VerificationCode)
	assert.Equal(t, ErrExpired, err)

	stored := pendingUser(t, s, "a@x.com")
	assert.False(t, stored.AccountVerified)
}

func TestVerifyOTPZeroCodeIsJustAMismatch(t *testing.T) {
	s, _, _ := testService(t)

	_, err := s.Register("Alice", "a@x.com", "pass1234")
	require.NoError(t, err)

	// A literal "0" is a wrong code, not a missing field
	_, _, err = s.VerifyOTP("a@x.com", 0)
	assert.Equal(t, ErrInvalidOtp, err)
}

func TestVerifyOTPUnknownEmail(t *testing.T) {
	s, _, _ := testService(t)

	_, _, err := s.VerifyOTP("nobody@x.com", 12345)
	assert.Equal(t, ErrNotFound, err)
}

func TestPruneFreesAttemptCap(t *testing.T) {
	s, _, now := testService(t)

	// Registrations made two hours in the past carry long-expired codes
	*now = time.Now().Add(-2 * time.Hour)

	for i := 0; i < 3; i++ {
		_, err := s.Register("Alice", "a@x.com", "pass1234")
		require.NoError(t, err)
	}

	*now = time.Now()

	_, err := s.Register("Alice", "a@x.com", "pass1234")
	require.Equal(t, ErrTooManyAttempts, err)

	// The cleanup sweep un-sticks the cap once the grace period is over
	pruned, err := service.PruneExpiredRegistrations(s.db, time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 3, pruned)

	_, err = s.Register("Alice", "a@x.com", "pass1234")
	assert.NoError(t, err)
}

func TestVerifyOTPPrunesOlderSiblings(t *testing.T) {
	s, _, _ := testService(t)

	for i := 0; i < 3; i++ {
		_, err := s.Register("Alice", "a@x.com", "pass1234")
		require.NoError(t, err)

		// created_at ordering needs distinct timestamps
		time.Sleep(5 * time.Millisecond)
	}

	newest := pendingUser(t, s, "a@x.com")

	user, _, err := s.VerifyOTP("a@x.com", *newest.VerificationCode)
	require.NoError(t, err)
	assert.Equal(t, newest.ID, user.ID)

	var remaining int64
	require.NoError(t, s.db.Model(model.User{}).Where("email = ?", "a@x.com").Count(&remaining).Error)
	assert.EqualValues(t, 1, remaining)
}

func registerVerified(t *testing.T, s *Service, name, email, password string) *model.User {
	t.Helper()

	_, err := s.Register(name, email, password)
	require.NoError(t, err)

	pending := pendingUser(t, s, email)

	user, _, err := s.VerifyOTP(email, *pending.VerificationCode)
	require.NoError(t, err)

	return user
}

func TestLoginIssuesToken(t *testing.T) {
	s, _, _ := testService(t)

	registerVerified(t, s, "Alice", "a@x.com", "pass1234")

	user, token, err := s.Login("a@x.com", "pass1234")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email)
	assert.NotEmpty(t, token)
}

func TestLoginUniformErrorKind(t *testing.T) {
	s, _, _ := testService(t)

	registerVerified(t, s, "Alice", "a@x.com", "pass1234")

	// Wrong password and unknown account must be indistinguishable
	_, _, errWrongPass := s.Login("a@x.com", "wrongpass")
	_, _, errNoUser := s.Login("nobody@x.com", "pass1234")

	assert.Equal(t, ErrInvalidCredentials, errWrongPass)
	assert.Equal(t, ErrInvalidCredentials, errNoUser)
}

func TestLoginIgnoresUnverifiedAccounts(t *testing.T) {
	s, _, _ := testService(t)

	_, err := s.Register("Alice", "a@x.com", "pass1234")
	require.NoError(t, err)

	_, _, err = s.Login("a@x.com", "pass1234")
	assert.Equal(t, ErrInvalidCredentials, err)
}

// resetTokenFromMail digs the raw reset token out of the mail body.
func resetTokenFromMail(t *testing.T, body string) string {
	t.Helper()

	const marker = "/password/reset/"
	i := strings.Index(body, marker)
	require.GreaterOrEqual(t, i, 0)

	rest := body[i+len(marker):]
	end := strings.IndexAny(rest, `"'`)
	require.GreaterOrEqual(t, end, 0)

	return rest[:end]
}

func TestForgotPasswordStoresDigestOnly(t *testing.T) {
	s, mailer, _ := testService(t)

	registerVerified(t, s, "Alice", "a@x.com", "pass1234")
	mailer.sent = nil

	require.NoError(t, s.ForgotPassword("a@x.com"))
	require.Len(t, mailer.sent, 1)

	raw := resetTokenFromMail(t, mailer.sent[0].Body)

	var user model.User
	require.NoError(t, s.db.Where("email = ?", "a@x.com").First(&user).Error)
	require.NotNil(t, user.ResetPasswordToken)
	require.NotNil(t, user.ResetPasswordExpire)

	assert.NotEqual(t, raw, *user.ResetPasswordToken)
	assert.Equal(t, security.HashResetToken(raw), *user.ResetPasswordToken)
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	s, _, _ := testService(t)

	assert.Equal(t, ErrInvalidEmail, s.ForgotPassword("nobody@x.com"))
}

func TestForgotPasswordRollsBackOnDeliveryFailure(t *testing.T) {
	s, mailer, _ := testService(t)

	registerVerified(t, s, "Alice", "a@x.com", "pass1234")

	mailer.fail = true
	assert.Equal(t, ErrDeliveryFailed, s.ForgotPassword("a@x.com"))

	var user model.User
	require.NoError(t, s.db.Where("email = ?", "a@x.com").First(&user).Error)
	assert.Nil(t, user.ResetPasswordToken)
	assert.Nil(t, user.ResetPasswordExpire)
}

func TestResetPasswordFlow(t *testing.T) {
	s, mailer, _ := testService(t)

	registerVerified(t, s, "Alice", "a@x.com", "pass1234")
	mailer.sent = nil

	require.NoError(t, s.ForgotPassword("a@x.com"))
	raw := resetTokenFromMail(t, mailer.sent[0].Body)

	user, token, err := s.ResetPassword(raw, "newpass99", "newpass99")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Nil(t, user.ResetPasswordToken)

	// Effectively a login, the new password works and the old doesn't
	_, _, err = s.Login("a@x.com", "newpass99")
	assert.NoError(t, err)

	_, _, err = s.Login("a@x.com", "pass1234")
	assert.Equal(t, ErrInvalidCredentials, err)

	// Token is single-use
	_, _, err = s.ResetPassword(raw, "another99", "another99")
	assert.Equal(t, ErrInvalidResetToken, err)
}

func TestResetPasswordExpiredToken(t *testing.T) {
	s, mailer, now := testService(t)

	registerVerified(t, s, "Alice", "a@x.com", "pass1234")
	mailer.sent = nil

	require.NoError(t, s.ForgotPassword("a@x.com"))
	raw := resetTokenFromMail(t, mailer.sent[0].Body)

	*now = now.Add(16 * time.Minute)

	_, _, err := s.ResetPassword(raw, "newpass99", "newpass99")
	assert.Equal(t, ErrInvalidResetToken, err)
}

func TestResetPasswordConfirmMismatchKeepsOldPassword(t *testing.T) {
	s, mailer, _ := testService(t)

	registerVerified(t, s, "Alice", "a@x.com", "pass1234")
	mailer.sent = nil

	require.NoError(t, s.ForgotPassword("a@x.com"))
	raw := resetTokenFromMail(t, mailer.sent[0].Body)

	_, _, err := s.ResetPassword(raw, "newpass99", "different99")
	assert.Equal(t, ErrPasswordMismatch, err)

	_, _, err = s.Login("a@x.com", "pass1234")
	assert.NoError(t, err)
}

func TestResetPasswordUnknownToken(t *testing.T) {
	s, _, _ := testService(t)

	_, _, err := s.ResetPassword("deadbeef", "newpass99", "newpass99")
	assert.Equal(t, ErrInvalidResetToken, err)
}

func TestChangePassword(t *testing.T) {
	s, _, _ := testService(t)

	user := registerVerified(t, s, "Alice", "a@x.com", "pass1234")

	require.NoError(t, s.ChangePassword(user.ID, "pass1234", "newpass99", "newpass99"))

	_, _, err := s.Login("a@x.com", "newpass99")
	assert.NoError(t, err)
}

func TestChangePasswordRejections(t *testing.T) {
	s, _, _ := testService(t)

	user := registerVerified(t, s, "Alice", "a@x.com", "pass1234")

	assert.Equal(t, ErrMissingField, s.ChangePassword(user.ID, "", "newpass99", "newpass99"))
	assert.Equal(t, ErrInvalidCredentials, s.ChangePassword(user.ID, "wrongpass", "newpass99", "newpass99"))
	assert.Equal(t, ErrPasswordMismatch, s.ChangePassword(user.ID, "pass1234", "newpass99", "other9999"))
	assert.Equal(t, ErrInvalidPassword, s.ChangePassword(user.ID, "pass1234", "short", "short"))

	// New password equal to the old one is rejected even though the
	// old-password check passes
	assert.Equal(t, ErrNoOpChange, s.ChangePassword(user.ID, "pass1234", "pass1234", "pass1234"))

	// Nothing above may have touched the stored hash
	_, _, err := s.Login("a@x.com", "pass1234")
	assert.NoError(t, err)
}

func TestEndToEndRegisterVerifyLogin(t *testing.T) {
	s, mailer, _ := testService(t)

	_, err := s.Register("Alice", "a@x.com", "pass1234")
	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)

	pending := pendingUser(t, s, "a@x.com")

	_, _, err = s.VerifyOTP("a@x.com", *pending.VerificationCode)
	require.NoError(t, err)

	user, token, err := s.Login("a@x.com", "pass1234")
	require.NoError(t, err)

	// The session token decodes back to the account it was issued for
	userID, err := s.tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}
