package service

import (
	"fmt"
	"time"
)

func VerificationOTPBody(code int64, ttl time.Duration) string {
	return fmt.Sprintf(
		`<p>Your verification code is:</p><h2>%d</h2><p>Enter it to finish registering your library account. The code expires in %d minutes.</p>`,
		code, int(ttl.Minutes()))
}

func PasswordResetBody(resetURL string, ttl time.Duration) string {
	return fmt.Sprintf(
		`<p>You requested a password reset.</p><p>Click <a href="%s">here</a> to choose a new password. The link expires in %d minutes.</p><p>If you didn't request this you can ignore this mail.</p>`,
		resetURL, int(ttl.Minutes()))
}

func ReturnReminderBody(name, title string) string {
	return fmt.Sprintf(
		`<p>Dear %s,</p><p>This is a reminder that your borrowed book <b>%s</b> is due for return. Please return it to the library as soon as possible.</p><p>Thank you.</p>`,
		name, title)
}
