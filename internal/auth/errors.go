package auth

import "net/http"

// Error is a domain error with a stable message and the HTTP status
// it maps to at the boundary. Handlers serialize every one of these
// uniformly as {success:false, message} and never retry.
type Error struct {
	Message string
	Status  int
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrMissingField       = &Error{"Please provide all required fields", http.StatusBadRequest}
	ErrDuplicateAccount   = &Error{"User already exists", http.StatusBadRequest}
	ErrTooManyAttempts    = &Error{"You have exceeded the maximum number of registration attempts. Please try again later.", http.StatusBadRequest}
	ErrInvalidPassword    = &Error{"Password must be between 8 and 16 characters", http.StatusBadRequest}
	ErrInvalidOtp         = &Error{"Invalid Otp", http.StatusBadRequest}
	ErrExpired            = &Error{"Otp has expired", http.StatusBadRequest}
	ErrNotFound           = &Error{"User not found", http.StatusNotFound}
	ErrInvalidCredentials = &Error{"Invalid email or password", http.StatusUnauthorized}
	ErrInvalidEmail       = &Error{"Invalid Email", http.StatusBadRequest}
	ErrDeliveryFailed     = &Error{"Failed to send email", http.StatusInternalServerError}
	ErrInvalidResetToken  = &Error{"Reset password token is invalid or has been expired", http.StatusBadRequest}
	ErrPasswordMismatch   = &Error{"Password and Confirm Password do not match", http.StatusBadRequest}
	ErrNoOpChange         = &Error{"New password must be different from old password", http.StatusBadRequest}
	ErrUnauthenticated    = &Error{"Please login to access this resource", http.StatusUnauthorized}
	ErrForbidden          = &Error{"You are not allowed to access this resource", http.StatusForbidden}
	ErrInternal           = &Error{"Internal Server Error", http.StatusInternalServerError}
)

// StatusOf returns the HTTP status for a domain error, 500 for
// anything else.
func StatusOf(err error) int {
	if e, ok := err.(*Error); ok {
		return e.Status
	}

	return http.StatusInternalServerError
}
