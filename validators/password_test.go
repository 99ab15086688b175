package validators

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPasswordValidator(t *testing.T) {
	assert.Equal(t, ErrPasswordEmpty, PasswordValidator(""))
	assert.Equal(t, ErrPasswordTooShort, PasswordValidator("short"))
	assert.Equal(t, ErrPasswordTooLong, PasswordValidator(strings.Repeat("x", 17)))
	assert.NoError(t, PasswordValidator("pass1234"))
	assert.NoError(t, PasswordValidator(strings.Repeat("x", 16)))
}

func TestEmailValidator(t *testing.T) {
	assert.Equal(t, ErrEmailEmpty, EmailValidator(""))
	assert.Equal(t, ErrEmailInvalid, EmailValidator("not-an-email"))
	assert.NoError(t, EmailValidator("a@x.com"))
}
