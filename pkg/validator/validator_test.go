package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRegister(t *testing.T) {
	errs := ValidateRegister("alice@example.com", "alice", "Str0ngPass")
	assert.False(t, errs.HasErrors())

	errs = ValidateRegister("", "", "")
	assert.True(t, errs.HasErrors())
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "username")
	assert.Contains(t, errs, "password")
}

func TestValidateEmail(t *testing.T) {
	cases := []struct {
		email string
		valid bool
	}{
		{"alice@example.com", true},
		{"a@b.co", true},
		{"not-an-email", false},
		{"@example.com", false},
		{"   ", false},
	}

	for _, tc := range cases {
		errs := ValidateLogin(tc.email, "whatever")
		if tc.valid {
			assert.NotContains(t, errs, "email", "email %q should be valid", tc.email)
		} else {
			assert.Contains(t, errs, "email", "email %q should be invalid", tc.email)
		}
	}
}

func TestValidateUsername(t *testing.T) {
	assert.Contains(t, ValidateRegister("a@b.co", "ab", "Str0ngPass"), "username")
	assert.NotContains(t, ValidateRegister("a@b.co", "abc", "Str0ngPass"), "username")

	long := make([]byte, 51)
	for i := range long {
		long[i] = 'a'
	}
	assert.Contains(t, ValidateRegister("a@b.co", string(long), "Str0ngPass"), "username")
}

func TestValidatePasswordComplexity(t *testing.T) {
	cases := []struct {
		password string
		valid    bool
	}{
		{"Str0ngPass", true},
		{"short1A", false},         // under 8 chars
		{"alllowercase1", false},   // no uppercase
		{"ALLUPPERCASE1", false},   // no lowercase
		{"NoDigitsHere", false},    // no number
		{"G00dEnough", true},
	}

	for _, tc := range cases {
		errs := ValidateRegister("a@b.co", "alice", tc.password)
		if tc.valid {
			assert.NotContains(t, errs, "password", "password %q should pass", tc.password)
		} else {
			assert.Contains(t, errs, "password", "password %q should fail", tc.password)
		}
	}
}

func TestValidateProfileAllowsEmptyUsername(t *testing.T) {
	// Profile updates may omit the username to leave it unchanged.
	assert.False(t, ValidateProfile("").HasErrors())
	assert.True(t, ValidateProfile("ab").HasErrors())
}

func TestValidateEmailChange(t *testing.T) {
	assert.False(t, ValidateEmailChange("new@example.com", "pass").HasErrors())
	assert.Contains(t, ValidateEmailChange("new@example.com", ""), "password")
	assert.Contains(t, ValidateEmailChange("bad", "pass"), "email")
}

func TestValidatePasswordChange(t *testing.T) {
	assert.False(t, ValidatePasswordChange("old", "NewPass123").HasErrors())
	assert.Contains(t, ValidatePasswordChange("", "NewPass123"), "current_password")
	assert.Contains(t, ValidatePasswordChange("old", "weak"), "password")
}
