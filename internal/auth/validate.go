package auth

import "regexp"

var (
	usernameRE = regexp.MustCompile(`^[A-Za-z0-9_-]{3,20}$`)
	emailRE    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// SignupCheck carries the outcome of every credential check. All checks run
// unconditionally so a caller can report each violation at once.
type SignupCheck struct {
	UsernameValid    bool
	PasswordValid    bool
	VerifyMatches    bool
	EmailValid       bool
	AccountAvailable bool
}

// OK reports whether every check passed.
func (c SignupCheck) OK() bool {
	return c.UsernameValid && c.PasswordValid && c.VerifyMatches && c.EmailValid && c.AccountAvailable
}

// CheckSignup runs the pure credential checks. Account availability is a
// store concern; the caller supplies whether the username is already taken.
func CheckSignup(username, password, verify, email string, usernameTaken bool) SignupCheck {
	return SignupCheck{
		UsernameValid:    ValidUsername(username),
		PasswordValid:    ValidPassword(password),
		VerifyMatches:    password != "" && password == verify,
		EmailValid:       ValidEmail(email),
		AccountAvailable: !usernameTaken,
	}
}

// ValidUsername accepts 3-20 characters of letters, digits, underscore, or
// hyphen.
func ValidUsername(username string) bool {
	return usernameRE.MatchString(username)
}

// ValidPassword accepts any 3-20 characters.
func ValidPassword(password string) bool {
	return len(password) >= 3 && len(password) <= 20
}

// ValidEmail accepts an empty email, or one of the loose local@domain.tld
// shape: no whitespace or extra @ in either part, at least one dot in the
// domain.
func ValidEmail(email string) bool {
	if email == "" {
		return true
	}
	return emailRE.MatchString(email)
}
