package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"miniwiki/internal/auth"
	"miniwiki/internal/domain"
	"miniwiki/internal/repository"
)

var (
	// ErrUnknownUser is returned by Login when no account has the username.
	// Distinguishing it from ErrWrongPassword mirrors the product's original
	// behavior; see DESIGN.md for the trade-off.
	ErrUnknownUser = errors.New("this user does not exist")
	// ErrWrongPassword is returned by Login when the password does not verify.
	ErrWrongPassword = errors.New("incorrect password")
)

// SignupFieldErrors has one optional message slot per validated field plus
// one for account existence. A nil pointer from Signup means every check
// passed; the zero value never occurs in results.
type SignupFieldErrors struct {
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	Verify   string `json:"verify,omitempty"`
	Email    string `json:"email,omitempty"`
	Account  string `json:"account,omitempty"`
}

func fieldErrors(check auth.SignupCheck) *SignupFieldErrors {
	fe := &SignupFieldErrors{}
	if !check.UsernameValid {
		fe.Username = "Invalid user name."
	}
	if !check.PasswordValid {
		fe.Password = "Invalid password."
	}
	if !check.VerifyMatches {
		fe.Verify = "Does not match with the password."
	}
	if !check.EmailValid {
		fe.Email = "Invalid email."
	}
	if !check.AccountAvailable {
		fe.Account = "This user name already exists."
	}
	return fe
}

// AccountService covers the account lifecycle and session issuance.
type AccountService interface {
	Signup(ctx context.Context, username, password, verify, email string) (*domain.Account, *SignupFieldErrors, error)
	Login(ctx context.Context, username, password string) (*domain.Account, string, error)
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	SessionCookieValue(accountID int64) (string, error)
	SessionAccountID(cookieValue string) (int64, error)
}

type accountService struct {
	accounts repository.AccountRepository
	hasher   auth.PasswordHasher
	tokens   auth.TokenCodec
}

func NewAccountService(accounts repository.AccountRepository, hasher auth.PasswordHasher, tokens auth.TokenCodec) AccountService {
	return &accountService{
		accounts: accounts,
		hasher:   hasher,
		tokens:   tokens,
	}
}

// Signup validates every field, then creates the account. A non-nil
// SignupFieldErrors reports every failed check at once; the account is only
// created when all five pass. A duplicate sneaking in between the
// availability check and the insert surfaces as the same account field error.
func (s *accountService) Signup(ctx context.Context, username, password, verify, email string) (*domain.Account, *SignupFieldErrors, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	taken, err := s.usernameTaken(ctx, username)
	if err != nil {
		return nil, nil, err
	}

	check := auth.CheckSignup(username, password, verify, email, taken)
	if !check.OK() {
		return nil, fieldErrors(check), nil
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	account := &domain.Account{
		Username:     username,
		PasswordHash: hash,
		Email:        email,
	}
	if _, err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			check.AccountAvailable = false
			return nil, fieldErrors(check), nil
		}
		return nil, nil, err
	}

	return sanitize(account), nil, nil
}

// Login authenticates the credentials and mints a session token for the
// account.
func (s *accountService) Login(ctx context.Context, username, password string) (*domain.Account, string, error) {
	account, err := s.accounts.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrUnknownUser
		}
		return nil, "", err
	}

	if !s.hasher.Verify(password, account.PasswordHash) {
		return nil, "", ErrWrongPassword
	}

	token, err := s.tokens.Issue(account.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue session token: %w", err)
	}
	return sanitize(account), token, nil
}

func (s *accountService) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return sanitize(account), nil
}

// SessionCookieValue mints the bearer token carried in the session cookie.
func (s *accountService) SessionCookieValue(accountID int64) (string, error) {
	return s.tokens.Issue(accountID)
}

// SessionAccountID validates a cookie value and returns the account it names,
// or auth.ErrInvalidSession.
func (s *accountService) SessionAccountID(cookieValue string) (int64, error) {
	return s.tokens.Validate(cookieValue)
}

func (s *accountService) usernameTaken(ctx context.Context, username string) (bool, error) {
	_, err := s.accounts.GetByUsername(ctx, username)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, repository.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

func sanitize(account *domain.Account) *domain.Account {
	if account == nil {
		return nil
	}
	return &domain.Account{
		ID:        account.ID,
		Username:  account.Username,
		Email:     account.Email,
		CreatedAt: account.CreatedAt,
		UpdatedAt: account.UpdatedAt,
	}
}
