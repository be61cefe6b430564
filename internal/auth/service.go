package auth

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/mechatrack/internal/errs"
	"github.com/erazemk/mechatrack/internal/model"
	"github.com/erazemk/mechatrack/internal/store"
)

// MsgInvalidCredentials is returned for an unknown email or a wrong password.
const MsgInvalidCredentials = "Invalid email or password"

// Session is the result of a successful login.
type Session struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// Service registers accounts and exchanges credentials for tokens.
type Service struct {
	Users  *store.Users
	Tokens *Tokens
	// Cost is the bcrypt cost; zero means bcrypt.DefaultCost.
	Cost int
}

// Register validates the signup, hashes the password and stores the user.
func (s *Service) Register(ctx context.Context, in model.Signup) (*model.User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.Users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errs.Conflict(store.MsgEmailExists)
	}

	cost := s.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), cost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	return s.Users.Create(ctx, in.Email, string(hash), in.Name)
}

// Authenticate checks the password and issues a token for the user.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errs.Unauthorized(MsgInvalidCredentials)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errs.Unauthorized(MsgInvalidCredentials)
	}

	token, _, err := s.Tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: user}, nil
}

// CurrentUser resolves the user a verified token was issued to.
func (s *Service) CurrentUser(ctx context.Context, claims *Claims) (*model.User, error) {
	id, err := claims.UserID()
	if err != nil {
		return nil, errs.Wrap(errs.CodeUnauthorized, err, MsgTokenInvalid)
	}
	user, err := s.Users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errs.Unauthorized("User not found")
	}
	return user, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
