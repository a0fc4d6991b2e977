package services

import (
	"errors"
	"fmt"
	"strings"

	"lootmarket/internal/domain"
	"lootmarket/internal/repos"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrBadCreds   = errors.New("invalid email or password")
	ErrEmailTaken = errors.New("email already registered")
	// ErrNotFound is the repository sentinel, re-exported so handlers only import services.
	ErrNotFound = repos.ErrNotFound
)

// Identity resolves the user bound to a session id. Guards and templates depend on it
// rather than on AuthService.
type Identity interface {
	CurrentUser(sid string) (*domain.User, error)
}

type AuthService struct {
	Users *repos.UserRepo
}

func (s *AuthService) Login(sid, email, password string) (*domain.User, error) {
	u, err := s.Users.ByEmail(email)
	if err != nil {
		return nil, ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	if err := s.Users.BindSession(sid, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AuthService) Logout(sid string) error {
	return s.Users.UnbindSession(sid)
}

func (s *AuthService) CurrentUser(sid string) (*domain.User, error) {
	return s.Users.SessionUser(sid)
}

// SignUp creates a regular account and logs it in on sid.
func (s *AuthService) SignUp(sid, name, email, password string) (*domain.User, error) {
	u, err := s.Register(name, email, password, domain.RoleUser)
	if err != nil {
		return nil, err
	}
	if err := s.Users.BindSession(sid, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

// Register creates an account with the given role without touching any session.
func (s *AuthService) Register(name, email, password, role string) (*domain.User, error) {
	if _, err := s.Users.ByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repos.ErrNotFound) {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &domain.User{Email: strings.ToLower(email), Name: name, Hash: string(hash), Role: role}
	if err := s.Users.Create(u); err != nil {
		return nil, err
	}
	return u, nil
}
