package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/proid/proid/internal/user"
)

// ErrInvalidCredentials is returned when a login identifier/password pair
// does not match a stored user. The message is deliberately generic.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service provides registration, login, and password-change operations.
type Service struct {
	userRepo   user.Repository
	issuer     *TokenIssuer
	bcryptCost int
}

// NewService creates a new auth Service.
func NewService(userRepo user.Repository, issuer *TokenIssuer, bcryptCost int) *Service {
	return &Service{
		userRepo:   userRepo,
		issuer:     issuer,
		bcryptCost: bcryptCost,
	}
}

// RegisterParams carries the fields of a registration request.
type RegisterParams struct {
	Username *string
	Name     string
	Email    string
	Password string
	IsAdmin  bool
}

// Register hashes the password, inserts the user, and returns it with a
// freshly issued token. Duplicate identities surface as the repository's
// sentinel errors.
func (s *Service) Register(ctx context.Context, p RegisterParams) (*user.User, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), s.bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("hashing password: %w", err)
	}

	u := &user.User{
		Username:     p.Username,
		Name:         p.Name,
		Email:        p.Email,
		PasswordHash: string(hash),
		IsAdmin:      p.IsAdmin,
	}

	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, "", err
	}

	token, err := s.issuer.Issue(u.ID, u.Email)
	if err != nil {
		return nil, "", err
	}

	return u, token, nil
}

// Login resolves the identifier (email, falling back to username), compares
// the password, and issues a token. Unknown identifiers and wrong passwords
// both map to ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, username, password string) (*user.User, string, error) {
	var (
		u   *user.User
		err error
	)

	switch {
	case email != "":
		u, err = s.userRepo.GetByEmail(ctx, email)
	case username != "":
		u, err = s.userRepo.GetByUsername(ctx, username)
	default:
		return nil, "", ErrInvalidCredentials
	}

	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(u.ID, u.Email)
	if err != nil {
		return nil, "", err
	}

	return u, token, nil
}

// ChangePassword verifies the current password before storing a hash of the
// new one.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(currentPassword)) != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	return s.userRepo.UpdatePassword(ctx, userID, string(hash))
}
