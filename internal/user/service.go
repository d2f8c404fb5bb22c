package user

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Common errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyInUse  = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
)

// Service handles user business logic
type Service struct {
	repo *Repository
}

// NewService creates a new user service with repository dependency injected
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Register creates a new user with a bcrypt-hashed password
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*User, error) {
	if len(req.Password) < 8 {
		return nil, ErrWeakPassword
	}

	existing, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyInUse
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return s.repo.Create(ctx, req.Name, req.Email, string(hash))
}

// Login verifies a user's credentials and returns the user on success
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*User, error) {
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetByID retrieves a user by their ID
func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// Search retrieves users matching the query by name or email, paginated
func (s *Service) Search(ctx context.Context, query string, page, perPage int) ([]*User, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.Search(ctx, query, perPage, offset)
}

// Update modifies an existing user's profile
func (s *Service) Update(ctx context.Context, id int64, req *UpdateUserRequest) (*User, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrUserNotFound
	}

	name := existing.Name
	if req.Name != nil {
		name = *req.Name
	}
	email := existing.Email
	if req.Email != nil {
		email = *req.Email
	}

	if email != existing.Email {
		inUse, err := s.repo.GetByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if inUse != nil && inUse.ID != id {
			return nil, ErrEmailAlreadyInUse
		}
	}

	updated, err := s.repo.Update(ctx, id, name, email)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrUserNotFound
	}
	return updated, nil
}
