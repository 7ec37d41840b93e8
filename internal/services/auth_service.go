package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Dias221467/social-connect/internal/models"
	"github.com/Dias221467/social-connect/internal/repository"
	authjwt "github.com/Dias221467/social-connect/pkg/jwt"
)

// AuthResult is returned by a successful register or login.
type AuthResult struct {
	Token string             `json:"token"`
	User  models.UserSummary `json:"user"`
}

// AuthService registers users and issues session tokens.
type AuthService struct {
	users  UserStore
	hasher PasswordHasher
	tokens TokenManager
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, hasher PasswordHasher, tokens TokenManager) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
	}
}

// Register creates a local account and returns a token for it.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	email = models.NormalizeEmail(email)

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrUserAlreadyExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		logrus.WithError(err).Error("Password hashing failed")
		return nil, err
	}

	user, err := s.users.Create(ctx, &models.User{
		Name:     strings.TrimSpace(name),
		Email:    email,
		Password: hashed,
		AuthType: models.AuthTypeLocal,
	})
	if errors.Is(err, repository.ErrDuplicateKey) {
		return nil, ErrUserAlreadyExists
	}
	if err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	logrus.WithField("userID", user.ID.Hex()).Info("User registered")
	return s.issue(user)
}

// Login checks a local account's password and returns a token for it.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if user.UsesGoogle() {
		return nil, ErrGoogleAccount
	}

	ok, err := s.hasher.Verify(password, user.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		logrus.WithField("userID", user.ID.Hex()).Warn("Invalid password attempt")
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

// LoginWithGoogle finds the account for a verified Google email, creating a
// Google account on first sign-in, and returns a token for it.
func (s *AuthService) LoginWithGoogle(ctx context.Context, email, name string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		user, err = s.users.Create(ctx, &models.User{
			Name:     name,
			Email:    email,
			Password: models.GooglePasswordPrefix + uuid.NewString(),
			AuthType: models.AuthTypeGoogle,
		})
		if errors.Is(err, repository.ErrDuplicateKey) {
			// Concurrent first sign-in.
			user, err = s.users.GetByEmail(ctx, email)
		}
		if err == nil {
			logrus.WithField("userID", user.ID.Hex()).Info("Google user created")
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve google user: %w", err)
	}

	return s.issue(user)
}

// Authenticate resolves a session token to its user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokens.Validate(token)
	if errors.Is(err, authjwt.ErrTokenExpired) {
		return nil, ErrTokenExpired
	}
	if err != nil {
		return nil, ErrInvalidToken
	}

	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Generate(user.ID.Hex())
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		Token: token,
		User: models.UserSummary{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
		},
	}, nil
}
