package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Dias221467/social-connect/internal/models"
	"github.com/Dias221467/social-connect/internal/repository"
	"github.com/Dias221467/social-connect/pkg/pagination"
)

// ProfileUpdate carries the optional fields of a profile edit. An empty Name
// leaves the name unchanged; a non-nil Bio always replaces the bio.
type ProfileUpdate struct {
	Name *string `json:"name"`
	Bio  *string `json:"bio"`
}

// UserService encapsulates the business logic for user operations.
type UserService struct {
	users UserStore
}

// NewUserService creates a new instance of UserService.
func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

// ListUsers returns one page of every user except self, newest first.
func (s *UserService) ListUsers(ctx context.Context, self primitive.ObjectID, opts pagination.Options) ([]models.PublicUser, pagination.Meta, error) {
	return s.list(ctx, repository.UserFilter{ExcludeID: self}, opts)
}

// Search returns one page of users other than self whose name contains query,
// ignoring case. The query is matched literally.
func (s *UserService) Search(ctx context.Context, self primitive.ObjectID, query string, opts pagination.Options) ([]models.PublicUser, pagination.Meta, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, pagination.Meta{}, ErrSearchQueryRequired
	}
	return s.list(ctx, repository.UserFilter{
		ExcludeID:   self,
		NamePattern: regexp.QuoteMeta(query),
	}, opts)
}

func (s *UserService) list(ctx context.Context, filter repository.UserFilter, opts pagination.Options) ([]models.PublicUser, pagination.Meta, error) {
	users, err := s.users.List(ctx, filter, opts.Skip, opts.Limit)
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("failed to list users: %w", err)
	}
	total, err := s.users.Count(ctx, filter)
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("failed to count users: %w", err)
	}
	return publicUsers(users), opts.Meta(total), nil
}

// GetProfile returns the user with id.
func (s *UserService) GetProfile(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// UpdateProfile changes the name and bio of user id.
func (s *UserService) UpdateProfile(ctx context.Context, id primitive.ObjectID, update ProfileUpdate) (*models.User, error) {
	var change repository.UserUpdate
	if update.Name != nil {
		if name := strings.TrimSpace(*update.Name); name != "" {
			change.Name = &name
		}
	}
	change.Bio = update.Bio

	user, err := s.users.UpdateProfile(ctx, id, change)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	logrus.WithField("userID", id.Hex()).Info("Profile updated")
	return user, nil
}
