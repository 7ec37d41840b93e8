package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Dias221467/social-connect/internal/models"
	"github.com/Dias221467/social-connect/internal/repository"
	authjwt "github.com/Dias221467/social-connect/pkg/jwt"
	"github.com/Dias221467/social-connect/pkg/password"
)

// UserStore is the persistence the services need for users.
// *repository.UserRepository satisfies it.
type UserStore interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, update repository.UserUpdate) (*models.User, error)
	List(ctx context.Context, filter repository.UserFilter, skip, limit int) ([]models.User, error)
	Count(ctx context.Context, filter repository.UserFilter) (int64, error)
	Sample(ctx context.Context, exclude []primitive.ObjectID, size int) ([]models.User, error)
}

// FriendStore is the persistence the services need for friend requests.
// *repository.FriendRepository satisfies it.
type FriendStore interface {
	Create(ctx context.Context, req *models.FriendRequest) (*models.FriendRequest, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.FriendRequest, error)
	FindByPair(ctx context.Context, a, b primitive.ObjectID) (*models.FriendRequest, error)
	Reopen(ctx context.Context, id, sender, receiver primitive.ObjectID) (*models.FriendRequest, error)
	UpdateStatus(ctx context.Context, id, receiver primitive.ObjectID, from, to models.FriendRequestStatus) (*models.FriendRequest, error)
	List(ctx context.Context, filter repository.FriendRequestFilter, skip, limit int) ([]models.FriendRequest, error)
	Count(ctx context.Context, filter repository.FriendRequestFilter) (int64, error)
}

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) (bool, error)
}

// TokenManager issues and checks session tokens.
type TokenManager interface {
	Generate(userID string) (string, error)
	Validate(token string) (*authjwt.Claims, error)
}

var (
	_ UserStore      = (*repository.UserRepository)(nil)
	_ FriendStore    = (*repository.FriendRepository)(nil)
	_ TokenManager   = (*authjwt.Manager)(nil)
	_ PasswordHasher = (*password.BcryptHasher)(nil)
)
