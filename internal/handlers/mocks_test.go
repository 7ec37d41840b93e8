package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Dias221467/social-connect/internal/models"
	"github.com/Dias221467/social-connect/internal/oauth"
	"github.com/Dias221467/social-connect/internal/services"
	"github.com/Dias221467/social-connect/pkg/pagination"
)

type mockAuthService struct{ mock.Mock }

func (m *mockAuthService) Register(ctx context.Context, name, email, password string) (*services.AuthResult, error) {
	args := m.Called(ctx, name, email, password)
	res, _ := args.Get(0).(*services.AuthResult)
	return res, args.Error(1)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*services.AuthResult, error) {
	args := m.Called(ctx, email, password)
	res, _ := args.Get(0).(*services.AuthResult)
	return res, args.Error(1)
}

func (m *mockAuthService) LoginWithGoogle(ctx context.Context, email, name string) (*services.AuthResult, error) {
	args := m.Called(ctx, email, name)
	res, _ := args.Get(0).(*services.AuthResult)
	return res, args.Error(1)
}

type mockOAuthProvider struct{ mock.Mock }

func (m *mockOAuthProvider) AuthCodeURL(state string) string {
	return m.Called(state).String(0)
}

func (m *mockOAuthProvider) Exchange(ctx context.Context, code string) (*oauth.Profile, error) {
	args := m.Called(ctx, code)
	p, _ := args.Get(0).(*oauth.Profile)
	return p, args.Error(1)
}

type mockStateStore struct{ mock.Mock }

func (m *mockStateStore) Save(ctx context.Context, state string) error {
	return m.Called(ctx, state).Error(0)
}

func (m *mockStateStore) Consume(ctx context.Context, state string) (bool, error) {
	args := m.Called(ctx, state)
	return args.Bool(0), args.Error(1)
}

type mockFriendService struct{ mock.Mock }

func (m *mockFriendService) SendRequest(ctx context.Context, actor primitive.ObjectID, targetHex string) (*models.FriendRequest, bool, error) {
	args := m.Called(ctx, actor, targetHex)
	req, _ := args.Get(0).(*models.FriendRequest)
	return req, args.Bool(1), args.Error(2)
}

func (m *mockFriendService) AcceptRequest(ctx context.Context, actor primitive.ObjectID, requestHex string) (*models.FriendRequest, error) {
	args := m.Called(ctx, actor, requestHex)
	req, _ := args.Get(0).(*models.FriendRequest)
	return req, args.Error(1)
}

func (m *mockFriendService) RejectRequest(ctx context.Context, actor primitive.ObjectID, requestHex string) (*models.FriendRequest, error) {
	args := m.Called(ctx, actor, requestHex)
	req, _ := args.Get(0).(*models.FriendRequest)
	return req, args.Error(1)
}

func (m *mockFriendService) ListFriends(ctx context.Context, userID primitive.ObjectID, opts pagination.Options) ([]models.PublicUser, pagination.Meta, error) {
	args := m.Called(ctx, userID, opts)
	users, _ := args.Get(0).([]models.PublicUser)
	return users, args.Get(1).(pagination.Meta), args.Error(2)
}

func (m *mockFriendService) ListIncoming(ctx context.Context, userID primitive.ObjectID, opts pagination.Options) ([]models.FriendRequestView, pagination.Meta, error) {
	args := m.Called(ctx, userID, opts)
	views, _ := args.Get(0).([]models.FriendRequestView)
	return views, args.Get(1).(pagination.Meta), args.Error(2)
}

func (m *mockFriendService) ListOutgoing(ctx context.Context, userID primitive.ObjectID, opts pagination.Options) ([]models.FriendRequestView, pagination.Meta, error) {
	args := m.Called(ctx, userID, opts)
	views, _ := args.Get(0).([]models.FriendRequestView)
	return views, args.Get(1).(pagination.Meta), args.Error(2)
}

func (m *mockFriendService) Relationship(ctx context.Context, actor primitive.ObjectID, targetHex string) (*services.Friendship, error) {
	args := m.Called(ctx, actor, targetHex)
	rel, _ := args.Get(0).(*services.Friendship)
	return rel, args.Error(1)
}

type mockUserService struct{ mock.Mock }

func (m *mockUserService) ListUsers(ctx context.Context, self primitive.ObjectID, opts pagination.Options) ([]models.PublicUser, pagination.Meta, error) {
	args := m.Called(ctx, self, opts)
	users, _ := args.Get(0).([]models.PublicUser)
	return users, args.Get(1).(pagination.Meta), args.Error(2)
}

func (m *mockUserService) Search(ctx context.Context, self primitive.ObjectID, query string, opts pagination.Options) ([]models.PublicUser, pagination.Meta, error) {
	args := m.Called(ctx, self, query, opts)
	users, _ := args.Get(0).([]models.PublicUser)
	return users, args.Get(1).(pagination.Meta), args.Error(2)
}

func (m *mockUserService) GetProfile(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUserService) UpdateProfile(ctx context.Context, id primitive.ObjectID, update services.ProfileUpdate) (*models.User, error) {
	args := m.Called(ctx, id, update)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUserService) Suggestions(ctx context.Context, userID primitive.ObjectID) ([]models.PublicUser, error) {
	args := m.Called(ctx, userID)
	users, _ := args.Get(0).([]models.PublicUser)
	return users, args.Error(1)
}
