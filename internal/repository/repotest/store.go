// Package repotest provides in-memory stores with the same contracts as the
// MongoDB repositories, for service and router tests.
package repotest

import (
	"context"
	"math/rand"
	"regexp"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Dias221467/social-connect/internal/models"
	"github.com/Dias221467/social-connect/internal/repository"
)

// UserStore is an in-memory repository.UserRepository.
type UserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]models.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[primitive.ObjectID]models.User)}
}

func (s *UserStore) Create(_ context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := models.NormalizeEmail(user.Email)
	for _, u := range s.users {
		if u.Email == email {
			return nil, repository.ErrDuplicateKey
		}
	}

	now := time.Now().UTC()
	user.ID = primitive.NewObjectID()
	user.Email = email
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = *user
	return user, nil
}

func (s *UserStore) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (s *UserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = models.NormalizeEmail(email)
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *UserStore) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := []models.User{}
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

func (s *UserStore) UpdateProfile(_ context.Context, id primitive.ObjectID, update repository.UserUpdate) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if update.Name != nil {
		u.Name = *update.Name
	}
	if update.Bio != nil {
		u.Bio = *update.Bio
	}
	u.UpdatedAt = time.Now().UTC()
	s.users[id] = u
	return &u, nil
}

func (s *UserStore) List(_ context.Context, filter repository.UserFilter, skip, limit int) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched, err := s.match(filter)
	if err != nil {
		return nil, err
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID.Hex() > matched[j].ID.Hex()
	})
	return window(matched, skip, limit), nil
}

func (s *UserStore) Count(_ context.Context, filter repository.UserFilter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched, err := s.match(filter)
	if err != nil {
		return 0, err
	}
	return int64(len(matched)), nil
}

func (s *UserStore) Sample(_ context.Context, exclude []primitive.ObjectID, size int) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	skip := make(map[primitive.ObjectID]bool, len(exclude))
	for _, id := range exclude {
		skip[id] = true
	}
	eligible := []models.User{}
	for id, u := range s.users {
		if !skip[id] {
			eligible = append(eligible, u)
		}
	}
	rand.Shuffle(len(eligible), func(i, j int) {
		eligible[i], eligible[j] = eligible[j], eligible[i]
	})
	if len(eligible) > size {
		eligible = eligible[:size]
	}
	return eligible, nil
}

func (s *UserStore) match(filter repository.UserFilter) ([]models.User, error) {
	var re *regexp.Regexp
	if filter.NamePattern != "" {
		var err error
		if re, err = regexp.Compile("(?i)" + filter.NamePattern); err != nil {
			return nil, err
		}
	}

	matched := []models.User{}
	for id, u := range s.users {
		if !filter.ExcludeID.IsZero() && id == filter.ExcludeID {
			continue
		}
		if re != nil && !re.MatchString(u.Name) {
			continue
		}
		matched = append(matched, u)
	}
	return matched, nil
}

// FriendStore is an in-memory repository.FriendRepository. Records keep the
// pair-key uniqueness of the Mongo index.
type FriendStore struct {
	mu       sync.Mutex
	requests map[primitive.ObjectID]models.FriendRequest
}

func NewFriendStore() *FriendStore {
	return &FriendStore{requests: make(map[primitive.ObjectID]models.FriendRequest)}
}

func (s *FriendStore) Create(_ context.Context, req *models.FriendRequest) (*models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := models.PairKey(req.SenderID, req.ReceiverID)
	for _, r := range s.requests {
		if r.PairKey == key {
			return nil, repository.ErrDuplicateKey
		}
	}

	now := time.Now().UTC()
	req.ID = primitive.NewObjectID()
	req.PairKey = key
	req.Status = models.FriendRequestPending
	req.CreatedAt = now
	req.UpdatedAt = now
	s.requests[req.ID] = *req
	return req, nil
}

func (s *FriendStore) GetByID(_ context.Context, id primitive.ObjectID) (*models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.requests[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &r, nil
}

func (s *FriendStore) FindByPair(_ context.Context, a, b primitive.ObjectID) (*models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := models.PairKey(a, b)
	for _, r := range s.requests {
		if r.PairKey == key {
			return &r, nil
		}
	}
	return nil, nil
}

func (s *FriendStore) Reopen(_ context.Context, id, sender, receiver primitive.ObjectID) (*models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.requests[id]
	if !ok || r.Status != models.FriendRequestRejected {
		return nil, repository.ErrNoMatch
	}
	r.SenderID = sender
	r.ReceiverID = receiver
	r.Status = models.FriendRequestPending
	r.UpdatedAt = time.Now().UTC()
	s.requests[id] = r
	return &r, nil
}

func (s *FriendStore) UpdateStatus(_ context.Context, id, receiver primitive.ObjectID, from, to models.FriendRequestStatus) (*models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.requests[id]
	if !ok || r.ReceiverID != receiver || r.Status != from {
		return nil, repository.ErrNoMatch
	}
	r.Status = to
	r.UpdatedAt = time.Now().UTC()
	s.requests[id] = r
	return &r, nil
}

func (s *FriendStore) List(_ context.Context, filter repository.FriendRequestFilter, skip, limit int) ([]models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := s.match(filter)
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].ID.Hex() < matched[j].ID.Hex()
	})
	return window(matched, skip, limit), nil
}

func (s *FriendStore) Count(_ context.Context, filter repository.FriendRequestFilter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return int64(len(s.match(filter))), nil
}

func (s *FriendStore) match(filter repository.FriendRequestFilter) []models.FriendRequest {
	matched := []models.FriendRequest{}
	for _, r := range s.requests {
		switch filter.Role {
		case repository.RoleSender:
			if r.SenderID != filter.UserID {
				continue
			}
		case repository.RoleReceiver:
			if r.ReceiverID != filter.UserID {
				continue
			}
		default:
			if !r.Involves(filter.UserID) {
				continue
			}
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		matched = append(matched, r)
	}
	return matched
}

func window[T any](items []T, skip, limit int) []T {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(items) {
		return []T{}
	}
	items = items[skip:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
