package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Dias221467/social-connect/internal/models"
	"github.com/Dias221467/social-connect/internal/repository"
	"github.com/Dias221467/social-connect/pkg/pagination"
)

// SuggestionCount is how many users Suggestions returns at most.
const SuggestionCount = 5

// Friendship summarises the relationship between two users.
type Friendship struct {
	Status        models.RelationshipStatus `json:"status"`
	AreFriends    bool                      `json:"areFriends"`
	MutualFriends int                       `json:"mutualFriends"`
}

// FriendService owns the friend-request lifecycle. There is at most one
// request record per pair of users; two users are friends when that record is
// accepted.
type FriendService struct {
	friends FriendStore
	users   UserStore
}

// NewFriendService creates a new FriendService.
func NewFriendService(friends FriendStore, users UserStore) *FriendService {
	return &FriendService{
		friends: friends,
		users:   users,
	}
}

// SendRequest sends a friend request from actor to the user with id
// targetHex. A rejected record for the pair is reopened in place with the new
// direction; created reports whether a new record was inserted instead.
func (s *FriendService) SendRequest(ctx context.Context, actor primitive.ObjectID, targetHex string) (req *models.FriendRequest, created bool, err error) {
	target, err := parseID(targetHex, ErrInvalidUserID)
	if err != nil {
		return nil, false, err
	}
	if actor == target {
		return nil, false, ErrSelfRequest
	}
	if _, err := s.lookupUser(ctx, target); err != nil {
		return nil, false, err
	}

	existing, err := s.friends.FindByPair(ctx, actor, target)
	if err != nil {
		return nil, false, fmt.Errorf("failed to look up friend request: %w", err)
	}
	if existing != nil {
		req, err := s.resend(ctx, existing, actor, target)
		return req, false, err
	}

	req, err = s.friends.Create(ctx, &models.FriendRequest{SenderID: actor, ReceiverID: target})
	if errors.Is(err, repository.ErrDuplicateKey) {
		// Another send for the same pair won the insert.
		return nil, false, s.classifyCurrent(ctx, actor, target)
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to create friend request: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"requestID": req.ID.Hex(),
		"sender":    actor.Hex(),
		"receiver":  target.Hex(),
	}).Info("Friend request sent")
	return req, true, nil
}

func (s *FriendService) resend(ctx context.Context, existing *models.FriendRequest, actor, target primitive.ObjectID) (*models.FriendRequest, error) {
	if err := sendConflict(existing, actor); err != nil {
		return nil, err
	}

	req, err := s.friends.Reopen(ctx, existing.ID, actor, target)
	if errors.Is(err, repository.ErrNoMatch) {
		return nil, s.classifyCurrent(ctx, actor, target)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to reopen friend request: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"requestID": req.ID.Hex(),
		"sender":    actor.Hex(),
		"receiver":  target.Hex(),
	}).Info("Rejected friend request reopened")
	return req, nil
}

// classifyCurrent re-reads the pair after a lost race and returns the
// conflict that now applies.
func (s *FriendService) classifyCurrent(ctx context.Context, actor, target primitive.ObjectID) error {
	current, err := s.friends.FindByPair(ctx, actor, target)
	if err != nil {
		return fmt.Errorf("failed to look up friend request: %w", err)
	}
	if current == nil {
		return ErrRequestChanged
	}
	if err := sendConflict(current, actor); err != nil {
		return err
	}
	return ErrRequestChanged
}

// sendConflict returns the error a send by actor hits on existing, or nil when
// existing is rejected and may be reopened.
func sendConflict(existing *models.FriendRequest, actor primitive.ObjectID) error {
	switch existing.Status {
	case models.FriendRequestAccepted:
		return ErrAlreadyFriends
	case models.FriendRequestPending:
		if existing.SenderID == actor {
			return ErrRequestAlreadySent
		}
		return ErrRequestAlreadyReceived
	default:
		return nil
	}
}

// AcceptRequest accepts the pending request requestHex. Only its receiver may
// accept it.
func (s *FriendService) AcceptRequest(ctx context.Context, actor primitive.ObjectID, requestHex string) (*models.FriendRequest, error) {
	return s.respond(ctx, actor, requestHex, models.FriendRequestAccepted)
}

// RejectRequest rejects the pending request requestHex. Only its receiver may
// reject it.
func (s *FriendService) RejectRequest(ctx context.Context, actor primitive.ObjectID, requestHex string) (*models.FriendRequest, error) {
	return s.respond(ctx, actor, requestHex, models.FriendRequestRejected)
}

func (s *FriendService) respond(ctx context.Context, actor primitive.ObjectID, requestHex string, to models.FriendRequestStatus) (*models.FriendRequest, error) {
	id, err := parseID(requestHex, ErrInvalidRequestID)
	if err != nil {
		return nil, err
	}

	req, err := s.friends.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get friend request: %w", err)
	}

	if req.ReceiverID != actor {
		if to == models.FriendRequestAccepted {
			return nil, ErrNotReceiverAccept
		}
		return nil, ErrNotReceiverReject
	}
	if err := respondConflict(req.Status, to); err != nil {
		return nil, err
	}

	updated, err := s.friends.UpdateStatus(ctx, id, actor, models.FriendRequestPending, to)
	if errors.Is(err, repository.ErrNoMatch) {
		return nil, ErrRequestChanged
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update friend request: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"requestID": id.Hex(),
		"receiver":  actor.Hex(),
		"status":    to,
	}).Info("Friend request answered")
	return updated, nil
}

func respondConflict(current, to models.FriendRequestStatus) error {
	switch current {
	case models.FriendRequestPending:
		return nil
	case models.FriendRequestAccepted:
		return ErrRequestAlreadyAccepted
	default:
		if to == models.FriendRequestRejected {
			return ErrRequestAlreadyRejected
		}
		return ErrRequestNotPending
	}
}

// AreFriends reports whether a and b have an accepted request between them.
func (s *FriendService) AreFriends(ctx context.Context, a, b primitive.ObjectID) (bool, error) {
	status, err := s.FriendshipStatus(ctx, a, b)
	if err != nil {
		return false, err
	}
	return status == models.RelationshipAccepted, nil
}

// FriendshipStatus returns the status of the pair's record, or
// RelationshipNone when there is none.
func (s *FriendService) FriendshipStatus(ctx context.Context, a, b primitive.ObjectID) (models.RelationshipStatus, error) {
	req, err := s.friends.FindByPair(ctx, a, b)
	if err != nil {
		return "", fmt.Errorf("failed to look up friend request: %w", err)
	}
	if req == nil {
		return models.RelationshipNone, nil
	}
	return models.RelationshipStatus(req.Status), nil
}

// MutualFriendCount returns how many friends a and b have in common.
func (s *FriendService) MutualFriendCount(ctx context.Context, a, b primitive.ObjectID) (int, error) {
	friendsOfA, err := s.friendIDs(ctx, a)
	if err != nil {
		return 0, err
	}
	friendsOfB, err := s.friendIDs(ctx, b)
	if err != nil {
		return 0, err
	}

	count := 0
	for id := range friendsOfA {
		if _, ok := friendsOfB[id]; ok {
			count++
		}
	}
	return count, nil
}

// Relationship resolves targetHex and returns how actor relates to it.
func (s *FriendService) Relationship(ctx context.Context, actor primitive.ObjectID, targetHex string) (*Friendship, error) {
	target, err := parseID(targetHex, ErrInvalidUserID)
	if err != nil {
		return nil, err
	}
	if _, err := s.lookupUser(ctx, target); err != nil {
		return nil, err
	}

	status, err := s.FriendshipStatus(ctx, actor, target)
	if err != nil {
		return nil, err
	}
	mutual, err := s.MutualFriendCount(ctx, actor, target)
	if err != nil {
		return nil, err
	}
	return &Friendship{
		Status:        status,
		AreFriends:    status == models.RelationshipAccepted,
		MutualFriends: mutual,
	}, nil
}

func (s *FriendService) friendIDs(ctx context.Context, userID primitive.ObjectID) (map[primitive.ObjectID]struct{}, error) {
	accepted, err := s.friends.List(ctx, repository.FriendRequestFilter{
		UserID: userID,
		Status: models.FriendRequestAccepted,
	}, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}

	ids := make(map[primitive.ObjectID]struct{}, len(accepted))
	for _, req := range accepted {
		ids[req.Counterpart(userID)] = struct{}{}
	}
	return ids, nil
}

// ListFriends returns one page of userID's friends.
func (s *FriendService) ListFriends(ctx context.Context, userID primitive.ObjectID, opts pagination.Options) ([]models.PublicUser, pagination.Meta, error) {
	filter := repository.FriendRequestFilter{
		UserID: userID,
		Status: models.FriendRequestAccepted,
	}
	requests, total, err := s.page(ctx, filter, opts)
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	ids := make([]primitive.ObjectID, 0, len(requests))
	for _, req := range requests {
		ids = append(ids, req.Counterpart(userID))
	}
	profiles, err := s.profiles(ctx, ids)
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	friends := make([]models.PublicUser, 0, len(ids))
	for _, id := range ids {
		if p, ok := profiles[id]; ok {
			friends = append(friends, p)
		}
	}
	return friends, opts.Meta(total), nil
}

// ListIncoming returns one page of pending requests addressed to userID, each
// with its sender's profile.
func (s *FriendService) ListIncoming(ctx context.Context, userID primitive.ObjectID, opts pagination.Options) ([]models.FriendRequestView, pagination.Meta, error) {
	return s.listPending(ctx, userID, repository.RoleReceiver, opts)
}

// ListOutgoing returns one page of pending requests sent by userID, each with
// its receiver's profile.
func (s *FriendService) ListOutgoing(ctx context.Context, userID primitive.ObjectID, opts pagination.Options) ([]models.FriendRequestView, pagination.Meta, error) {
	return s.listPending(ctx, userID, repository.RoleSender, opts)
}

func (s *FriendService) listPending(ctx context.Context, userID primitive.ObjectID, role repository.Role, opts pagination.Options) ([]models.FriendRequestView, pagination.Meta, error) {
	filter := repository.FriendRequestFilter{
		UserID: userID,
		Role:   role,
		Status: models.FriendRequestPending,
	}
	requests, total, err := s.page(ctx, filter, opts)
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	ids := make([]primitive.ObjectID, 0, len(requests))
	for _, req := range requests {
		ids = append(ids, req.Counterpart(userID))
	}
	profiles, err := s.profiles(ctx, ids)
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	views := make([]models.FriendRequestView, 0, len(requests))
	for _, req := range requests {
		view := models.FriendRequestView{
			ID:         req.ID,
			SenderID:   req.SenderID,
			ReceiverID: req.ReceiverID,
			Status:     req.Status,
			CreatedAt:  req.CreatedAt,
			UpdatedAt:  req.UpdatedAt,
		}
		if p, ok := profiles[req.Counterpart(userID)]; ok {
			if role == repository.RoleReceiver {
				view.Sender = &p
			} else {
				view.Receiver = &p
			}
		}
		views = append(views, view)
	}
	return views, opts.Meta(total), nil
}

// Suggestions returns up to SuggestionCount random users that userID has no
// accepted or pending request with.
func (s *FriendService) Suggestions(ctx context.Context, userID primitive.ObjectID) ([]models.PublicUser, error) {
	related, err := s.friends.List(ctx, repository.FriendRequestFilter{UserID: userID}, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list friend requests: %w", err)
	}

	exclude := []primitive.ObjectID{userID}
	for _, req := range related {
		if req.Status == models.FriendRequestRejected {
			continue
		}
		exclude = append(exclude, req.Counterpart(userID))
	}

	users, err := s.users.Sample(ctx, exclude, SuggestionCount)
	if err != nil {
		return nil, fmt.Errorf("failed to sample users: %w", err)
	}
	return publicUsers(users), nil
}

func (s *FriendService) page(ctx context.Context, filter repository.FriendRequestFilter, opts pagination.Options) ([]models.FriendRequest, int64, error) {
	requests, err := s.friends.List(ctx, filter, opts.Skip, opts.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list friend requests: %w", err)
	}
	total, err := s.friends.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count friend requests: %w", err)
	}
	return requests, total, nil
}

func (s *FriendService) profiles(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.PublicUser, error) {
	users, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	profiles := make(map[primitive.ObjectID]models.PublicUser, len(users))
	for i := range users {
		profiles[users[i].ID] = users[i].Public()
	}
	return profiles, nil
}

func (s *FriendService) lookupUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func parseID(hex string, invalid *Error) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, invalid
	}
	return id, nil
}

func publicUsers(users []models.User) []models.PublicUser {
	out := make([]models.PublicUser, 0, len(users))
	for i := range users {
		out = append(out, users[i].Public())
	}
	return out
}
