package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Dias221467/social-connect/internal/models"
)

const friendRequestCollection = "friend_requests"

// Role selects which side of a request a user must be on to match a filter.
type Role int

const (
	RoleEither Role = iota
	RoleSender
	RoleReceiver
)

// FriendRequestFilter selects requests touching UserID. An empty Status
// matches every status.
type FriendRequestFilter struct {
	UserID primitive.ObjectID
	Role   Role
	Status models.FriendRequestStatus
}

func (f FriendRequestFilter) bson() bson.M {
	filter := bson.M{}
	switch f.Role {
	case RoleSender:
		filter["sender"] = f.UserID
	case RoleReceiver:
		filter["receiver"] = f.UserID
	default:
		filter["$or"] = []bson.M{
			{"sender": f.UserID},
			{"receiver": f.UserID},
		}
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	return filter
}

// FriendRepository stores friend requests in MongoDB.
type FriendRepository struct {
	collection *mongo.Collection
}

// NewFriendRepository creates a FriendRepository on db.
func NewFriendRepository(db *mongo.Database) *FriendRepository {
	return &FriendRepository{
		collection: db.Collection(friendRequestCollection),
	}
}

// EnsureIndexes creates the unique pair index that keeps one record per
// unordered pair, plus the lookup indexes used by the list queries.
func (r *FriendRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "pair_key", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "sender", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "receiver", Value: 1}, {Key: "status", Value: 1}}},
	}

	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create friend request indexes: %w", err)
	}
	return nil
}

// Create inserts a new pending request from req.SenderID to req.ReceiverID.
// It returns ErrDuplicateKey when a record for the pair already exists.
func (r *FriendRepository) Create(ctx context.Context, req *models.FriendRequest) (*models.FriendRequest, error) {
	now := time.Now().UTC()
	req.ID = primitive.NilObjectID
	req.PairKey = models.PairKey(req.SenderID, req.ReceiverID)
	req.Status = models.FriendRequestPending
	req.CreatedAt = now
	req.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, req)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateKey
		}
		logrus.WithError(err).Error("Failed to insert friend request")
		return nil, fmt.Errorf("failed to insert friend request: %w", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, errors.New("failed to cast inserted ID")
	}
	req.ID = insertedID

	logrus.WithFields(logrus.Fields{
		"requestID": req.ID.Hex(),
		"sender":    req.SenderID.Hex(),
		"receiver":  req.ReceiverID.Hex(),
	}).Info("Friend request created")
	return req, nil
}

// GetByID returns the request with id or ErrNotFound.
func (r *FriendRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.FriendRequest, error) {
	var req models.FriendRequest
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&req); err != nil {
		return nil, translate(err)
	}
	return &req, nil
}

// FindByPair returns the record for the unordered pair {a, b}, or nil when
// the users have no record.
func (r *FriendRepository) FindByPair(ctx context.Context, a, b primitive.ObjectID) (*models.FriendRequest, error) {
	var req models.FriendRequest
	err := r.collection.FindOne(ctx, bson.M{"pair_key": models.PairKey(a, b)}).Decode(&req)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find friend request by pair: %w", err)
	}
	return &req, nil
}

// Reopen turns a rejected request back into a pending one from sender to
// receiver. It returns ErrNoMatch if the request is no longer rejected.
func (r *FriendRepository) Reopen(ctx context.Context, id, sender, receiver primitive.ObjectID) (*models.FriendRequest, error) {
	filter := bson.M{"_id": id, "status": models.FriendRequestRejected}
	update := bson.M{"$set": bson.M{
		"sender":     sender,
		"receiver":   receiver,
		"status":     models.FriendRequestPending,
		"updated_at": time.Now().UTC(),
	}}
	return r.findOneAndUpdate(ctx, filter, update)
}

// UpdateStatus moves the request from one status to another on behalf of its
// receiver. It returns ErrNoMatch if the request is not addressed to receiver
// or is no longer in status from.
func (r *FriendRepository) UpdateStatus(ctx context.Context, id, receiver primitive.ObjectID, from, to models.FriendRequestStatus) (*models.FriendRequest, error) {
	filter := bson.M{"_id": id, "receiver": receiver, "status": from}
	update := bson.M{"$set": bson.M{
		"status":     to,
		"updated_at": time.Now().UTC(),
	}}
	return r.findOneAndUpdate(ctx, filter, update)
}

func (r *FriendRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*models.FriendRequest, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var req models.FriendRequest
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&req)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoMatch
	}
	if err != nil {
		logrus.WithError(err).Error("Failed to update friend request")
		return nil, fmt.Errorf("failed to update friend request: %w", err)
	}
	return &req, nil
}

// List returns the requests matching filter in insertion order. A limit of
// zero or less returns every match after skip.
func (r *FriendRepository) List(ctx context.Context, filter FriendRequestFilter, skip, limit int) ([]models.FriendRequest, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(clampSkip(skip))
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, filter.bson(), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find friend requests: %w", err)
	}
	defer cursor.Close(ctx)

	requests := []models.FriendRequest{}
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode friend requests: %w", err)
	}
	return requests, nil
}

// Count returns how many requests match filter.
func (r *FriendRepository) Count(ctx context.Context, filter FriendRequestFilter) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, filter.bson())
	if err != nil {
		return 0, fmt.Errorf("failed to count friend requests: %w", err)
	}
	return n, nil
}
