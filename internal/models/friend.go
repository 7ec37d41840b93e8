package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FriendRequestStatus is the lifecycle state of a stored friend request.
type FriendRequestStatus string

const (
	FriendRequestPending  FriendRequestStatus = "pending"
	FriendRequestAccepted FriendRequestStatus = "accepted"
	FriendRequestRejected FriendRequestStatus = "rejected"
)

// FriendRequest is the single record kept for a pair of users. Sender and
// Receiver reflect the most recent send and may swap when a rejected request
// is sent again from the other side.
type FriendRequest struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	SenderID   primitive.ObjectID  `bson:"sender" json:"sender"`
	ReceiverID primitive.ObjectID  `bson:"receiver" json:"receiver"`
	PairKey    string              `bson:"pair_key" json:"-"`
	Status     FriendRequestStatus `bson:"status" json:"status"`
	CreatedAt  time.Time           `bson:"created_at" json:"createdAt"`
	UpdatedAt  time.Time           `bson:"updated_at" json:"updatedAt"`
}

// Involves reports whether userID is either party of the request.
func (r *FriendRequest) Involves(userID primitive.ObjectID) bool {
	return r.SenderID == userID || r.ReceiverID == userID
}

// Counterpart returns the party that is not userID.
func (r *FriendRequest) Counterpart(userID primitive.ObjectID) primitive.ObjectID {
	if r.SenderID == userID {
		return r.ReceiverID
	}
	return r.SenderID
}

// PairKey identifies the unordered pair {a, b}: both orderings give the same
// key.
func PairKey(a, b primitive.ObjectID) string {
	x, y := a.Hex(), b.Hex()
	if x > y {
		x, y = y, x
	}
	return x + ":" + y
}

// FriendRequestView is a request as listed to one of its parties, with the
// other party's public profile filled in.
type FriendRequestView struct {
	ID         primitive.ObjectID  `json:"id"`
	SenderID   primitive.ObjectID  `json:"senderId"`
	ReceiverID primitive.ObjectID  `json:"receiverId"`
	Sender     *PublicUser         `json:"sender,omitempty"`
	Receiver   *PublicUser         `json:"receiver,omitempty"`
	Status     FriendRequestStatus `json:"status"`
	CreatedAt  time.Time           `json:"createdAt"`
	UpdatedAt  time.Time           `json:"updatedAt"`
}

// RelationshipStatus is the derived state between two users. RelationshipNone
// means no request record exists for the pair.
type RelationshipStatus string

const (
	RelationshipNone     RelationshipStatus = "none"
	RelationshipPending  RelationshipStatus = "pending"
	RelationshipAccepted RelationshipStatus = "accepted"
	RelationshipRejected RelationshipStatus = "rejected"
)
