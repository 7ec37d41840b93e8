package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Dias221467/social-connect/internal/models"
	"github.com/Dias221467/social-connect/internal/services"
	"github.com/Dias221467/social-connect/pkg/logger"
	"github.com/Dias221467/social-connect/pkg/pagination"
)

// FriendService is what FriendHandler needs from the friend service.
type FriendService interface {
	SendRequest(ctx context.Context, actor primitive.ObjectID, targetHex string) (*models.FriendRequest, bool, error)
	AcceptRequest(ctx context.Context, actor primitive.ObjectID, requestHex string) (*models.FriendRequest, error)
	RejectRequest(ctx context.Context, actor primitive.ObjectID, requestHex string) (*models.FriendRequest, error)
	ListFriends(ctx context.Context, userID primitive.ObjectID, opts pagination.Options) ([]models.PublicUser, pagination.Meta, error)
	ListIncoming(ctx context.Context, userID primitive.ObjectID, opts pagination.Options) ([]models.FriendRequestView, pagination.Meta, error)
	ListOutgoing(ctx context.Context, userID primitive.ObjectID, opts pagination.Options) ([]models.FriendRequestView, pagination.Meta, error)
	Relationship(ctx context.Context, actor primitive.ObjectID, targetHex string) (*services.Friendship, error)
}

type requestResponse struct {
	Message string                `json:"message"`
	Request *models.FriendRequest `json:"request"`
}

type friendsResponse struct {
	Friends    []models.PublicUser `json:"friends"`
	Pagination pagination.Meta     `json:"pagination"`
}

type requestsResponse struct {
	Requests   []models.FriendRequestView `json:"requests"`
	Pagination pagination.Meta            `json:"pagination"`
}

// FriendHandler manages HTTP endpoints related to friend requests.
type FriendHandler struct {
	Service FriendService
}

// NewFriendHandler initializes a new FriendHandler.
func NewFriendHandler(service FriendService) *FriendHandler {
	return &FriendHandler{Service: service}
}

// SendFriendRequestHandler sends a friend request to {userId}.
func (h *FriendHandler) SendFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	user := currentUser(w, r)
	if user == nil {
		return
	}

	target := mux.Vars(r)["userId"]
	req, created, err := h.Service.SendRequest(r.Context(), user.ID, target)
	if err != nil {
		logger.Log.WithField("target", target).WithError(err).Warn("Failed to send friend request")
		writeError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	logger.Log.Infof("User %s sent a friend request to %s", user.ID.Hex(), target)
	writeJSON(w, status, requestResponse{Message: "Friend request sent", Request: req})
}

// AcceptFriendRequestHandler accepts {requestId}.
func (h *FriendHandler) AcceptFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	user := currentUser(w, r)
	if user == nil {
		return
	}

	req, err := h.Service.AcceptRequest(r.Context(), user.ID, mux.Vars(r)["requestId"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, requestResponse{Message: "Friend request accepted", Request: req})
}

// RejectFriendRequestHandler rejects {requestId}.
func (h *FriendHandler) RejectFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	user := currentUser(w, r)
	if user == nil {
		return
	}

	req, err := h.Service.RejectRequest(r.Context(), user.ID, mux.Vars(r)["requestId"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, requestResponse{Message: "Friend request rejected", Request: req})
}

// GetFriendsHandler lists the caller's friends.
func (h *FriendHandler) GetFriendsHandler(w http.ResponseWriter, r *http.Request) {
	user := currentUser(w, r)
	if user == nil {
		return
	}

	friends, meta, err := h.Service.ListFriends(r.Context(), user.ID, pagination.FromRequest(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, friendsResponse{Friends: friends, Pagination: meta})
}

// GetIncomingRequestsHandler lists pending requests sent to the caller.
func (h *FriendHandler) GetIncomingRequestsHandler(w http.ResponseWriter, r *http.Request) {
	h.listRequests(w, r, h.Service.ListIncoming)
}

// GetOutgoingRequestsHandler lists pending requests the caller sent.
func (h *FriendHandler) GetOutgoingRequestsHandler(w http.ResponseWriter, r *http.Request) {
	h.listRequests(w, r, h.Service.ListOutgoing)
}

type listFunc func(context.Context, primitive.ObjectID, pagination.Options) ([]models.FriendRequestView, pagination.Meta, error)

func (h *FriendHandler) listRequests(w http.ResponseWriter, r *http.Request, list listFunc) {
	user := currentUser(w, r)
	if user == nil {
		return
	}

	requests, meta, err := list(r.Context(), user.ID, pagination.FromRequest(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, requestsResponse{Requests: requests, Pagination: meta})
}

// GetFriendshipStatusHandler reports how the caller relates to {userId}.
func (h *FriendHandler) GetFriendshipStatusHandler(w http.ResponseWriter, r *http.Request) {
	user := currentUser(w, r)
	if user == nil {
		return
	}

	rel, err := h.Service.Relationship(r.Context(), user.ID, mux.Vars(r)["userId"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rel)
}
