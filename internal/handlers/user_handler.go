package handlers

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Dias221467/social-connect/internal/middleware"
	"github.com/Dias221467/social-connect/internal/models"
	"github.com/Dias221467/social-connect/internal/services"
	"github.com/Dias221467/social-connect/pkg/logger"
	"github.com/Dias221467/social-connect/pkg/pagination"
)

// UserService is what UserHandler needs from the user service.
type UserService interface {
	ListUsers(ctx context.Context, self primitive.ObjectID, opts pagination.Options) ([]models.PublicUser, pagination.Meta, error)
	Search(ctx context.Context, self primitive.ObjectID, query string, opts pagination.Options) ([]models.PublicUser, pagination.Meta, error)
	GetProfile(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, update services.ProfileUpdate) (*models.User, error)
}

// Suggester picks users the caller might want to befriend.
type Suggester interface {
	Suggestions(ctx context.Context, userID primitive.ObjectID) ([]models.PublicUser, error)
}

type usersResponse struct {
	Users      []models.PublicUser `json:"users"`
	Pagination pagination.Meta     `json:"pagination"`
}

// UserHandler handles HTTP requests related to user profiles.
type UserHandler struct {
	Service   UserService
	Suggester Suggester
	Validator *Validator
}

// NewUserHandler creates a new instance of UserHandler.
func NewUserHandler(service UserService, suggester Suggester, v *Validator) *UserHandler {
	return &UserHandler{
		Service:   service,
		Suggester: suggester,
		Validator: v,
	}
}

// GetUsersHandler lists every user except the caller.
func (h *UserHandler) GetUsersHandler(w http.ResponseWriter, r *http.Request) {
	user := currentUser(w, r)
	if user == nil {
		return
	}

	users, meta, err := h.Service.ListUsers(r.Context(), user.ID, pagination.FromRequest(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, usersResponse{Users: users, Pagination: meta})
}

// GetProfileHandler returns the caller's own profile.
func (h *UserHandler) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	user := currentUser(w, r)
	if user == nil {
		return
	}

	profile, err := h.Service.GetProfile(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// UpdateProfileHandler changes the caller's name and bio.
func (h *UserHandler) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	user := currentUser(w, r)
	if user == nil {
		return
	}

	var req UpdateProfileRequest
	if !decodeAndValidate(w, r, h.Validator, &req) {
		return
	}

	updated, err := h.Service.UpdateProfile(r.Context(), user.ID, services.ProfileUpdate{
		Name: req.Name,
		Bio:  req.Bio,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	logger.Log.WithField("userID", user.ID.Hex()).Info("User profile updated")
	writeJSON(w, http.StatusOK, updated)
}

// GetSuggestionsHandler returns a few users the caller is not yet connected
// to.
func (h *UserHandler) GetSuggestionsHandler(w http.ResponseWriter, r *http.Request) {
	user := currentUser(w, r)
	if user == nil {
		return
	}

	suggestions, err := h.Suggester.Suggestions(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, suggestions)
}

// SearchUsersHandler finds users by name.
func (h *UserHandler) SearchUsersHandler(w http.ResponseWriter, r *http.Request) {
	user := currentUser(w, r)
	if user == nil {
		return
	}

	query := r.URL.Query().Get("query")
	users, meta, err := h.Service.Search(r.Context(), user.ID, query, pagination.FromRequest(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, usersResponse{Users: users, Pagination: meta})
}

// currentUser returns the authenticated user, writing a 401 when there is
// none.
func currentUser(w http.ResponseWriter, r *http.Request) *models.User {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		logger.Log.WithField("uri", r.RequestURI).Warn("Unauthorized request")
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
	}
	return user
}
