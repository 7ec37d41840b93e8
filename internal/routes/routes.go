// Package routes assembles the HTTP route table.
package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Dias221467/social-connect/internal/handlers"
	"github.com/Dias221467/social-connect/internal/middleware"
)

// Handlers groups everything the router dispatches to.
type Handlers struct {
	Auth          *handlers.AuthHandler
	User          *handlers.UserHandler
	Friend        *handlers.FriendHandler
	Authenticator middleware.Authenticator
}

// NewRouter builds the /api route table. Every route except register, login
// and the Google flow requires a bearer token.
func NewRouter(h Handlers) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.RecoveryMiddleware)
	router.Use(middleware.LoggingMiddleware)

	router.HandleFunc("/", welcomeHandler).Methods(http.MethodGet)

	requireAuth := middleware.AuthMiddleware(h.Authenticator)
	api := router.PathPrefix("/api").Subrouter()

	// Auth routes
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", h.Auth.RegisterHandler).Methods(http.MethodPost)
	auth.HandleFunc("/login", h.Auth.LoginHandler).Methods(http.MethodPost)
	auth.HandleFunc("/google", h.Auth.GoogleLoginHandler).Methods(http.MethodGet)
	auth.HandleFunc("/google/callback", h.Auth.GoogleCallbackHandler).Methods(http.MethodGet)
	auth.Handle("/me", requireAuth(http.HandlerFunc(h.Auth.MeHandler))).Methods(http.MethodGet)

	// User routes
	users := api.PathPrefix("/users").Subrouter()
	users.Use(requireAuth)
	users.HandleFunc("", h.User.GetUsersHandler).Methods(http.MethodGet)
	users.HandleFunc("/me", h.User.GetProfileHandler).Methods(http.MethodGet)
	users.HandleFunc("/me", h.User.UpdateProfileHandler).Methods(http.MethodPut)
	users.HandleFunc("/suggestions", h.User.GetSuggestionsHandler).Methods(http.MethodGet)
	users.HandleFunc("/search", h.User.SearchUsersHandler).Methods(http.MethodGet)

	// Friend routes
	friends := api.PathPrefix("/friends").Subrouter()
	friends.Use(requireAuth)
	friends.HandleFunc("", h.Friend.GetFriendsHandler).Methods(http.MethodGet)
	friends.HandleFunc("/request/{userId}", h.Friend.SendFriendRequestHandler).Methods(http.MethodPost)
	friends.HandleFunc("/request/{requestId}/accept", h.Friend.AcceptFriendRequestHandler).Methods(http.MethodPut)
	friends.HandleFunc("/request/{requestId}/reject", h.Friend.RejectFriendRequestHandler).Methods(http.MethodPut)
	friends.HandleFunc("/requests/incoming", h.Friend.GetIncomingRequestsHandler).Methods(http.MethodGet)
	friends.HandleFunc("/requests/outgoing", h.Friend.GetOutgoingRequestsHandler).Methods(http.MethodGet)
	friends.HandleFunc("/status/{userId}", h.Friend.GetFriendshipStatusHandler).Methods(http.MethodGet)

	return router
}

func welcomeHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"message":"Welcome to Social API"}` + "\n"))
}
