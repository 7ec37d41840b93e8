package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/Dias221467/social-connect/internal/middleware"
	"github.com/Dias221467/social-connect/internal/oauth"
	"github.com/Dias221467/social-connect/internal/services"
)

// AuthService is what AuthHandler needs from the auth service.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*services.AuthResult, error)
	Login(ctx context.Context, email, password string) (*services.AuthResult, error)
	LoginWithGoogle(ctx context.Context, email, name string) (*services.AuthResult, error)
}

// OAuthProvider runs the external sign-in code flow.
type OAuthProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth.Profile, error)
}

// StateStore remembers issued OAuth state values until the callback uses
// them.
type StateStore interface {
	Save(ctx context.Context, state string) error
	Consume(ctx context.Context, state string) (bool, error)
}

// AuthHandler handles registration, login and Google sign-in.
type AuthHandler struct {
	Service     AuthService
	Google      OAuthProvider
	States      StateStore
	FrontendURL string
	Validator   *Validator
}

// NewAuthHandler creates an AuthHandler. google and states may be nil, in
// which case the Google routes answer 503.
func NewAuthHandler(service AuthService, google OAuthProvider, states StateStore, frontendURL string, v *Validator) *AuthHandler {
	return &AuthHandler{
		Service:     service,
		Google:      google,
		States:      states,
		FrontendURL: strings.TrimRight(frontendURL, "/"),
		Validator:   v,
	}
}

// RegisterHandler creates a local account.
func (h *AuthHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, h.Validator, &req) {
		return
	}

	res, err := h.Service.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		log.WithField("email", req.Email).WithError(err).Warn("Registration failed")
		writeError(w, r, err)
		return
	}

	log.WithField("userID", res.User.ID.Hex()).Info("User registered successfully")
	writeJSON(w, http.StatusCreated, res)
}

// LoginHandler exchanges email and password for a token.
func (h *AuthHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, h.Validator, &req) {
		return
	}

	res, err := h.Service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		log.WithField("email", req.Email).WithError(err).Warn("Authentication failed")
		writeError(w, r, err)
		return
	}

	log.WithField("userID", res.User.ID.Hex()).Info("User logged in successfully")
	writeJSON(w, http.StatusOK, res)
}

// GoogleLoginHandler redirects to Google's consent page.
func (h *AuthHandler) GoogleLoginHandler(w http.ResponseWriter, r *http.Request) {
	if h.Google == nil || h.States == nil {
		writeMessage(w, http.StatusServiceUnavailable, "Google authentication is not configured")
		return
	}

	state := uuid.NewString()
	if err := h.States.Save(r.Context(), state); err != nil {
		writeError(w, r, err)
		return
	}
	http.Redirect(w, r, h.Google.AuthCodeURL(state), http.StatusFound)
}

// GoogleCallbackHandler completes Google sign-in and sends the browser back
// to the frontend with a token, or to its error page.
func (h *AuthHandler) GoogleCallbackHandler(w http.ResponseWriter, r *http.Request) {
	if h.Google == nil || h.States == nil {
		writeMessage(w, http.StatusServiceUnavailable, "Google authentication is not configured")
		return
	}

	token, err := h.completeGoogleLogin(r)
	if err != nil {
		log.WithError(err).Warn("Google callback failed")
		http.Redirect(w, r, h.FrontendURL+"/login/error", http.StatusFound)
		return
	}
	http.Redirect(w, r, h.FrontendURL+"/login/success?token="+url.QueryEscape(token), http.StatusFound)
}

func (h *AuthHandler) completeGoogleLogin(r *http.Request) (string, error) {
	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		return "", &services.Error{Kind: services.KindUnauthorized, Message: "google: " + e}
	}

	ok, err := h.States.Consume(r.Context(), q.Get("state"))
	if err != nil {
		return "", err
	}
	if !ok {
		return "", &services.Error{Kind: services.KindUnauthorized, Message: "unknown oauth state"}
	}

	profile, err := h.Google.Exchange(r.Context(), q.Get("code"))
	if err != nil {
		return "", err
	}
	res, err := h.Service.LoginWithGoogle(r.Context(), profile.Email, profile.Name)
	if err != nil {
		return "", err
	}
	return res.Token, nil
}

// MeHandler returns the authenticated user.
func (h *AuthHandler) MeHandler(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, user)
}
