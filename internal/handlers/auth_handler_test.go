package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Dias221467/social-connect/internal/middleware"
	"github.com/Dias221467/social-connect/internal/models"
	"github.com/Dias221467/social-connect/internal/oauth"
	"github.com/Dias221467/social-connect/internal/services"
)

const frontendURL = "http://front.test"

func jsonBody(t *testing.T, v interface{}) *bytes.Reader {
	t.Helper()
	if s, ok := v.(string); ok {
		return bytes.NewReader([]byte(s))
	}
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func TestRegisterHandler(t *testing.T) {
	result := &services.AuthResult{
		Token: "JWT",
		User:  models.UserSummary{ID: primitive.NewObjectID(), Name: "A", Email: "a@x.com"},
	}

	tests := []struct {
		name       string
		body       interface{}
		setup      func(m *mockAuthService)
		wantStatus int
		check      func(t *testing.T, body string)
	}{
		{
			name: "created",
			body: RegisterRequest{Name: "A", Email: "a@x.com", Password: "password123"},
			setup: func(m *mockAuthService) {
				m.On("Register", mock.Anything, "A", "a@x.com", "password123").Return(result, nil)
			},
			wantStatus: http.StatusCreated,
			check: func(t *testing.T, body string) {
				var got services.AuthResult
				require.NoError(t, json.Unmarshal([]byte(body), &got))
				assert.Equal(t, "JWT", got.Token)
				assert.Equal(t, result.User.ID, got.User.ID)
			},
		},
		{
			name:       "invalid JSON",
			body:       "{invalid json}",
			setup:      func(m *mockAuthService) {},
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, body string) {
				assert.JSONEq(t, `{"message":"Invalid request payload"}`, body)
			},
		},
		{
			name:       "validation errors",
			body:       map[string]string{"name": "", "email": "nope", "password": "123"},
			setup:      func(m *mockAuthService) {},
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, body string) {
				assert.JSONEq(t, `{"errors":[
					{"field":"name","message":"Name is required"},
					{"field":"email","message":"Please include a valid email"},
					{"field":"password","message":"Password must be at least 6 characters long"}
				]}`, body)
			},
		},
		{
			name: "duplicate email",
			body: RegisterRequest{Name: "A", Email: "a@x.com", Password: "password123"},
			setup: func(m *mockAuthService) {
				m.On("Register", mock.Anything, "A", "a@x.com", "password123").Return(nil, services.ErrUserAlreadyExists)
			},
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, body string) {
				assert.JSONEq(t, `{"message":"User already exists"}`, body)
			},
		},
		{
			name: "internal error",
			body: RegisterRequest{Name: "A", Email: "a@x.com", Password: "password123"},
			setup: func(m *mockAuthService) {
				m.On("Register", mock.Anything, "A", "a@x.com", "password123").Return(nil, errors.New("mongo exploded"))
			},
			wantStatus: http.StatusInternalServerError,
			check: func(t *testing.T, body string) {
				assert.JSONEq(t, `{"message":"Server error"}`, body)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAuthService{}
			tt.setup(svc)
			h := NewAuthHandler(svc, nil, nil, frontendURL, NewValidator())

			req := httptest.NewRequest(http.MethodPost, "/api/auth/register", jsonBody(t, tt.body))
			rec := httptest.NewRecorder()
			h.RegisterHandler(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			tt.check(t, rec.Body.String())
			svc.AssertExpectations(t)
		})
	}
}

func TestLoginHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       interface{}
		setup      func(m *mockAuthService)
		wantStatus int
		wantBody   string
	}{
		{
			name: "wrong password",
			body: LoginRequest{Email: "a@x.com", Password: "nope"},
			setup: func(m *mockAuthService) {
				m.On("Login", mock.Anything, "a@x.com", "nope").Return(nil, services.ErrInvalidCredentials)
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"message":"Invalid credentials"}`,
		},
		{
			name: "google account",
			body: LoginRequest{Email: "g@x.com", Password: "pw"},
			setup: func(m *mockAuthService) {
				m.On("Login", mock.Anything, "g@x.com", "pw").Return(nil, services.ErrGoogleAccount)
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"message":"This account uses Google authentication. Please login with Google."}`,
		},
		{
			name:       "missing password",
			body:       map[string]string{"email": "a@x.com"},
			setup:      func(m *mockAuthService) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"errors":[{"field":"password","message":"Password is required"}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAuthService{}
			tt.setup(svc)
			h := NewAuthHandler(svc, nil, nil, frontendURL, NewValidator())

			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", jsonBody(t, tt.body))
			rec := httptest.NewRecorder()
			h.LoginHandler(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
			svc.AssertExpectations(t)
		})
	}
}

func TestGoogleHandlers_NotConfigured(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, nil, nil, frontendURL, NewValidator())

	rec := httptest.NewRecorder()
	h.GoogleLoginHandler(rec, httptest.NewRequest(http.MethodGet, "/api/auth/google", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	h.GoogleCallbackHandler(rec, httptest.NewRequest(http.MethodGet, "/api/auth/google/callback", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGoogleLoginHandler_Redirects(t *testing.T) {
	provider := &mockOAuthProvider{}
	states := &mockStateStore{}

	var saved string
	states.On("Save", mock.Anything, mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { saved = args.String(1) }).
		Return(nil)
	provider.On("AuthCodeURL", mock.AnythingOfType("string")).Return("https://accounts.test/consent")

	h := NewAuthHandler(&mockAuthService{}, provider, states, frontendURL, NewValidator())
	rec := httptest.NewRecorder()
	h.GoogleLoginHandler(rec, httptest.NewRequest(http.MethodGet, "/api/auth/google", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://accounts.test/consent", rec.Header().Get("Location"))
	assert.NotEmpty(t, saved)
	provider.AssertCalled(t, "AuthCodeURL", saved)
}

func TestGoogleCallbackHandler(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		setup        func(svc *mockAuthService, p *mockOAuthProvider, s *mockStateStore)
		wantLocation string
	}{
		{
			name:  "success",
			query: "?state=s1&code=c1",
			setup: func(svc *mockAuthService, p *mockOAuthProvider, s *mockStateStore) {
				s.On("Consume", mock.Anything, "s1").Return(true, nil)
				p.On("Exchange", mock.Anything, "c1").Return(&oauth.Profile{Email: "g@x.com", Name: "Gee"}, nil)
				svc.On("LoginWithGoogle", mock.Anything, "g@x.com", "Gee").Return(&services.AuthResult{Token: "tok"}, nil)
			},
			wantLocation: frontendURL + "/login/success?token=tok",
		},
		{
			name:  "unknown state",
			query: "?state=forged&code=c1",
			setup: func(svc *mockAuthService, p *mockOAuthProvider, s *mockStateStore) {
				s.On("Consume", mock.Anything, "forged").Return(false, nil)
			},
			wantLocation: frontendURL + "/login/error",
		},
		{
			name:         "consent denied",
			query:        "?error=access_denied",
			setup:        func(svc *mockAuthService, p *mockOAuthProvider, s *mockStateStore) {},
			wantLocation: frontendURL + "/login/error",
		},
		{
			name:  "exchange fails",
			query: "?state=s1&code=bad",
			setup: func(svc *mockAuthService, p *mockOAuthProvider, s *mockStateStore) {
				s.On("Consume", mock.Anything, "s1").Return(true, nil)
				p.On("Exchange", mock.Anything, "bad").Return(nil, errors.New("invalid_grant"))
			},
			wantLocation: frontendURL + "/login/error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, provider, states := &mockAuthService{}, &mockOAuthProvider{}, &mockStateStore{}
			tt.setup(svc, provider, states)
			h := NewAuthHandler(svc, provider, states, frontendURL+"/", NewValidator())

			rec := httptest.NewRecorder()
			h.GoogleCallbackHandler(rec, httptest.NewRequest(http.MethodGet, "/api/auth/google/callback"+tt.query, nil))

			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
			svc.AssertExpectations(t)
			provider.AssertExpectations(t)
			states.AssertExpectations(t)
		})
	}
}

func TestMeHandler(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, nil, nil, frontendURL, NewValidator())
	user := &models.User{ID: primitive.NewObjectID(), Name: "A", Email: "a@x.com", Password: "secret-hash"}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req = req.WithContext(middleware.WithUser(req.Context(), user))
	rec := httptest.NewRecorder()
	h.MeHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"A"`)
	assert.False(t, strings.Contains(rec.Body.String(), "secret-hash"))

	rec = httptest.NewRecorder()
	h.MeHandler(rec, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
