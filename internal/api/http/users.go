package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/slicelab/pizzeria/internal/api/service"
	"github.com/slicelab/pizzeria/pkg/httpx"
	"github.com/slicelab/pizzeria/pkg/slogx"
)

type UserCreateHandler struct {
	UserService *service.UserService
}

type userCreateRequest struct {
	TenantID int64  `json:"tenant_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userCreateResponse struct {
	Success  bool   `json:"success"`
	ID       string `json:"id"`
	Username string `json:"username"`
}

func (h *UserCreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req userCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.TenantID <= 0 || req.Username == "" || len(req.Password) < 8 {
		httpx.WriteError(w, http.StatusBadRequest, "tenant_id, username and a password of at least 8 characters are required")
		return
	}

	user, err := h.UserService.Create(ctx, service.CreateUserInput{
		TenantID: req.TenantID,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, service.ErrUsernameTaken) {
			httpx.WriteError(w, http.StatusConflict, "username already taken")
			return
		}
		log.Error("create user", "tenant_id", req.TenantID, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server error")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, userCreateResponse{
		Success:  true,
		ID:       user.ID,
		Username: user.Username,
	})
}

type UserLoginHandler struct {
	UserService *service.UserService
}

type userLoginRequest struct {
	TenantID int64  `json:"tenant_id"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type userLoginResponse struct {
	Success   bool   `json:"success"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

func (h *UserLoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req userLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, claims, err := h.UserService.Login(ctx, req.TenantID, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			// Unknown user and wrong password get the same answer.
			httpx.WriteError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		log.Error("login", "tenant_id", req.TenantID, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server error")
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, userLoginResponse{
		Success:   true,
		Token:     token,
		ExpiresAt: claims.Expiry(),
	})
}

type UserLogoutHandler struct {
	UserService *service.UserService
}

func (h *UserLogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	subject := httpx.SubjectFromCtx(ctx)
	device := httpx.DeviceFromCtx(ctx)

	if err := h.UserService.Logout(ctx, subject, device); err != nil {
		log.Error("logout", "subject_id", subject, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}

type UserInfoHandler struct {
	UserService *service.UserService
}

type userInfoResponse struct {
	Success   bool       `json:"success"`
	ID        string     `json:"id"`
	TenantID  int64      `json:"tenant_id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

func (h *UserInfoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	subject := httpx.SubjectFromCtx(ctx)
	user, err := h.UserService.Info(ctx, subject)
	if err != nil {
		log.Error("load user", "subject_id", subject, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server error")
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, userInfoResponse{
		Success:   true,
		ID:        user.ID,
		TenantID:  user.TenantID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		LastLogin: user.LastLogin,
	})
}
