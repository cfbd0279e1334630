package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sharif-mahmud/wellpoint/libs/auth"
	"github.com/sharif-mahmud/wellpoint/services/wellness-service/internal/model"
	"github.com/sharif-mahmud/wellpoint/services/wellness-service/internal/storage"
)

type AuthHandler struct {
	users    *storage.UserRepository
	logger   *slog.Logger
	secret   string
	tokenTTL time.Duration
}

func NewAuthHandler(users *storage.UserRepository, logger *slog.Logger, secret string, tokenTTL time.Duration) *AuthHandler {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	return &AuthHandler{users: users, logger: logger, secret: secret, tokenTTL: tokenTTL}
}

type registerRequest struct {
	HealthID    string `json:"health_id"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
}

type loginRequest struct {
	HealthID string `json:"health_id"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserID      int64  `json:"user_id"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid json body")
		return
	}
	req.HealthID = strings.TrimSpace(req.HealthID)
	req.Name = strings.TrimSpace(req.Name)
	req.Password = strings.TrimSpace(req.Password)
	if req.HealthID == "" || req.Name == "" || req.Password == "" {
		writeDetail(w, http.StatusBadRequest, "health_id, name and password required")
		return
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user := &model.User{
		HealthID:     req.HealthID,
		Name:         req.Name,
		PhoneNumber:  strings.TrimSpace(req.PhoneNumber),
		PasswordHash: hash,
	}
	id, err := h.users.Create(r.Context(), user)
	if err != nil {
		if storage.IsUniqueViolation(err) {
			writeDetail(w, http.StatusConflict, "health_id already registered")
			return
		}
		h.logger.Error("user create failed", "err", err)
		writeDetail(w, http.StatusInternalServerError, "failed to create user")
		return
	}
	user.ID = id

	token, err := h.issueToken(user)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	writeJSON(w, http.StatusCreated, tokenResponse{AccessToken: token, TokenType: "Bearer", UserID: id})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid json body")
		return
	}
	req.HealthID = strings.TrimSpace(req.HealthID)
	req.Password = strings.TrimSpace(req.Password)
	if req.HealthID == "" || req.Password == "" {
		writeDetail(w, http.StatusBadRequest, "health_id and password required")
		return
	}

	user, err := h.users.GetByHealthID(r.Context(), req.HealthID)
	if err != nil {
		if storage.IsNotFound(err) {
			writeDetail(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.logger.Error("user lookup failed", "err", err)
		writeDetail(w, http.StatusInternalServerError, "failed to lookup user")
		return
	}
	if err := verifyPassword(user.PasswordHash, req.Password); err != nil {
		writeDetail(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.issueToken(&user)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "Bearer", UserID: user.ID})
}

func (h *AuthHandler) issueToken(user *model.User) (string, error) {
	now := time.Now()
	return auth.SignHS256(auth.Claims{
		Sub:  strconv.FormatInt(user.ID, 10),
		Name: user.Name,
		Role: "member",
		Iat:  now.Unix(),
		Exp:  now.Add(h.tokenTTL).Unix(),
	}, h.secret)
}

func hashPassword(raw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func verifyPassword(hash string, raw string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw))
}
