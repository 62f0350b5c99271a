package user

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/inkwell-labs/blog-core/internal/apperr"
	"github.com/inkwell-labs/blog-core/internal/auth"
	"github.com/inkwell-labs/blog-core/pkg/utilities"
)

// Handler exposes HTTP endpoints for registration, login and profile access.
type Handler struct {
	svc    *Service
	tokens *auth.TokenService
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, tokens *auth.TokenService, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, tokens: tokens, logger: logger}
}

// RegisterRequest request body for the registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid register payload", "err", err)
		utilities.WriteBareError(w, apperr.New(apperr.KindValidation, "invalid payload"))
		return
	}
	u, err := h.svc.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		h.logError("register failed", err)
		// registration errors use the bare {error} envelope
		utilities.WriteBareError(w, err)
		return
	}
	utilities.WriteJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "User registered successfully",
		"user":    u.Public(),
	})
}

// LoginRequest login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid login payload", "err", err)
		utilities.WriteError(w, apperr.New(apperr.KindValidation, "invalid payload"))
		return
	}
	u, err := h.svc.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logError("login failed", err)
		utilities.WriteError(w, err)
		return
	}
	token, err := h.tokens.Issue(auth.Principal{ID: u.ID, Username: u.Username, Email: u.Email})
	if err != nil {
		h.logger.Errorw("token issue failed", "err", err)
		utilities.WriteError(w, apperr.Wrap(apperr.KindInternal, "", err))
		return
	}
	utilities.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"token":   token,
		"user":    u.Public(),
	})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		utilities.WriteError(w, apperr.New(apperr.KindUnauthorized, "authentication required"))
		return
	}
	u, err := h.svc.Get(r.Context(), p.ID)
	if err != nil {
		h.logError("get current user failed", err)
		utilities.WriteError(w, err)
		return
	}
	utilities.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    u.Public(),
	})
}

// UpdateProfileRequest is a partial profile update; absent fields are left
// untouched. The target is always the authenticated principal.
type UpdateProfileRequest struct {
	Email *string `json:"email"`
	Name  *string `json:"name"`
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		utilities.WriteError(w, apperr.New(apperr.KindUnauthorized, "authentication required"))
		return
	}
	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid profile payload", "err", err)
		utilities.WriteError(w, apperr.New(apperr.KindValidation, "invalid payload"))
		return
	}
	u, err := h.svc.UpdateProfile(r.Context(), p.ID, req.Email, req.Name)
	if err != nil {
		h.logError("profile update failed", err)
		utilities.WriteError(w, err)
		return
	}
	utilities.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Profile updated successfully",
		"user":    u.Public(),
	})
}

func (h *Handler) logError(msg string, err error) {
	if apperr.KindOf(err) == apperr.KindInternal {
		h.logger.Errorw(msg, "err", err)
		return
	}
	h.logger.Debugw(msg, "err", err)
}
