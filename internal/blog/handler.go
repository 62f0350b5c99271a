package blog

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/inkwell-labs/blog-core/internal/apperr"
	"github.com/inkwell-labs/blog-core/internal/auth"
	"github.com/inkwell-labs/blog-core/internal/blog/entity"
	"github.com/inkwell-labs/blog-core/pkg/utilities"
)

// Handler exposes HTTP endpoints for blog CRUD. All routes sit behind the
// auth middleware, so a missing principal is a wiring bug, not user error.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// CreateRequest request body for post creation. There is deliberately no
// author field; the author is always the authenticated principal.
type CreateRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		utilities.WriteError(w, apperr.New(apperr.KindUnauthorized, "authentication required"))
		return
	}
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid blog payload", "err", err)
		utilities.WriteError(w, apperr.New(apperr.KindValidation, "invalid payload"))
		return
	}
	b, err := h.svc.Create(r.Context(), p.ID, req.Title, req.Content)
	if err != nil {
		h.logError("blog create failed", err)
		utilities.WriteError(w, err)
		return
	}
	utilities.WriteJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Blog created successfully",
		"blog":    b.DTO(),
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		utilities.WriteError(w, apperr.New(apperr.KindUnauthorized, "authentication required"))
		return
	}
	blogs, err := h.svc.List(r.Context(), p.ID)
	if err != nil {
		h.logError("blog list failed", err)
		utilities.WriteError(w, err)
		return
	}
	out := make([]entity.BlogDTO, 0, len(blogs))
	for _, b := range blogs {
		out = append(out, b.DTO())
	}
	utilities.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"blogs":   out,
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		utilities.WriteError(w, apperr.New(apperr.KindUnauthorized, "authentication required"))
		return
	}
	b, err := h.svc.Get(r.Context(), r.PathValue("id"), p.ID)
	if err != nil {
		h.logError("blog get failed", err)
		utilities.WriteError(w, err)
		return
	}
	utilities.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"blog":    b.DTO(),
	})
}

// UpdateRequest is a partial update; absent fields are left untouched.
type UpdateRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		utilities.WriteError(w, apperr.New(apperr.KindUnauthorized, "authentication required"))
		return
	}
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid blog payload", "err", err)
		utilities.WriteError(w, apperr.New(apperr.KindValidation, "invalid payload"))
		return
	}
	b, err := h.svc.Update(r.Context(), r.PathValue("id"), p.ID, req.Title, req.Content)
	if err != nil {
		h.logError("blog update failed", err)
		utilities.WriteError(w, err)
		return
	}
	utilities.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Blog updated successfully",
		"blog":    b.DTO(),
	})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		utilities.WriteError(w, apperr.New(apperr.KindUnauthorized, "authentication required"))
		return
	}
	if err := h.svc.Delete(r.Context(), r.PathValue("id"), p.ID); err != nil {
		h.logError("blog delete failed", err)
		utilities.WriteError(w, err)
		return
	}
	utilities.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Blog deleted successfully",
	})
}

func (h *Handler) logError(msg string, err error) {
	if apperr.KindOf(err) == apperr.KindInternal {
		h.logger.Errorw(msg, "err", err)
		return
	}
	h.logger.Debugw(msg, "err", err)
}
