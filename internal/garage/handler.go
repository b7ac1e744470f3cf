package garage

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/carhive/carhive/internal/platform/httpx"
	"github.com/carhive/carhive/internal/query"
	"github.com/carhive/carhive/internal/rbac"
)

// Handler exposes the garage endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// Routes mounts the garage endpoints. Authentication middleware runs in front.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/my-cars", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/{specID}", h.add)
		r.Delete("/{specID}", h.remove)
	})
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	if !httpx.ClientCaused(err) && h.logger != nil {
		h.logger.Error("garage "+op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

func specParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "specID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid specID", httpx.ErrValidation)
	}
	return id, nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	principal, _ := rbac.PrincipalFromContext(r.Context())
	page, err := h.service.List(r.Context(), principal, query.ParamsFromRequest(r))
	if err != nil {
		h.respondError(w, "list", err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) add(w http.ResponseWriter, r *http.Request) {
	specID, err := specParam(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	principal, _ := rbac.PrincipalFromContext(r.Context())
	if err := h.service.Add(r.Context(), principal, specID); err != nil {
		h.respondError(w, "add", err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	specID, err := specParam(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	principal, _ := rbac.PrincipalFromContext(r.Context())
	if err := h.service.Remove(r.Context(), principal, specID); err != nil {
		h.respondError(w, "remove", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
