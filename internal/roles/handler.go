package roles

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carhive/carhive/internal/platform/httpx"
	"github.com/carhive/carhive/internal/rbac"
)

// Handler exposes the role administration endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// Routes mounts the role endpoints. The caller wraps them with the user
// management permission middleware.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/permissions", h.listPermissions)
	r.Route("/roles", func(r chi.Router) {
		r.Get("/", h.listRoles)
		r.Post("/", h.createRole)
		r.Route("/{roleID}", func(r chi.Router) {
			r.Get("/", h.getRole)
			r.Patch("/", h.updateRole)
			r.Delete("/", h.deleteRole)
			r.Put("/permissions", h.setPermissions)
			r.Post("/users/{userID}", h.assignRole)
			r.Delete("/users/{userID}", h.removeRole)
		})
	})
}

type roleRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"max=1024"`
}

type permissionsRequest struct {
	PermissionIDs []int64 `json:"permission_ids" validate:"required"`
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	if !httpx.ClientCaused(err) && h.logger != nil {
		h.logger.Error("roles "+op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s", httpx.ErrValidation, name)
	}
	return id, nil
}

func actorID(r *http.Request) int64 {
	principal, _ := rbac.PrincipalFromContext(r.Context())
	return principal.ID
}

func (h *Handler) listPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.service.ListPermissions(r.Context())
	if err != nil {
		h.respondError(w, "list permissions", err)
		return
	}
	httpx.JSON(w, http.StatusOK, perms)
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.ListRoles(r.Context())
	if err != nil {
		h.respondError(w, "list", err)
		return
	}
	httpx.JSON(w, http.StatusOK, roles)
}

func (h *Handler) createRole(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid body", httpx.ErrValidation))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	role, err := h.service.CreateRole(r.Context(), actorID(r), RoleInput{Name: req.Name, Description: req.Description})
	if err != nil {
		h.respondError(w, "create", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, role)
}

func (h *Handler) getRole(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "roleID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	role, err := h.service.GetRole(r.Context(), id)
	if err != nil {
		h.respondError(w, "get", err)
		return
	}
	httpx.JSON(w, http.StatusOK, role)
}

func (h *Handler) updateRole(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "roleID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req roleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid body", httpx.ErrValidation))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	role, err := h.service.UpdateRole(r.Context(), actorID(r), id, RoleInput{Name: req.Name, Description: req.Description})
	if err != nil {
		h.respondError(w, "update", err)
		return
	}
	httpx.JSON(w, http.StatusOK, role)
}

func (h *Handler) deleteRole(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "roleID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.DeleteRole(r.Context(), actorID(r), id); err != nil {
		h.respondError(w, "delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setPermissions(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "roleID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req permissionsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid body", httpx.ErrValidation))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	role, err := h.service.SetPermissions(r.Context(), actorID(r), id, req.PermissionIDs)
	if err != nil {
		h.respondError(w, "set permissions", err)
		return
	}
	httpx.JSON(w, http.StatusOK, role)
}

func (h *Handler) assignRole(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	roleID, err := pathID(r, "roleID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.AssignUserRole(r.Context(), actorID(r), userID, roleID); err != nil {
		h.respondError(w, "assign", err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) removeRole(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	roleID, err := pathID(r, "roleID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.RemoveUserRole(r.Context(), actorID(r), userID, roleID); err != nil {
		h.respondError(w, "remove", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
