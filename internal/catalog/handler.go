package catalog

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carhive/carhive/internal/platform/httpx"
	"github.com/carhive/carhive/internal/query"
	"github.com/carhive/carhive/internal/rbac"
)

// Handler exposes the catalog hierarchy over HTTP. Collection and item routes
// carry the immediate parent id in the path, so a child can never be reached
// through a parent it does not belong to.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// Routes mounts the catalog endpoints on the given router. The caller is
// expected to have authentication middleware in front.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/brands", func(r chi.Router) {
		r.Get("/", h.listBrands)
		r.Post("/", h.createBrand)
		r.Route("/{brandID}", func(r chi.Router) {
			r.Get("/", h.getBrand)
			r.Patch("/", h.updateBrand)
			r.Delete("/", h.deleteBrand)
			r.Get("/models", h.listModels)
			r.Post("/models", h.createModel)
			r.Route("/models/{modelID}", func(r chi.Router) {
				r.Get("/", h.getModel)
				r.Patch("/", h.updateModel)
				r.Delete("/", h.deleteModel)
			})
		})
	})
	r.Route("/models/{modelID}/submodels", func(r chi.Router) {
		r.Get("/", h.listSubmodels)
		r.Post("/", h.createSubmodel)
		r.Route("/{submodelID}", func(r chi.Router) {
			r.Get("/", h.getSubmodel)
			r.Patch("/", h.updateSubmodel)
			r.Delete("/", h.deleteSubmodel)
		})
	})
	r.Route("/submodels/{submodelID}/generations", func(r chi.Router) {
		r.Get("/", h.listGenerations)
		r.Post("/", h.createGeneration)
		r.Route("/{generationID}", func(r chi.Router) {
			r.Get("/", h.getGeneration)
			r.Patch("/", h.updateGeneration)
			r.Delete("/", h.deleteGeneration)
		})
	})
	r.Route("/generations/{generationID}/specs", func(r chi.Router) {
		r.Get("/", h.listSpecs)
		r.Post("/", h.createSpec)
		r.Route("/{specID}", func(r chi.Router) {
			r.Get("/", h.getSpec)
			r.Patch("/", h.updateSpec)
			r.Delete("/", h.deleteSpec)
		})
	})
}

func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s", httpx.ErrValidation, name)
	}
	return id, nil
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	if !httpx.ClientCaused(err) && h.logger != nil {
		h.logger.Error("catalog "+op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(r, dst); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid body", httpx.ErrValidation))
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return false
	}
	return true
}

type nameRequest struct {
	Name string `json:"name" validate:"required,min=1,max=255"`
}

type generationRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=255"`
	YearStart *int   `json:"year_start" validate:"omitempty,gte=1886"`
	YearEnd   *int   `json:"year_end" validate:"omitempty,gte=1886"`
}

type specRequest struct {
	Engine     *string `json:"engine" validate:"omitempty,max=255"`
	Horsepower *int    `json:"horsepower" validate:"omitempty,gte=0"`
	Torque     *int    `json:"torque" validate:"omitempty,gte=0"`
	FuelType   *string `json:"fuel_type" validate:"omitempty,max=64"`
	Year       *int    `json:"year" validate:"omitempty,gte=1886"`
}

// Brands

func (h *Handler) listBrands(w http.ResponseWriter, r *http.Request) {
	principal, _ := rbac.PrincipalFromContext(r.Context())
	page, err := h.service.ListBrands(r.Context(), principal, query.ParamsFromRequest(r))
	if err != nil {
		h.respondError(w, "list brands", err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) createBrand(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if !h.decode(w, r, &req) {
		return
	}
	principal, _ := rbac.PrincipalFromContext(r.Context())
	brand, err := h.service.CreateBrand(r.Context(), principal, req.Name)
	if err != nil {
		h.respondError(w, "create brand", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, brand)
}

func (h *Handler) getBrand(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "brandID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	principal, _ := rbac.PrincipalFromContext(r.Context())
	brand, err := h.service.GetBrand(r.Context(), principal, id)
	if err != nil {
		h.respondError(w, "get brand", err)
		return
	}
	httpx.JSON(w, http.StatusOK, brand)
}

func (h *Handler) updateBrand(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "brandID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var patch BrandPatch
	if !h.decode(w, r, &patch) {
		return
	}
	principal, _ := rbac.PrincipalFromContext(r.Context())
	brand, err := h.service.UpdateBrand(r.Context(), principal, id, patch)
	if err != nil {
		h.respondError(w, "update brand", err)
		return
	}
	httpx.JSON(w, http.StatusOK, brand)
}

func (h *Handler) deleteBrand(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "brandID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	principal, _ := rbac.PrincipalFromContext(r.Context())
	if err := h.service.DeleteBrand(r.Context(), principal, id); err != nil {
		h.respondError(w, "delete brand", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Models

func (h *Handler) listModels(w http.ResponseWriter, r *http.Request) {
	brandID, err := idParam(r, "brandID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	principal, _ := rbac.PrincipalFromContext(r.Context())
	page, err := h.service.ListModels(r.Context(), principal, brandID, query.ParamsFromRequest(r))
	if err != nil {
		h.respondError(w, "list models", err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) createModel(w http.ResponseWriter, r *http.Request) {
	brandID, err := idParam(r, "brandID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req nameRequest
	if !h.decode(w, r, &req) {
		return
	}
	principal, _ := rbac.PrincipalFromContext(r.Context())
	model, err := h.service.CreateModel(r.Context(), principal, brandID, req.Name)
	if err != nil {
		h.respondError(w, "create model", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, model)
}

func (h *Handler) getModel(w http.ResponseWriter, r *http.Request) {
	brandID, err := idParam(r, "brandID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := idParam(r, "modelID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	principal, _ := rbac.PrincipalFromContext(r.Context())
	model, err := h.service.GetModel(r.Context(), principal, brandID, id)
	if err != nil {
		h.respondError(w, "get model", err)
		return
	}
	httpx.JSON(w, http.StatusOK, model)
}

func (h *Handler) updateModel(w http.ResponseWriter, r *http.Request) {
	brandID, err := idParam(r, "brandID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := idParam(r, "modelID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var patch ModelPatch
	if !h.decode(w, r, &patch) {
		return
	}
	principal, _ := rbac.PrincipalFromContext(r.Context())
	model, err := h.service.UpdateModel(r.Context(), principal, brandID, id, patch)
	if err != nil {
		h.respondError(w, "update model", err)
		return
	}
	httpx.JSON(w, http.StatusOK, model)
}

func (h *Handler) deleteModel(w http.ResponseWriter, r *http.Request) {
	brandID, err := idParam(r, "brandID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := idParam(r, "modelID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	principal, _ := rbac.PrincipalFromContext(r.Context())
	if err := h.service.DeleteModel(r.Context(), principal, brandID, id); err != nil {
		h.respondError(w, "delete model", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Submodels

func (h *Handler) listSubmodels(w http.ResponseWriter, r *http.Request) {
	modelID, err := idParam(r, "modelID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	principal, _ := rbac.PrincipalFromContext(r.Context())
	page, err := h.service.ListSubmodels(r.Context(), principal, modelID, query.ParamsFromRequest(r))
	if err != nil {
		h.respondError(w, "list submodels", err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) createSubmodel(w http.ResponseWriter, r *http.Request) {
	modelID, err := idParam(r, "modelID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req nameRequest
	if !h.decode(w, r, &req) {
		return
	}
	principal, _ := rbac.PrincipalFromContext(r.Context())
	submodel, err := h.service.CreateSubmodel(r.Context(), principal, modelID, req.Name)
	if err != nil {
		h.respondError(w, "create submodel", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, submodel)
}

func (h *Handler) getSubmodel(w http.ResponseWriter, r *http.Request) {
	modelID, err := idParam(r, "modelID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := idParam(r, "submodelID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	principal, _ := rbac.PrincipalFromContext(r.Context())
	submodel, err := h.service.GetSubmodel(r.Context(), principal, modelID, id)
	if err != nil {
		h.respondError(w, "get submodel", err)
		return
	}
	httpx.JSON(w, http.StatusOK, submodel)
}

func (h *Handler) updateSubmodel(w http.ResponseWriter, r *http.Request) {
	modelID, err := idParam(r, "modelID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := idParam(r, "submodelID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var patch SubmodelPatch
	if !h.decode(w, r, &patch) {
		return
	}
	principal, _ := rbac.PrincipalFromContext(r.Context())
	submodel, err := h.service.UpdateSubmodel(r.Context(), principal, modelID, id, patch)
	if err != nil {
		h.respondError(w, "update submodel", err)
		return
	}
	httpx.JSON(w, http.StatusOK, submodel)
}

func (h *Handler) deleteSubmodel(w http.ResponseWriter, r *http.Request) {
	modelID, err := idParam(r, "modelID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := idParam(r, "submodelID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	principal, _ := rbac.PrincipalFromContext(r.Context())
	if err := h.service.DeleteSubmodel(r.Context(), principal, modelID, id); err != nil {
		h.respondError(w, "delete submodel", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Generations

func (h *Handler) listGenerations(w http.ResponseWriter, r *http.Request) {
	submodelID, err := idParam(r, "submodelID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	principal, _ := rbac.PrincipalFromContext(r.Context())
	page, err := h.service.ListGenerations(r.Context(), principal, submodelID, query.ParamsFromRequest(r))
	if err != nil {
		h.respondError(w, "list generations", err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) createGeneration(w http.ResponseWriter, r *http.Request) {
	submodelID, err := idParam(r, "submodelID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req generationRequest
	if !h.decode(w, r, &req) {
		return
	}
	principal, _ := rbac.PrincipalFromContext(r.Context())
	gen, err := h.service.CreateGeneration(r.Context(), principal, submodelID, GenerationInput{
		Name:      req.Name,
		YearStart: req.YearStart,
		YearEnd:   req.YearEnd,
	})
	if err != nil {
		h.respondError(w, "create generation", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, gen)
}

func (h *Handler) getGeneration(w http.ResponseWriter, r *http.Request) {
	submodelID, err := idParam(r, "submodelID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := idParam(r, "generationID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	principal, _ := rbac.PrincipalFromContext(r.Context())
	gen, err := h.service.GetGeneration(r.Context(), principal, submodelID, id)
	if err != nil {
		h.respondError(w, "get generation", err)
		return
	}
	httpx.JSON(w, http.StatusOK, gen)
}

func (h *Handler) updateGeneration(w http.ResponseWriter, r *http.Request) {
	submodelID, err := idParam(r, "submodelID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := idParam(r, "generationID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var patch GenerationPatch
	if !h.decode(w, r, &patch) {
		return
	}
	principal, _ := rbac.PrincipalFromContext(r.Context())
	gen, err := h.service.UpdateGeneration(r.Context(), principal, submodelID, id, patch)
	if err != nil {
		h.respondError(w, "update generation", err)
		return
	}
	httpx.JSON(w, http.StatusOK, gen)
}

func (h *Handler) deleteGeneration(w http.ResponseWriter, r *http.Request) {
	submodelID, err := idParam(r, "submodelID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := idParam(r, "generationID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	principal, _ := rbac.PrincipalFromContext(r.Context())
	if err := h.service.DeleteGeneration(r.Context(), principal, submodelID, id); err != nil {
		h.respondError(w, "delete generation", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Specs

func (h *Handler) listSpecs(w http.ResponseWriter, r *http.Request) {
	generationID, err := idParam(r, "generationID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	principal, _ := rbac.PrincipalFromContext(r.Context())
	page, err := h.service.ListSpecs(r.Context(), principal, generationID, query.ParamsFromRequest(r))
	if err != nil {
		h.respondError(w, "list specs", err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) createSpec(w http.ResponseWriter, r *http.Request) {
	generationID, err := idParam(r, "generationID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req specRequest
	if !h.decode(w, r, &req) {
		return
	}
	principal, _ := rbac.PrincipalFromContext(r.Context())
	spec, err := h.service.CreateSpec(r.Context(), principal, generationID, SpecInput{
		Engine:     req.Engine,
		Horsepower: req.Horsepower,
		Torque:     req.Torque,
		FuelType:   req.FuelType,
		Year:       req.Year,
	})
	if err != nil {
		h.respondError(w, "create spec", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, spec)
}

func (h *Handler) getSpec(w http.ResponseWriter, r *http.Request) {
	generationID, err := idParam(r, "generationID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := idParam(r, "specID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	principal, _ := rbac.PrincipalFromContext(r.Context())
	spec, err := h.service.GetSpec(r.Context(), principal, generationID, id)
	if err != nil {
		h.respondError(w, "get spec", err)
		return
	}
	httpx.JSON(w, http.StatusOK, spec)
}

func (h *Handler) updateSpec(w http.ResponseWriter, r *http.Request) {
	generationID, err := idParam(r, "generationID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := idParam(r, "specID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var patch SpecPatch
	if !h.decode(w, r, &patch) {
		return
	}
	principal, _ := rbac.PrincipalFromContext(r.Context())
	spec, err := h.service.UpdateSpec(r.Context(), principal, generationID, id, patch)
	if err != nil {
		h.respondError(w, "update spec", err)
		return
	}
	httpx.JSON(w, http.StatusOK, spec)
}

func (h *Handler) deleteSpec(w http.ResponseWriter, r *http.Request) {
	generationID, err := idParam(r, "generationID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := idParam(r, "specID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	principal, _ := rbac.PrincipalFromContext(r.Context())
	if err := h.service.DeleteSpec(r.Context(), principal, generationID, id); err != nil {
		h.respondError(w, "delete spec", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
