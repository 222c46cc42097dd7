// Copyright (c) 2026 BrotherhoodLabs. All rights reserved.

package permissions

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/BrotherhoodLabs/accessgate-poc/internal/platform/middleware"
	requestutil "github.com/BrotherhoodLabs/accessgate-poc/internal/platform/request"
	"github.com/BrotherhoodLabs/accessgate-poc/internal/platform/respond"
	"github.com/BrotherhoodLabs/accessgate-poc/internal/platform/validate"
)

// Handler implements permission catalog HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] for the /permissions resource.
//
// Reads require role.read; catalog administration requires role.write or
// role.delete, mirroring the role management surface.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequirePermission(RoleRead))
		r.Get("/", handler.list)
		r.Get("/grouped", handler.grouped)
		r.Get("/resource/{resource}", handler.byResource)
		r.Get("/action/{action}", handler.byAction)
		r.Get("/{id}", handler.getByID)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequirePermission(RoleWrite))
		r.Post("/", handler.create)
		r.Patch("/{id}", handler.update)
	})

	router.With(middleware.RequirePermission(RoleDelete)).Delete("/{id}", handler.delete)

	return router
}

// # Request Payloads

type createRequest struct {
	Resource    string `json:"resource"`
	Action      string `json:"action"`
	Description string `json:"description"`
}

type updateRequest struct {
	Description string `json:"description"`
}

// list handles GET /permissions.
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	catalog, err := handler.service.List(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, catalog)
}

// grouped handles GET /permissions/grouped.
func (handler *Handler) grouped(writer http.ResponseWriter, request *http.Request) {
	grouped, err := handler.service.GroupedByResource(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, grouped)
}

// byResource handles GET /permissions/resource/{resource}.
func (handler *Handler) byResource(writer http.ResponseWriter, request *http.Request) {
	catalog, err := handler.service.ByResource(request.Context(), requestutil.Param(request, "resource"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, catalog)
}

// byAction handles GET /permissions/action/{action}.
func (handler *Handler) byAction(writer http.ResponseWriter, request *http.Request) {
	catalog, err := handler.service.ByAction(request.Context(), requestutil.Param(request, "action"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, catalog)
}

// getByID handles GET /permissions/{id}.
func (handler *Handler) getByID(writer http.ResponseWriter, request *http.Request) {
	permission, err := handler.service.GetByID(request.Context(), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, permission)
}

// create handles POST /permissions.
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var input createRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldResource, input.Resource).
		Required(FieldAction, input.Action)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	permission, err := handler.service.Create(request.Context(), CreateInput{
		Resource:    input.Resource,
		Action:      input.Action,
		Description: input.Description,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, permission)
}

// update handles PATCH /permissions/{id}.
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	var input updateRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	permission, err := handler.service.UpdateDescription(request.Context(), requestutil.ID(request, "id"), input.Description)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, permission)
}

// delete handles DELETE /permissions/{id}.
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.Delete(request.Context(), requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
