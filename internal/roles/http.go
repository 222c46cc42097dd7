// Copyright (c) 2026 BrotherhoodLabs. All rights reserved.

package roles

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/BrotherhoodLabs/accessgate-poc/internal/permissions"
	"github.com/BrotherhoodLabs/accessgate-poc/internal/platform/middleware"
	requestutil "github.com/BrotherhoodLabs/accessgate-poc/internal/platform/request"
	"github.com/BrotherhoodLabs/accessgate-poc/internal/platform/respond"
	"github.com/BrotherhoodLabs/accessgate-poc/internal/platform/validate"
)

// Handler implements role management HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] for the /roles resource.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequirePermission(permissions.RoleRead))
		r.Get("/", handler.list)
		r.Get("/{id}", handler.getByID)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequirePermission(permissions.RoleWrite))
		r.Post("/", handler.create)
		r.Patch("/{id}", handler.update)
		r.Post("/{id}/permissions", handler.assignPermission)
		r.Delete("/{id}/permissions/{permissionId}", handler.removePermission)
	})

	router.With(middleware.RequirePermission(permissions.RoleDelete)).Delete("/{id}", handler.delete)

	return router
}

// # Request Payloads

type createRequest struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	PermissionIDs []string `json:"permissionIds"`
}

type updateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

type assignRequest struct {
	PermissionID string `json:"permissionId"`
}

// list handles GET /roles.
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	result, err := handler.service.List(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, result)
}

// getByID handles GET /roles/{id}.
func (handler *Handler) getByID(writer http.ResponseWriter, request *http.Request) {
	role, err := handler.service.GetByID(request.Context(), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, role)
}

// create handles POST /roles.
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var input createRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldName, input.Name)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	role, err := handler.service.Create(request.Context(), CreateInput{
		Name:          input.Name,
		Description:   input.Description,
		PermissionIDs: input.PermissionIDs,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, role)
}

// update handles PATCH /roles/{id}.
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	var input updateRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	role, err := handler.service.Update(request.Context(), requestutil.ID(request, "id"), UpdateInput{
		Name:        input.Name,
		Description: input.Description,
		IsActive:    input.IsActive,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, role)
}

// delete handles DELETE /roles/{id}.
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.Delete(request.Context(), requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// assignPermission handles POST /roles/{id}/permissions.
func (handler *Handler) assignPermission(writer http.ResponseWriter, request *http.Request) {
	var input assignRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldPermissionID, input.PermissionID)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	role, err := handler.service.AssignPermission(request.Context(), requestutil.ID(request, "id"), input.PermissionID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, role)
}

// removePermission handles DELETE /roles/{id}/permissions/{permissionId}.
func (handler *Handler) removePermission(writer http.ResponseWriter, request *http.Request) {
	err := handler.service.RemovePermission(
		request.Context(),
		requestutil.ID(request, "id"),
		requestutil.ID(request, "permissionId"),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
