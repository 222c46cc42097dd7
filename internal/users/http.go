// Copyright (c) 2026 BrotherhoodLabs. All rights reserved.

package users

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/BrotherhoodLabs/accessgate-poc/internal/permissions"
	"github.com/BrotherhoodLabs/accessgate-poc/internal/platform/apperr"
	"github.com/BrotherhoodLabs/accessgate-poc/internal/platform/middleware"
	requestutil "github.com/BrotherhoodLabs/accessgate-poc/internal/platform/request"
	"github.com/BrotherhoodLabs/accessgate-poc/internal/platform/respond"
	"github.com/BrotherhoodLabs/accessgate-poc/internal/platform/validate"
	"github.com/BrotherhoodLabs/accessgate-poc/pkg/pagination"
)

// PasswordMinLen is the minimum accepted password length.
const PasswordMinLen = 8

// Handler implements user administration HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] for the /users resource.
//
// Reading or patching a single user is ownership-scoped: a principal may
// always reach its own record, anyone else's requires user.read or
// user.write. The check lives in the handlers because the route guard
// cannot see whose record is addressed.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.With(middleware.RequirePermission(permissions.UserRead)).Get("/", handler.list)
	router.With(middleware.RequirePermission(permissions.UserWrite)).Post("/", handler.create)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/{id}", handler.getByID)
		r.Patch("/{id}", handler.update)
	})

	router.With(middleware.RequirePermission(permissions.UserDelete)).Delete("/{id}", handler.delete)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequirePermission(permissions.RoleWrite))
		r.Post("/{id}/roles", handler.assignRole)
		r.Delete("/{id}/roles/{roleId}", handler.removeRole)
	})

	return router
}

// # Request Payloads

type createRequest struct {
	Email     string   `json:"email"`
	Password  string   `json:"password"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	RoleIDs   []string `json:"roleIds"`
}

type updateRequest struct {
	Email     *string `json:"email"`
	Password  *string `json:"password"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	IsActive  *bool   `json:"isActive"`
}

type assignRequest struct {
	RoleID string `json:"roleId"`
}

// list handles GET /users.
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	result, meta, err := handler.service.List(request.Context(), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, result, meta)
}

// getByID handles GET /users/{id}.
func (handler *Handler) getByID(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	id := requestutil.ID(request, "id")
	if principal.ID != id && !principal.HasPermission(permissions.UserRead) {
		respond.Error(writer, request, apperr.Forbidden("Access denied"))
		return
	}

	user, err := handler.service.GetByID(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// create handles POST /users.
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var input createRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, PasswordMinLen).
		Required(FieldFirstName, input.FirstName).
		Required(FieldLastName, input.LastName)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.Create(request.Context(), CreateInput{
		Email:     input.Email,
		Password:  input.Password,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		RoleIDs:   input.RoleIDs,
		CreatedBy: &principal.ID,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

// update handles PATCH /users/{id}.
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	id := requestutil.ID(request, "id")
	privileged := principal.HasPermission(permissions.UserWrite)
	if principal.ID != id && !privileged {
		respond.Error(writer, request, apperr.Forbidden("Access denied"))
		return
	}

	var input updateRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	// Self-service is limited to profile fields; flipping the active
	// flag stays an administrative action.
	if input.IsActive != nil && !privileged {
		respond.Error(writer, request, apperr.Forbidden("Access denied"))
		return
	}

	validator := &validate.Validator{}
	if input.Email != nil {
		validator.Required(FieldEmail, *input.Email).Email(FieldEmail, *input.Email)
	}
	if input.Password != nil {
		validator.MinLen(FieldPassword, *input.Password, PasswordMinLen)
	}
	if input.FirstName != nil {
		validator.Required(FieldFirstName, *input.FirstName)
	}
	if input.LastName != nil {
		validator.Required(FieldLastName, *input.LastName)
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.Update(request.Context(), id, UpdateInput{
		Email:     input.Email,
		Password:  input.Password,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		IsActive:  input.IsActive,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// delete handles DELETE /users/{id}.
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.Delete(request.Context(), requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// assignRole handles POST /users/{id}/roles.
func (handler *Handler) assignRole(writer http.ResponseWriter, request *http.Request) {
	var input assignRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldRoleID, input.RoleID)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.AssignRole(request.Context(), requestutil.ID(request, "id"), input.RoleID, &principal.ID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// removeRole handles DELETE /users/{id}/roles/{roleId}.
func (handler *Handler) removeRole(writer http.ResponseWriter, request *http.Request) {
	err := handler.service.RemoveRole(
		request.Context(),
		requestutil.ID(request, "id"),
		requestutil.ID(request, "roleId"),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
