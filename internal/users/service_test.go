// Copyright (c) 2026 BrotherhoodLabs. All rights reserved.

package users_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrotherhoodLabs/accessgate-poc/internal/platform/apperr"
	"github.com/BrotherhoodLabs/accessgate-poc/internal/platform/sec"
	"github.com/BrotherhoodLabs/accessgate-poc/internal/users"
	"github.com/BrotherhoodLabs/accessgate-poc/pkg/pagination"
	"github.com/BrotherhoodLabs/accessgate-poc/pkg/pointer"
)

// fakeStore is an in-memory [users.Store]. The mutex matters: the
// concurrency test below hammers Create from many goroutines, mirroring
// how the unique index serializes concurrent inserts.
type fakeStore struct {
	mu          sync.Mutex
	users       map[string]*users.User
	memberships map[string][]users.AssignedRole
	roleNames   map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:       map[string]*users.User{},
		memberships: map[string][]users.AssignedRole{},
		roleNames:   map[string]string{"role-admin": "ADMIN", "role-viewer": "VIEWER"},
	}
}

func (f *fakeStore) List(ctx context.Context, params pagination.Params) ([]users.User, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]users.User, 0, len(f.users))
	for _, user := range f.users {
		result = append(result, *user)
	}
	return result, len(result), nil
}

func (f *fakeStore) FindByID(ctx context.Context, id string) (*users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	clone := *user
	clone.Roles = f.memberships[id]
	return &clone, nil
}

func (f *fakeStore) FindByEmail(ctx context.Context, email string) (*users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (f *fakeStore) Create(ctx context.Context, user *users.User, roleIDs []string, assignedBy *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return apperr.Conflict("User already exists with this email")
		}
	}
	for _, roleID := range roleIDs {
		name, ok := f.roleNames[roleID]
		if !ok {
			return apperr.NotFound("Role")
		}
		f.memberships[user.ID] = append(f.memberships[user.ID], users.AssignedRole{
			ID: roleID, Name: name, AssignedBy: assignedBy,
		})
	}
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeStore) Update(ctx context.Context, id string, fields users.UpdateFields) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return apperr.NotFound("User")
	}
	if fields.Email != nil {
		user.Email = *fields.Email
	}
	if fields.PasswordHash != nil {
		user.PasswordHash = *fields.PasswordHash
	}
	if fields.FirstName != nil {
		user.FirstName = *fields.FirstName
	}
	if fields.LastName != nil {
		user.LastName = *fields.LastName
	}
	if fields.IsActive != nil {
		user.IsActive = *fields.IsActive
	}
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return apperr.NotFound("User")
	}
	delete(f.users, id)
	delete(f.memberships, id)
	return nil
}

func (f *fakeStore) AssignRole(ctx context.Context, userID, roleID string, assignedBy *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[userID]; !ok {
		return apperr.NotFound("User")
	}
	name, ok := f.roleNames[roleID]
	if !ok {
		return apperr.NotFound("Role")
	}
	for _, membership := range f.memberships[userID] {
		if membership.ID == roleID {
			return apperr.Conflict("User already has this role")
		}
	}
	f.memberships[userID] = append(f.memberships[userID], users.AssignedRole{
		ID: roleID, Name: name, AssignedBy: assignedBy,
	})
	return nil
}

func (f *fakeStore) RemoveRole(ctx context.Context, userID, roleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	memberships := f.memberships[userID]
	for i, membership := range memberships {
		if membership.ID == roleID {
			f.memberships[userID] = append(memberships[:i], memberships[i+1:]...)
			return nil
		}
	}
	return apperr.NotFound("Role assignment")
}

func (f *fakeStore) ListAssignedRoles(ctx context.Context, userID string) ([]users.AssignedRole, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.memberships[userID], nil
}

// recordingInvalidator counts per-user cache purges.
type recordingInvalidator struct {
	mu      sync.Mutex
	userIDs []string
}

func (r *recordingInvalidator) InvalidateUser(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.userIDs = append(r.userIDs, userID)
	return nil
}

/*
TestService_Create verifies email canonicalization, password hashing, and
initial role memberships.
*/
func TestService_Create(t *testing.T) {
	service := users.NewService(newFakeStore(), nil)

	user, err := service.Create(context.Background(), users.CreateInput{
		Email:     "  Alice@AccessGate.COM ",
		Password:  "Sup3rSecret!",
		FirstName: "Alice",
		LastName:  "Nguyen",
		RoleIDs:   []string{"role-viewer"},
	})
	require.NoError(t, err)

	assert.Equal(t, "alice@accessgate.com", user.Email)
	assert.True(t, user.IsActive)
	require.Len(t, user.Roles, 1)
	assert.Equal(t, "VIEWER", user.Roles[0].Name)

	assert.NotEqual(t, "Sup3rSecret!", user.PasswordHash, "password must never be stored in plaintext")
	assert.True(t, sec.CheckPasswordHash("Sup3rSecret!", user.PasswordHash))
}

/*
TestService_Create_UnknownRole checks that an unknown role id fails the
whole create.
*/
func TestService_Create_UnknownRole(t *testing.T) {
	service := users.NewService(newFakeStore(), nil)

	_, err := service.Create(context.Background(), users.CreateInput{
		Email:     "bob@accessgate.com",
		Password:  "Sup3rSecret!",
		FirstName: "Bob",
		LastName:  "Tran",
		RoleIDs:   []string{"role-ghost"},
	})
	require.Error(t, err)
	assert.Equal(t, 404, apperr.As(err).HTTPStatus)
}

/*
TestService_Create_ConcurrentDuplicateEmail launches many concurrent
creates with the same email and requires exactly one winner.
*/
func TestService_Create_ConcurrentDuplicateEmail(t *testing.T) {
	service := users.NewService(newFakeStore(), nil)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = service.Create(context.Background(), users.CreateInput{
				Email:     "same@accessgate.com",
				Password:  "Sup3rSecret!",
				FirstName: "Same",
				LastName:  "Email",
			})
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		require.Equal(t, "CONFLICT", apperr.As(err).Code)
	}
	assert.Equal(t, 1, successes)
}

/*
TestService_Update verifies partial updates, password re-hashing, and the
per-user cache purge.
*/
func TestService_Update(t *testing.T) {
	store := newFakeStore()
	invalidator := &recordingInvalidator{}
	service := users.NewService(store, invalidator)

	created, err := service.Create(context.Background(), users.CreateInput{
		Email: "carol@accessgate.com", Password: "Sup3rSecret!", FirstName: "Carol", LastName: "Pham",
	})
	require.NoError(t, err)

	updated, err := service.Update(context.Background(), created.ID, users.UpdateInput{
		FirstName: pointer.To("Caroline"),
		Password:  pointer.To("NewSecret99!"),
		IsActive:  pointer.To(false),
	})
	require.NoError(t, err)

	assert.Equal(t, "Caroline", updated.FirstName)
	assert.Equal(t, "Pham", updated.LastName)
	assert.False(t, updated.IsActive)
	assert.True(t, sec.CheckPasswordHash("NewSecret99!", updated.PasswordHash))
	assert.Equal(t, []string{created.ID}, invalidator.userIDs)
}

/*
TestService_RoleLifecycle assigns and removes a role, checking Conflict on
the duplicate and NotFound on the second removal.
*/
func TestService_RoleLifecycle(t *testing.T) {
	store := newFakeStore()
	invalidator := &recordingInvalidator{}
	service := users.NewService(store, invalidator)

	created, err := service.Create(context.Background(), users.CreateInput{
		Email: "dave@accessgate.com", Password: "Sup3rSecret!", FirstName: "Dave", LastName: "Le",
	})
	require.NoError(t, err)

	admin := "admin-id"
	withRole, err := service.AssignRole(context.Background(), created.ID, "role-admin", &admin)
	require.NoError(t, err)
	require.Len(t, withRole.Roles, 1)
	assert.Equal(t, &admin, withRole.Roles[0].AssignedBy)

	_, err = service.AssignRole(context.Background(), created.ID, "role-admin", &admin)
	require.Error(t, err)
	assert.Equal(t, "User already has this role", apperr.As(err).Message)

	require.NoError(t, service.RemoveRole(context.Background(), created.ID, "role-admin"))

	err = service.RemoveRole(context.Background(), created.ID, "role-admin")
	require.Error(t, err)
	assert.Equal(t, "Role assignment not found", apperr.As(err).Message)

	// Every membership mutation purged the affected user.
	assert.Len(t, invalidator.userIDs, 3)
}
