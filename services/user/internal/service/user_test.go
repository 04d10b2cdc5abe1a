package service

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"orderhub/pkg/apperr"
	"orderhub/services/user/internal/models"
	"orderhub/services/user/internal/repo"
	"orderhub/services/user/internal/transport"
)

func newService(t *testing.T) *UserService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	return &UserService{Repo: &repo.GormRepo{DB: db}}
}

func strPtr(s string) *string { return &s }

func TestCreateUser(t *testing.T) {
	t.Parallel()
	svc := newService(t)
	ctx := context.Background()

	res, err := svc.Create(ctx, transport.CreateUserRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Phone:     "+4412345",
	})
	require.NoError(t, err)
	assert.NotZero(t, res.ID)
	assert.Equal(t, "Ada Lovelace", res.FullName)
	assert.Equal(t, models.StatusActive, res.Status)
}

func TestCreateUserValidation(t *testing.T) {
	t.Parallel()
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, transport.CreateUserRequest{LastName: "NoFirst", Email: "x@example.com"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Create(ctx, transport.CreateUserRequest{FirstName: "NoEmail"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	t.Parallel()
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, transport.CreateUserRequest{FirstName: "A", Email: "dup@example.com"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, transport.CreateUserRequest{FirstName: "B", Email: "dup@example.com"})
	assert.ErrorIs(t, err, apperr.ErrDuplicateResource)
}

func TestGetUser(t *testing.T) {
	t.Parallel()
	svc := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, transport.CreateUserRequest{FirstName: "Grace", Email: "grace@example.com"})
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "grace@example.com", got.Email)

	_, err = svc.Get(ctx, created.ID+100)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestExists(t *testing.T) {
	t.Parallel()
	svc := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, transport.CreateUserRequest{FirstName: "E", Email: "e@example.com"})
	require.NoError(t, err)

	ok, err := svc.Exists(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Exists(ctx, created.ID+100)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdateUserPartial(t *testing.T) {
	t.Parallel()
	svc := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, transport.CreateUserRequest{
		FirstName: "Old",
		LastName:  "Name",
		Email:     "u@example.com",
		Phone:     "111",
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, transport.UpdateUserRequest{
		FirstName: strPtr("New"),
		Address:   strPtr("1 Main St"),
	})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.FirstName)
	assert.Equal(t, "Name", updated.LastName)
	assert.Equal(t, "111", updated.Phone)
	assert.Equal(t, "1 Main St", updated.Address)
}

func TestUpdateUserStatus(t *testing.T) {
	t.Parallel()
	svc := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, transport.CreateUserRequest{FirstName: "S", Email: "s@example.com"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, transport.UpdateUserRequest{Status: strPtr(models.StatusInactive)})
	require.NoError(t, err)
	assert.Equal(t, models.StatusInactive, updated.Status)

	_, err = svc.Update(ctx, created.ID, transport.UpdateUserRequest{Status: strPtr("BOGUS")})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestListUsers(t *testing.T) {
	t.Parallel()
	svc := newService(t)
	ctx := context.Background()

	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		_, err := svc.Create(ctx, transport.CreateUserRequest{FirstName: "U", Email: email})
		require.NoError(t, err)
	}

	all, err := svc.List(ctx, repo.ListFilter{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	page, err := svc.List(ctx, repo.ListFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "c@x.com", page[0].Email)
}

func TestListUsersFilters(t *testing.T) {
	t.Parallel()
	svc := newService(t)
	ctx := context.Background()

	ada, err := svc.Create(ctx, transport.CreateUserRequest{FirstName: "Ada", LastName: "Lovelace", Email: "ada@x.com"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, transport.CreateUserRequest{FirstName: "Grace", LastName: "Hopper", Email: "grace@x.com"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, ada.ID, transport.UpdateUserRequest{Status: strPtr(models.StatusInactive)})
	require.NoError(t, err)

	inactive, err := svc.List(ctx, repo.ListFilter{Status: models.StatusInactive})
	require.NoError(t, err)
	require.Len(t, inactive, 1)
	assert.Equal(t, "ada@x.com", inactive[0].Email)

	byName, err := svc.List(ctx, repo.ListFilter{Query: "hopper"})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "grace@x.com", byName[0].Email)

	_, err = svc.List(ctx, repo.ListFilter{Status: "BOGUS"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestGetByEmail(t *testing.T) {
	t.Parallel()
	svc := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, transport.CreateUserRequest{FirstName: "Ada", Email: "ada@x.com"})
	require.NoError(t, err)

	got, err := svc.GetByEmail(ctx, "ada@x.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = svc.GetByEmail(ctx, "ghost@x.com")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.GetByEmail(ctx, "")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestDeleteUser(t *testing.T) {
	t.Parallel()
	svc := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, transport.CreateUserRequest{FirstName: "Ada", Email: "ada@x.com"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, created.ID), apperr.ErrNotFound)
}
