package user

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/medgrid/emr-admin/internal/email"
	"github.com/medgrid/emr-admin/internal/model"
	"github.com/medgrid/emr-admin/internal/service/lookup"
	apperrors "github.com/medgrid/emr-admin/pkg/errors"
)

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return errors.New("duplicate email")
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, errors.New("user not found")
}

func (r *fakeUserRepo) Update(_ context.Context, user *model.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return errors.New("user not found")
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	user, ok := r.users[id]
	if !ok {
		return errors.New("user not found")
	}
	user.PasswordHash = passwordHash
	return nil
}

func (r *fakeUserRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	user, ok := r.users[id]
	if !ok {
		return errors.New("user not found")
	}
	user.Active = active
	return nil
}

func (r *fakeUserRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.users[id]; !ok {
		return errors.New("user not found")
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) List(_ context.Context) ([]*model.User, error) {
	out := make([]*model.User, 0, len(r.users))
	for _, user := range r.users {
		out = append(out, user)
	}
	return out, nil
}

type fakeRoleRepo struct {
	roles []*model.Role
}

func (r *fakeRoleRepo) Get(_ context.Context, id uuid.UUID) (*model.Role, error) {
	for _, role := range r.roles {
		if role.ID == id {
			return role, nil
		}
	}
	return nil, errors.New("role not found")
}

func (r *fakeRoleRepo) GetByName(_ context.Context, name string) (*model.Role, error) {
	for _, role := range r.roles {
		if role.Name == name {
			return role, nil
		}
	}
	return nil, errors.New("role not found")
}

func (r *fakeRoleRepo) List(_ context.Context) ([]*model.Role, error) {
	return r.roles, nil
}

func newTestService(t *testing.T) (*Service, *fakeUserRepo, *model.Role) {
	t.Helper()

	staffRole := &model.Role{ID: uuid.New(), Name: model.RoleStaff}
	adminRole := &model.Role{ID: uuid.New(), Name: model.RoleAdmin}
	lookupSvc := lookup.NewService(&fakeRoleRepo{roles: []*model.Role{staffRole, adminRole}}, nil, nil)

	repo := newFakeUserRepo()
	return NewService(repo, lookupSvc, email.NewNoopService()), repo, staffRole
}

func TestCreateHashesPasswordAndActivates(t *testing.T) {
	svc, _, role := newTestService(t)

	user, err := svc.Create(context.Background(), &model.CreateUserRequest{
		Email:    "jane@example.com",
		Name:     "Jane Doe",
		Password: "hunter2hunter2",
		RoleID:   role.ID.String(),
	})
	require.NoError(t, err)

	assert.True(t, user.Active)
	assert.NotEqual(t, "hunter2hunter2", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("hunter2hunter2")))
}

func TestCreateRejectsShortPassword(t *testing.T) {
	svc, _, role := newTestService(t)

	_, err := svc.Create(context.Background(), &model.CreateUserRequest{
		Email:    "jane@example.com",
		Name:     "Jane Doe",
		Password: "short",
		RoleID:   role.ID.String(),
	})

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrValidation, appErr.Code)
}

func TestPatchToggleActive(t *testing.T) {
	svc, repo, role := newTestService(t)

	user, err := svc.Create(context.Background(), &model.CreateUserRequest{
		Email:    "jane@example.com",
		Name:     "Jane Doe",
		Password: "hunter2hunter2",
		RoleID:   role.ID.String(),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Patch(context.Background(), &model.PatchUserRequest{
		Action: model.ActionToggleActive,
		ID:     user.ID.String(),
	}))
	assert.False(t, repo.users[user.ID].Active)

	require.NoError(t, svc.Patch(context.Background(), &model.PatchUserRequest{
		Action: model.ActionToggleActive,
		ID:     user.ID.String(),
	}))
	assert.True(t, repo.users[user.ID].Active)
}

func TestPatchUnknownActionRejected(t *testing.T) {
	svc, _, _ := newTestService(t)

	err := svc.Patch(context.Background(), &model.PatchUserRequest{
		Action: "archive",
		ID:     uuid.New().String(),
	})

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrUnsupportedAction, appErr.Code)
	assert.Contains(t, appErr.Message, "archive")
}

func TestPatchEditUpdatesOnlyGivenFields(t *testing.T) {
	svc, repo, role := newTestService(t)

	user, err := svc.Create(context.Background(), &model.CreateUserRequest{
		Email:    "jane@example.com",
		Name:     "Jane Doe",
		Password: "hunter2hunter2",
		RoleID:   role.ID.String(),
	})
	require.NoError(t, err)

	newName := "Jane Smith"
	require.NoError(t, svc.Patch(context.Background(), &model.PatchUserRequest{
		Action: model.ActionEdit,
		ID:     user.ID.String(),
		Name:   &newName,
	}))

	updated := repo.users[user.ID]
	assert.Equal(t, "Jane Smith", updated.Name)
	assert.Equal(t, "jane@example.com", updated.Email)
	assert.Equal(t, role.ID, updated.RoleID)
}

func TestImportCSVPartialSuccess(t *testing.T) {
	svc, repo, _ := newTestService(t)

	csv := strings.Join([]string{
		"Name,Email,Phone,Role,Password",
		"Jane Doe,jane@example.com,555-0100,staff,changeme123",
		"No Role,norole@example.com,,astronaut,changeme123",
		"John Doe,john@example.com,,admin,changeme123",
	}, "\n")

	result, err := svc.ImportCSV(context.Background(), csv)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Success)
	assert.Equal(t, 1, result.Errors)
	assert.Len(t, repo.users, 2)
}

func TestListFiltersAndSorts(t *testing.T) {
	svc, _, role := newTestService(t)

	for _, spec := range []struct{ name, email string }{
		{"Charlie", "charlie@example.com"},
		{"Alice", "alice@example.com"},
		{"Bob", "bob@example.com"},
	} {
		_, err := svc.Create(context.Background(), &model.CreateUserRequest{
			Email:    spec.email,
			Name:     spec.name,
			Password: "hunter2hunter2",
			RoleID:   role.ID.String(),
		})
		require.NoError(t, err)
	}

	view, err := svc.List(context.Background(), model.ListQuery{Sort: "name", Dir: "asc"}, model.UserFilters{})
	require.NoError(t, err)

	require.Equal(t, 3, view.Total)
	assert.Equal(t, "Alice", view.Rows[0].Name)
	assert.Equal(t, "Bob", view.Rows[1].Name)
	assert.Equal(t, "Charlie", view.Rows[2].Name)

	filtered, err := svc.List(context.Background(), model.ListQuery{Search: "alice"}, model.UserFilters{})
	require.NoError(t, err)
	require.Equal(t, 1, filtered.Total)
	assert.Equal(t, "Alice", filtered.Rows[0].Name)
}

func TestExportCSVIncludesHeaderAndRows(t *testing.T) {
	svc, _, role := newTestService(t)

	_, err := svc.Create(context.Background(), &model.CreateUserRequest{
		Email:    "jane@example.com",
		Name:     "Jane Doe",
		Password: "hunter2hunter2",
		RoleID:   role.ID.String(),
	})
	require.NoError(t, err)

	csv, err := svc.ExportCSV(context.Background(), model.ListQuery{}, model.UserFilters{})
	require.NoError(t, err)

	lines := strings.Split(csv, "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Email")
	assert.Contains(t, lines[1], "jane@example.com")
	assert.Contains(t, lines[1], "staff")
}
