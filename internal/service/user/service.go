package user

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/medgrid/emr-admin/internal/email"
	"github.com/medgrid/emr-admin/internal/model"
	"github.com/medgrid/emr-admin/internal/repository"
	"github.com/medgrid/emr-admin/internal/service/lookup"
	apperrors "github.com/medgrid/emr-admin/pkg/errors"
	"github.com/medgrid/emr-admin/pkg/table"
)

const bcryptCost = 12

type Servicer interface {
	List(ctx context.Context, q model.ListQuery, f model.UserFilters) (*table.View[*model.User], error)
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	Create(ctx context.Context, req *model.CreateUserRequest) (*model.User, error)
	Patch(ctx context.Context, req *model.PatchUserRequest) error
	ExportCSV(ctx context.Context, q model.ListQuery, f model.UserFilters) (string, error)
	ImportCSV(ctx context.Context, text string) (table.ImportResult, error)
	CSVTemplate() string
}

type Service struct {
	repo     repository.UserRepository
	lookup   *lookup.Service
	emailSvc email.Service
}

func NewService(repo repository.UserRepository, lookupSvc *lookup.Service, emailSvc email.Service) *Service {
	return &Service{
		repo:     repo,
		lookup:   lookupSvc,
		emailSvc: emailSvc,
	}
}

// engine builds the users table engine with role names resolved
// against the given lookup map.
func (s *Service) engine(roleNames map[uuid.UUID]string) *table.Engine[*model.User] {
	return &table.Engine[*model.User]{
		Columns: []table.Column[*model.User]{
			{Key: "name", Title: "Name", Resolve: func(u *model.User) string { return u.Name }, Sortable: true, Searchable: true},
			{Key: "email", Title: "Email", Resolve: func(u *model.User) string { return u.Email }, Sortable: true, Searchable: true},
			{Key: "phone", Title: "Phone", Resolve: func(u *model.User) string { return deref(u.Phone) }, Searchable: true},
			{Key: "role", Title: "Role", Resolve: func(u *model.User) string { return roleNames[u.RoleID] }, Sortable: true},
			{Key: "status", Title: "Status", Resolve: func(u *model.User) string { return statusLabel(u.Active) }, Sortable: true},
			{Key: "created_at", Title: "Created", Type: table.TypeNumeric,
				Numeric: func(u *model.User) float64 { return float64(u.CreatedAt.UnixMilli()) },
				Resolve: func(u *model.User) string { return u.CreatedAt.Format(time.RFC3339) }, Sortable: true},
		},
		Filters: map[string]table.Predicate[*model.User]{
			"role":   table.Equals(func(u *model.User) string { return u.RoleID.String() }),
			"phone":  table.ContainsFold(func(u *model.User) string { return deref(u.Phone) }),
			"status": table.ActiveFlag(func(u *model.User) bool { return u.Active }),
		},
	}
}

func (s *Service) List(ctx context.Context, q model.ListQuery, f model.UserFilters) (*table.View[*model.User], error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	roleNames, err := s.lookup.RoleNames(ctx)
	if err != nil {
		return nil, err
	}

	view := s.engine(roleNames).Apply(users, table.Query{
		Search:  q.Search,
		Filters: userFilterSpec(f),
		Sort:    table.SortSpec{Column: q.Sort, Direction: table.Direction(q.Dir)},
		Page:    table.PageSpec{Page: q.Page, PageSize: q.PageSize},
	})
	return &view, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *Service) Create(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	roleID, err := uuid.Parse(req.RoleID)
	if err != nil {
		return nil, apperrors.Validation("invalid role ID")
	}
	if len(req.Password) < 8 {
		return nil, apperrors.Validation("password must be at least 8 characters")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:        req.Email,
		Name:         req.Name,
		Phone:        req.Phone,
		PasswordHash: string(hashed),
		RoleID:       roleID,
		Active:       true,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Welcome mail is best-effort; a send failure never fails the create.
	if err := s.emailSvc.SendWelcome(ctx, user.Email, user.Name); err != nil {
		log.Warn().Err(err).Str("email", user.Email).Msg("failed to send welcome email")
	}

	return user, nil
}

func (s *Service) Patch(ctx context.Context, req *model.PatchUserRequest) error {
	id, err := uuid.Parse(req.ID)
	if err != nil {
		return apperrors.Validation("invalid user ID")
	}

	switch req.Action {
	case model.ActionEdit:
		return s.edit(ctx, id, req)
	case model.ActionToggleActive:
		user, err := s.repo.Get(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get user: %w", err)
		}
		return s.repo.SetActive(ctx, id, !user.Active)
	case model.ActionSoftDelete:
		return s.repo.SoftDelete(ctx, id)
	case model.ActionResetPassword:
		if req.Password == nil || len(*req.Password) < 8 {
			return apperrors.Validation("password must be at least 8 characters")
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcryptCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		return s.repo.UpdatePassword(ctx, id, string(hashed))
	default:
		return apperrors.UnsupportedAction(req.Action)
	}
}

func (s *Service) edit(ctx context.Context, id uuid.UUID, req *model.PatchUserRequest) error {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Phone != nil {
		user.Phone = req.Phone
	}
	if req.RoleID != nil {
		roleID, err := uuid.Parse(*req.RoleID)
		if err != nil {
			return apperrors.Validation("invalid role ID")
		}
		user.RoleID = roleID
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// ExportCSV renders the full filtered, sorted view (not just one page).
func (s *Service) ExportCSV(ctx context.Context, q model.ListQuery, f model.UserFilters) (string, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list users: %w", err)
	}

	roleNames, err := s.lookup.RoleNames(ctx)
	if err != nil {
		return "", err
	}

	engine := s.engine(roleNames)
	filtered := engine.Filter(users, q.Search, userFilterSpec(f))
	sorted := engine.Sort(filtered, table.SortSpec{Column: q.Sort, Direction: table.Direction(q.Dir)})

	return engine.ExportCSV(sorted, "name", "email", "phone", "role", "status", "created_at"), nil
}

// ImportCSV creates one user per row; a failed row is counted and the
// rest of the batch continues.
func (s *Service) ImportCSV(ctx context.Context, text string) (table.ImportResult, error) {
	return table.ImportCSV(ctx, text, func(ctx context.Context, payload map[string]string) error {
		role, err := s.roleByName(ctx, payload["role"])
		if err != nil {
			return err
		}

		req := &model.CreateUserRequest{
			Email:    payload["email"],
			Name:     payload["name"],
			Password: payload["password"],
			RoleID:   role.ID.String(),
		}
		if phone := payload["phone"]; phone != "" {
			req.Phone = &phone
		}
		if req.Email == "" || req.Name == "" {
			return apperrors.Validation("name and email are required")
		}

		_, err = s.Create(ctx, req)
		return err
	})
}

func (s *Service) CSVTemplate() string {
	return table.Template(
		[]string{"Name", "Email", "Phone", "Role", "Password"},
		[]string{"Jane Doe", "jane@example.com", "555-0100", "staff", "changeme123"},
	)
}

func (s *Service) roleByName(ctx context.Context, name string) (*model.Role, error) {
	if name == "" {
		return nil, apperrors.Validation("role is required")
	}
	roles, err := s.lookup.Roles(ctx)
	if err != nil {
		return nil, err
	}
	for _, role := range roles {
		if role.Name == name {
			return role, nil
		}
	}
	return nil, apperrors.Validation(fmt.Sprintf("unknown role %q", name))
}

func userFilterSpec(f model.UserFilters) table.FilterSpec {
	return table.FilterSpec{
		"role":   f.RoleID,
		"phone":  f.Phone,
		"status": f.Status,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func statusLabel(active bool) string {
	if active {
		return "active"
	}
	return "inactive"
}
