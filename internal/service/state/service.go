package state

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medgrid/emr-admin/internal/model"
	"github.com/medgrid/emr-admin/internal/repository"
	"github.com/medgrid/emr-admin/internal/service/lookup"
	apperrors "github.com/medgrid/emr-admin/pkg/errors"
	"github.com/medgrid/emr-admin/pkg/table"
)

type Servicer interface {
	List(ctx context.Context, q model.ListQuery, f model.StateFilters) (*table.View[*model.State], error)
	Create(ctx context.Context, req *model.CreateStateRequest) (*model.State, error)
	Patch(ctx context.Context, req *model.PatchStateRequest) error
	ExportCSV(ctx context.Context, q model.ListQuery, f model.StateFilters) (string, error)
	ImportCSV(ctx context.Context, text string) (table.ImportResult, error)
	CSVTemplate() string
}

type Service struct {
	repo   repository.StateRepository
	lookup *lookup.Service
}

func NewService(repo repository.StateRepository, lookupSvc *lookup.Service) *Service {
	return &Service{repo: repo, lookup: lookupSvc}
}

func (s *Service) engine() *table.Engine[*model.State] {
	return &table.Engine[*model.State]{
		Columns: []table.Column[*model.State]{
			{Key: "name", Title: "Name", Resolve: func(st *model.State) string { return st.Name }, Sortable: true, Searchable: true},
			{Key: "code", Title: "Code", Resolve: func(st *model.State) string { return st.Code }, Sortable: true, Searchable: true},
			{Key: "status", Title: "Status", Resolve: func(st *model.State) string { return statusLabel(st.Active) }, Sortable: true},
			{Key: "created_at", Title: "Created", Type: table.TypeNumeric,
				Numeric: func(st *model.State) float64 { return float64(st.CreatedAt.UnixMilli()) },
				Resolve: func(st *model.State) string { return st.CreatedAt.Format(time.RFC3339) }, Sortable: true},
		},
		Filters: map[string]table.Predicate[*model.State]{
			"status": table.ActiveFlag(func(st *model.State) bool { return st.Active }),
		},
	}
}

func (s *Service) List(ctx context.Context, q model.ListQuery, f model.StateFilters) (*table.View[*model.State], error) {
	states, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list states: %w", err)
	}

	view := s.engine().Apply(states, table.Query{
		Search:  q.Search,
		Filters: table.FilterSpec{"status": f.Status},
		Sort:    table.SortSpec{Column: q.Sort, Direction: table.Direction(q.Dir)},
		Page:    table.PageSpec{Page: q.Page, PageSize: q.PageSize},
	})
	return &view, nil
}

func (s *Service) Create(ctx context.Context, req *model.CreateStateRequest) (*model.State, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Code) == "" {
		return nil, apperrors.Validation("name and code are required")
	}

	state := &model.State{
		Name:   req.Name,
		Code:   strings.ToUpper(req.Code),
		Active: true,
	}

	if err := s.repo.Create(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to create state: %w", err)
	}

	s.lookup.Invalidate()
	return state, nil
}

func (s *Service) Patch(ctx context.Context, req *model.PatchStateRequest) error {
	id, err := uuid.Parse(req.ID)
	if err != nil {
		return apperrors.Validation("invalid state ID")
	}

	defer s.lookup.Invalidate()

	switch req.Action {
	case model.ActionEdit:
		state, err := s.repo.Get(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get state: %w", err)
		}
		if req.Name != nil {
			state.Name = *req.Name
		}
		if req.Code != nil {
			state.Code = strings.ToUpper(*req.Code)
		}
		if err := s.repo.Update(ctx, state); err != nil {
			return fmt.Errorf("failed to update state: %w", err)
		}
		return nil
	case model.ActionToggleActive:
		state, err := s.repo.Get(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get state: %w", err)
		}
		return s.repo.SetActive(ctx, id, !state.Active)
	case model.ActionSoftDelete:
		return s.repo.SoftDelete(ctx, id)
	default:
		return apperrors.UnsupportedAction(req.Action)
	}
}

func (s *Service) ExportCSV(ctx context.Context, q model.ListQuery, f model.StateFilters) (string, error) {
	states, err := s.repo.List(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list states: %w", err)
	}

	engine := s.engine()
	filtered := engine.Filter(states, q.Search, table.FilterSpec{"status": f.Status})
	sorted := engine.Sort(filtered, table.SortSpec{Column: q.Sort, Direction: table.Direction(q.Dir)})

	return engine.ExportCSV(sorted, "name", "code", "status", "created_at"), nil
}

func (s *Service) ImportCSV(ctx context.Context, text string) (table.ImportResult, error) {
	return table.ImportCSV(ctx, text, func(ctx context.Context, payload map[string]string) error {
		_, err := s.Create(ctx, &model.CreateStateRequest{
			Name: payload["name"],
			Code: payload["code"],
		})
		return err
	})
}

func (s *Service) CSVTemplate() string {
	return table.Template(
		[]string{"Name", "Code"},
		[]string{"California", "CA"},
	)
}

func statusLabel(active bool) string {
	if active {
		return "active"
	}
	return "inactive"
}
