package city

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
	List(ctx context.Context, q model.ListQuery, f model.CityFilters) (*table.View[*model.City], error)
	Create(ctx context.Context, req *model.CreateCityRequest) (*model.City, error)
	Patch(ctx context.Context, req *model.PatchCityRequest) error
	ExportCSV(ctx context.Context, q model.ListQuery, f model.CityFilters) (string, error)
	ImportCSV(ctx context.Context, text string) (table.ImportResult, error)
	CSVTemplate() string
}

type Service struct {
	repo   repository.CityRepository
	lookup *lookup.Service
}

func NewService(repo repository.CityRepository, lookupSvc *lookup.Service) *Service {
	return &Service{repo: repo, lookup: lookupSvc}
}

func (s *Service) engine(stateNames map[uuid.UUID]string) *table.Engine[*model.City] {
	return &table.Engine[*model.City]{
		Columns: []table.Column[*model.City]{
			{Key: "name", Title: "Name", Resolve: func(c *model.City) string { return c.Name }, Sortable: true, Searchable: true},
			{Key: "state", Title: "State", Resolve: func(c *model.City) string { return stateNames[c.StateID] }, Sortable: true},
			{Key: "status", Title: "Status", Resolve: func(c *model.City) string { return statusLabel(c.Active) }, Sortable: true},
			{Key: "created_at", Title: "Created", Type: table.TypeNumeric,
				Numeric: func(c *model.City) float64 { return float64(c.CreatedAt.UnixMilli()) },
				Resolve: func(c *model.City) string { return c.CreatedAt.Format(time.RFC3339) }, Sortable: true},
		},
		Filters: map[string]table.Predicate[*model.City]{
			"state":  table.Equals(func(c *model.City) string { return c.StateID.String() }),
			"status": table.ActiveFlag(func(c *model.City) bool { return c.Active }),
		},
	}
}

func (s *Service) List(ctx context.Context, q model.ListQuery, f model.CityFilters) (*table.View[*model.City], error) {
	cities, err := s.repo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list cities: %w", err)
	}

	stateNames, err := s.lookup.StateNames(ctx)
	if err != nil {
		return nil, err
	}

	view := s.engine(stateNames).Apply(cities, table.Query{
		Search:  q.Search,
		Filters: cityFilterSpec(f),
		Sort:    table.SortSpec{Column: q.Sort, Direction: table.Direction(q.Dir)},
		Page:    table.PageSpec{Page: q.Page, PageSize: q.PageSize},
	})
	return &view, nil
}

func (s *Service) Create(ctx context.Context, req *model.CreateCityRequest) (*model.City, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperrors.Validation("name is required")
	}
	stateID, err := uuid.Parse(req.StateID)
	if err != nil {
		return nil, apperrors.Validation("invalid state ID")
	}

	city := &model.City{
		Name:    req.Name,
		StateID: stateID,
		Active:  true,
	}

	if err := s.repo.Create(ctx, city); err != nil {
		return nil, fmt.Errorf("failed to create city: %w", err)
	}

	s.lookup.Invalidate()
	return city, nil
}

func (s *Service) Patch(ctx context.Context, req *model.PatchCityRequest) error {
	id, err := uuid.Parse(req.ID)
	if err != nil {
		return apperrors.Validation("invalid city ID")
	}

	defer s.lookup.Invalidate()

	switch req.Action {
	case model.ActionEdit:
		city, err := s.repo.Get(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get city: %w", err)
		}
		if req.Name != nil {
			city.Name = *req.Name
		}
		if req.StateID != nil {
			stateID, err := uuid.Parse(*req.StateID)
			if err != nil {
				return apperrors.Validation("invalid state ID")
			}
			city.StateID = stateID
		}
		if err := s.repo.Update(ctx, city); err != nil {
			return fmt.Errorf("failed to update city: %w", err)
		}
		return nil
	case model.ActionToggleActive:
		city, err := s.repo.Get(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get city: %w", err)
		}
		return s.repo.SetActive(ctx, id, !city.Active)
	case model.ActionSoftDelete:
		return s.repo.SoftDelete(ctx, id)
	default:
		return apperrors.UnsupportedAction(req.Action)
	}
}

func (s *Service) ExportCSV(ctx context.Context, q model.ListQuery, f model.CityFilters) (string, error) {
	cities, err := s.repo.List(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to list cities: %w", err)
	}

	stateNames, err := s.lookup.StateNames(ctx)
	if err != nil {
		return "", err
	}

	engine := s.engine(stateNames)
	filtered := engine.Filter(cities, q.Search, cityFilterSpec(f))
	sorted := engine.Sort(filtered, table.SortSpec{Column: q.Sort, Direction: table.Direction(q.Dir)})

	return engine.ExportCSV(sorted, "name", "state", "status", "created_at"), nil
}

func (s *Service) ImportCSV(ctx context.Context, text string) (table.ImportResult, error) {
	return table.ImportCSV(ctx, text, func(ctx context.Context, payload map[string]string) error {
		state, err := s.stateByName(ctx, payload["state"])
		if err != nil {
			return err
		}
		_, err = s.Create(ctx, &model.CreateCityRequest{
			Name:    payload["name"],
			StateID: state.ID.String(),
		})
		return err
	})
}

func (s *Service) CSVTemplate() string {
	return table.Template(
		[]string{"Name", "State"},
		[]string{"Los Angeles", "California"},
	)
}

func (s *Service) stateByName(ctx context.Context, name string) (*model.State, error) {
	if name == "" {
		return nil, apperrors.Validation("state is required")
	}
	states, err := s.lookup.States(ctx)
	if err != nil {
		return nil, err
	}
	for _, state := range states {
		if strings.EqualFold(state.Name, name) || strings.EqualFold(state.Code, name) {
			return state, nil
		}
	}
	return nil, apperrors.Validation(fmt.Sprintf("unknown state %q", name))
}

func cityFilterSpec(f model.CityFilters) table.FilterSpec {
	return table.FilterSpec{
		"state":  f.StateID,
		"status": f.Status,
	}
}

func statusLabel(active bool) string {
	if active {
		return "active"
	}
	return "inactive"
}
