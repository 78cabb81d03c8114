package patient

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
	List(ctx context.Context, q model.ListQuery, f model.PatientFilters) (*table.View[*model.Patient], error)
	Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	Create(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error)
	Patch(ctx context.Context, req *model.PatchPatientRequest) error
	ExportCSV(ctx context.Context, q model.ListQuery, f model.PatientFilters) (string, error)
	ImportCSV(ctx context.Context, text string) (table.ImportResult, error)
	CSVTemplate() string
}

type Service struct {
	repo   repository.PatientRepository
	lookup *lookup.Service
}

func NewService(repo repository.PatientRepository, lookupSvc *lookup.Service) *Service {
	return &Service{repo: repo, lookup: lookupSvc}
}

// engine builds the patients table engine. State and city cells resolve
// to the referenced entity's display name.
func (s *Service) engine(stateNames, cityNames map[uuid.UUID]string) *table.Engine[*model.Patient] {
	return &table.Engine[*model.Patient]{
		Columns: []table.Column[*model.Patient]{
			{Key: "name", Title: "Name", Resolve: func(p *model.Patient) string { return p.Name }, Sortable: true, Searchable: true},
			{Key: "email", Title: "Email", Resolve: func(p *model.Patient) string { return deref(p.Email) }, Sortable: true, Searchable: true},
			{Key: "phone", Title: "Phone", Resolve: func(p *model.Patient) string { return deref(p.Phone) }, Searchable: true},
			{Key: "address", Title: "Address", Resolve: func(p *model.Patient) string { return deref(p.Address) }, Searchable: true},
			{Key: "zip", Title: "Zip", Resolve: func(p *model.Patient) string { return deref(p.Zip) }, Sortable: true},
			{Key: "state", Title: "State", Resolve: func(p *model.Patient) string { return refName(stateNames, p.StateID) }, Sortable: true},
			{Key: "city", Title: "City", Resolve: func(p *model.Patient) string { return refName(cityNames, p.CityID) }, Sortable: true},
			{Key: "status", Title: "Status", Resolve: func(p *model.Patient) string { return statusLabel(p.Active) }, Sortable: true},
			{Key: "created_at", Title: "Created", Type: table.TypeNumeric,
				Numeric: func(p *model.Patient) float64 { return float64(p.CreatedAt.UnixMilli()) },
				Resolve: func(p *model.Patient) string { return p.CreatedAt.Format(time.RFC3339) }, Sortable: true},
		},
		Filters: map[string]table.Predicate[*model.Patient]{
			"phone":  table.ContainsFold(func(p *model.Patient) string { return deref(p.Phone) }),
			"zip":    table.ContainsFold(func(p *model.Patient) string { return deref(p.Zip) }),
			"state":  table.Equals(func(p *model.Patient) string { return refID(p.StateID) }),
			"city":   table.Equals(func(p *model.Patient) string { return refID(p.CityID) }),
			"status": table.ActiveFlag(func(p *model.Patient) bool { return p.Active }),
		},
	}
}

func (s *Service) List(ctx context.Context, q model.ListQuery, f model.PatientFilters) (*table.View[*model.Patient], error) {
	patients, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}

	engine, err := s.buildEngine(ctx)
	if err != nil {
		return nil, err
	}

	view := engine.Apply(patients, table.Query{
		Search:  q.Search,
		Filters: patientFilterSpec(f),
		Sort:    table.SortSpec{Column: q.Sort, Direction: table.Direction(q.Dir)},
		Page:    table.PageSpec{Page: q.Page, PageSize: q.PageSize},
	})
	return &view, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return patient, nil
}

func (s *Service) Create(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperrors.Validation("name is required")
	}

	patient := &model.Patient{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		Zip:     req.Zip,
		Active:  true,
	}

	var err error
	if patient.StateID, err = parseRef(req.StateID, "state"); err != nil {
		return nil, err
	}
	if patient.CityID, err = parseRef(req.CityID, "city"); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}
	return patient, nil
}

func (s *Service) Patch(ctx context.Context, req *model.PatchPatientRequest) error {
	id, err := uuid.Parse(req.ID)
	if err != nil {
		return apperrors.Validation("invalid patient ID")
	}

	switch req.Action {
	case model.ActionEdit:
		return s.edit(ctx, id, req)
	case model.ActionToggleActive:
		patient, err := s.repo.Get(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get patient: %w", err)
		}
		return s.repo.SetActive(ctx, id, !patient.Active)
	case model.ActionSoftDelete:
		return s.repo.SoftDelete(ctx, id)
	default:
		return apperrors.UnsupportedAction(req.Action)
	}
}

func (s *Service) edit(ctx context.Context, id uuid.UUID, req *model.PatchPatientRequest) error {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get patient: %w", err)
	}

	if req.Name != nil {
		patient.Name = *req.Name
	}
	if req.Email != nil {
		patient.Email = req.Email
	}
	if req.Phone != nil {
		patient.Phone = req.Phone
	}
	if req.Address != nil {
		patient.Address = req.Address
	}
	if req.Zip != nil {
		patient.Zip = req.Zip
	}
	if req.StateID != nil {
		if patient.StateID, err = parseRef(req.StateID, "state"); err != nil {
			return err
		}
	}
	if req.CityID != nil {
		if patient.CityID, err = parseRef(req.CityID, "city"); err != nil {
			return err
		}
	}

	if err := s.repo.Update(ctx, patient); err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	return nil
}

func (s *Service) ExportCSV(ctx context.Context, q model.ListQuery, f model.PatientFilters) (string, error) {
	patients, err := s.repo.List(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list patients: %w", err)
	}

	engine, err := s.buildEngine(ctx)
	if err != nil {
		return "", err
	}

	filtered := engine.Filter(patients, q.Search, patientFilterSpec(f))
	sorted := engine.Sort(filtered, table.SortSpec{Column: q.Sort, Direction: table.Direction(q.Dir)})

	return engine.ExportCSV(sorted, "name", "email", "phone", "address", "zip", "state", "city", "status", "created_at"), nil
}

func (s *Service) ImportCSV(ctx context.Context, text string) (table.ImportResult, error) {
	return table.ImportCSV(ctx, text, func(ctx context.Context, payload map[string]string) error {
		req := &model.CreatePatientRequest{Name: payload["name"]}

		for key, dst := range map[string]**string{
			"email":   &req.Email,
			"phone":   &req.Phone,
			"address": &req.Address,
			"zip":     &req.Zip,
		} {
			if value := payload[key]; value != "" {
				v := value
				*dst = &v
			}
		}

		if name := payload["state"]; name != "" {
			state, err := s.stateByName(ctx, name)
			if err != nil {
				return err
			}
			id := state.ID.String()
			req.StateID = &id

			if cityName := payload["city"]; cityName != "" {
				city, err := s.cityByName(ctx, state.ID, cityName)
				if err != nil {
					return err
				}
				cid := city.ID.String()
				req.CityID = &cid
			}
		}

		_, err := s.Create(ctx, req)
		return err
	})
}

func (s *Service) CSVTemplate() string {
	return table.Template(
		[]string{"Name", "Email", "Phone", "Address", "Zip", "State", "City"},
		[]string{"John Smith", "john@example.com", "555-0101", "123 Main St", "90001", "California", "Los Angeles"},
	)
}

func (s *Service) buildEngine(ctx context.Context) (*table.Engine[*model.Patient], error) {
	stateNames, err := s.lookup.StateNames(ctx)
	if err != nil {
		return nil, err
	}
	cityNames, err := s.lookup.CityNames(ctx)
	if err != nil {
		return nil, err
	}
	return s.engine(stateNames, cityNames), nil
}

func (s *Service) stateByName(ctx context.Context, name string) (*model.State, error) {
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

func (s *Service) cityByName(ctx context.Context, stateID uuid.UUID, name string) (*model.City, error) {
	cities, err := s.lookup.Cities(ctx, &stateID)
	if err != nil {
		return nil, err
	}
	for _, city := range cities {
		if strings.EqualFold(city.Name, name) {
			return city, nil
		}
	}
	return nil, apperrors.Validation(fmt.Sprintf("unknown city %q", name))
}

func patientFilterSpec(f model.PatientFilters) table.FilterSpec {
	return table.FilterSpec{
		"phone":  f.Phone,
		"zip":    f.Zip,
		"state":  f.StateID,
		"city":   f.CityID,
		"status": f.Status,
	}
}

func parseRef(s *string, label string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, apperrors.Validation(fmt.Sprintf("invalid %s ID", label))
	}
	return &id, nil
}

func refName(names map[uuid.UUID]string, id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return names[*id]
}

func refID(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
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
