package patient

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medgrid/emr-admin/internal/model"
	"github.com/medgrid/emr-admin/internal/service/lookup"
)

type fakePatientRepo struct {
	patients map[uuid.UUID]*model.Patient
}

func newFakePatientRepo() *fakePatientRepo {
	return &fakePatientRepo{patients: make(map[uuid.UUID]*model.Patient)}
}

func (r *fakePatientRepo) Create(_ context.Context, patient *model.Patient) error {
	if patient.ID == uuid.Nil {
		patient.ID = uuid.New()
	}
	r.patients[patient.ID] = patient
	return nil
}

func (r *fakePatientRepo) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	patient, ok := r.patients[id]
	if !ok {
		return nil, errors.New("patient not found")
	}
	return patient, nil
}

func (r *fakePatientRepo) Update(_ context.Context, patient *model.Patient) error {
	r.patients[patient.ID] = patient
	return nil
}

func (r *fakePatientRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	r.patients[id].Active = active
	return nil
}

func (r *fakePatientRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	delete(r.patients, id)
	return nil
}

func (r *fakePatientRepo) List(_ context.Context) ([]*model.Patient, error) {
	out := make([]*model.Patient, 0, len(r.patients))
	for _, patient := range r.patients {
		out = append(out, patient)
	}
	return out, nil
}

type fakeStateRepo struct {
	states []*model.State
}

func (r *fakeStateRepo) Create(_ context.Context, _ *model.State) error { return nil }
func (r *fakeStateRepo) Get(_ context.Context, _ uuid.UUID) (*model.State, error) {
	return nil, errors.New("not implemented")
}
func (r *fakeStateRepo) Update(_ context.Context, _ *model.State) error            { return nil }
func (r *fakeStateRepo) SetActive(_ context.Context, _ uuid.UUID, _ bool) error    { return nil }
func (r *fakeStateRepo) SoftDelete(_ context.Context, _ uuid.UUID) error           { return nil }
func (r *fakeStateRepo) List(_ context.Context) ([]*model.State, error)            { return r.states, nil }

type fakeCityRepo struct {
	cities []*model.City
}

func (r *fakeCityRepo) Create(_ context.Context, _ *model.City) error { return nil }
func (r *fakeCityRepo) Get(_ context.Context, _ uuid.UUID) (*model.City, error) {
	return nil, errors.New("not implemented")
}
func (r *fakeCityRepo) Update(_ context.Context, _ *model.City) error         { return nil }
func (r *fakeCityRepo) SetActive(_ context.Context, _ uuid.UUID, _ bool) error { return nil }
func (r *fakeCityRepo) SoftDelete(_ context.Context, _ uuid.UUID) error        { return nil }

func (r *fakeCityRepo) List(_ context.Context, stateID *uuid.UUID) ([]*model.City, error) {
	if stateID == nil {
		return r.cities, nil
	}
	var out []*model.City
	for _, city := range r.cities {
		if city.StateID == *stateID {
			out = append(out, city)
		}
	}
	return out, nil
}

func newTestService(t *testing.T) (*Service, *fakePatientRepo, *model.State, *model.City) {
	t.Helper()

	california := &model.State{Base: model.Base{ID: uuid.New()}, Name: "California", Code: "CA", Active: true}
	nevada := &model.State{Base: model.Base{ID: uuid.New()}, Name: "Nevada", Code: "NV", Active: true}
	losAngeles := &model.City{Base: model.Base{ID: uuid.New()}, Name: "Los Angeles", StateID: california.ID, Active: true}

	lookupSvc := lookup.NewService(nil,
		&fakeStateRepo{states: []*model.State{california, nevada}},
		&fakeCityRepo{cities: []*model.City{losAngeles}},
	)

	repo := newFakePatientRepo()
	return NewService(repo, lookupSvc), repo, california, losAngeles
}

func strptr(s string) *string { return &s }

func TestCreateAndListResolvesStateName(t *testing.T) {
	svc, _, california, _ := newTestService(t)

	stateID := california.ID.String()
	_, err := svc.Create(context.Background(), &model.CreatePatientRequest{
		Name:    "John Smith",
		Zip:     strptr("90001"),
		StateID: &stateID,
	})
	require.NoError(t, err)

	csv, err := svc.ExportCSV(context.Background(), model.ListQuery{}, model.PatientFilters{})
	require.NoError(t, err)
	assert.Contains(t, csv, `"California"`)
}

func TestListFiltersByStateAndStatus(t *testing.T) {
	svc, repo, california, _ := newTestService(t)

	stateID := california.ID.String()
	inCA, err := svc.Create(context.Background(), &model.CreatePatientRequest{
		Name:    "John Smith",
		StateID: &stateID,
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), &model.CreatePatientRequest{Name: "Jane Roe"})
	require.NoError(t, err)

	view, err := svc.List(context.Background(), model.ListQuery{}, model.PatientFilters{StateID: stateID})
	require.NoError(t, err)
	require.Equal(t, 1, view.Total)
	assert.Equal(t, "John Smith", view.Rows[0].Name)

	// Deactivate and filter on status.
	require.NoError(t, repo.SetActive(context.Background(), inCA.ID, false))

	inactive, err := svc.List(context.Background(), model.ListQuery{}, model.PatientFilters{Status: "inactive"})
	require.NoError(t, err)
	require.Equal(t, 1, inactive.Total)
	assert.Equal(t, "John Smith", inactive.Rows[0].Name)
}

func TestPatchUnknownActionRejected(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	err := svc.Patch(context.Background(), &model.PatchPatientRequest{
		Action: "merge",
		ID:     uuid.New().String(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "merge")
}

func TestImportCSVResolvesStateAndCityByName(t *testing.T) {
	svc, repo, california, losAngeles := newTestService(t)

	csv := strings.Join([]string{
		"Name,Email,Phone,Address,Zip,State,City",
		"John Smith,john@example.com,555-0101,123 Main St,90001,California,Los Angeles",
		"Jane Roe,jane@example.com,,,89101,NV,",
		"Bad Row,bad@example.com,,,00000,Atlantis,",
	}, "\n")

	result, err := svc.ImportCSV(context.Background(), csv)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Success)
	assert.Equal(t, 1, result.Errors)

	var john *model.Patient
	for _, patient := range repo.patients {
		if patient.Name == "John Smith" {
			john = patient
		}
	}
	require.NotNil(t, john)
	require.NotNil(t, john.StateID)
	assert.Equal(t, california.ID, *john.StateID)
	require.NotNil(t, john.CityID)
	assert.Equal(t, losAngeles.ID, *john.CityID)
}
