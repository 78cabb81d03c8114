package user

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medgrid/emr-admin/internal/model"
	apperrors "github.com/medgrid/emr-admin/pkg/errors"
	"github.com/medgrid/emr-admin/pkg/table"
)

type stubService struct {
	patchErr    error
	lastPatch   *model.PatchUserRequest
	listView    *table.View[*model.User]
	exportCSV   string
	templateCSV string
}

func (s *stubService) List(_ context.Context, _ model.ListQuery, _ model.UserFilters) (*table.View[*model.User], error) {
	return s.listView, nil
}

func (s *stubService) Get(_ context.Context, _ uuid.UUID) (*model.User, error) {
	return &model.User{}, nil
}

func (s *stubService) Create(_ context.Context, _ *model.CreateUserRequest) (*model.User, error) {
	return &model.User{}, nil
}

func (s *stubService) Patch(_ context.Context, req *model.PatchUserRequest) error {
	s.lastPatch = req
	return s.patchErr
}

func (s *stubService) ExportCSV(_ context.Context, _ model.ListQuery, _ model.UserFilters) (string, error) {
	return s.exportCSV, nil
}

func (s *stubService) ImportCSV(_ context.Context, _ string) (table.ImportResult, error) {
	return table.ImportResult{Success: 1}, nil
}

func (s *stubService) CSVTemplate() string {
	return s.templateCSV
}

func setupRouter(svc *stubService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	if err := model.RegisterValidations(); err != nil {
		panic(err)
	}
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestPatchUserUnsupportedActionReturns400(t *testing.T) {
	svc := &stubService{patchErr: apperrors.UnsupportedAction("archive")}
	r := setupRouter(svc)

	body := `{"action":"archive","id":"` + uuid.New().String() + `"}`
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/users", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "archive")
}

func TestPatchUserMissingActionReturns400(t *testing.T) {
	svc := &stubService{}
	r := setupRouter(svc)

	body := `{"id":"` + uuid.New().String() + `"}`
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/users", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, svc.lastPatch)
}

func TestPatchUserValidAction(t *testing.T) {
	svc := &stubService{}
	r := setupRouter(svc)

	body := `{"action":"toggle_active","id":"` + uuid.New().String() + `"}`
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/users", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.lastPatch)
	assert.Equal(t, model.ActionToggleActive, svc.lastPatch.Action)
}

func TestListUsersReturnsPagination(t *testing.T) {
	svc := &stubService{listView: &table.View[*model.User]{
		Rows:       []*model.User{{Name: "Jane"}},
		Total:      11,
		Page:       2,
		PageSize:   10,
		TotalPages: 2,
	}}
	r := setupRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users?page=2", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":11`)
	assert.Contains(t, w.Body.String(), `"total_pages":2`)
}

func TestExportUsersSetsAttachmentHeaders(t *testing.T) {
	svc := &stubService{exportCSV: `"Name"` + "\n" + `"Jane"`}
	r := setupRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/export", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
}

func TestImportUsersAcceptsRawBody(t *testing.T) {
	svc := &stubService{}
	r := setupRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/import", strings.NewReader("Name\nJane"))
	req.Header.Set("Content-Type", "text/csv")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success_count":1`)
}
