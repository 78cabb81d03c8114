package nav

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medgrid/emr-admin/internal/model"
)

func TestMenuForRoleAdmin(t *testing.T) {
	svc := NewService()

	sections, err := svc.MenuForRole(model.RoleAdmin)
	require.NoError(t, err)

	var paths []string
	for _, section := range sections {
		for _, item := range section.Items {
			paths = append(paths, item.Path)
		}
	}
	assert.Contains(t, paths, "/users")
	assert.Contains(t, paths, "/states")
	assert.Contains(t, paths, "/cities")
	assert.Contains(t, paths, "/patients")
}

func TestMenuForRoleClinical(t *testing.T) {
	svc := NewService()

	for _, role := range []string{model.RoleDoctor, model.RoleNurse} {
		sections, err := svc.MenuForRole(role)
		require.NoError(t, err, role)

		var paths []string
		for _, section := range sections {
			for _, item := range section.Items {
				paths = append(paths, item.Path)
			}
		}
		assert.Contains(t, paths, "/patients", role)
		assert.NotContains(t, paths, "/users", role)
	}
}

func TestMenuForRoleStaffHasNoAdminOrPatients(t *testing.T) {
	svc := NewService()

	sections, err := svc.MenuForRole(model.RoleStaff)
	require.NoError(t, err)

	for _, section := range sections {
		for _, item := range section.Items {
			assert.NotEqual(t, "/users", item.Path)
			assert.NotEqual(t, "/patients", item.Path)
		}
	}
}

func TestMenuForRoleUnknown(t *testing.T) {
	svc := NewService()

	sections, err := svc.MenuForRole("superuser")
	assert.Nil(t, sections)

	var unknownErr *model.ErrUnknownRole
	require.True(t, errors.As(err, &unknownErr))
	assert.Equal(t, "superuser", unknownErr.Name)
}
