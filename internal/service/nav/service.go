package nav

import (
	"github.com/medgrid/emr-admin/internal/model"
)

// Servicer resolves the sidebar menu for a role. Roles form a closed
// set; anything else is an error rather than a default menu.
type Servicer interface {
	MenuForRole(role string) ([]model.MenuSection, error)
}

type Service struct{}

func NewService() *Service {
	return &Service{}
}

var (
	dashboardSection = model.MenuSection{
		Heading: "Overview",
		Items: []model.MenuItem{
			{Label: "Dashboard", Path: "/dashboard", Icon: "home"},
		},
	}

	patientSection = model.MenuSection{
		Heading: "Care",
		Items: []model.MenuItem{
			{Label: "Patients", Path: "/patients", Icon: "users"},
		},
	}

	adminSection = model.MenuSection{
		Heading: "Administration",
		Items: []model.MenuItem{
			{Label: "Users", Path: "/users", Icon: "shield"},
			{Label: "States", Path: "/states", Icon: "map"},
			{Label: "Cities", Path: "/cities", Icon: "map-pin"},
		},
	}

	profileSection = model.MenuSection{
		Heading: "Account",
		Items: []model.MenuItem{
			{Label: "Profile", Path: "/profile", Icon: "user"},
		},
	}
)

func (s *Service) MenuForRole(role string) ([]model.MenuSection, error) {
	switch role {
	case model.RoleAdmin:
		return []model.MenuSection{dashboardSection, patientSection, adminSection, profileSection}, nil
	case model.RoleDoctor, model.RoleNurse:
		return []model.MenuSection{dashboardSection, patientSection, profileSection}, nil
	case model.RoleStaff:
		return []model.MenuSection{dashboardSection, profileSection}, nil
	default:
		return nil, &model.ErrUnknownRole{Name: role}
	}
}
