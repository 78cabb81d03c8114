package lookup

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/medgrid/emr-admin/internal/model"
	"github.com/medgrid/emr-admin/internal/repository"
)

const (
	cacheTTL        = 5 * time.Minute
	cleanupInterval = 15 * time.Minute
)

// Service serves the small reference collections (roles, states,
// cities) used for id-to-label resolution in filters, sorts and table
// cells. Collections are fetched once and cached in process.
type Service struct {
	roleRepo  repository.RoleRepository
	stateRepo repository.StateRepository
	cityRepo  repository.CityRepository
	cache     *cache.Cache
}

func NewService(roleRepo repository.RoleRepository, stateRepo repository.StateRepository, cityRepo repository.CityRepository) *Service {
	return &Service{
		roleRepo:  roleRepo,
		stateRepo: stateRepo,
		cityRepo:  cityRepo,
		cache:     cache.New(cacheTTL, cleanupInterval),
	}
}

func (s *Service) Roles(ctx context.Context) ([]*model.Role, error) {
	if cached, ok := s.cache.Get("roles"); ok {
		return cached.([]*model.Role), nil
	}

	roles, err := s.roleRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}

	s.cache.Set("roles", roles, cache.DefaultExpiration)
	return roles, nil
}

func (s *Service) States(ctx context.Context) ([]*model.State, error) {
	if cached, ok := s.cache.Get("states"); ok {
		return cached.([]*model.State), nil
	}

	states, err := s.stateRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list states: %w", err)
	}

	s.cache.Set("states", states, cache.DefaultExpiration)
	return states, nil
}

// Cities returns all cities, optionally scoped to a parent state.
func (s *Service) Cities(ctx context.Context, stateID *uuid.UUID) ([]*model.City, error) {
	key := "cities"
	if stateID != nil {
		key = "cities:" + stateID.String()
	}
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]*model.City), nil
	}

	cities, err := s.cityRepo.List(ctx, stateID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cities: %w", err)
	}

	s.cache.Set(key, cities, cache.DefaultExpiration)
	return cities, nil
}

// RoleNames returns an id-to-name map for resolving role cells.
func (s *Service) RoleNames(ctx context.Context) (map[uuid.UUID]string, error) {
	roles, err := s.Roles(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(roles))
	for _, role := range roles {
		names[role.ID] = role.Name
	}
	return names, nil
}

// StateNames returns an id-to-name map for resolving state cells.
func (s *Service) StateNames(ctx context.Context) (map[uuid.UUID]string, error) {
	states, err := s.States(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(states))
	for _, state := range states {
		names[state.ID] = state.Name
	}
	return names, nil
}

// CityNames returns an id-to-name map for resolving city cells.
func (s *Service) CityNames(ctx context.Context) (map[uuid.UUID]string, error) {
	cities, err := s.Cities(ctx, nil)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(cities))
	for _, city := range cities {
		names[city.ID] = city.Name
	}
	return names, nil
}

// Invalidate drops cached collections after a reference entity write.
func (s *Service) Invalidate() {
	s.cache.Flush()
}
