package preference

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/medgrid/emr-admin/internal/model"
	"github.com/medgrid/emr-admin/pkg/kvstore"
)

// Servicer persists per-user display preferences: saved searches and
// column visibility keyed by entity, plus a small session profile.
type Servicer interface {
	SavedSearches(ctx context.Context, userID uuid.UUID, entity string) ([]model.SavedSearch, error)
	SaveSearch(ctx context.Context, userID uuid.UUID, entity string, search model.SavedSearch) (*model.SavedSearch, error)
	DeleteSearch(ctx context.Context, userID uuid.UUID, entity string, searchID uuid.UUID) error
	ColumnVisibility(ctx context.Context, userID uuid.UUID, entity string) (model.ColumnVisibility, error)
	SetColumnVisibility(ctx context.Context, userID uuid.UUID, entity string, cols model.ColumnVisibility) error
	SessionProfile(ctx context.Context, userID uuid.UUID) (*model.SessionProfile, error)
	SetSessionProfile(ctx context.Context, userID uuid.UUID, profile *model.SessionProfile)
}

type Service struct {
	store kvstore.Store
}

func NewService(store kvstore.Store) *Service {
	return &Service{store: store}
}

func searchesKey(userID uuid.UUID, entity string) string {
	return fmt.Sprintf("user:%s:prefs:%s:searches", userID, entity)
}

func columnsKey(userID uuid.UUID, entity string) string {
	return fmt.Sprintf("user:%s:prefs:%s:columns", userID, entity)
}

func sessionNameKey(userID uuid.UUID) string {
	return fmt.Sprintf("session:%s:name", userID)
}

func sessionRoleKey(userID uuid.UUID) string {
	return fmt.Sprintf("session:%s:role", userID)
}

// SavedSearches returns the stored list, or an empty list when nothing
// has been saved yet or the stored payload no longer decodes.
func (s *Service) SavedSearches(ctx context.Context, userID uuid.UUID, entity string) ([]model.SavedSearch, error) {
	raw, ok, err := s.store.Get(ctx, searchesKey(userID, entity))
	if err != nil {
		return nil, fmt.Errorf("failed to load saved searches: %w", err)
	}
	if !ok {
		return []model.SavedSearch{}, nil
	}

	var searches []model.SavedSearch
	if err := json.Unmarshal([]byte(raw), &searches); err != nil {
		log.Warn().Err(err).Str("entity", entity).Msg("discarding corrupt saved searches")
		return []model.SavedSearch{}, nil
	}
	return searches, nil
}

func (s *Service) SaveSearch(ctx context.Context, userID uuid.UUID, entity string, search model.SavedSearch) (*model.SavedSearch, error) {
	searches, err := s.SavedSearches(ctx, userID, entity)
	if err != nil {
		return nil, err
	}

	if search.ID == uuid.Nil {
		search.ID = uuid.New()
	}
	if search.Filters == nil {
		search.Filters = map[string]string{}
	}

	replaced := false
	for i := range searches {
		if searches[i].ID == search.ID || searches[i].Name == search.Name {
			searches[i] = search
			replaced = true
			break
		}
	}
	if !replaced {
		searches = append(searches, search)
	}

	if err := s.persist(ctx, searchesKey(userID, entity), searches); err != nil {
		return nil, err
	}
	return &search, nil
}

func (s *Service) DeleteSearch(ctx context.Context, userID uuid.UUID, entity string, searchID uuid.UUID) error {
	searches, err := s.SavedSearches(ctx, userID, entity)
	if err != nil {
		return err
	}

	kept := searches[:0]
	for _, search := range searches {
		if search.ID != searchID {
			kept = append(kept, search)
		}
	}
	return s.persist(ctx, searchesKey(userID, entity), kept)
}

func (s *Service) ColumnVisibility(ctx context.Context, userID uuid.UUID, entity string) (model.ColumnVisibility, error) {
	raw, ok, err := s.store.Get(ctx, columnsKey(userID, entity))
	if err != nil {
		return nil, fmt.Errorf("failed to load column visibility: %w", err)
	}
	if !ok {
		return model.ColumnVisibility{}, nil
	}

	var cols model.ColumnVisibility
	if err := json.Unmarshal([]byte(raw), &cols); err != nil {
		log.Warn().Err(err).Str("entity", entity).Msg("discarding corrupt column visibility")
		return model.ColumnVisibility{}, nil
	}
	return cols, nil
}

func (s *Service) SetColumnVisibility(ctx context.Context, userID uuid.UUID, entity string, cols model.ColumnVisibility) error {
	if cols == nil {
		cols = model.ColumnVisibility{}
	}
	return s.persist(ctx, columnsKey(userID, entity), cols)
}

func (s *Service) SessionProfile(ctx context.Context, userID uuid.UUID) (*model.SessionProfile, error) {
	name, _, err := s.store.Get(ctx, sessionNameKey(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to load session profile: %w", err)
	}
	role, _, err := s.store.Get(ctx, sessionRoleKey(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to load session profile: %w", err)
	}
	return &model.SessionProfile{Name: name, Role: role}, nil
}

// SetSessionProfile is best effort. A store failure here must not fail
// the login that triggered it, so errors are logged and swallowed.
func (s *Service) SetSessionProfile(ctx context.Context, userID uuid.UUID, profile *model.SessionProfile) {
	if err := s.store.Set(ctx, sessionNameKey(userID), profile.Name); err != nil {
		log.Warn().Err(err).Str("user_id", userID.String()).Msg("failed to store session name")
	}
	if err := s.store.Set(ctx, sessionRoleKey(userID), profile.Role); err != nil {
		log.Warn().Err(err).Str("user_id", userID.String()).Msg("failed to store session role")
	}
}

func (s *Service) persist(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}
	if err := s.store.Set(ctx, key, string(payload)); err != nil {
		return fmt.Errorf("failed to store preferences: %w", err)
	}
	return nil
}
