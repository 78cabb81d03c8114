package preference

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medgrid/emr-admin/internal/model"
	"github.com/medgrid/emr-admin/pkg/kvstore"
)

func TestSavedSearchRoundTrip(t *testing.T) {
	svc := NewService(kvstore.NewMemoryStore())
	ctx := context.Background()
	userID := uuid.New()

	saved, err := svc.SaveSearch(ctx, userID, "patients", model.SavedSearch{
		Name:    "CA inactive",
		Filters: map[string]string{"state": "CA", "status": "inactive"},
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, saved.ID)

	searches, err := svc.SavedSearches(ctx, userID, "patients")
	require.NoError(t, err)
	require.Len(t, searches, 1)
	assert.Equal(t, "CA inactive", searches[0].Name)
	assert.Equal(t, "CA", searches[0].Filters["state"])

	// Entities are isolated from each other.
	other, err := svc.SavedSearches(ctx, userID, "users")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestSaveSearchReplacesByName(t *testing.T) {
	svc := NewService(kvstore.NewMemoryStore())
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.SaveSearch(ctx, userID, "patients", model.SavedSearch{
		Name:    "active",
		Filters: map[string]string{"status": "active"},
	})
	require.NoError(t, err)

	_, err = svc.SaveSearch(ctx, userID, "patients", model.SavedSearch{
		Name:    "active",
		Filters: map[string]string{"status": "active", "state": "NY"},
	})
	require.NoError(t, err)

	searches, err := svc.SavedSearches(ctx, userID, "patients")
	require.NoError(t, err)
	require.Len(t, searches, 1)
	assert.Equal(t, "NY", searches[0].Filters["state"])
}

func TestDeleteSearch(t *testing.T) {
	svc := NewService(kvstore.NewMemoryStore())
	ctx := context.Background()
	userID := uuid.New()

	first, err := svc.SaveSearch(ctx, userID, "users", model.SavedSearch{Name: "doctors"})
	require.NoError(t, err)
	_, err = svc.SaveSearch(ctx, userID, "users", model.SavedSearch{Name: "nurses"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSearch(ctx, userID, "users", first.ID))

	searches, err := svc.SavedSearches(ctx, userID, "users")
	require.NoError(t, err)
	require.Len(t, searches, 1)
	assert.Equal(t, "nurses", searches[0].Name)
}

func TestCorruptPayloadFallsBackToEmpty(t *testing.T) {
	store := kvstore.NewMemoryStore()
	svc := NewService(store)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, store.Set(ctx, searchesKey(userID, "patients"), "{not json"))
	require.NoError(t, store.Set(ctx, columnsKey(userID, "patients"), "[1,2,3]"))

	searches, err := svc.SavedSearches(ctx, userID, "patients")
	require.NoError(t, err)
	assert.Empty(t, searches)

	cols, err := svc.ColumnVisibility(ctx, userID, "patients")
	require.NoError(t, err)
	assert.Empty(t, cols)
}

func TestColumnVisibilityRoundTrip(t *testing.T) {
	svc := NewService(kvstore.NewMemoryStore())
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, svc.SetColumnVisibility(ctx, userID, "patients", model.ColumnVisibility{
		"phone": false,
		"zip":   true,
	}))

	cols, err := svc.ColumnVisibility(ctx, userID, "patients")
	require.NoError(t, err)
	assert.False(t, cols["phone"])
	assert.True(t, cols["zip"])
}

func TestSessionProfile(t *testing.T) {
	svc := NewService(kvstore.NewMemoryStore())
	ctx := context.Background()
	userID := uuid.New()

	svc.SetSessionProfile(ctx, userID, &model.SessionProfile{Name: "Dr. Chen", Role: model.RoleDoctor})

	profile, err := svc.SessionProfile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "Dr. Chen", profile.Name)
	assert.Equal(t, model.RoleDoctor, profile.Role)
}
