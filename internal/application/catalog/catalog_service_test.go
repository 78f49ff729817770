package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/groupbuy/backend/internal/domain/shared"
	"github.com/groupbuy/backend/internal/infrastructure/persistence"
	"github.com/groupbuy/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCategoryService(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	svc := NewCategoryService(persistence.NewGormCategoryRepository(db), zap.NewNop())
	ctx := context.Background()

	_, err := svc.CreateCategory(ctx, CreateCategoryRequest{Code: "books", Name: "教材", NameEn: "Textbooks", SortOrder: 2})
	require.NoError(t, err)
	food, err := svc.CreateCategory(ctx, CreateCategoryRequest{Code: "Food", Name: "美食", Color: "#FF6B6B", SortOrder: 1})
	require.NoError(t, err)
	assert.Equal(t, "food", food.Code)
	assert.Equal(t, "#FF6B6B", food.Color)

	_, err = svc.CreateCategory(ctx, CreateCategoryRequest{Code: "food", Name: "Duplicate"})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	_, err = svc.CreateCategory(ctx, CreateCategoryRequest{Code: "snacks", Name: "Snacks", Color: "red"})
	assert.Equal(t, "INVALID_COLOR", shared.ErrorCode(err))

	categories, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "food", categories[0].Code)
	assert.Equal(t, "books", categories[1].Code)
}

func TestPickupLocationService(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	svc := NewPickupLocationService(persistence.NewGormPickupLocationRepository(db), zap.NewNop())
	ctx := context.Background()

	gate, err := svc.CreatePickupLocation(ctx, CreatePickupLocationRequest{Name: "North Gate", Address: "1 Campus Road"})
	require.NoError(t, err)
	assert.True(t, gate.IsActive)
	_, err = svc.CreatePickupLocation(ctx, CreatePickupLocationRequest{Name: "Library"})
	require.NoError(t, err)

	_, err = svc.CreatePickupLocation(ctx, CreatePickupLocationRequest{Name: "  "})
	assert.Equal(t, "INVALID_LOCATION_NAME", shared.ErrorCode(err))

	retired, err := svc.SetPickupLocationActive(ctx, gate.ID, false)
	require.NoError(t, err)
	assert.False(t, retired.IsActive)

	active, err := svc.ListPickupLocations(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Library", active[0].Name)

	all, err := svc.ListPickupLocations(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.SetPickupLocationActive(ctx, uuid.New(), true)
	assert.Equal(t, "PICKUP_LOCATION_NOT_FOUND", shared.ErrorCode(err))
}
