package handler

import (
	"net/http"
	"testing"

	catalogapp "github.com/groupbuy/backend/internal/application/catalog"
	"github.com/groupbuy/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogHandler_Categories(t *testing.T) {
	s := newServer(t)
	alice := s.user(t, "alice", 0)
	admin := s.admin(t)
	body := map[string]any{"code": "books", "name": "图书", "name_en": "Books", "color": "#3366ff"}

	w := s.do(t, http.MethodPost, "/categories", body, alice.Token)
	testutil.AssertErrorResponse(t, w, http.StatusForbidden, "FORBIDDEN")

	w = s.do(t, http.MethodPost, "/categories", body, admin.Token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "books", testutil.DecodeData[catalogapp.CategoryResponse](t, w).Code)

	w = s.do(t, http.MethodPost, "/categories", body, admin.Token)
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/categories", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	codes := []string{}
	for _, c := range testutil.DecodeData[[]catalogapp.CategoryResponse](t, w) {
		codes = append(codes, c.Code)
	}
	assert.ElementsMatch(t, []string{"food", "books"}, codes)
}

func TestCatalogHandler_PickupLocations(t *testing.T) {
	s := newServer(t)
	alice := s.user(t, "alice", 0)
	admin := s.admin(t)

	w := s.do(t, http.MethodPost, "/pickup-locations", map[string]any{"name": "Library", "address": "2 Campus Road"}, admin.Token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	library := testutil.DecodeData[catalogapp.PickupLocationResponse](t, w)
	assert.True(t, library.IsActive)

	w = s.do(t, http.MethodPatch, "/pickup-locations/"+library.ID.String(), map[string]any{"is_active": false}, alice.Token)
	testutil.AssertErrorResponse(t, w, http.StatusForbidden, "FORBIDDEN")

	w = s.do(t, http.MethodPatch, "/pickup-locations/"+library.ID.String(), map[string]any{"is_active": false}, admin.Token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.False(t, testutil.DecodeData[catalogapp.PickupLocationResponse](t, w).IsActive)

	w = s.do(t, http.MethodGet, "/pickup-locations", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, testutil.DecodeData[[]catalogapp.PickupLocationResponse](t, w), 1)

	w = s.do(t, http.MethodGet, "/pickup-locations?all=true", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, testutil.DecodeData[[]catalogapp.PickupLocationResponse](t, w), 2)

	// inactive locations cannot be picked for new listings
	body := groupBuyBody(func(b map[string]any) { b["pickup_location_id"] = library.ID.String() })
	w = s.do(t, http.MethodPost, "/group-buys", body, alice.Token)
	testutil.AssertErrorResponse(t, w, http.StatusUnprocessableEntity, "PICKUP_LOCATION_INACTIVE")
}
