package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/groupbuy/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{"", http.StatusInternalServerError},
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{"INVALID_CREDENTIALS", http.StatusUnauthorized},
		{"TOKEN_EXPIRED", http.StatusUnauthorized},
		{"ACCOUNT_DISABLED", http.StatusForbidden},
		{"NOT_ORGANIZER", http.StatusForbidden},
		{"NOT_FOUND", http.StatusNotFound},
		{"GROUP_BUY_NOT_FOUND", http.StatusNotFound},
		{"USER_NOT_FOUND", http.StatusNotFound},
		{"INVALID_QUANTITY", http.StatusBadRequest},
		{"EMPTY_MESSAGE", http.StatusBadRequest},
		{"ALREADY_JOINED", http.StatusConflict},
		{"CONFLICT", http.StatusConflict},
		{"CONCURRENCY_CONFLICT", http.StatusConflict},
		{"GROUP_BUY_FULL", http.StatusUnprocessableEntity},
		{"INSUFFICIENT_BALANCE", http.StatusUnprocessableEntity},
		{"CANNOT_JOIN_OWN", http.StatusUnprocessableEntity},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{"STORAGE_UNAVAILABLE", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNewPaginatedResponse(t *testing.T) {
	resp := NewPaginatedResponse(shared.NewPaginated[string](nil, 41, 3, 20))

	body, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, true, decoded["success"])
	assert.Equal(t, []any{}, decoded["data"], "empty pages serialize as an array")
	meta := decoded["meta"].(map[string]any)
	assert.EqualValues(t, 41, meta["total"])
	assert.EqualValues(t, 3, meta["page"])
	assert.EqualValues(t, 3, meta["total_pages"])
	assert.NotContains(t, decoded, "error")
}

func TestNewValidationErrorResponse(t *testing.T) {
	resp := NewValidationErrorResponse("Request validation failed", "req-1", []ValidationDetail{
		{Field: "quantity", Message: "quantity must be at least 1", Tag: "min"},
	})

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-1", resp.Error.RequestID)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "quantity", resp.Error.Details[0].Field)
}
