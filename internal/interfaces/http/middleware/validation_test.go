package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/groupbuy/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listingRequest struct {
	Title         string           `json:"title" binding:"required,max=10"`
	Price         decimal.Decimal  `json:"price" binding:"required,money"`
	OriginalPrice *decimal.Decimal `json:"original_price" binding:"omitempty,money"`
	ExpiresAt     time.Time        `json:"expires_at" binding:"required,future"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	RegisterValidations(v)
	return v
}

func TestMoneyAndFutureTags(t *testing.T) {
	v := newValidator()
	future := time.Now().Add(time.Hour)
	past := time.Now().Add(-time.Hour)
	over := decimal.RequireFromString("19.999")

	tests := []struct {
		name    string
		req     listingRequest
		invalid []string
	}{
		{"valid", listingRequest{Title: "Snacks", Price: decimal.RequireFromString("12.50"), ExpiresAt: future}, nil},
		{"trailing zeros are fine", listingRequest{Title: "Snacks", Price: decimal.RequireFromString("3.000"), ExpiresAt: future}, nil},
		{"zero price", listingRequest{Title: "Snacks", Price: decimal.Zero, ExpiresAt: future}, []string{"price"}},
		{"negative price", listingRequest{Title: "Snacks", Price: decimal.NewFromInt(-1), ExpiresAt: future}, []string{"price"}},
		{"three decimals", listingRequest{Title: "Snacks", Price: decimal.NewFromInt(5), OriginalPrice: &over, ExpiresAt: future}, []string{"original_price"}},
		{"past deadline", listingRequest{Title: "Snacks", Price: decimal.NewFromInt(5), ExpiresAt: past}, []string{"expires_at"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.req)
			if tt.invalid == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var fields []string
			for _, d := range ValidationDetails(err) {
				fields = append(fields, d.Field)
			}
			assert.ElementsMatch(t, tt.invalid, fields)
		})
	}
}

func TestHandleValidationError(t *testing.T) {
	SetupValidator()

	router := gin.New()
	router.Use(RequestID())
	router.POST("/test", func(c *gin.Context) {
		var req listingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(req.Title))
	})

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("field details", func(t *testing.T) {
		w := post(`{"title": "A very long title", "price": "0", "expires_at": "2001-01-01T00:00:00Z"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.NotEmpty(t, resp.Error.RequestID)
		assert.Len(t, resp.Error.Details, 3)
		for _, d := range resp.Error.Details {
			assert.NotEqual(t, "Invalid value", d.Message, d.Field)
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		w := post(`{"title": `)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeInvalidJSON)
	})

	t.Run("valid body", func(t *testing.T) {
		expires := time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339)
		w := post(`{"title": "Snacks", "price": 9.9, "expires_at": "` + expires + `"}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
