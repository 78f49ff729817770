package handler

import "github.com/groupbuy/backend/internal/interfaces/http/dto"

// The types below only shape the generated OpenAPI document. Handlers write
// envelopes through the dto.New*Response constructors.

// APIResponse is the envelope every endpoint returns, with Data typed per route.
// @Description Response envelope
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// ErrorResponse is the envelope of a failed request.
// @Description Error envelope
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// @Description Whether the caller currently participates
type JoinedData struct {
	Joined bool `json:"joined"`
}
