// Package mcp exposes the monitor's register_query/match_document
// operations as Model Context Protocol tools, an alternate agent-facing
// front end to the same *monitor.Monitor the HTTP surface serves.
package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/fenwick-labs/percolate/internal/apperr"
)

// MCP error codes. The four below the JSON-RPC reserved range mirror
// spec.md §7's taxonomy one-to-one.
const (
	ErrCodeSchema   = -32001
	ErrCodeArgument = -32002
	ErrCodeIndex    = -32003
	ErrCodeInternal = -32004

	ErrCodeInvalidRequest = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternalError  = -32603
)

var ErrToolNotFound = errors.New("tool not found")

// MCPError represents an MCP protocol error with code and message.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// MapError converts a percolator error into an MCPError; for an
// *apperr.Error the underlying error code is prefixed to the message.
func MapError(err error) *MCPError {
	if err == nil {
		return nil
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return mapAppError(appErr)
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return &MCPError{Code: ErrCodeInternal, Message: "request canceled or timed out"}
	case errors.Is(err, ErrToolNotFound):
		return &MCPError{Code: ErrCodeMethodNotFound, Message: "tool not found"}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: err.Error()}
	}
}

func mapAppError(appErr *apperr.Error) *MCPError {
	code := ErrCodeInternal
	switch appErr.Category {
	case apperr.CategorySchema:
		code = ErrCodeSchema
	case apperr.CategoryArgument:
		code = ErrCodeArgument
	case apperr.CategoryIndex:
		code = ErrCodeIndex
	case apperr.CategoryInternal:
		code = ErrCodeInternal
	}
	return &MCPError{Code: code, Message: fmt.Sprintf("[%s] %s", appErr.Code, appErr.Message)}
}

// NewInvalidParamsError creates an error for invalid tool parameters.
func NewInvalidParamsError(msg string) *MCPError {
	return &MCPError{Code: ErrCodeInvalidParams, Message: msg}
}
