package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mobile-next/touchsweep/commands"
)

// HandlerFunc is the signature for JSON-RPC method handlers
type HandlerFunc func(ctx context.Context, params json.RawMessage) (interface{}, error)

// paramsError marks a failure to decode or validate params, reported as
// ErrCodeInvalidParams rather than a server error.
type paramsError struct {
	err error
}

func (e *paramsError) Error() string {
	return e.err.Error()
}

func (e *paramsError) Unwrap() error {
	return e.err
}

func invalidParams(format string, args ...interface{}) error {
	return &paramsError{err: fmt.Errorf(format, args...)}
}

// errorCode maps a handler error to a JSON-RPC error code and title
func errorCode(err error) (int, string) {
	var pe *paramsError
	if errors.As(err, &pe) {
		return ErrCodeInvalidParams, errTitleInvalidParams
	}
	return ErrCodeServerError, errTitleServerError
}

// GetMethodRegistry returns a map of method names to handler functions
// This is used by both the HTTP server and embedded clients
func GetMethodRegistry() map[string]HandlerFunc {
	return map[string]HandlerFunc{
		"classify":        handleClassify,
		"surface_create":  handleSurfaceCreate,
		"surface_destroy": handleSurfaceDestroy,
		"surface_list":    handleSurfaceList,
		"surface_info":    handleSurfaceInfo,
		"input":           handleInput,
		"replay":          handleReplay,
	}
}

func decodeParams(params json.RawMessage, v interface{}, fields string) error {
	if len(params) == 0 {
		return invalidParams("'params' is required with fields: %s", fields)
	}
	if err := json.Unmarshal(params, v); err != nil {
		return invalidParams("invalid parameters: %v. Expected fields: %s", err, fields)
	}
	return nil
}

func requireFields(params json.RawMessage, fields ...string) error {
	var rawParams map[string]interface{}
	if err := json.Unmarshal(params, &rawParams); err != nil {
		return invalidParams("invalid parameters format")
	}

	for _, field := range fields {
		if _, exists := rawParams[field]; !exists {
			return invalidParams("'%s' is required", field)
		}
	}
	return nil
}

func commandResult(response *commands.CommandResponse) (interface{}, error) {
	if response.Status == "error" {
		return nil, fmt.Errorf("%s", response.Error)
	}
	return response.Data, nil
}

func handleClassify(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var req commands.ClassifyRequest
	if err := decodeParams(params, &req, "x1, y1, x2, y2, threshold"); err != nil {
		return nil, err
	}

	if err := requireFields(params, "x1", "y1", "x2", "y2"); err != nil {
		return nil, err
	}

	return commandResult(commands.ClassifyCommand(req))
}

func handleSurfaceCreate(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var req commands.SurfaceCreateRequest
	if len(params) > 0 {
		if err := decodeParams(params, &req, "name, threshold, data"); err != nil {
			return nil, err
		}
	}

	return commandResult(commands.SurfaceCreateCommand(req))
}

func handleSurfaceDestroy(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var req commands.SurfaceRequest
	if err := decodeParams(params, &req, "surfaceId"); err != nil {
		return nil, err
	}

	return commandResult(commands.SurfaceDestroyCommand(req))
}

func handleSurfaceList(ctx context.Context, params json.RawMessage) (interface{}, error) {
	return commandResult(commands.SurfaceListCommand())
}

func handleSurfaceInfo(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var req commands.SurfaceRequest
	if err := decodeParams(params, &req, "surfaceId"); err != nil {
		return nil, err
	}

	return commandResult(commands.SurfaceInfoCommand(req))
}

func handleInput(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var req commands.InputRequest
	if err := decodeParams(params, &req, "surfaceId, event or events"); err != nil {
		return nil, err
	}

	if req.SurfaceID == "" {
		return nil, invalidParams("'surfaceId' is required")
	}

	return commandResult(commands.InputCommand(req))
}

func handleReplay(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var req commands.ReplayRequest
	if err := decodeParams(params, &req, "paths, threshold"); err != nil {
		return nil, err
	}

	return commandResult(commands.ReplayCommand(ctx, req))
}
