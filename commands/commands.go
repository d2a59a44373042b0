package commands

import (
	"fmt"
	"sync"

	"github.com/mobile-next/touchsweep/surface"
)

// CommandResponse represents a standardized response format for all commands
type CommandResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data interface{}) *CommandResponse {
	return &CommandResponse{
		Status: "ok",
		Data:   data,
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(err error) *CommandResponse {
	return &CommandResponse{
		Status: "error",
		Error:  err.Error(),
	}
}

var (
	registryMu sync.RWMutex
	// surfaceRegistry holds the surfaces created through surface commands.
	// It is set once at startup via SetRegistry.
	surfaceRegistry *surface.Registry
)

// SetRegistry sets the process-wide surface registry.
// This should be called once at application startup (main.go or server start).
func SetRegistry(registry *surface.Registry) {
	registryMu.Lock()
	defer registryMu.Unlock()
	surfaceRegistry = registry
}

// GetRegistry returns the current surface registry.
// Returns nil if SetRegistry has not been called yet.
func GetRegistry() *surface.Registry {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return surfaceRegistry
}

func requireRegistry() (*surface.Registry, error) {
	registry := GetRegistry()
	if registry == nil {
		return nil, fmt.Errorf("surface registry is not initialized")
	}
	return registry, nil
}

// FindSurface looks up a surface by ID in the process-wide registry
func FindSurface(surfaceID string) (*surface.Surface, error) {
	registry, err := requireRegistry()
	if err != nil {
		return nil, err
	}
	return registry.Get(surfaceID)
}
