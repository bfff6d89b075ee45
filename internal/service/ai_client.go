package service

import (
	"context"
)

// Oracle is the interface for the external scoring service
type Oracle interface {
	// Complete performs one round trip and returns the raw completion envelope
	Complete(ctx context.Context, req OracleRequest) ([]byte, error)

	// CheckConfig reports a configuration error before any call is made
	CheckConfig() error
}

// OracleRequest is a provider-neutral scoring request
type OracleRequest struct {
	System      string
	User        string
	Model       string
	Temperature float64
	MaxTokens   int
	JSONMode    bool
}
