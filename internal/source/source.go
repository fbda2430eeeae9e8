// Package source implements the per-source extraction adapters. Each
// adapter fetches one public breach-disclosure site and normalizes its
// source-specific structure into flat records.
package source

import (
	"context"

	"github.com/breachwatch/breachwatch/internal/browser"
	"github.com/breachwatch/breachwatch/internal/model"
)

// Adapter fetches and normalizes one source that is reachable with a
// plain HTTP GET.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context) ([]model.Record, error)
}

// SessionAdapter fetches and normalizes one source that needs
// script-executed pages, using a rendering session owned by the caller.
type SessionAdapter interface {
	Name() string
	Fetch(ctx context.Context, r browser.Renderer) ([]model.Record, error)
}

// urlField is the provenance field attached to records from the
// rendered sources.
const urlField = "URL"
