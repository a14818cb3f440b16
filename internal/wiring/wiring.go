// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/quill/internal/adapters/config"
	_ "go.trai.ch/quill/internal/adapters/httpclient"
	_ "go.trai.ch/quill/internal/adapters/logger"
	_ "go.trai.ch/quill/internal/adapters/session"
	_ "go.trai.ch/quill/internal/adapters/telemetry"
	// Register app and engine nodes.
	_ "go.trai.ch/quill/internal/app"
	_ "go.trai.ch/quill/internal/engine/cache"
	_ "go.trai.ch/quill/internal/engine/query"
)
