// Package module defines the contract every API module satisfies and port lookup over it
package module

import phttp "gscchat/internal/platform/net/http"

// Module mounts routes and exposes a ports bundle for cross wiring
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}
