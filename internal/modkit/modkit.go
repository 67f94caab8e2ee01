// Package modkit builds API modules from shared deps and functional options
package modkit

import "gscchat/internal/modkit/module"

// Module is the surface the API mounts; see module.Module
type Module = module.Module
