// Package httpkit is the routing surface modules import instead of the platform http package
package httpkit

import phttp "gscchat/internal/platform/net/http"

type (
	// Envelope is the JSON body every endpoint answers with
	Envelope = phttp.Envelope

	// Handler is the platform handler type
	Handler = phttp.Handler

	// Router is the platform router seam
	Router = phttp.Router
)
