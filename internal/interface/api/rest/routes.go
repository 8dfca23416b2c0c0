package rest

import "user-directory-api/internal/application/services"

const (
	// api
	RouteApi   = "/api"
	RouteApiV1 = "/api/v1"

	RouteUsers = "/users"
	RouteUser  = RouteUsers + "/:user_id"

	// static
	RouteFiles = services.FilesRoute + "/*filepath"

	// ops
	RouteHealth  = RouteApiV1 + "/healthz"
	RouteReady   = RouteApiV1 + "/readyz"
	RouteMetrics = RouteApiV1 + "/metrics"
)
