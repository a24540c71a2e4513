package http

import "github.com/labstack/echo/v4"

type Handlers struct {
	Health      *Handler
	Personas    *PersonaHandler
	Solicitudes *SolicitudHandler
	Validacion  *ValidacionHandler
	Stats       *StatsHandler
}

// Register mounts every route under /api. createGuard wraps only
// POST /api/solicitudes (idempotency).
func Register(e *echo.Echo, h Handlers, createGuard ...echo.MiddlewareFunc) {
	api := e.Group("/api")
	api.GET("/health", h.Health.Health)

	api.POST("/personas", h.Personas.Create)
	api.GET("/personas", h.Personas.List)
	api.GET("/personas/:id", h.Personas.Get)
	api.PUT("/personas/:id", h.Personas.Update)
	api.DELETE("/personas/:id", h.Personas.Deactivate)

	api.POST("/solicitudes", h.Solicitudes.Create, createGuard...)
	api.GET("/solicitudes", h.Solicitudes.List)
	api.GET("/solicitudes/:id", h.Solicitudes.Get)
	api.PATCH("/solicitudes/:id/estado", h.Solicitudes.SetState)

	api.POST("/validaciones", h.Validacion.Validate)
	api.GET("/validaciones/pendientes", h.Validacion.Pending)

	api.GET("/estadisticas", h.Stats.General)
	api.GET("/estadisticas/personas", h.Stats.Persons)
}
