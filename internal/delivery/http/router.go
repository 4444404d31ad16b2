package http

import (
	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures all HTTP routes
func SetupRoutes(app *fiber.App, handler *Handler) {
	// Health check
	app.Get("/health", handler.HealthCheck)

	// API v1 routes
	api := app.Group("/api/v1")
	{
		// Stateless provider proxies
		api.Get("/places/autocomplete", handler.Autocomplete)
		api.Get("/places/:placeId", handler.PlaceDetails)
		api.Post("/routes", handler.PlanRoute)
		api.Post("/polyline/decode", handler.DecodePolyline)

		// Collected training data
		api.Get("/traffic/samples", handler.GetTrafficSamples)

		// Planning sessions
		sessions := api.Group("/sessions")
		sessions.Post("/", handler.CreateSession)
		sessions.Get("/:id", handler.GetSession)
		sessions.Put("/:id/:field/text", handler.TypeText)
		sessions.Post("/:id/:field/select", handler.SelectPlace)
		sessions.Post("/:id/route", handler.RequestRoute)
		sessions.Get("/:id/route.geojson", handler.SessionRouteGeoJSON)
	}
}

// ErrorHandler renders errors as {"error": true, "message": ...}
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
