// Package restapi provides the main router for the REST endpoints and the GraphQL endpoint.
package restapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/ortelius/component-monitor/restapi/modules/analysis"
	"github.com/ortelius/component-monitor/restapi/modules/components"
	"github.com/ortelius/component-monitor/restapi/modules/vulnerabilities"
)

// Service is everything the routes need from the monitor.
type Service interface {
	analysis.Service
	components.Service
	vulnerabilities.Service
}

// SetupRoutes configures all REST API routes and the GraphQL endpoint.
func SetupRoutes(app *fiber.App, svc Service, schema graphql.Schema) {
	app.Post("/analyze", analysis.Analyze(svc))
	app.Post("/generate_identifier", analysis.GenerateIdentifier(svc))

	componentGroup := app.Group("/components")
	componentGroup.Post("/", components.Create(svc))
	componentGroup.Get("/", components.List(svc))
	componentGroup.Post("/refresh_all", components.RefreshAll(svc))
	componentGroup.Get("/:id", components.Get(svc))
	componentGroup.Delete("/:id", components.Delete(svc))
	componentGroup.Post("/:id/refresh", components.Refresh(svc))

	app.Patch("/vulnerabilities/:id/false_positive", vulnerabilities.SetFalsePositive(svc))

	app.Post("/graphql", GraphQLHandler(schema))
}
