// Package vulnerabilities implements the REST handlers for vulnerability triage.
package vulnerabilities

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/ortelius/component-monitor/model"
)

// Service is the part of the monitor used by these handlers.
type Service interface {
	SetFalsePositive(ctx context.Context, vulnID int64, update model.FalsePositiveUpdate) (*model.Vulnerability, error)
}

// SetFalsePositive handles PATCH /vulnerabilities/:id/false_positive
func SetFalsePositive(svc Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return model.Validationf("invalid id %q", c.Params("id"))
		}

		var update model.FalsePositiveUpdate
		if err := c.BodyParser(&update); err != nil {
			return model.Validationf("invalid request body: %v", err)
		}

		v, err := svc.SetFalsePositive(c.UserContext(), int64(id), update)
		if err != nil {
			return err
		}
		return c.JSON(v)
	}
}
