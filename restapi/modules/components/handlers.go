// Package components implements the REST handlers for stored components.
package components

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/ortelius/component-monitor/internal/services"
	"github.com/ortelius/component-monitor/model"
	"github.com/ortelius/component-monitor/restapi/modules/analysis"
)

// Service is the part of the monitor used by these handlers.
type Service interface {
	Add(ctx context.Context, d model.Description) (*model.Component, bool, error)
	List(ctx context.Context) ([]model.Component, error)
	Get(ctx context.Context, id int64) (*model.Component, error)
	Delete(ctx context.Context, id int64) error
	Refresh(ctx context.Context, id int64) (*model.RefreshOutcome, error)
	RefreshAll(ctx context.Context, trigger string) (*services.RefreshSummary, error)
}

// ParseID reads the :id route parameter.
func ParseID(c *fiber.Ctx) (int64, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, model.Validationf("invalid id %q", c.Params("id"))
	}
	return int64(id), nil
}

// Create handles POST /components. It answers 201 for a new component and 200 when the
// component was already tracked.
func Create(svc Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := analysis.ParseDescription(c)
		if err != nil {
			return err
		}

		component, created, err := svc.Add(c.UserContext(), d)
		if err != nil {
			return err
		}

		status := fiber.StatusOK
		if created {
			status = fiber.StatusCreated
		}
		return c.Status(status).JSON(component)
	}
}

// List handles GET /components
func List(svc Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := svc.List(c.UserContext())
		if err != nil {
			return err
		}
		if list == nil {
			list = []model.Component{}
		}
		return c.JSON(list)
	}
}

// Get handles GET /components/:id
func Get(svc Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := ParseID(c)
		if err != nil {
			return err
		}
		component, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(component)
	}
}

// Delete handles DELETE /components/:id
func Delete(svc Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := ParseID(c)
		if err != nil {
			return err
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"detail": fmt.Sprintf("Component %d deleted successfully", id)})
	}
}

// Refresh handles POST /components/:id/refresh
func Refresh(svc Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := ParseID(c)
		if err != nil {
			return err
		}
		outcome, err := svc.Refresh(c.UserContext(), id)
		if err != nil {
			return err
		}
		if outcome.Added == nil {
			outcome.Added = []model.Vulnerability{}
		}
		return c.JSON(outcome)
	}
}

// RefreshAll handles POST /components/refresh_all
func RefreshAll(svc Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		summary, err := svc.RefreshAll(c.UserContext(), "api")
		if err != nil {
			return err
		}
		return c.JSON(summary)
	}
}
