// Package analysis implements the REST handlers that analyze a component without storing it.
package analysis

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/ortelius/component-monitor/model"
)

// SourceLabel names the upstream databases in /analyze responses.
const SourceLabel = "nvd.nist.gov + osv.dev"

// Service is the part of the monitor used by these handlers.
type Service interface {
	GenerateIdentifier(ctx context.Context, d model.Description) (string, error)
	Analyze(ctx context.Context, d model.Description) (*model.AnalysisResult, error)
}

// Response is the body returned by POST /analyze.
type Response struct {
	Name            string              `json:"name"`
	Version         string              `json:"version"`
	Type            model.ComponentType `json:"type"`
	Identifier      string              `json:"identifier"`
	Vulnerabilities []string            `json:"vulnerabilities"`
	Source          string              `json:"source"`
	FixedVersions   map[string][]string `json:"fixed_versions,omitempty"`
}

// ParseDescription decodes and validates a component description from the request body.
func ParseDescription(c *fiber.Ctx) (model.Description, error) {
	var req model.ComponentRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, model.Validationf("invalid request body: %v", err)
	}
	return req.Describe()
}

// Analyze handles POST /analyze
func Analyze(svc Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := ParseDescription(c)
		if err != nil {
			return err
		}

		result, err := svc.Analyze(c.UserContext(), d)
		if err != nil {
			return err
		}

		resp := Response{
			Name:            d.ComponentName(),
			Version:         d.ComponentVersion(),
			Type:            d.Kind(),
			Identifier:      result.Identifier,
			Vulnerabilities: result.IDs(),
			Source:          SourceLabel,
		}
		for _, f := range result.Findings {
			if f.OSV == nil || len(f.OSV.FixedVersions) == 0 {
				continue
			}
			if resp.FixedVersions == nil {
				resp.FixedVersions = map[string][]string{}
			}
			resp.FixedVersions[f.ID] = f.OSV.FixedVersions
		}
		return c.JSON(resp)
	}
}

// GenerateIdentifier handles POST /generate_identifier
func GenerateIdentifier(svc Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := ParseDescription(c)
		if err != nil {
			return err
		}

		identifier, err := svc.GenerateIdentifier(c.UserContext(), d)
		if err != nil {
			return model.Validationf("%v", err)
		}
		return c.JSON(fiber.Map{"identifier": identifier})
	}
}
