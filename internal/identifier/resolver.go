// Package identifier derives the upstream lookup key for a component: a package URL for
// libraries and a CPE name for products.
package identifier

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ortelius/component-monitor/model"
	"github.com/ortelius/component-monitor/util"
)

// CPELookup searches the CPE catalog by keyword and returns candidate CPE names in catalog order.
type CPELookup interface {
	SearchCPE(ctx context.Context, keyword string) ([]string, error)
}

// Resolver turns component descriptions into identifiers.
type Resolver struct {
	cpes   CPELookup
	logger *zap.Logger
}

// NewResolver returns a Resolver that uses cpes for product lookups.
func NewResolver(cpes CPELookup, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{cpes: cpes, logger: logger}
}

// Resolve returns the identifier for d. A non-blank override always wins.
// Products with no matching CPE resolve to an empty string without error.
func (r *Resolver) Resolve(ctx context.Context, d model.Description) (string, error) {
	if d == nil {
		return "", model.Validationf("component description is required")
	}
	if override := strings.TrimSpace(d.Override()); override != "" {
		return override, nil
	}

	switch v := d.(type) {
	case model.LibraryDescription:
		return r.resolveLibrary(v)
	case model.ProductDescription:
		return r.resolveProduct(ctx, v)
	default:
		return "", model.Validationf("unknown component type")
	}
}

func (r *Resolver) resolveLibrary(d model.LibraryDescription) (string, error) {
	if d.Ecosystem == "" {
		return "", model.Validationf("ecosystem is required for libraries")
	}
	purl := util.BuildPURL(d.Ecosystem, d.Name, d.Version)
	if _, err := util.ParsePURL(purl); err != nil {
		r.logger.Debug("Constructed purl does not parse", zap.String("purl", purl), zap.Error(err))
	}
	return purl, nil
}

func (r *Resolver) resolveProduct(ctx context.Context, d model.ProductDescription) (string, error) {
	if r.cpes == nil {
		return "", nil
	}
	candidates, err := r.cpes.SearchCPE(ctx, d.Name)
	if err != nil {
		return "", fmt.Errorf("cpe lookup for %s: %w", d.Name, err)
	}
	for _, cpe := range candidates {
		if strings.Contains(cpe, d.Version) {
			return cpe, nil
		}
	}
	r.logger.Debug("No CPE matched product version", zap.String("name", d.Name), zap.String("version", d.Version), zap.Int("candidates", len(candidates)))
	return "", nil
}
