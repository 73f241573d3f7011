package components

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/ortelius/component-monitor/model"
	"github.com/ortelius/component-monitor/util"
)

// Reader is the read side of the monitor.
type Reader interface {
	List(ctx context.Context) ([]model.Component, error)
	Get(ctx context.Context, id int64) (*model.Component, error)
}

// ResolveComponents lists components ordered by name, ecosystem and version.
// Empty filters match everything.
func ResolveComponents(ctx context.Context, reader Reader, componentType, ecosystem string) (interface{}, error) {
	list, err := reader.List(ctx)
	if err != nil {
		return nil, err
	}

	var filtered []model.Component
	for _, c := range list {
		if componentType != "" && !strings.EqualFold(string(c.Type), componentType) {
			continue
		}
		if ecosystem != "" && !strings.EqualFold(string(c.Ecosystem), ecosystem) {
			continue
		}
		filtered = append(filtered, c)
	}
	SortComponents(filtered)

	results := make([]map[string]interface{}, 0, len(filtered))
	for _, c := range filtered {
		results = append(results, ComponentToMap(c))
	}
	return results, nil
}

// ResolveComponent returns one component, or null when the id is unknown.
func ResolveComponent(ctx context.Context, reader Reader, id int64) (interface{}, error) {
	c, err := reader.Get(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ComponentToMap(*c), nil
}

// SortComponents orders components by name and ecosystem, then by version using the
// ecosystem's version rules. Versions that cannot be parsed compare as strings.
func SortComponents(list []model.Component) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if a.Ecosystem != b.Ecosystem {
			return a.Ecosystem < b.Ecosystem
		}
		if c, ok := util.CompareVersions(a.Ecosystem, a.Version, b.Version); ok {
			return c < 0
		}
		return a.Version < b.Version
	})
}

// ComponentToMap flattens a component into the shape of ComponentType.
func ComponentToMap(c model.Component) map[string]interface{} {
	vulns := make([]map[string]interface{}, 0, len(c.Vulnerabilities))
	open := 0
	for _, v := range c.Vulnerabilities {
		if !v.IsFalsePositive {
			open++
		}
		vulns = append(vulns, map[string]interface{}{
			"id":                    v.ID,
			"cve_id":                v.CveID,
			"source":                string(v.Source),
			"severity":              string(v.Severity),
			"summary":               v.Summary,
			"is_false_positive":     v.IsFalsePositive,
			"false_positive_reason": v.FalsePositiveReason,
		})
	}

	return map[string]interface{}{
		"id":              c.ID,
		"name":            c.Name,
		"version":         c.Version,
		"type":            string(c.Type),
		"ecosystem":       string(c.Ecosystem),
		"identifier":      c.Identifier,
		"notes":           c.Notes,
		"last_updated":    c.LastUpdated.UTC().Format(time.RFC3339),
		"vulnerabilities": vulns,
		"open_count":      open,
	}
}
