// Package dashboard implements the resolvers for dashboard metrics.
package dashboard

import (
	"context"
	"sort"
	"time"

	"github.com/ortelius/component-monitor/graphql/modules/components"
	"github.com/ortelius/component-monitor/model"
)

// ResolveOverview counts components and vulnerabilities.
func ResolveOverview(ctx context.Context, reader components.Reader) (interface{}, error) {
	list, err := reader.List(ctx)
	if err != nil {
		return nil, err
	}

	libraries, products, vulns, falsePositives := 0, 0, 0, 0
	var lastUpdated time.Time
	for _, c := range list {
		if c.Type == model.ComponentTypeProduct {
			products++
		} else {
			libraries++
		}
		lastUpdated = model.MaxTime(lastUpdated, c.LastUpdated)
		for _, v := range c.Vulnerabilities {
			vulns++
			if v.IsFalsePositive {
				falsePositives++
			}
		}
	}

	overview := map[string]interface{}{
		"total_components":      len(list),
		"total_libraries":       libraries,
		"total_products":        products,
		"total_vulnerabilities": vulns,
		"false_positives":       falsePositives,
		"last_updated":          nil,
	}
	if !lastUpdated.IsZero() {
		overview["last_updated"] = lastUpdated.UTC().Format(time.RFC3339)
	}
	return overview, nil
}

// ResolveSeverityDistribution counts open vulnerabilities per severity. False positives are excluded.
func ResolveSeverityDistribution(ctx context.Context, reader components.Reader) (interface{}, error) {
	list, err := reader.List(ctx)
	if err != nil {
		return nil, err
	}

	dist := make(map[string]interface{}, len(model.Severities))
	counts := make(map[model.Severity]int, len(model.Severities))
	for _, c := range list {
		for _, v := range c.Vulnerabilities {
			if v.IsFalsePositive {
				continue
			}
			counts[model.ParseSeverity(string(v.Severity))]++
		}
	}
	for _, s := range model.Severities {
		dist[string(s)] = counts[s]
	}
	return dist, nil
}

// ResolveTopRisks returns the components with the most open critical and high findings.
func ResolveTopRisks(ctx context.Context, reader components.Reader, limit int) (interface{}, error) {
	list, err := reader.List(ctx)
	if err != nil {
		return nil, err
	}

	type risk struct {
		c                     model.Component
		critical, high, total int
	}
	risks := make([]risk, 0, len(list))
	for _, c := range list {
		r := risk{c: c}
		for _, v := range c.Vulnerabilities {
			if v.IsFalsePositive {
				continue
			}
			r.total++
			switch v.Severity {
			case model.SeverityCritical:
				r.critical++
			case model.SeverityHigh:
				r.high++
			}
		}
		if r.total > 0 {
			risks = append(risks, r)
		}
	}

	sort.SliceStable(risks, func(i, j int) bool {
		if risks[i].critical != risks[j].critical {
			return risks[i].critical > risks[j].critical
		}
		if risks[i].high != risks[j].high {
			return risks[i].high > risks[j].high
		}
		return risks[i].total > risks[j].total
	})
	if limit >= 0 && len(risks) > limit {
		risks = risks[:limit]
	}

	results := make([]map[string]interface{}, 0, len(risks))
	for _, r := range risks {
		results = append(results, map[string]interface{}{
			"id":             r.c.ID,
			"name":           r.c.Name,
			"version":        r.c.Version,
			"critical_count": r.critical,
			"high_count":     r.high,
			"total_vulns":    r.total,
		})
	}
	return results, nil
}
