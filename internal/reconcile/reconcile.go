// Package reconcile decides which freshly fetched findings are new for a component.
package reconcile

import "github.com/ortelius/component-monitor/model"

// Reconcile returns the findings in fetched whose (id, source) is not already present in
// existing, staged for insertion. Repeats within fetched are staged once. Existing rows,
// including their false-positive flags, are never touched.
func Reconcile(existing []model.Vulnerability, fetched []model.Finding) []model.NewVulnerability {
	present := make(map[model.FindingKey]bool, len(existing))
	for _, v := range existing {
		present[v.Key()] = true
	}

	var staged []model.NewVulnerability
	for _, f := range fetched {
		if present[f.Key()] {
			continue
		}
		present[f.Key()] = true

		severity := f.Severity
		if severity == "" {
			severity = model.SeverityUnknown
		}
		staged = append(staged, model.NewVulnerability{
			CveID:    f.ID,
			Source:   f.Source,
			Severity: severity,
			Summary:  f.Summary,
		})
	}
	return staged
}
