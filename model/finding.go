package model

import "github.com/google/osv-scanner/pkg/models"

// Finding is a vulnerability record normalized from an upstream response.
type Finding struct {
	ID       string     `json:"id"`
	Summary  string     `json:"summary"`
	Details  string     `json:"details,omitempty"`
	Aliases  []string   `json:"aliases,omitempty"`
	Severity Severity   `json:"severity"`
	Source   Source     `json:"source"`
	OSV      *OSVDetail `json:"osv,omitempty"`
}

// OSVDetail holds the OSV specific parts of a finding. NVD findings leave it nil.
type OSVDetail struct {
	Severity         []models.Severity `json:"severity,omitempty"`
	DatabaseSeverity string            `json:"database_severity,omitempty"`
	FixedVersions    []string          `json:"fixed_versions,omitempty"`
}

// Key returns the natural key of the finding.
func (f Finding) Key() FindingKey {
	return FindingKey{CveID: f.ID, Source: f.Source}
}

// AnalysisResult is the outcome of analyzing a description without persisting it.
type AnalysisResult struct {
	Identifier string
	Source     Source
	Findings   []Finding
}

// IDs returns the finding identifiers in upstream order.
func (r AnalysisResult) IDs() []string {
	ids := make([]string, 0, len(r.Findings))
	for _, f := range r.Findings {
		ids = append(ids, f.ID)
	}
	return ids
}

// Staged converts findings into rows ready for insertion, dropping repeats within the list.
func Staged(findings []Finding) []NewVulnerability {
	seen := make(map[FindingKey]bool, len(findings))
	out := make([]NewVulnerability, 0, len(findings))
	for _, f := range findings {
		if seen[f.Key()] {
			continue
		}
		seen[f.Key()] = true
		out = append(out, NewVulnerability{CveID: f.ID, Source: f.Source, Severity: f.Severity, Summary: f.Summary})
	}
	return out
}
