package model

import "strings"

// Source identifies the upstream database a finding came from.
type Source string

// Upstream sources.
const (
	SourceOSV Source = "osv"
	SourceNVD Source = "nvd"
)

// Severity is the normalized five level severity scale.
type Severity string

// Severity levels.
const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityUnknown  Severity = "unknown"
)

// Severities lists the scale from most to least severe.
var Severities = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityUnknown}

// ParseSeverity maps an upstream label onto the scale. Anything unrecognized is unknown.
func ParseSeverity(label string) Severity {
	switch Severity(strings.ToLower(strings.TrimSpace(label))) {
	case SeverityCritical:
		return SeverityCritical
	case SeverityHigh:
		return SeverityHigh
	case SeverityMedium, "moderate":
		return SeverityMedium
	case SeverityLow:
		return SeverityLow
	default:
		return SeverityUnknown
	}
}

// Vulnerability is a finding recorded against a component.
type Vulnerability struct {
	ID                  int64    `json:"id"`
	ComponentID         int64    `json:"component_id"`
	CveID               string   `json:"cve_id"`
	Source              Source   `json:"source"`
	Severity            Severity `json:"severity"`
	Summary             string   `json:"summary"`
	IsFalsePositive     bool     `json:"is_false_positive"`
	FalsePositiveReason *string  `json:"false_positive_reason"`
}

// NewVulnerability is a finding staged for insertion. Staged rows are never false positives.
type NewVulnerability struct {
	CveID    string
	Source   Source
	Severity Severity
	Summary  string
}

// FindingKey is the per-component natural key of a vulnerability.
type FindingKey struct {
	CveID  string
	Source Source
}

// Key returns the natural key of the stored vulnerability.
func (v Vulnerability) Key() FindingKey {
	return FindingKey{CveID: v.CveID, Source: v.Source}
}

// FalsePositiveUpdate is the body of PATCH /vulnerabilities/:id/false_positive.
type FalsePositiveUpdate struct {
	IsFalsePositive bool    `json:"is_false_positive"`
	Reason          *string `json:"reason"`
}

// NormalizedReason returns the reason to persist; it is always nil when the flag is cleared.
func (u FalsePositiveUpdate) NormalizedReason() *string {
	if !u.IsFalsePositive {
		return nil
	}
	return u.Reason
}

// RefreshOutcome reports what a refresh changed.
type RefreshOutcome struct {
	Component *Component      `json:"component"`
	Added     []Vulnerability `json:"added"`
}
