// Package util provides severity scoring, package URL and version helpers shared by the
// analysis pipeline.
package util

import (
	"strings"

	"github.com/google/osv-scanner/pkg/models"
	gocvss31 "github.com/pandatix/go-cvss/31"
	gocvss40 "github.com/pandatix/go-cvss/40"

	"github.com/ortelius/component-monitor/model"
)

// CalculateCVSSScore calculates the CVSS base score from a vector string
func CalculateCVSSScore(vectorStr string) float64 {
	if vectorStr == "" || !strings.HasPrefix(vectorStr, "CVSS:") {
		return 0
	}
	if strings.HasPrefix(vectorStr, "CVSS:3.1") || strings.HasPrefix(vectorStr, "CVSS:3.0") {
		if cvss31, err := gocvss31.ParseVector(vectorStr); err == nil {
			return cvss31.BaseScore()
		}
	}
	if strings.HasPrefix(vectorStr, "CVSS:4.0") {
		if cvss40, err := gocvss40.ParseVector(vectorStr); err == nil {
			return cvss40.Score()
		}
	}
	return 0
}

// HighestCVSSScore returns the highest base score among the CVSS v3 and v4 entries of an OSV record.
func HighestCVSSScore(entries []models.Severity) float64 {
	var highest float64
	for _, entry := range entries {
		switch string(entry.Type) {
		case "CVSS_V3", "CVSS_V4":
		default:
			continue
		}
		if score := CalculateCVSSScore(entry.Score); score > highest {
			highest = score
		}
	}
	return highest
}

// GetSeverityRating returns the severity rating for a given CVSS score
func GetSeverityRating(score float64) model.Severity {
	switch {
	case score <= 0:
		return model.SeverityUnknown
	case score < 4.0:
		return model.SeverityLow
	case score < 7.0:
		return model.SeverityMedium
	case score < 9.0:
		return model.SeverityHigh
	default:
		return model.SeverityCritical
	}
}

// OSVSeverity collapses the raw OSV severity data into the five level scale.
// Scored CVSS vectors win; the advisory database label is the fallback.
func OSVSeverity(entries []models.Severity, databaseSeverity string) model.Severity {
	if score := HighestCVSSScore(entries); score > 0 {
		return GetSeverityRating(score)
	}
	return model.ParseSeverity(databaseSeverity)
}
