package util

import (
	"testing"

	"github.com/google/osv-scanner/pkg/models"
	"github.com/stretchr/testify/assert"

	"github.com/ortelius/component-monitor/model"
)

func TestCalculateCVSSScore(t *testing.T) {
	assert.InDelta(t, 9.8, CalculateCVSSScore("CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H"), 0.01)
	assert.Zero(t, CalculateCVSSScore("AV:N/AC:L/Au:N/C:P/I:P/A:P"))
	assert.Zero(t, CalculateCVSSScore(""))
}

func TestGetSeverityRating(t *testing.T) {
	assert.Equal(t, model.SeverityUnknown, GetSeverityRating(0))
	assert.Equal(t, model.SeverityLow, GetSeverityRating(3.9))
	assert.Equal(t, model.SeverityMedium, GetSeverityRating(4.0))
	assert.Equal(t, model.SeverityHigh, GetSeverityRating(7.5))
	assert.Equal(t, model.SeverityCritical, GetSeverityRating(9.0))
}

func TestOSVSeverity(t *testing.T) {
	vector := []models.Severity{{Type: "CVSS_V3", Score: "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H"}}
	assert.Equal(t, model.SeverityCritical, OSVSeverity(vector, "LOW"))
	assert.Equal(t, model.SeverityMedium, OSVSeverity(nil, "MODERATE"))
	assert.Equal(t, model.SeverityUnknown, OSVSeverity(nil, ""))
}
