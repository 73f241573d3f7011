package util

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	npm "github.com/aquasecurity/go-npm-version/pkg"
	pep440 "github.com/aquasecurity/go-pep440-version"
	"github.com/google/osv-scanner/pkg/models"

	"github.com/ortelius/component-monitor/model"
)

// CompareVersions orders two versions using the rules of the given ecosystem.
// The boolean is false when either version cannot be parsed.
func CompareVersions(eco model.Ecosystem, a, b string) (int, bool) {
	switch eco {
	case model.EcosystemNpm:
		return compareNPM(a, b)
	case model.EcosystemPyPI:
		return comparePEP440(a, b)
	}
	if c, ok := compareSemver(a, b); ok {
		return c, true
	}
	if c, ok := compareNPM(a, b); ok {
		return c, true
	}
	return comparePEP440(a, b)
}

func compareSemver(a, b string) (int, bool) {
	va, err := semver.NewVersion(strings.TrimPrefix(a, "go"))
	if err != nil {
		return 0, false
	}
	vb, err := semver.NewVersion(strings.TrimPrefix(b, "go"))
	if err != nil {
		return 0, false
	}
	return va.Compare(vb), true
}

func compareNPM(a, b string) (int, bool) {
	va, err := npm.NewVersion(a)
	if err != nil {
		return 0, false
	}
	vb, err := npm.NewVersion(b)
	if err != nil {
		return 0, false
	}
	switch {
	case va.LessThan(vb):
		return -1, true
	case va.Equal(vb):
		return 0, true
	default:
		return 1, true
	}
}

func comparePEP440(a, b string) (int, bool) {
	va, err := pep440.Parse(a)
	if err != nil {
		return 0, false
	}
	vb, err := pep440.Parse(b)
	if err != nil {
		return 0, false
	}
	return va.Compare(vb), true
}

// FixedVersions returns the version that fixes the range containing current.
// When current falls in no range every fixed version is returned, deduplicated in order.
func FixedVersions(eco model.Ecosystem, current string, allAffected []models.Affected) []string {
	for _, affected := range allAffected {
		for _, vrange := range affected.Ranges {
			if vrange.Type != models.RangeEcosystem && vrange.Type != models.RangeSemVer {
				continue
			}
			if fixed, ok := fixedInRange(eco, current, vrange); ok {
				return []string{fixed}
			}
		}
	}
	return allFixed(allAffected)
}

// fixedInRange walks the range events in order. Each introduced event opens an interval that
// the next fixed or last_affected event closes.
func fixedInRange(eco model.Ecosystem, current string, vrange models.Range) (string, bool) {
	introduced := ""
	open := false
	for _, event := range vrange.Events {
		switch {
		case event.Introduced != "":
			introduced = event.Introduced
			open = true
		case event.Fixed != "" && open:
			open = false
			if atLeast(eco, current, introduced) && below(eco, current, event.Fixed) {
				return event.Fixed, true
			}
		case event.LastAffected != "" && open:
			open = false
		}
	}
	return "", false
}

func atLeast(eco model.Ecosystem, current, introduced string) bool {
	if introduced == "0" {
		return true
	}
	c, ok := CompareVersions(eco, current, introduced)
	return ok && c >= 0
}

func below(eco model.Ecosystem, current, fixed string) bool {
	c, ok := CompareVersions(eco, current, fixed)
	return ok && c < 0
}

func allFixed(allAffected []models.Affected) []string {
	var fixedVersions []string
	seen := make(map[string]bool)
	for _, affected := range allAffected {
		for _, vrange := range affected.Ranges {
			for _, event := range vrange.Events {
				if event.Fixed != "" && !seen[event.Fixed] {
					fixedVersions = append(fixedVersions, event.Fixed)
					seen[event.Fixed] = true
				}
			}
		}
	}
	return fixedVersions
}
