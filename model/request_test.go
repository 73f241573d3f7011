package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribeLibrary(t *testing.T) {
	d, err := ComponentRequest{Type: "library", Name: "left-pad", Version: "1.3.0", Ecosystem: "npm"}.Describe()
	require.NoError(t, err)

	lib, ok := d.(LibraryDescription)
	require.True(t, ok)
	assert.Equal(t, EcosystemNpm, lib.Ecosystem)
	assert.Equal(t, ComponentTypeLibrary, d.Kind())
}

func TestDescribeProduct(t *testing.T) {
	d, err := ComponentRequest{Type: "product", Name: "nginx", Version: "1.20.0"}.Describe()
	require.NoError(t, err)
	_, ok := d.(ProductDescription)
	assert.True(t, ok)
}

func TestDescribeRejects(t *testing.T) {
	cases := map[string]ComponentRequest{
		"unknown type":      {Type: "service", Name: "x", Version: "1"},
		"missing name":      {Type: "library", Version: "1", Ecosystem: "npm"},
		"missing version":   {Type: "library", Name: "x", Ecosystem: "npm"},
		"unknown ecosystem": {Type: "library", Name: "x", Version: "1", Ecosystem: "cpan"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := req.Describe()
			assert.True(t, errors.Is(err, ErrValidation), "got %v", err)
		})
	}
}

func TestDescribeLibraryWithoutEcosystem(t *testing.T) {
	d, err := ComponentRequest{Type: "library", Name: "x", Version: "1", IdentifierOverride: "pkg:npm/x@1"}.Describe()
	require.NoError(t, err)

	_, err = NewComponentFrom(d, "pkg:npm/x@1")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestNewComponentFromProduct(t *testing.T) {
	notes := "edge proxy"
	d := ProductDescription{Name: "nginx", Version: "1.20.0", Notes: &notes}
	nc, err := NewComponentFrom(d, "")
	require.NoError(t, err)
	assert.Equal(t, Ecosystem(""), nc.Ecosystem)
	assert.Nil(t, nc.Identifier)
	assert.Equal(t, &notes, nc.Notes)
}

func TestComponentDescriptionRoundTrip(t *testing.T) {
	id := "pkg:npm/left-pad@1.3.0"
	c := Component{Name: "left-pad", Version: "1.3.0", Type: ComponentTypeLibrary, Ecosystem: EcosystemNpm, Identifier: &id}
	d := c.Description()
	assert.Equal(t, id, d.Override())
	assert.Equal(t, ComponentTypeLibrary, d.Kind())
}

func TestParseSeverity(t *testing.T) {
	assert.Equal(t, SeverityHigh, ParseSeverity("HIGH"))
	assert.Equal(t, SeverityMedium, ParseSeverity("MODERATE"))
	assert.Equal(t, SeverityUnknown, ParseSeverity("NONE"))
	assert.Equal(t, SeverityUnknown, ParseSeverity(""))
}

func TestFalsePositiveReasonClearedWhenUnflagged(t *testing.T) {
	reason := "not reachable"
	assert.Nil(t, FalsePositiveUpdate{IsFalsePositive: false, Reason: &reason}.NormalizedReason())
	assert.Equal(t, &reason, FalsePositiveUpdate{IsFalsePositive: true, Reason: &reason}.NormalizedReason())
}

func TestStagedDropsRepeats(t *testing.T) {
	staged := Staged([]Finding{
		{ID: "CVE-1", Source: SourceNVD},
		{ID: "CVE-1", Source: SourceNVD},
		{ID: "CVE-1", Source: SourceOSV},
	})
	assert.Len(t, staged, 2)
}
