package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ortelius/component-monitor/model"
)

func TestBuildPURL(t *testing.T) {
	assert.Equal(t, "pkg:npm/left-pad@1.3.0", BuildPURL(model.EcosystemNpm, "left-pad", "1.3.0"))
	assert.Equal(t, "pkg:crates.io/serde@1.0.0", BuildPURL(model.EcosystemCrates, "serde", "1.0.0"))
}

func TestOSVEcosystem(t *testing.T) {
	name, ok := OSVEcosystem(model.EcosystemPyPI)
	require.True(t, ok)
	assert.Equal(t, "PyPI", name)

	_, ok = OSVEcosystem("cpan")
	assert.False(t, ok)
}

func TestRequestFromPURL(t *testing.T) {
	req, err := RequestFromPURL("pkg:maven/org.apache.logging.log4j/log4j-core@2.14.1")
	require.NoError(t, err)
	assert.Equal(t, "org.apache.logging.log4j:log4j-core", req.Name)
	assert.Equal(t, "maven", req.Ecosystem)
	assert.Equal(t, "2.14.1", req.Version)

	req, err = RequestFromPURL("pkg:npm/%40babel/core@7.0.0")
	require.NoError(t, err)
	assert.Equal(t, "@babel/core", req.Name)

	_, err = RequestFromPURL("pkg:npm/left-pad")
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = RequestFromPURL("pkg:gem/rails@7.0.0")
	assert.ErrorIs(t, err, model.ErrValidation)
}
