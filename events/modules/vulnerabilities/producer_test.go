package vulnerabilities

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ortelius/component-monitor/model"
)

func TestNewEvent(t *testing.T) {
	id := "pkg:npm/left-pad@1.3.0"
	c := model.Component{ID: 7, Name: "left-pad", Version: "1.3.0", Type: model.ComponentTypeLibrary, Ecosystem: model.EcosystemNpm, Identifier: &id}
	vulns := []model.Vulnerability{{ID: 1, ComponentID: 7, CveID: "GHSA-1", Source: model.SourceOSV, Severity: model.SeverityHigh}}

	event := NewEvent(c, "refresh", vulns)

	assert.Equal(t, EventTypeDiscovered, event.EventType)
	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, int64(7), event.Component.ID)

	raw, err := json.Marshal(event)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"trigger":"refresh"`)
	assert.Contains(t, string(raw), `"cve_id":"GHSA-1"`)
}

func TestProducerSkipsEmptyBatches(t *testing.T) {
	p := NewProducer([]string{"127.0.0.1:1"}, "unused")
	defer p.Close()

	assert.NoError(t, p.PublishDiscovered(context.Background(), model.Component{ID: 1}, "create", nil))
}

func TestNoop(t *testing.T) {
	var p Publisher = Noop{}
	assert.NoError(t, p.PublishDiscovered(context.Background(), model.Component{}, "create", []model.Vulnerability{{}}))
	assert.NoError(t, p.Close())
}
