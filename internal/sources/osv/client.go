// Package osv queries the OSV database for vulnerabilities affecting a library version.
package osv

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/osv-scanner/pkg/models"

	"github.com/ortelius/component-monitor/internal/sources"
	"github.com/ortelius/component-monitor/model"
	"github.com/ortelius/component-monitor/util"
)

// DefaultURL is the public OSV query endpoint.
const DefaultURL = "https://api.osv.dev/v1/query"

// Client handles requests to the OSV vulnerability database
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates a new OSV client. An empty url uses DefaultURL.
func NewClient(url string, httpClient *http.Client) *Client {
	if url == "" {
		url = DefaultURL
	}
	if httpClient == nil {
		httpClient = sources.DefaultHTTPClient()
	}
	return &Client{url: url, httpClient: httpClient}
}

type queryPackage struct {
	Name      string `json:"name"`
	Ecosystem string `json:"ecosystem"`
}

type queryRequest struct {
	Package queryPackage `json:"package"`
	Version string       `json:"version"`
}

type queryResponse struct {
	Vulns []json.RawMessage `json:"vulns"`
}

type databaseSpecific struct {
	DatabaseSpecific struct {
		Severity string `json:"severity"`
	} `json:"database_specific"`
}

// Source implements sources.Adapter.
func (c *Client) Source() model.Source { return model.SourceOSV }

// Fetch queries OSV for the name, version and ecosystem in q.
// Severity is left empty; the raw upstream severity data is carried in Finding.OSV.
func (c *Client) Fetch(ctx context.Context, q sources.Query) ([]model.Finding, error) {
	ecosystem, ok := util.OSVEcosystem(q.Ecosystem)
	if !ok {
		ecosystem = string(q.Ecosystem)
	}

	body, err := json.Marshal(queryRequest{
		Package: queryPackage{Name: q.Name, Ecosystem: ecosystem},
		Version: q.Version,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &model.UpstreamError{Source: model.SourceOSV, Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &model.UpstreamError{Source: model.SourceOSV, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &model.UpstreamError{Source: model.SourceOSV, StatusCode: resp.StatusCode, Body: string(payload)}
	}

	var parsed queryResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return nil, fmt.Errorf("decoding osv response: %w", err)
	}

	findings := make([]model.Finding, 0, len(parsed.Vulns))
	for _, raw := range parsed.Vulns {
		var vuln models.Vulnerability
		if err := json.Unmarshal(raw, &vuln); err != nil {
			return nil, fmt.Errorf("decoding osv record: %w", err)
		}
		var extra databaseSpecific
		_ = json.Unmarshal(raw, &extra)

		findings = append(findings, model.Finding{
			ID:      vuln.ID,
			Summary: vuln.Summary,
			Details: vuln.Details,
			Aliases: vuln.Aliases,
			Source:  model.SourceOSV,
			OSV: &model.OSVDetail{
				Severity:         vuln.Severity,
				DatabaseSeverity: extra.DatabaseSpecific.Severity,
				FixedVersions:    util.FixedVersions(q.Ecosystem, q.Version, vuln.Affected),
			},
		})
	}
	return findings, nil
}
