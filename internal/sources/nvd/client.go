// Package nvd queries the NVD CVE and CPE APIs.
package nvd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ortelius/component-monitor/internal/sources"
	"github.com/ortelius/component-monitor/model"
)

// DefaultBaseURL is the public NVD REST root.
const DefaultBaseURL = "https://services.nvd.nist.gov/rest/json"

// Client handles requests to the NVD APIs
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new NVD client. An empty baseURL uses DefaultBaseURL.
func NewClient(baseURL, apiKey string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = sources.DefaultHTTPClient()
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey, httpClient: httpClient}
}

// Source implements sources.Adapter.
func (c *Client) Source() model.Source { return model.SourceNVD }

// Fetch returns the CVEs NVD associates with the CPE name in q.Identifier.
func (c *Client) Fetch(ctx context.Context, q sources.Query) ([]model.Finding, error) {
	if strings.TrimSpace(q.Identifier) == "" {
		return nil, model.ErrIdentifierRequired
	}

	var parsed Response
	if err := c.get(ctx, "/cves/2.0", url.Values{"cpeName": {q.Identifier}}, &parsed); err != nil {
		return nil, err
	}

	findings := make([]model.Finding, 0, len(parsed.Vulnerabilities))
	for _, item := range parsed.Vulnerabilities {
		findings = append(findings, model.Finding{
			ID:       item.CVE.ID,
			Summary:  EnglishDescription(item.CVE.Descriptions),
			Severity: item.CVE.Metrics.Severity(),
			Source:   model.SourceNVD,
		})
	}
	return findings, nil
}

// SearchCPE returns the CPE names matching keyword, in catalog order.
func (c *Client) SearchCPE(ctx context.Context, keyword string) ([]string, error) {
	var parsed CPEResponse
	if err := c.get(ctx, "/cpes/2.0", url.Values{"keywordSearch": {keyword}}, &parsed); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(parsed.Products))
	for _, p := range parsed.Products {
		if p.CPE.CPEName != "" {
			names = append(names, p.CPE.CPEName)
		}
	}
	return names, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("apiKey", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &model.UpstreamError{Source: model.SourceNVD, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &model.UpstreamError{Source: model.SourceNVD, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return &model.UpstreamError{Source: model.SourceNVD, StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding nvd response: %w", err)
	}
	return nil
}

// EnglishDescription returns the first English description, or an empty string.
func EnglishDescription(descriptions []LangString) string {
	for _, d := range descriptions {
		if d.Lang == "en" {
			return d.Value
		}
	}
	return ""
}

// Severity picks the first present rating from CVSS v3.1, then v3.0, then v2.
func (m Metrics) Severity() model.Severity {
	switch {
	case len(m.CvssMetricV31) > 0:
		return model.ParseSeverity(m.CvssMetricV31[0].CvssData.BaseSeverity)
	case len(m.CvssMetricV30) > 0:
		return model.ParseSeverity(m.CvssMetricV30[0].CvssData.BaseSeverity)
	case len(m.CvssMetricV2) > 0:
		return model.ParseSeverity(m.CvssMetricV2[0].BaseSeverity)
	default:
		return model.SeverityUnknown
	}
}
