package nvd

// Response is the top-level body of the NVD CVE API.
type Response struct {
	ResultsPerPage  int       `json:"resultsPerPage"`
	StartIndex      int       `json:"startIndex"`
	TotalResults    int       `json:"totalResults"`
	Vulnerabilities []CVEItem `json:"vulnerabilities"`
}

// CVEItem wraps one CVE in the "vulnerabilities" array.
type CVEItem struct {
	CVE CVE `json:"cve"`
}

// CVE holds the parts of an NVD CVE record the monitor reads.
type CVE struct {
	ID           string       `json:"id"`
	Published    string       `json:"published"`
	LastModified string       `json:"lastModified"`
	Descriptions []LangString `json:"descriptions"`
	Metrics      Metrics      `json:"metrics"`
}

// LangString is a localized text value.
type LangString struct {
	Lang  string `json:"lang"`
	Value string `json:"value"`
}

// Metrics carries the CVSS scorings by version.
type Metrics struct {
	CvssMetricV31 []CvssV3 `json:"cvssMetricV31,omitempty"`
	CvssMetricV30 []CvssV3 `json:"cvssMetricV30,omitempty"`
	CvssMetricV2  []CvssV2 `json:"cvssMetricV2,omitempty"`
}

// CvssV3 is a CVSS v3.x metric entry; the severity lives in the cvssData block.
type CvssV3 struct {
	Source   string `json:"source"`
	Type     string `json:"type"`
	CvssData struct {
		Version      string  `json:"version"`
		VectorString string  `json:"vectorString"`
		BaseScore    float64 `json:"baseScore"`
		BaseSeverity string  `json:"baseSeverity"`
	} `json:"cvssData"`
}

// CvssV2 is a CVSS v2 metric entry; the severity lives on the metric itself.
type CvssV2 struct {
	Source       string `json:"source"`
	Type         string `json:"type"`
	BaseSeverity string `json:"baseSeverity"`
	CvssData     struct {
		Version      string  `json:"version"`
		VectorString string  `json:"vectorString"`
		BaseScore    float64 `json:"baseScore"`
	} `json:"cvssData"`
}

// CPEResponse is the top-level body of the NVD CPE API.
type CPEResponse struct {
	ResultsPerPage int          `json:"resultsPerPage"`
	TotalResults   int          `json:"totalResults"`
	Products       []CPEProduct `json:"products"`
}

// CPEProduct wraps one catalog entry.
type CPEProduct struct {
	CPE struct {
		CPEName    string `json:"cpeName"`
		CPENameID  string `json:"cpeNameId"`
		Deprecated bool   `json:"deprecated"`
	} `json:"cpe"`
}
