package domain

import "errors"

// ErrConfiguration marks fatal problems with the process configuration or the
// endpoint list. Wrap it with fmt.Errorf("%w: ...") and test with errors.Is.
var ErrConfiguration = errors.New("configuration error")

// EndpointSpec is one page to check. An empty ExpectedText disables the
// content assertion.
type EndpointSpec struct {
	Name         string `json:"name" yaml:"name"`
	URL          string `json:"url" yaml:"url"`
	ExpectedText string `json:"expected_text,omitempty" yaml:"expected_text,omitempty"`
}

type CheckResult struct {
	Name           string  `json:"name"`
	URL            string  `json:"url"`
	Reachable      bool    `json:"reachable"`
	StatusCode     *int    `json:"status_code"` // nil when no response was received
	ElapsedMS      float64 `json:"elapsed_ms"`
	ContentMatched bool    `json:"content_matched"`
	Healthy        bool    `json:"healthy"`
	Error          string  `json:"error,omitempty"`
}

type Failure struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// RunSummary is derived from the results of a single pass. Failures and
// Results keep the order of the input endpoint list.
type RunSummary struct {
	AllHealthy bool          `json:"all_healthy"`
	Failures   []Failure     `json:"failures"`
	Results    []CheckResult `json:"results"`
}

// Summarize folds an ordered slice of results into a RunSummary.
func Summarize(results []CheckResult) RunSummary {
	s := RunSummary{
		AllHealthy: true,
		Failures:   []Failure{},
		Results:    results,
	}
	for _, r := range results {
		if r.Healthy {
			continue
		}
		s.AllHealthy = false
		s.Failures = append(s.Failures, Failure{Name: r.Name, URL: r.URL})
	}
	return s
}
