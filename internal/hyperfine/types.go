// Package hyperfine synthesizes hyperfine invocations, runs them, and
// merges the JSON reports they export.
package hyperfine

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Report is the top-level shape of a hyperfine --export-json file.
type Report struct {
	Results []Result `json:"results"`
}

// Result is one benchmarked command inside a report. Annotation
// commands append fields hyperfine itself never emits; those land in
// Extra and survive a decode/encode round trip.
type Result struct {
	Command    string            `json:"command"`
	Mean       float64           `json:"mean"`
	Stddev     *float64          `json:"stddev"`
	Median     float64           `json:"median"`
	User       float64           `json:"user"`
	System     float64           `json:"system"`
	Min        float64           `json:"min"`
	Max        float64           `json:"max"`
	Times      []float64         `json:"times"`
	ExitCodes  []int             `json:"exit_codes"`
	Parameters map[string]string `json:"parameters,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// resultKeys mirrors the json tags on Result. Anything else found in
// a result object is an annotation field.
var resultKeys = map[string]struct{}{
	"command":    {},
	"mean":       {},
	"stddev":     {},
	"median":     {},
	"user":       {},
	"system":     {},
	"min":        {},
	"max":        {},
	"times":      {},
	"exit_codes": {},
	"parameters": {},
}

type resultAlias Result

func (r *Result) UnmarshalJSON(data []byte) error {
	var a resultAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key := range raw {
		if _, ok := resultKeys[key]; ok {
			delete(raw, key)
		}
	}
	if len(raw) > 0 {
		a.Extra = raw
	}
	*r = Result(a)
	return nil
}

func (r Result) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(resultAlias(r))
	if err != nil {
		return nil, err
	}
	if len(r.Extra) == 0 {
		return base, nil
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for key, val := range r.Extra {
		merged[key] = val
	}
	return json.Marshal(merged)
}

// TagCommit rewrites the command to command@commit when the result
// carries a commit parameter, so results from different revisions stay
// distinguishable after merging.
func (r *Result) TagCommit() {
	if commit, ok := r.Parameters["commit"]; ok && commit != "" {
		r.Command = r.Command + "@" + commit
	}
}

// Load reads a hyperfine export file. The top level must carry a
// results array; an empty array is a valid report with nothing in it.
func Load(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}
	var rep Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if rep.Results == nil {
		return nil, fmt.Errorf("%s: report has no results array", path)
	}
	return &rep, nil
}

// Write emits the report as indented JSON.
func (r *Report) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// Save writes the report to path, or to stdout when path is empty.
func (r *Report) Save(path string) error {
	if path == "" {
		return r.Write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	defer f.Close()
	if err := r.Write(f); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return f.Close()
}
