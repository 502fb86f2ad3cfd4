// Package config loads and validates TOML benchmark definitions.
package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Benchmark is a parsed benchmark definition file.
type Benchmark struct {
	// Output is the path the merged report is written to. Empty means
	// stdout.
	Output string `toml:"output,omitempty"`
	// HyperfineParams name the benchmarking executable first, then the
	// flags shared by every invocation.
	HyperfineParams []string `toml:"hyperfine_params,omitempty"`
	// Runs maps each label to the benchmark run it names.
	Runs map[string]Run `toml:"run"`
}

// Run is a single named benchmark.
type Run struct {
	Command     string            `toml:"command"`
	Commits     []string          `toml:"commits,omitempty"`
	Cleanup     string            `toml:"cleanup,omitempty"`
	Prepare     string            `toml:"prepare,omitempty"`
	Setup       string            `toml:"setup,omitempty"`
	Shell       string            `toml:"shell,omitempty"`
	Annotations map[string]string `toml:"annotations,omitempty"`
}

// Load reads and validates a benchmark definition from path.
func Load(path string) (*Benchmark, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	b, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// Parse decodes and validates a benchmark definition.
func Parse(data []byte) (*Benchmark, error) {
	var b Benchmark
	if err := toml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// Validate rejects definitions whose hyperfine_params does not lead
// with the tool executable, with no runs, or with runs missing a
// command.
func (b *Benchmark) Validate() error {
	if len(b.HyperfineParams) == 0 {
		return fmt.Errorf(`hyperfine_params must start with the benchmarking tool, e.g. ["hyperfine"]`)
	}
	if strings.HasPrefix(b.HyperfineParams[0], "-") {
		return fmt.Errorf("hyperfine_params starts with flag %q, expected the benchmarking tool", b.HyperfineParams[0])
	}
	if len(b.Runs) == 0 {
		return fmt.Errorf("config defines no runs")
	}
	for _, label := range b.Labels() {
		if strings.TrimSpace(b.Runs[label].Command) == "" {
			return fmt.Errorf("run %q: command is required", label)
		}
	}
	return nil
}

// Tool returns the benchmarking executable named by the leading entry
// of hyperfine_params.
func (b *Benchmark) Tool() string {
	if len(b.HyperfineParams) == 0 {
		return "hyperfine"
	}
	return b.HyperfineParams[0]
}

// HasAnnotations reports whether any run defines annotation commands.
func (b *Benchmark) HasAnnotations() bool {
	for _, run := range b.Runs {
		if len(run.Annotations) > 0 {
			return true
		}
	}
	return false
}

// Labels returns the run labels sorted, so run order and report order
// are stable across invocations.
func (b *Benchmark) Labels() []string {
	labels := make([]string, 0, len(b.Runs))
	for label := range b.Runs {
		labels = append(labels, label)
	}
	slices.Sort(labels)
	return labels
}
