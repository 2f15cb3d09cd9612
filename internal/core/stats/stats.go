// Package stats derives aggregate counts, percentages and quick stats from a
// classified inheritance chain.
package stats

import (
	"fmt"
	"math"

	"ccview.dev/cli/internal/core/config"
	"ccview.dev/cli/internal/core/inheritance"
)

// Reserved key prefixes for server and agent definitions
const (
	DefaultServerPrefix = "mcpServers."
	DefaultAgentPrefix  = "agents."
)

// OverridePolicy decides which bucket an override item is counted in
type OverridePolicy string

const (
	// OverrideAsProjectSpecific counts an override as new configuration from the
	// project's point of view. This is the default.
	OverrideAsProjectSpecific OverridePolicy = "project-specific"
	OverrideAsInherited       OverridePolicy = "inherited"
	OverrideAsNew             OverridePolicy = "new"
)

// ParseOverridePolicy creates an OverridePolicy with validation
func ParseOverridePolicy(value string) (OverridePolicy, error) {
	switch OverridePolicy(value) {
	case OverrideAsProjectSpecific, OverrideAsInherited, OverrideAsNew:
		return OverridePolicy(value), nil
	case "":
		return OverrideAsProjectSpecific, nil
	default:
		return "", fmt.Errorf("invalid override policy: %q", value)
	}
}

// String returns the string representation of OverridePolicy
func (p OverridePolicy) String() string {
	return string(p)
}

// Bucket is a count together with its share of the total
type Bucket struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// QuickStats names the most notable server and agent keys.
// A nil field means no item matched the prefix filter.
type QuickStats struct {
	MostInheritedMcp *string `json:"mostInheritedMcp,omitempty"`
	MostAddedAgent   *string `json:"mostAddedAgent,omitempty"`
}

// Stats is the aggregate view of a classified chain.
// The three counts always sum to TotalCount.
type Stats struct {
	TotalCount      int         `json:"totalCount"`
	Inherited       Bucket      `json:"inherited"`
	ProjectSpecific Bucket      `json:"projectSpecific"`
	New             Bucket      `json:"new"`
	QuickStats      *QuickStats `json:"quickStats,omitempty"`
}

// Calculator computes Stats. It holds only immutable options and is safe for
// concurrent use.
type Calculator struct {
	overridePolicy OverridePolicy
	serverPrefix   string
	agentPrefix    string
}

// Option configures a Calculator
type Option func(*Calculator)

// WithOverridePolicy sets where override items are counted
func WithOverridePolicy(policy OverridePolicy) Option {
	return func(c *Calculator) {
		c.overridePolicy = policy
	}
}

// WithServerPrefix sets the reserved prefix for server definitions
func WithServerPrefix(prefix string) Option {
	return func(c *Calculator) {
		c.serverPrefix = prefix
	}
}

// WithAgentPrefix sets the reserved prefix for agent definitions
func WithAgentPrefix(prefix string) Option {
	return func(c *Calculator) {
		c.agentPrefix = prefix
	}
}

// NewCalculator creates a calculator with the default policy and prefixes
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{
		overridePolicy: OverrideAsProjectSpecific,
		serverPrefix:   DefaultServerPrefix,
		agentPrefix:    DefaultAgentPrefix,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OverridePolicy returns the configured override policy
func (c *Calculator) OverridePolicy() OverridePolicy {
	return c.overridePolicy
}

// Calculate derives stats in a single pass over items. Items with an
// unrecognized classification are ignored.
func (c *Calculator) Calculate(items []inheritance.ChainItem) Stats {
	var inherited, projectSpecific, added int
	servers := newCounter()
	agents := newCounter()

	for _, item := range items {
		bucket, ok := c.bucketFor(item.Classification)
		if !ok {
			continue
		}
		switch bucket {
		case OverrideAsInherited:
			inherited++
		case OverrideAsProjectSpecific:
			projectSpecific++
		case OverrideAsNew:
			added++
		}

		switch item.Classification {
		case inheritance.ClassInherited:
			if leaf, ok := config.ChildSegment(item.ConfigKey, c.serverPrefix); ok {
				servers.add(leaf)
			}
		case inheritance.ClassProjectSpecific:
			if leaf, ok := config.ChildSegment(item.ConfigKey, c.agentPrefix); ok {
				agents.add(leaf)
			}
		}
	}

	total := inherited + projectSpecific + added
	stats := Stats{
		TotalCount:      total,
		Inherited:       newBucket(inherited, total),
		ProjectSpecific: newBucket(projectSpecific, total),
		New:             newBucket(added, total),
	}

	mostServer, hasServer := servers.top()
	mostAgent, hasAgent := agents.top()
	if hasServer || hasAgent {
		stats.QuickStats = &QuickStats{}
		if hasServer {
			stats.QuickStats.MostInheritedMcp = &mostServer
		}
		if hasAgent {
			stats.QuickStats.MostAddedAgent = &mostAgent
		}
	}

	return stats
}

func (c *Calculator) bucketFor(class inheritance.Classification) (OverridePolicy, bool) {
	switch class {
	case inheritance.ClassInherited:
		return OverrideAsInherited, true
	case inheritance.ClassProjectSpecific:
		return OverrideAsProjectSpecific, true
	case inheritance.ClassOverride:
		return c.overridePolicy, true
	default:
		return "", false
	}
}

func newBucket(count, total int) Bucket {
	if total == 0 {
		return Bucket{Count: count}
	}
	return Bucket{Count: count, Percentage: round2(float64(count) / float64(total) * 100)}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// counter tracks occurrences per key and remembers first-seen order for ties
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(key string) {
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

func (c *counter) top() (string, bool) {
	best, bestCount := "", 0
	for _, key := range c.order {
		if c.counts[key] > bestCount {
			best, bestCount = key, c.counts[key]
		}
	}
	return best, bestCount > 0
}
