package inheritance

import (
	"fmt"
	"sort"

	"ccview.dev/cli/internal/core/config"
)

// Resolver merges entries from N ordered scopes.
//
// For every key the winning entry is the one with the highest source
// priority. Ties are resolved last-writer-wins: the entry seen later in scope
// iteration order (and entry order within a scope) wins.
//
// Resolver holds no state; Resolve is pure and safe for concurrent use.
type Resolver struct{}

// NewResolver creates a new resolver
func NewResolver() *Resolver {
	return &Resolver{}
}

type candidate struct {
	entry config.ConfigEntry
}

// Resolve merges the scopes into an effective chain. Malformed entries are
// skipped and reported in Result.Errors; they never abort the resolution.
// An entry whose source priority differs from its scope's is malformed.
func (r *Resolver) Resolve(scopes []config.Scope) *Result {
	result := &Result{
		Chain: Chain{
			Entries:  []config.ConfigEntry{},
			Resolved: make(map[string]any),
		},
		Items: []ChainItem{},
	}

	topPriority, hasScopes := highestScopePriority(scopes)

	var order []string
	candidates := make(map[string][]candidate)

	for _, scope := range scopes {
		seen := make(map[string]bool, len(scope.Entries))
		for ei, entry := range scope.Entries {
			if err := entry.Validate(); err != nil {
				result.Errors = append(result.Errors, &config.MalformedEntryError{
					Scope:  scope.Name,
					Index:  ei,
					Key:    entry.Key,
					Reason: err.Error(),
				})
				continue
			}
			if entry.Source.Priority != scope.Priority {
				result.Errors = append(result.Errors, &config.MalformedEntryError{
					Scope:  scope.Name,
					Index:  ei,
					Key:    entry.Key,
					Reason: fmt.Sprintf("source priority %d does not match scope priority %d", entry.Source.Priority, scope.Priority),
				})
				continue
			}
			if seen[entry.Key] {
				result.Errors = append(result.Errors, &config.MalformedEntryError{
					Scope:  scope.Name,
					Index:  ei,
					Key:    entry.Key,
					Reason: "duplicate key within scope",
				})
				continue
			}
			seen[entry.Key] = true

			if _, exists := candidates[entry.Key]; !exists {
				order = append(order, entry.Key)
			}
			candidates[entry.Key] = append(candidates[entry.Key], candidate{entry: entry})
		}
	}

	for _, key := range order {
		list := candidates[key]
		winnerIdx := pickWinner(list, -1)
		winner := list[winnerIdx].entry

		item := ChainItem{
			ConfigKey:    key,
			CurrentValue: config.CloneValue(winner.Value),
			SourceType:   winner.Source.Type,
			SourcePath:   winner.Source.Path,
			Lineage:      lineage(list),
		}

		runnerIdx := pickWinner(list, winnerIdx)
		switch {
		case runnerIdx >= 0 && !config.Equal(list[runnerIdx].entry.Value, winner.Value):
			item.Classification = ClassOverride
			item.IsOverridden = true
			item.OriginalValue = config.CloneValue(list[runnerIdx].entry.Value)
		case runnerIdx >= 0:
			item.Classification = ClassInherited
		case hasScopes && winner.Source.Priority >= topPriority:
			item.Classification = ClassProjectSpecific
		default:
			item.Classification = ClassInherited
		}

		resolved := winner.Clone()
		resolved.Inherited = item.Classification == ClassInherited
		resolved.Overridden = item.IsOverridden

		result.Chain.Entries = append(result.Chain.Entries, resolved)
		result.Chain.Resolved[key] = config.CloneValue(winner.Value)
		result.Items = append(result.Items, item)
	}

	return result
}

// pickWinner returns the index of the highest-priority candidate, skipping
// the index exclude. Later candidates win ties. Returns -1 if none remain.
func pickWinner(list []candidate, exclude int) int {
	best := -1
	for i, c := range list {
		if i == exclude {
			continue
		}
		if best < 0 || c.entry.Source.Priority >= list[best].entry.Source.Priority {
			best = i
		}
	}
	return best
}

func highestScopePriority(scopes []config.Scope) (int, bool) {
	if len(scopes) == 0 {
		return 0, false
	}
	top := scopes[0].Priority
	for _, s := range scopes[1:] {
		if s.Priority > top {
			top = s.Priority
		}
	}
	return top, true
}

// lineage lists the sources contributing a key, lowest priority first
func lineage(list []candidate) []config.ConfigSource {
	out := make([]config.ConfigSource, 0, len(list))
	for _, c := range list {
		out = append(out, *c.entry.Source)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority < out[j].Priority
	})
	return out
}
