package diff

import (
	"fmt"
	"testing"

	"ccview.dev/cli/internal/core/config"
	"ccview.dev/cli/internal/core/inheritance"
	"ccview.dev/cli/internal/core/testfixtures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestEngine_Diff_MatchAndOnlyRight(t *testing.T) {
	left := []Record{{ID: "s1", Value: map[string]any{"a": 1}}}
	right := []Record{
		{ID: "s1", Value: map[string]any{"a": 1}},
		{ID: "s2", Value: map[string]any{"b": 2}},
	}

	entries := NewEngine().Diff(left, right)

	require.Len(t, entries, 2)
	assert.Equal(t, "s1", entries[0].CapabilityID)
	assert.Equal(t, StatusMatch, entries[0].Status)
	assert.True(t, entries[0].HasLeft())
	assert.True(t, entries[0].HasRight())
	assert.Equal(t, "s2", entries[1].CapabilityID)
	assert.Equal(t, StatusOnlyRight, entries[1].Status)
	assert.Nil(t, entries[1].LeftValue)
	assert.False(t, entries[1].HasLeft())
	assert.Equal(t, SeverityMedium, entries[1].Severity)
}

func TestEngine_Diff_Ordering(t *testing.T) {
	left := []Record{{ID: "c", Value: 1}, {ID: "a", Value: 1}, {ID: "x", Value: 1}}
	right := []Record{{ID: "z", Value: 1}, {ID: "a", Value: 2}, {ID: "y", Value: 1}, {ID: "c", Value: 1}}

	entries := NewEngine().Diff(left, right)

	ids := make([]string, len(entries))
	statuses := make([]Status, len(entries))
	for i, e := range entries {
		ids[i] = e.CapabilityID
		statuses[i] = e.Status
	}
	assert.Equal(t, []string{"c", "a", "x", "z", "y"}, ids)
	assert.Equal(t, []Status{StatusMatch, StatusDifferent, StatusOnlyLeft, StatusOnlyRight, StatusOnlyRight}, statuses)
}

func TestEngine_Diff_KeyOrderInsensitiveEquality(t *testing.T) {
	left := []Record{{ID: "s", Value: map[string]any{"command": "npx", "env": map[string]any{"A": "1", "B": "2"}}}}
	right := []Record{{ID: "s", Value: map[string]any{"env": map[string]any{"B": "2", "A": "1"}, "command": "npx"}}}

	entries := NewEngine().Diff(left, right)

	require.Len(t, entries, 1)
	assert.Equal(t, StatusMatch, entries[0].Status)
}

func TestEngine_Diff_DuplicateIDsUseFirstOccurrence(t *testing.T) {
	left := []Record{{ID: "a", Value: 1}, {ID: "a", Value: 2}}
	right := []Record{{ID: "a", Value: 1}, {ID: "a", Value: 3}, {ID: "b", Value: 1}, {ID: "b", Value: 2}}

	entries := NewEngine().Diff(left, right)

	require.Len(t, entries, 2)
	assert.Equal(t, StatusMatch, entries[0].Status)
	assert.Equal(t, StatusOnlyRight, entries[1].Status)
	assert.Equal(t, 1, entries[1].RightValue)
}

func TestEngine_Diff_SeverityPolicy(t *testing.T) {
	left := []Record{{ID: "same", Value: 1}, {ID: "changed", Value: 1}, {ID: "gone", Value: 1}}
	right := []Record{{ID: "same", Value: 1}, {ID: "changed", Value: 2}}

	entries := NewEngine(WithSeverityPolicy(StatusSeverity{})).Diff(left, right)

	require.Len(t, entries, 3)
	assert.Equal(t, SeverityLow, entries[0].Severity)
	assert.Equal(t, SeverityHigh, entries[1].Severity)
	assert.Equal(t, SeverityMedium, entries[2].Severity)
}

func TestEngine_Diff_EmptyInputs(t *testing.T) {
	assert.Empty(t, NewEngine().Diff(nil, nil))
}

func TestParseSeverityPolicy_ValidatesInput(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    SeverityPolicy
		expectError bool
	}{
		{"Empty_ShouldDefaultToFixed", "", FixedSeverity(SeverityMedium), false},
		{"Fixed_ShouldSucceed", "fixed", FixedSeverity(SeverityMedium), false},
		{"Status_ShouldSucceed", "status", StatusSeverity{}, false},
		{"Unknown_ShouldFail", "random", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy, err := ParseSeverityPolicy(tt.input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, policy)
		})
	}
}

func TestNewStatusAndSeverity_ValidateInput(t *testing.T) {
	_, err := NewStatus("only-left")
	assert.NoError(t, err)
	_, err = NewStatus("left")
	assert.Error(t, err)

	_, err = NewSeverity("high")
	assert.NoError(t, err)
	_, err = NewSeverity("critical")
	assert.Error(t, err)
}

func TestFromChain_UsesResolvedValues(t *testing.T) {
	result := inheritance.NewResolver().Resolve([]config.Scope{
		testfixtures.UserScope("mcpServers.fs", "user", "agents.a", 1),
		testfixtures.ProjectScope("mcpServers.fs", "project"),
	})

	records := FromChain(result.Chain)

	assert.Equal(t, []Record{
		{ID: "mcpServers.fs", Value: "project"},
		{ID: "agents.a", Value: 1},
	}, records)
}

func TestSummarize_CountsStatuses(t *testing.T) {
	entries := []DiffEntry{
		{Status: StatusMatch},
		{Status: StatusDifferent},
		{Status: StatusOnlyLeft},
		{Status: StatusOnlyRight},
		{Status: StatusOnlyRight},
	}

	summary := Summarize(entries)

	assert.Equal(t, Summary{Total: 5, Match: 1, Different: 1, OnlyLeft: 1, OnlyRight: 2}, summary)
	assert.True(t, summary.HasDifferences())
	assert.Len(t, OnlyDifferences(entries), 4)
	assert.False(t, Summarize(entries[:1]).HasDifferences())
}

func TestEngine_Property_EveryKeyExactlyOnce(t *testing.T) {
	genRecords := rapid.Custom(func(t *rapid.T) []Record {
		ids := rapid.SliceOf(rapid.SampledFrom([]string{"a", "b", "c", "d", "e", "f"})).Draw(t, "ids")
		records := make([]Record, len(ids))
		for i, id := range ids {
			records[i] = Record{ID: id, Value: rapid.IntRange(0, 2).Draw(t, fmt.Sprintf("v%d", i))}
		}
		return records
	})

	rapid.Check(t, func(t *rapid.T) {
		left := genRecords.Draw(t, "left")
		right := genRecords.Draw(t, "right")

		entries := NewEngine().Diff(left, right)

		want := make(map[string]bool)
		for _, r := range append(append([]Record{}, left...), right...) {
			want[r.ID] = true
		}
		got := make(map[string]int)
		for _, e := range entries {
			got[e.CapabilityID]++
		}

		assert.Len(t, entries, len(want))
		for id := range want {
			assert.Equal(t, 1, got[id], "id %s", id)
		}
	})
}
