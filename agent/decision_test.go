package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mrinaald/ai-newsroom/core"
)

func TestParseDecision(t *testing.T) {
	tests := []struct {
		raw  string
		want Decision
	}{
		{"Researcher", DecisionResearcher},
		{" Writer\n", DecisionWriter},
		{"FINISH", DecisionFinish},
		{"I think the Writer should go next", DecisionWriter},
		{"Send it to the Resercher", DecisionResearcher},
		{"Researcher, then Writer", DecisionResearcher},
		{"finish", DecisionUndecided},
		{"writer", DecisionUndecided},
		{"ok", DecisionUndecided},
		{"", DecisionUndecided},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDecision(tt.raw))
		})
	}
}

func TestParseBinaryDecision(t *testing.T) {
	tests := []struct {
		raw  string
		want Decision
	}{
		{"Researcher", DecisionResearcher},
		{"more RESEARCHER work needed", DecisionResearcher},
		{"Writer", DecisionWriter},
		{"FINISH", DecisionWriter},
		{"", DecisionWriter},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseBinaryDecision(tt.raw))
		})
	}
}

func TestDecisionDirective(t *testing.T) {
	assert.Equal(t, core.Directive("Researcher"), DecisionResearcher.Directive())
	assert.Equal(t, core.Directive("Writer"), DecisionWriter.Directive())
	assert.Equal(t, core.DirectiveFinish, DecisionFinish.Directive())
	assert.Equal(t, core.DirectiveUndecided, DecisionUndecided.Directive())
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("")
	assert.NoError(t, err)
	assert.Equal(t, StrategyDeterministic, s)

	s, err = ParseStrategy(" Delegate ")
	assert.NoError(t, err)
	assert.Equal(t, StrategyDelegate, s)

	_, err = ParseStrategy("random")
	assert.Error(t, err)
}
