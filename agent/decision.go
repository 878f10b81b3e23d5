package agent

import (
	"strings"

	"github.com/mrinaald/ai-newsroom/core"
)

// Node names of the newsroom roles.
const (
	SupervisorName = "Supervisor"
	ResearcherName = "Researcher"
	WriterName     = "Writer"
)

// Decision is the parsed outcome of a routing answer.
type Decision int

const (
	// DecisionUndecided means no usable decision could be extracted.
	DecisionUndecided Decision = iota
	// DecisionResearcher routes to the Researcher.
	DecisionResearcher
	// DecisionWriter routes to the Writer.
	DecisionWriter
	// DecisionFinish ends the run.
	DecisionFinish
)

// String returns the wire form of the decision.
func (d Decision) String() string {
	switch d {
	case DecisionResearcher:
		return ResearcherName
	case DecisionWriter:
		return WriterName
	case DecisionFinish:
		return string(core.DirectiveFinish)
	default:
		return string(core.DirectiveUndecided)
	}
}

// Directive converts the decision into a routing directive.
func (d Decision) Directive() core.Directive {
	return core.Directive(d.String())
}

// misspelledResearcher is a variant small models are known to produce.
const misspelledResearcher = "Resercher"

// ParseDecision parses a free-form routing answer with the three options
// Researcher, Writer and FINISH. An exact match (after trimming) wins;
// otherwise the answer is searched, case-sensitively, for "Researcher" (or
// its common misspelling) and then for "Writer". Anything else is undecided.
func ParseDecision(raw string) Decision {
	answer := strings.TrimSpace(raw)
	switch answer {
	case ResearcherName:
		return DecisionResearcher
	case WriterName:
		return DecisionWriter
	case string(core.DirectiveFinish):
		return DecisionFinish
	}

	switch {
	case strings.Contains(answer, ResearcherName), strings.Contains(answer, misspelledResearcher):
		return DecisionResearcher
	case strings.Contains(answer, WriterName):
		return DecisionWriter
	default:
		return DecisionUndecided
	}
}

// ParseBinaryDecision parses an answer to the research-or-write question.
// Any answer mentioning "researcher" (case-insensitively) means more
// research; everything else, including an empty answer, means Writer.
func ParseBinaryDecision(raw string) Decision {
	if strings.Contains(strings.ToLower(raw), "researcher") {
		return DecisionResearcher
	}
	return DecisionWriter
}
