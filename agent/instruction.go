package agent

import (
	"time"

	"github.com/mrinaald/ai-newsroom/core"
	"github.com/mrinaald/ai-newsroom/internal/util"
)

// Provider supplies dynamic instruction text at runtime.
// Implementations can derive instructions from the shared state, environment, etc.
type Provider interface {
	Instruction(core.State) (string, error)
}

// Func is a functional adapter to allow ordinary functions to be used as Providers.
type Func func(core.State) (string, error)

// Instruction implements Provider.
func (f Func) Instruction(s core.State) (string, error) { return f(s) }

// Instruction represents either a static instruction string or a dynamic provider.
// Static text may contain text/template markers which are rendered against
// PromptData on every Resolve.
type Instruction struct {
	text     string
	provider Provider
}

// NewInstructionFromText creates an Instruction from a static string or template.
func NewInstructionFromText(text string) Instruction { return Instruction{text: text} }

// NewInstructionFromProvider creates an Instruction from a dynamic provider.
func NewInstructionFromProvider(p Provider) Instruction { return Instruction{provider: p} }

// NewInstructionFromFunc creates an Instruction from a function.
func NewInstructionFromFunc(f func(core.State) (string, error)) Instruction {
	return Instruction{provider: Func(f)}
}

// IsStatic returns true if the instruction is backed by a static string.
func (i Instruction) IsStatic() bool { return i.provider == nil }

// IsZero reports whether no instruction was configured.
func (i Instruction) IsZero() bool { return i.provider == nil && i.text == "" }

// Resolve returns the instruction text, invoking the provider or rendering
// the template if needed.
func (i Instruction) Resolve(state core.State) (string, error) {
	if i.provider != nil {
		return i.provider.Instruction(state)
	}
	return util.RenderTemplate(i.text, NewPromptData(state))
}

// PromptData is the data available to instruction templates.
type PromptData struct {
	// Query is the content of the first user message.
	Query string
	// Turns is the number of messages in the log.
	Turns int
	// LastSender is the sender of the most recent message.
	LastSender string
	// Date is the current UTC date (YYYY-MM-DD).
	Date string
}

// NewPromptData extracts template data from state.
func NewPromptData(state core.State) PromptData {
	d := PromptData{Turns: state.Log.Len(), Date: time.Now().UTC().Format(time.DateOnly)}
	for _, m := range state.Log.Messages() {
		if m.Sender.IsUser() {
			d.Query = m.Content
			break
		}
	}
	if last, ok := state.Log.Last(); ok {
		d.LastSender = last.Sender.String()
	}
	return d
}
