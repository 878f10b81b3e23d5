package core

// Directive is the single-slot routing value. It is either unset, one of the
// sentinels below, or the name of the node that should run next.
type Directive string

const (
	// DirectiveUnset is the value before any routing decision has been made.
	DirectiveUnset Directive = ""
	// DirectiveFinish terminates the run.
	DirectiveFinish Directive = "FINISH"
	// DirectiveUndecided records that no usable decision could be made.
	// Graphs usually route it back to the deciding node.
	DirectiveUndecided Directive = "UNDECIDED"
)

// String returns the directive value.
func (d Directive) String() string { return string(d) }

// IsSet reports whether a routing decision has been recorded.
func (d Directive) IsSet() bool { return d != DirectiveUnset }

// Update is the delta returned by a node. Messages are appended to the log;
// a non-nil Directive overwrites the routing slot, a nil one leaves it alone.
type Update struct {
	Messages  []Message
	Directive *Directive
}

// Route returns an Update that only sets the directive.
func Route(d Directive) Update {
	return Update{Directive: &d}
}

// Say returns an Update that only appends messages.
func Say(msgs ...Message) Update {
	return Update{Messages: msgs}
}

// IsEmpty reports whether the update changes nothing.
func (u Update) IsEmpty() bool {
	return len(u.Messages) == 0 && u.Directive == nil
}

// State is the shared view of a run: the conversation log plus the routing
// directive. It is passed by value; nodes only ever read it.
type State struct {
	Log       Log
	Directive Directive
}

// NewState returns the initial state for query: a log holding exactly one
// user message and an unset directive.
func NewState(query string) State {
	return State{Log: NewLog(NewUserMessage(query))}
}

// Apply merges u into the state and returns the result. The log only ever
// grows; the directive is replaced when u carries one.
func (s State) Apply(u Update) State {
	next := State{Log: s.Log.Append(u.Messages...), Directive: s.Directive}
	if u.Directive != nil {
		next.Directive = *u.Directive
	}
	return next
}
