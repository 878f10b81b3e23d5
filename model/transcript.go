package model

import "strings"

// Role is a provider-neutral chat role.
type Role string

// Chat roles.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one chat turn handed to a provider SDK.
type Turn struct {
	Role Role
	Text string
	// Name is the sender of an assistant turn. It is empty for user and
	// system turns and for merged turns of different senders.
	Name string
}

// TranscriptOptions tune how a request is mapped onto turns.
type TranscriptOptions struct {
	// IncludeSystem emits the instruction as a leading system turn.
	IncludeSystem bool
	// MergeConsecutive joins adjacent turns of the same role.
	MergeConsecutive bool
	// TrailingUser, when non-empty, is appended as a user turn if the
	// transcript would otherwise end on an assistant turn.
	TrailingUser string
	// LabelSenders prefixes assistant text with "<sender>: " for providers
	// that cannot carry a participant name.
	LabelSenders bool
}

// DefaultTrailingUser nudges providers that treat a final assistant turn as
// a prefix to continue.
const DefaultTrailingUser = "Continue based on the conversation above."

// Transcript maps the conversation log of req onto chat turns. User messages
// become user turns; every other sender (the workers) becomes an assistant
// turn named after the sender. Empty messages are skipped.
func Transcript(req Request, optFns ...func(o *TranscriptOptions)) []Turn {
	opts := TranscriptOptions{IncludeSystem: true}
	for _, fn := range optFns {
		fn(&opts)
	}

	turns := make([]Turn, 0, len(req.Messages)+2)
	if opts.IncludeSystem && strings.TrimSpace(req.Instruction) != "" {
		turns = append(turns, Turn{Role: RoleSystem, Text: req.Instruction})
	}

	for _, m := range req.Messages {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		turn := Turn{Role: RoleUser, Text: m.Content}
		if !m.Sender.IsUser() {
			turn.Role = RoleAssistant
			turn.Name = string(m.Sender)
			if opts.LabelSenders {
				turn.Text = turn.Name + ": " + m.Content
			}
		}
		if opts.MergeConsecutive && len(turns) > 0 && turns[len(turns)-1].Role == turn.Role {
			last := &turns[len(turns)-1]
			last.Text += "\n\n" + turn.Text
			if last.Name != turn.Name {
				last.Name = ""
			}
			continue
		}
		turns = append(turns, turn)
	}

	if opts.TrailingUser != "" && len(turns) > 0 && turns[len(turns)-1].Role == RoleAssistant {
		turns = append(turns, Turn{Role: RoleUser, Text: opts.TrailingUser})
	}

	return turns
}
