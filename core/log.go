package core

import "sort"

// Log is the append-only, ordered conversation history. The zero value is an
// empty log. All operations return new values; a Log is never mutated after
// it has been handed out, so sharing one between goroutines is safe.
type Log struct {
	messages []Message
}

// NewLog builds a log from the given messages in order.
func NewLog(msgs ...Message) Log {
	return Log{messages: cloneMessages(msgs)}
}

// Len returns the number of messages.
func (l Log) Len() int { return len(l.messages) }

// Messages returns a copy of the messages in log order.
func (l Log) Messages() []Message { return cloneMessages(l.messages) }

// At returns the i-th message.
func (l Log) At(i int) Message { return l.messages[i] }

// Last returns the most recent message. ok is false for an empty log.
func (l Log) Last() (msg Message, ok bool) {
	if len(l.messages) == 0 {
		return Message{}, false
	}
	return l.messages[len(l.messages)-1], true
}

// LastFrom returns the most recent message sent by sender.
func (l Log) LastFrom(sender Sender) (msg Message, ok bool) {
	for i := len(l.messages) - 1; i >= 0; i-- {
		if l.messages[i].Sender == sender {
			return l.messages[i], true
		}
	}
	return Message{}, false
}

// Append returns a new log with msgs added after the existing messages.
// The receiver is left untouched.
func (l Log) Append(msgs ...Message) Log {
	if len(msgs) == 0 {
		return l
	}
	out := make([]Message, 0, len(l.messages)+len(msgs))
	out = append(out, l.messages...)
	out = append(out, msgs...)
	return Log{messages: out}
}

// Merge appends the deltas of several concurrently executed branches. The
// combined delta is ordered by emission timestamp; messages emitted at the
// same instant keep their branch order, then their order within the branch.
func (l Log) Merge(branches ...[]Message) Log {
	var combined []Message
	for _, b := range branches {
		combined = append(combined, b...)
	}
	sort.SliceStable(combined, func(i, j int) bool {
		return combined[i].Timestamp.Before(combined[j].Timestamp)
	})
	return l.Append(combined...)
}

func cloneMessages(msgs []Message) []Message {
	if len(msgs) == 0 {
		return nil
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}
