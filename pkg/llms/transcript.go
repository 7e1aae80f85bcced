package llms

import (
	"bytes"
	"encoding/json"
	"slices"

	"github.com/cockroachdb/errors"
)

// ErrUnansweredToolCalls is returned when a transcript is sent to a model
// while tool calls of the last assistant turn have no results yet.
var ErrUnansweredToolCalls = errors.New("transcript has unanswered tool calls")

// Transcript is an append-only conversation.
// It is owned by a single run and is not safe for concurrent use.
type Transcript struct {
	messages []Message
}

// NewTranscript returns a transcript seeded with msgs.
func NewTranscript(msgs ...Message) *Transcript {
	t := &Transcript{}
	t.Append(msgs...)
	return t
}

// Append adds messages to the end of the transcript.
func (t *Transcript) Append(msgs ...Message) {
	t.messages = append(t.messages, msgs...)
}

// Messages returns a copy of the messages.
func (t *Transcript) Messages() []Message {
	return slices.Clone(t.messages)
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	return len(t.messages)
}

// Last returns the last message, or nil for an empty transcript.
func (t *Transcript) Last() Message {
	if len(t.messages) == 0 {
		return nil
	}
	return t.messages[len(t.messages)-1]
}

// PendingToolCalls returns tool calls of the most recent assistant turn
// that have no matching ToolResultMessage after it.
func (t *Transcript) PendingToolCalls() []ToolCall {
	last := -1
	for i := len(t.messages) - 1; i >= 0; i-- {
		if _, ok := t.messages[i].(AssistantMessage); ok {
			last = i
			break
		}
	}
	if last < 0 {
		return nil
	}

	answered := map[string]bool{}
	for _, m := range t.messages[last+1:] {
		if r, ok := m.(ToolResultMessage); ok {
			answered[r.ToolCallID] = true
		}
	}

	var pending []ToolCall
	for _, tc := range t.messages[last].(AssistantMessage).ToolCalls {
		if !answered[tc.ID] {
			pending = append(pending, tc)
		}
	}
	return pending
}

// Validate returns ErrUnansweredToolCalls if the transcript cannot be sent yet.
func (t *Transcript) Validate() error {
	if pending := t.PendingToolCalls(); len(pending) > 0 {
		return errors.WithMessagef(ErrUnansweredToolCalls, "%d pending, first %q", len(pending), pending[0].ID)
	}
	return nil
}

// MarshalJSON encodes the transcript as a JSON array of role-tagged messages.
// Encoding is deterministic: the encoding of a transcript is a prefix of
// the encoding after further appends, up to the closing bracket.
func (t *Transcript) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, m := range t.messages {
		if i > 0 {
			buf.WriteByte(',')
		}
		js, err := json.Marshal(m)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to marshal message %d", i)
		}
		buf.Write(js)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a transcript produced by MarshalJSON.
func (t *Transcript) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "failed to unmarshal transcript")
	}
	msgs := make([]Message, 0, len(raw))
	for _, r := range raw {
		m, err := UnmarshalMessage(r)
		if err != nil {
			return err
		}
		msgs = append(msgs, m)
	}
	t.messages = msgs
	return nil
}
