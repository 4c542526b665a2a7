package widget

import "fmt"

type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// TimeLayout renders message times as a 12-hour clock, e.g. "03:04 PM".
const TimeLayout = "03:04 PM"

type Message struct {
	Text       string
	Sender     Sender
	Timestamp  string
	Confidence *float64
	// Failed marks a bot-styled entry that reports a failed request.
	Failed bool
}

// Badge returns the confidence label, or "" when the message has none to
// show. Only bot messages with a confidence above zero carry a badge.
func (m Message) Badge() string {
	if m.Sender != SenderBot || m.Confidence == nil || *m.Confidence <= 0 {
		return ""
	}
	return fmt.Sprintf("Confidence: %.1f%%", *m.Confidence*100)
}

// Transcript is the append-only list of displayed messages.
type Transcript struct {
	messages []Message
}

func (t *Transcript) Append(m Message) {
	t.messages = append(t.messages, m)
}

func (t *Transcript) Len() int { return len(t.messages) }

// Messages returns a copy of the transcript in insertion order.
func (t *Transcript) Messages() []Message {
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}
