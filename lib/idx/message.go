package idx

// MessageClass is the severity Okta attaches to a message.
type MessageClass string

const (
	MessageError   MessageClass = "ERROR"
	MessageInfo    MessageClass = "INFO"
	MessageUnknown MessageClass = ""
)

// Message is a server-supplied, localized, user-facing message. Text is
// meant to be shown verbatim.
type Message struct {
	Class           MessageClass
	LocalizationKey string
	Text            string
}

// Messages holds the top level messages of a Response.
type Messages struct {
	all []Message
}

func (m *Messages) All() []Message {
	if m == nil {
		return nil
	}
	out := make([]Message, len(m.all))
	copy(out, m.all)
	return out
}

func (m *Messages) Len() int {
	if m == nil {
		return 0
	}
	return len(m.all)
}

// Errors returns only the ERROR class messages.
func (m *Messages) Errors() []Message {
	if m == nil {
		return nil
	}
	var out []Message
	for _, msg := range m.all {
		if msg.Class == MessageError {
			out = append(out, msg)
		}
	}
	return out
}

func newMessage(raw rawMessage) Message {
	class := MessageClass(raw.Class)
	if class != MessageError && class != MessageInfo {
		class = MessageUnknown
	}
	msg := Message{Class: class, Text: raw.Message}
	if raw.I18n != nil {
		msg.LocalizationKey = raw.I18n.Key
	}
	return msg
}

func newMessages(raw *rawMessages) []Message {
	if raw == nil {
		return nil
	}
	out := make([]Message, 0, len(raw.Value))
	for _, m := range raw.Value {
		out = append(out, newMessage(m))
	}
	return out
}
