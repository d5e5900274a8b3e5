package event

// TargetApp addresses a message to the application instead of a world element.
const TargetApp = "__app__"

// Message is a typed key/value payload routed between elements, or bubbled to the
// application when To is TargetApp.
type Message struct {
	From   string
	To     string
	Values map[string]any
}

// NewMessage creates a message with an empty payload.
func NewMessage(from, to string) Message {
	return Message{From: from, To: to, Values: make(map[string]any)}
}

// With returns the message with key set to value.
func (m Message) With(key string, value any) Message {
	if m.Values == nil {
		m.Values = make(map[string]any)
	}
	m.Values[key] = value
	return m
}

// Bool reads key as a bool. The second result is false when missing or of another type.
func (m Message) Bool(key string) (bool, bool) {
	v, ok := m.Values[key].(bool)
	return v, ok
}

func (m Message) String(key string) (string, bool) {
	v, ok := m.Values[key].(string)
	return v, ok
}

// Float reads key as a float64, accepting any Go numeric type.
func (m Message) Float(key string) (float64, bool) {
	switch v := m.Values[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint32:
		return float64(v), true
	}
	return 0, false
}
