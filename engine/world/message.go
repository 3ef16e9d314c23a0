package world

// Message is the payload of a tag-addressed broadcast between elements.
// Elements subscribe by registering tags at spawn time; the world delivers
// each message to every element holding the target tag, once per update.
type Message map[string]any

// String reads a string value from the message.
//
// Parameters:
//   - key: the field name
//
// Returns:
//   - string: the value, empty if missing or not a string
//   - bool: true if the field exists and is a string
func (m Message) String(key string) (string, bool) {
	v, ok := m[key].(string)
	return v, ok
}

// Float reads a float64 value from the message.
//
// Parameters:
//   - key: the field name
//
// Returns:
//   - float64: the value, zero if missing or not a float64
//   - bool: true if the field exists and is a float64
func (m Message) Float(key string) (float64, bool) {
	v, ok := m[key].(float64)
	return v, ok
}
