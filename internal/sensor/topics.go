package sensor

import "slices"

// Topics is the fixed, ordered set of subscribed topics.
// It is immutable once built.
type Topics struct {
	names []string
}

// DefaultTopics are the contact sensors of this deployment.
var DefaultTopics = NewTopics(
	"zigbee2mqtt/ikkuna/olohuone",
	"zigbee2mqtt/ikkuna/makkari",
)

// NewTopics builds a registry from names, dropping empty and duplicate entries
// while keeping the first-seen order.
func NewTopics(names ...string) Topics {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if name == "" || slices.Contains(out, name) {
			continue
		}
		out = append(out, name)
	}
	return Topics{names: out}
}

// All returns a copy of the topic names in registry order.
func (t Topics) All() []string {
	return slices.Clone(t.names)
}

// Contains reports whether topic is registered. Matching is exact.
func (t Topics) Contains(topic string) bool {
	return slices.Contains(t.names, topic)
}

// Len returns the number of registered topics.
func (t Topics) Len() int {
	return len(t.names)
}
