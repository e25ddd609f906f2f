package sensor

import (
	"slices"
	"testing"
)

func TestNewTopics(t *testing.T) {
	topics := NewTopics("a", "", "b", "a", "c")

	if got := topics.All(); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("All() = %v, want [a b c]", got)
	}
	if topics.Len() != 3 {
		t.Errorf("Len() = %d, want 3", topics.Len())
	}
}

func TestTopics_AllReturnsCopy(t *testing.T) {
	topics := NewTopics("a", "b")

	names := topics.All()
	names[0] = "mutated"

	if !topics.Contains("a") || topics.Contains("mutated") {
		t.Error("mutating All() result changed the registry")
	}
}

func TestTopics_Contains(t *testing.T) {
	tests := []struct {
		topic string
		want  bool
	}{
		{"zigbee2mqtt/ikkuna/olohuone", true},
		{"zigbee2mqtt/ikkuna/makkari", true},
		{"zigbee2mqtt/ikkuna/+", false},
		{"zigbee2mqtt/ikkuna/olohuone/set", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			if got := DefaultTopics.Contains(tt.topic); got != tt.want {
				t.Errorf("Contains(%q) = %v, want %v", tt.topic, got, tt.want)
			}
		})
	}
}

func TestMessageValue(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    float64
		wantErr bool
	}{
		{name: "true", payload: `{"contact":true}`, want: 1},
		{name: "false", payload: `{"contact":false}`, want: 0},
		{name: "empty object", payload: `{}`, want: 0},
		{name: "not json", payload: `open`, wantErr: true},
		{name: "array", payload: `[true]`, want: 0},
		{name: "number", payload: `5`, want: 0},
		{name: "string", payload: `"open"`, want: 0},
		{name: "null", payload: `null`, want: 0},
		{name: "nested contact", payload: `{"state":{"contact":true}}`, want: 0},
		{name: "empty", payload: ``, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := decodeMessage([]byte(tt.payload))
			if (err != nil) != tt.wantErr {
				t.Fatalf("decodeMessage() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && msg.Value() != tt.want {
				t.Errorf("Value() = %v, want %v", msg.Value(), tt.want)
			}
		})
	}
}
