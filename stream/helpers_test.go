package stream

import (
	"testing"

	"github.com/aws/aws-lambda-go/events"
)

// --- getStringAttr Tests ---

func TestGetStringAttr(t *testing.T) {
	tests := []struct {
		name  string
		image map[string]events.DynamoDBAttributeValue
		want  string
	}{
		{"existing", map[string]events.DynamoDBAttributeValue{"PK": events.NewStringAttribute("INSTITUCION#INST-1")}, "INSTITUCION#INST-1"},
		{"missing key", map[string]events.DynamoDBAttributeValue{"other": events.NewStringAttribute("x")}, ""},
		{"empty image", map[string]events.DynamoDBAttributeValue{}, ""},
		{"nil image", nil, ""},
		{"empty value", map[string]events.DynamoDBAttributeValue{"PK": events.NewStringAttribute("")}, ""},
		{"unicode", map[string]events.DynamoDBAttributeValue{"PK": events.NewStringAttribute("Institución")}, "Institución"},
		{"wrong type", map[string]events.DynamoDBAttributeValue{"PK": events.NewNumberAttribute("42")}, ""},
		{"null", map[string]events.DynamoDBAttributeValue{"PK": events.NewNullAttribute()}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := getStringAttr(tt.image, "PK"); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

// --- getBoolAttr Tests ---

func TestGetBoolAttr(t *testing.T) {
	tests := []struct {
		name  string
		image map[string]events.DynamoDBAttributeValue
		want  bool
	}{
		{"true", map[string]events.DynamoDBAttributeValue{"habil": events.NewBooleanAttribute(true)}, true},
		{"false", map[string]events.DynamoDBAttributeValue{"habil": events.NewBooleanAttribute(false)}, false},
		{"missing", map[string]events.DynamoDBAttributeValue{}, false},
		{"nil image", nil, false},
		{"string true", map[string]events.DynamoDBAttributeValue{"habil": events.NewStringAttribute("true")}, false},
		{"number", map[string]events.DynamoDBAttributeValue{"habil": events.NewNumberAttribute("1")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := getBoolAttr(tt.image, "habil"); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

// --- StreamKeys Tests ---

func TestStreamKeys(t *testing.T) {
	key := StreamKeys(map[string]events.DynamoDBAttributeValue{
		"PK": events.NewStringAttribute("INSTITUCION#INST-1"),
		"SK": events.NewStringAttribute("PROGRAMA#PRG-1"),
	})
	if key.PK != "INSTITUCION#INST-1" || key.SK != "PROGRAMA#PRG-1" {
		t.Errorf("unexpected keys %+v", key)
	}

	if empty := StreamKeys(nil); empty.PK != "" || empty.SK != "" {
		t.Errorf("expected zero keys, got %+v", empty)
	}
}

// --- NewHandler Tests ---

func TestNewHandler_NilLogger(t *testing.T) {
	h := NewHandler(nil, nil)
	if h.logger == nil {
		t.Error("expected a no-op logger")
	}
}
