package core

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTimestampCanonicalForm(t *testing.T) {
	ts := NewTimestamp(time.Date(2013, time.October, 17, 14, 30, 5, 0, time.UTC))
	if got := ts.String(); got != "2013-10-17 14:30:05" {
		t.Errorf("String() = %q, want %q", got, "2013-10-17 14:30:05")
	}

	out, err := json.Marshal(ts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != `"2013-10-17 14:30:05"` {
		t.Errorf("MarshalJSON = %s, want %q", out, `"2013-10-17 14:30:05"`)
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	original := NewTimestamp(time.Date(2013, time.October, 17, 14, 30, 5, 0, time.UTC))
	out, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded Timestamp
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded.String() != original.String() {
		t.Errorf("round trip changed value: %s != %s", decoded, original)
	}
}

func TestTimestampRejectsBadLiteral(t *testing.T) {
	var ts Timestamp
	if err := json.Unmarshal([]byte(`"yesterday"`), &ts); err == nil {
		t.Error("expected error for unparsable timestamp")
	}
}

func TestHalflifeWeight(t *testing.T) {
	h := NewHalflife(45)
	if got := h.Weight(0); got != 1 {
		t.Errorf("weight at age 0 = %v, want 1", got)
	}
	if got := h.Weight(45); got != 0.5 {
		t.Errorf("weight at one halflife = %v, want 0.5", got)
	}
	if got := h.Weight(90); got != 0.25 {
		t.Errorf("weight at two halflives = %v, want 0.25", got)
	}
}
