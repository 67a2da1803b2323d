package timex

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDuration_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	var d Duration

	if err := json.Unmarshal([]byte(`"5m"`), &d); err != nil {
		t.Fatalf("unmarshal string: %v", err)
	}
	if d.Duration != 5*time.Minute {
		t.Fatalf("got %v want 5m", d.Duration)
	}

	if err := json.Unmarshal([]byte(`1000000000`), &d); err != nil {
		t.Fatalf("unmarshal number: %v", err)
	}
	if d.Duration != time.Second {
		t.Fatalf("got %v want 1s", d.Duration)
	}

	if err := json.Unmarshal([]byte(`true`), &d); err == nil {
		t.Fatalf("expected error for non-duration JSON value")
	}
}
