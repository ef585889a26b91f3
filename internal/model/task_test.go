package model

import (
	"encoding/json"
	"testing"
)

func TestStatusPipelineOrder(t *testing.T) {
	if StatusIndex(StatusBacklog) != 0 || StatusIndex(StatusDone) != 5 {
		t.Fatalf("unexpected pipeline indices: backlog=%d done=%d",
			StatusIndex(StatusBacklog), StatusIndex(StatusDone))
	}
	if StatusIndex(StatusDoing) >= StatusIndex(StatusBlocked) {
		t.Fatalf("doing should come before blocked")
	}
	if ValidStatus("arquivado") {
		t.Fatalf("unknown status accepted")
	}
	if StatusIndex("") != -1 {
		t.Fatalf("empty status should have index -1")
	}
}

func TestNormalizePriority(t *testing.T) {
	if got := NormalizePriority("alta"); got != PriorityHigh {
		t.Fatalf("expected alta, got %q", got)
	}
	if got := NormalizePriority("urgent"); got != PriorityMedium {
		t.Fatalf("unknown priority should coerce to media, got %q", got)
	}
	if got := NormalizePriority(""); got != PriorityMedium {
		t.Fatalf("empty priority should coerce to media, got %q", got)
	}
}

func TestChecklistItemUnmarshalShapes(t *testing.T) {
	var fromString ChecklistItem
	if err := json.Unmarshal([]byte(`"comprar café"`), &fromString); err != nil {
		t.Fatalf("unmarshal string item: %v", err)
	}
	if fromString.Text != "comprar café" || fromString.ID != "" || fromString.Done {
		t.Fatalf("unexpected item from string: %+v", fromString)
	}

	var fromObject ChecklistItem
	if err := json.Unmarshal([]byte(`{"id":"chk-ab12","text":"revisar","done":true}`), &fromObject); err != nil {
		t.Fatalf("unmarshal object item: %v", err)
	}
	if fromObject.ID != "chk-ab12" || fromObject.Text != "revisar" || !fromObject.Done {
		t.Fatalf("unexpected item from object: %+v", fromObject)
	}

	var numericID ChecklistItem
	if err := json.Unmarshal([]byte(`{"id":7,"text":"migrar"}`), &numericID); err != nil {
		t.Fatalf("unmarshal numeric id: %v", err)
	}
	if numericID.ID != "7" {
		t.Fatalf("numeric id should be stringified, got %q", numericID.ID)
	}
}
