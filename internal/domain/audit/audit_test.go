package audit

import (
	"reflect"
	"testing"
)

func TestBuildBaseQuery(t *testing.T) {
	query, args := buildBaseQuery("SELECT COUNT(1)", Filter{})
	if query != "SELECT COUNT(1) FROM audit_events WHERE 1=1" {
		t.Fatalf("unexpected query %q", query)
	}
	if len(args) != 0 {
		t.Fatalf("expected no args, got %v", args)
	}

	query, args = buildBaseQuery("SELECT id", Filter{Action: ActionSubmit, ActorID: "emp-1"})
	want := "SELECT id FROM audit_events WHERE 1=1 AND action = $1 AND actor_id = $2"
	if query != want {
		t.Fatalf("expected %q, got %q", want, query)
	}
	if !reflect.DeepEqual(args, []any{ActionSubmit, "emp-1"}) {
		t.Fatalf("unexpected args %v", args)
	}
}

func TestMarshalOptional(t *testing.T) {
	payload, err := marshalOptional(nil)
	if err != nil || payload != nil {
		t.Fatalf("expected nil payload, got %s (%v)", payload, err)
	}
	payload, err = marshalOptional(map[string]float64{"score": 8.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(payload) != `{"score":8.5}` {
		t.Fatalf("unexpected payload %s", payload)
	}
}
