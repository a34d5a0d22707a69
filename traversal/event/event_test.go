package event

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kbukum/graphkit/errors"
)

func TestRegistry_NotifyInRegistrationOrder(t *testing.T) {
	r := NewRegistry[string]("AddVertexStep")
	var got []string
	for _, name := range []string{"first", "second", "third"} {
		name := name
		r.Add(func(_ context.Context, e string) error {
			got = append(got, name+":"+e)
			return nil
		})
	}

	if err := r.Notify(context.Background(), "v1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"first:v1", "second:v1", "third:v1"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("callback order mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_NotifyStopsAtFirstFailure(t *testing.T) {
	r := NewRegistry[int]("AddEdgeStep")
	boom := stderrors.New("boom")
	calls := 0
	r.Add(func(context.Context, int) error { calls++; return nil })
	r.Add(func(context.Context, int) error { calls++; return boom })
	r.Add(func(context.Context, int) error { calls++; return nil })

	err := r.Notify(context.Background(), 1)
	if !errors.HasCode(err, errors.ErrCodeListenerFailed) {
		t.Fatalf("expected LISTENER_FAILED, got %v", err)
	}
	if !stderrors.Is(err, boom) {
		t.Errorf("expected the callback error as cause, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected delivery to stop after the failing callback, got %d calls", calls)
	}
	appErr, _ := errors.AsAppError(err)
	if appErr.Details["callback"] != 1 {
		t.Errorf("expected failing callback index 1, got %v", appErr.Details["callback"])
	}
}

func TestRegistry_AddIgnoresNil(t *testing.T) {
	r := NewRegistry[int]("")
	r.Add(nil)
	if r.Len() != 0 {
		t.Errorf("expected nil callback to be ignored, got %d", r.Len())
	}
}

func TestRegistry_CallbacksIsACopy(t *testing.T) {
	r := NewRegistry[int]("")
	r.Add(func(context.Context, int) error { return nil })
	cbs := r.Callbacks()
	cbs[0] = nil
	if r.Callbacks()[0] == nil {
		t.Error("mutating the returned slice must not affect the registry")
	}
}

func TestRegistry_EmptyNotify(t *testing.T) {
	if err := NewRegistry[VertexAdded]("").Notify(context.Background(), VertexAdded{}); err != nil {
		t.Errorf("expected no error with no callbacks, got %v", err)
	}
}
