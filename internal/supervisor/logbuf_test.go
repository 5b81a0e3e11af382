package supervisor

import (
	"fmt"
	"testing"
)

func TestLogBufferTail(t *testing.T) {
	b := newLogBuffer(3)
	if got := b.Len(); got != 0 {
		t.Fatalf("Len = %d, want 0", got)
	}

	b.Add("a")
	b.Add("b")
	got := b.Tail(0)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Tail(0) = %v, want [a b]", got)
	}
	if got := b.Tail(1); len(got) != 1 || got[0] != "b" {
		t.Errorf("Tail(1) = %v, want [b]", got)
	}
}

func TestLogBufferEvictsOldest(t *testing.T) {
	b := newLogBuffer(3)
	for i := 1; i <= 5; i++ {
		b.Add(fmt.Sprintf("l%d", i))
	}
	if got := b.Len(); got != 3 {
		t.Fatalf("Len = %d, want 3", got)
	}
	got := b.Tail(0)
	want := []string{"l3", "l4", "l5"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Tail(0) = %v, want %v", got, want)
		}
	}
	if got := b.Tail(10); len(got) != 3 {
		t.Errorf("Tail(10) = %v, want 3 lines", got)
	}
}

func TestLogBufferClear(t *testing.T) {
	b := newLogBuffer(2)
	b.Add("x")
	b.Add("y")
	b.Clear()
	if got := b.Len(); got != 0 {
		t.Errorf("Len after Clear = %d, want 0", got)
	}
	b.Add("z")
	if got := b.Tail(0); len(got) != 1 || got[0] != "z" {
		t.Errorf("Tail after Clear+Add = %v, want [z]", got)
	}
}
