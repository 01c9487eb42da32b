package lighttool

import "testing"

func TestSignalEmitOrder(t *testing.T) {
	var s Signal[int]
	var got []int
	s.Connect(func(v int) { got = append(got, v) })
	s.Connect(func(v int) { got = append(got, v*10) })
	s.Emit(2)
	if len(got) != 2 || got[0] != 2 || got[1] != 20 {
		t.Errorf("got %v, want [2 20]", got)
	}
}

func TestSignalRemove(t *testing.T) {
	var s Signal[string]
	calls := 0
	c := s.Connect(func(string) { calls++ })
	s.Emit("a")
	c.Remove()
	c.Remove()
	s.Emit("b")
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0", s.Len())
	}
	Connection{}.Remove()
}

func TestSignalRemoveDuringEmit(t *testing.T) {
	var s Signal[int]
	calls := 0
	var second Connection
	s.Connect(func(int) { second.Remove() })
	second = s.Connect(func(int) { calls++ })
	s.Emit(1)
	if calls != 1 {
		t.Errorf("handler removed during emit should still run once, ran %d times", calls)
	}
	s.Emit(2)
	if calls != 1 {
		t.Errorf("calls after removal = %d, want 1", calls)
	}
}

func TestConnectionsClear(t *testing.T) {
	var s Signal[int]
	var conns connections
	conns.add(s.Connect(func(int) {}))
	conns.add(s.Connect(func(int) {}))
	conns.clear()
	if s.Len() != 0 {
		t.Errorf("Len after clear = %d, want 0", s.Len())
	}
	if len(conns) != 0 {
		t.Errorf("connections after clear = %d, want 0", len(conns))
	}
}
