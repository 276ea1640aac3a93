package nav

import "testing"

func TestPopAtRootSignalsQuit(t *testing.T) {
	s := New(KindEntities)
	if s.Pop() {
		t.Fatalf("Pop at root returned true, want false (quit signal)")
	}
	if s.Depth() != 1 {
		t.Fatalf("depth = %d after root pop, want 1", s.Depth())
	}
}

func TestPushPopRestoresFrameState(t *testing.T) {
	s := New(KindEntities)
	s.Top().Cursor = 7
	s.Top().Filter = "acc"

	s.Push(Frame{Kind: KindEntityDetail, Subject: "account"})
	if s.Depth() != 2 {
		t.Fatalf("depth = %d, want 2", s.Depth())
	}
	if !s.Pop() {
		t.Fatalf("Pop above root returned false")
	}

	top := s.Top()
	if top.Kind != KindEntities || top.Cursor != 7 || top.Filter != "acc" {
		t.Fatalf("restored frame = %+v, want cursor and filter intact", top)
	}
}

func TestJumpToCollapsesToRoot(t *testing.T) {
	s := New(KindEntities)
	s.Push(Frame{Kind: KindEntityDetail, Subject: "account"})
	s.Push(Frame{Kind: KindSolutionLayers, Subject: "cmp-1"})

	s.JumpTo(KindUsers)
	if s.Depth() != 1 {
		t.Fatalf("depth = %d after jump, want 1", s.Depth())
	}
	if s.Top().Kind != KindUsers {
		t.Fatalf("root = %v, want Users", s.Top().Kind)
	}
}

func TestJumpToSameRootKeepsState(t *testing.T) {
	s := New(KindEntities)
	s.Top().Cursor = 4
	s.JumpTo(KindEntities)
	if s.Top().Cursor != 4 {
		t.Fatalf("cursor = %d, want 4 preserved on same-root jump", s.Top().Cursor)
	}
}

func TestMoveCursorClamps(t *testing.T) {
	s := New(KindEntities)

	s.MoveCursor(-1, 10)
	if s.Top().Cursor != 0 {
		t.Fatalf("cursor = %d after up at top, want 0", s.Top().Cursor)
	}

	s.MoveCursor(100, 10)
	if s.Top().Cursor != 9 {
		t.Fatalf("cursor = %d after overshoot, want 9", s.Top().Cursor)
	}

	s.MoveCursor(1, 0)
	if s.Top().Cursor != 0 {
		t.Fatalf("cursor = %d with zero items, want 0", s.Top().Cursor)
	}
}

func TestClampCursorAfterShrink(t *testing.T) {
	s := New(KindEntities)
	s.Top().Cursor = 8
	s.ClampCursor(3)
	if s.Top().Cursor != 2 {
		t.Fatalf("cursor = %d after shrink to 3, want 2", s.Top().Cursor)
	}
}

func TestSwitchTabWraps(t *testing.T) {
	s := New(KindEntities)
	s.Push(Frame{Kind: KindEntityDetail})

	s.SwitchTab(1, 3)
	s.SwitchTab(1, 3)
	s.SwitchTab(1, 3)
	if s.Top().Tab != 0 {
		t.Fatalf("tab = %d after full cycle, want 0", s.Top().Tab)
	}

	s.SwitchTab(-1, 3)
	if s.Top().Tab != 2 {
		t.Fatalf("tab = %d after backward wrap, want 2", s.Top().Tab)
	}
}

func TestSetFilterResetsCursor(t *testing.T) {
	s := New(KindEntities)
	s.Top().Cursor = 5

	s.SetFilter("acc")
	if s.Top().Cursor != 0 {
		t.Fatalf("cursor = %d after filter change, want 0", s.Top().Cursor)
	}

	s.Top().Cursor = 3
	s.SetFilter("acc") // unchanged query
	if s.Top().Cursor != 3 {
		t.Fatalf("cursor = %d after no-op filter, want 3 untouched", s.Top().Cursor)
	}
}

func TestModalPopsOneLevel(t *testing.T) {
	s := New(KindEntities)
	s.Push(Frame{Kind: KindEntityDetail, Subject: "account"})
	s.Push(Frame{Kind: KindSearchPopup})

	if !s.Top().Kind.Modal() {
		t.Fatalf("search popup not reported modal")
	}
	if below := s.Below(); below == nil || below.Kind != KindEntityDetail {
		t.Fatalf("Below = %+v, want the covered detail frame", below)
	}

	s.Pop()
	if s.Top().Kind != KindEntityDetail {
		t.Fatalf("top = %v after modal pop, want EntityDetail", s.Top().Kind)
	}
}

func TestBelowAtRootIsNil(t *testing.T) {
	s := New(KindEntities)
	if s.Below() != nil {
		t.Fatalf("Below at root = %+v, want nil", s.Below())
	}
}
