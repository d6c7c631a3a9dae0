package pipeline

import "testing"

func TestCursor_AdvanceStopsAtUnresolvedOffset(t *testing.T) {
	c := NewCursor()
	for off := int64(1); off <= 5; off++ {
		c.Track(off)
	}

	c.Resolve(1)
	c.Resolve(2)
	if off, moved := c.Advance(); !moved || off != 2 {
		t.Fatalf("want advance to 2, got %d (moved=%v)", off, moved)
	}

	// 4 and 5 resolve out of order; 3 still pins the cursor
	c.Resolve(4)
	c.Resolve(5)
	if off, moved := c.Advance(); moved || off != 2 {
		t.Fatalf("cursor passed a pending offset: %d (moved=%v)", off, moved)
	}

	c.Resolve(3)
	if off, moved := c.Advance(); !moved || off != 5 {
		t.Fatalf("want advance to 5 after gap closed, got %d (moved=%v)", off, moved)
	}
}

func TestCursor_CommittedBeforeFirstResolve(t *testing.T) {
	c := NewCursor()
	c.Track(10)
	if _, ok := c.Committed(); ok {
		t.Fatal("cursor reported a committed offset before anything resolved")
	}
	if off, moved := c.Advance(); moved || off != -1 {
		t.Fatalf("unexpected advance: %d (moved=%v)", off, moved)
	}
}

func TestCursor_PendingCount(t *testing.T) {
	c := NewCursor()
	c.Track(1)
	c.Track(2)
	c.Track(3)
	if n := c.Pending(); n != 3 {
		t.Fatalf("want 3 pending, got %d", n)
	}
	c.Resolve(1)
	c.Advance()
	if n := c.Pending(); n != 2 {
		t.Fatalf("want 2 pending after advance, got %d", n)
	}
}

func TestCursor_ResolveUntrackedOffsetIsNoop(t *testing.T) {
	c := NewCursor()
	c.Track(5)
	c.Resolve(4) // never tracked
	if off, moved := c.Advance(); moved || off != -1 {
		t.Fatalf("untracked resolve moved the cursor: %d (moved=%v)", off, moved)
	}
}
