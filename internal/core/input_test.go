package core

import "testing"

func TestActionTextRoundTrip(t *testing.T) {
	for a := range actionNames {
		text, err := a.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): %v", a, err)
		}
		var back Action
		if err := back.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", text, err)
		}
		if back != a {
			t.Errorf("round trip %v -> %q -> %v", a, text, back)
		}
	}
	if _, err := ParseAction("jump"); err == nil {
		t.Error("ParseAction should reject unknown names")
	}
}

func TestInputFrameList(t *testing.T) {
	f := FrameOf(ActionRotate, ActionLeft)
	got := f.List()
	if len(got) != 2 || got[0] != ActionLeft || got[1] != ActionRotate {
		t.Errorf("List() = %v", got)
	}
	f.Clear()
	if !f.Empty() {
		t.Error("frame should be empty after Clear")
	}
}

func TestKinds(t *testing.T) {
	for _, k := range Kinds {
		back, err := KindFromNumber(k.Number())
		if err != nil || back != k {
			t.Errorf("KindFromNumber(%d) = %v, %v", k.Number(), back, err)
		}
	}
	if _, err := ParseKind("tetris"); err == nil {
		t.Error("ParseKind should reject unknown kinds")
	}
	if KindBlocks.Number() != 1 || KindDodge.Number() != 2 || KindSnake.Number() != 3 {
		t.Error("wire ids changed")
	}
}

func TestReporterEndFiresOnce(t *testing.T) {
	var scores, ends []int
	r := NewReporter(Callbacks{
		OnScoreUpdate: func(s int) { scores = append(scores, s) },
		OnGameEnd:     func(s int) { ends = append(ends, s) },
	})

	r.Score(10)
	r.Score(10)
	r.Score(20)
	if !r.End(20) {
		t.Fatal("first End should report")
	}
	if r.End(30) {
		t.Error("second End should not report")
	}
	r.Score(40)

	if len(scores) != 2 || scores[1] != 20 {
		t.Errorf("scores = %v, want [10 20]", scores)
	}
	if len(ends) != 1 || ends[0] != 20 {
		t.Errorf("ends = %v, want [20]", ends)
	}
}
