package step

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func key(desc string) Step {
	return Step{Kind: KindKeyPress, Key: desc, Description: "Press " + desc}
}

func descriptions(l *List) []string {
	var out []string
	for _, s := range l.Steps() {
		out = append(out, s.Key)
	}
	return out
}

func checkSeq(t *testing.T, l *List) {
	t.Helper()
	for i, s := range l.Steps() {
		if s.Seq != i+1 {
			t.Errorf("step %d has Seq %d, want %d", i, s.Seq, i+1)
		}
	}
}

func TestNewListRenumbers(t *testing.T) {
	l := NewList([]Step{{Seq: 9, Kind: KindGoto, Line: 1}, {Seq: 3, Kind: KindGoto, Line: 2}})
	checkSeq(t, l)
	if l.Len() != 2 {
		t.Errorf("Len() = %d, want 2", l.Len())
	}
}

func TestListInsert(t *testing.T) {
	tests := []struct {
		name    string
		after   int
		want    []string
		wantPos int
	}{
		{"front", -1, []string{"X", "A", "B", "C"}, 0},
		{"before front", -5, []string{"X", "A", "B", "C"}, 0},
		{"middle", 0, []string{"A", "X", "B", "C"}, 1},
		{"end", 2, []string{"A", "B", "C", "X"}, 3},
		{"past end", 10, []string{"A", "B", "C", "X"}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewList([]Step{key("A"), key("B"), key("C")})
			pos := l.Insert(tt.after, key("X"))
			if pos != tt.wantPos {
				t.Errorf("Insert() = %d, want %d", pos, tt.wantPos)
			}
			if diff := cmp.Diff(tt.want, descriptions(l)); diff != "" {
				t.Errorf("order mismatch (-want +got):\n%s", diff)
			}
			checkSeq(t, l)
		})
	}
}

func TestListDelete(t *testing.T) {
	l := NewList([]Step{key("A"), key("B"), key("C"), key("D")})
	n := l.Delete(3, 1, 1, 42, -1)
	if n != 2 {
		t.Errorf("Delete() = %d, want 2", n)
	}
	if diff := cmp.Diff([]string{"A", "C"}, descriptions(l)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	checkSeq(t, l)

	if l.Delete() != 0 {
		t.Error("Delete() with no indices should remove nothing")
	}
}

func TestListDeleteFunc(t *testing.T) {
	delay := Step{Kind: KindDelay, Delay: Delay{Min: 5}, Description: "Delay 5 ms."}
	l := NewList([]Step{delay, key("A"), delay, key("B"), delay})

	isDelay := func(s Step) bool { return s.Kind == KindDelay }
	if n := l.DeleteFunc([]int{0, 1, 2}, isDelay); n != 2 {
		t.Errorf("DeleteFunc(selected) = %d, want 2", n)
	}
	if l.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", l.Len())
	}
	if n := l.DeleteFunc(nil, isDelay); n != 1 {
		t.Errorf("DeleteFunc(nil) = %d, want 1", n)
	}
	if diff := cmp.Diff([]string{"A", "B"}, descriptions(l)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestListMove(t *testing.T) {
	l := NewList([]Step{key("A"), key("B"), key("C")})

	if err := l.MoveUp(2); err != nil {
		t.Fatalf("MoveUp(2) error = %v", err)
	}
	if err := l.MoveDown(0); err != nil {
		t.Fatalf("MoveDown(0) error = %v", err)
	}
	if diff := cmp.Diff([]string{"C", "A", "B"}, descriptions(l)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	checkSeq(t, l)

	if err := l.MoveUp(0); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("MoveUp(0) error = %v, want ErrIndexOutOfRange", err)
	}
	if err := l.MoveDown(2); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("MoveDown(last) error = %v, want ErrIndexOutOfRange", err)
	}
}

func TestListCutPaste(t *testing.T) {
	l := NewList([]Step{key("A"), key("B"), key("C"), key("D")})

	clip := l.Cut(2, 0)
	if diff := cmp.Diff([]string{"B", "D"}, descriptions(l)); diff != "" {
		t.Errorf("after cut (-want +got):\n%s", diff)
	}
	if len(clip) != 2 || clip[0].Key != "A" || clip[1].Key != "C" {
		t.Fatalf("Cut() = %v, want A and C in list order", clip)
	}

	l.Paste(0, clip)
	l.Paste(l.Len()-1, clip)
	if diff := cmp.Diff([]string{"B", "A", "C", "D", "A", "C"}, descriptions(l)); diff != "" {
		t.Errorf("after paste (-want +got):\n%s", diff)
	}
	checkSeq(t, l)

	// The pasted steps must not share state with the clipboard.
	clip[0].Key = "Z"
	if s, _ := l.At(1); s.Key != "A" {
		t.Errorf("pasted step changed with clipboard: %q", s.Key)
	}
}

func TestListCopy(t *testing.T) {
	l := NewList([]Step{key("A"), key("B")})
	got := l.Copy(1, 1, 7)
	if len(got) != 1 || got[0].Key != "B" {
		t.Errorf("Copy() = %v, want [B]", got)
	}
	if l.Len() != 2 {
		t.Error("Copy() must not modify the list")
	}
}

func TestListReplaceAndAt(t *testing.T) {
	l := NewList([]Step{key("A")})
	if err := l.Replace(0, key("Q")); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	s, err := l.At(0)
	if err != nil || s.Key != "Q" || s.Seq != 1 {
		t.Errorf("At(0) = %+v, %v", s, err)
	}
	if err := l.Replace(3, key("Q")); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Replace(3) error = %v", err)
	}
	if _, err := l.At(-1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("At(-1) error = %v", err)
	}
}

func TestListSetComment(t *testing.T) {
	l := NewList([]Step{key("A")})

	tests := []struct {
		in   string
		want string
	}{
		{"  wait for dialog  ", "wait for dialog"},
		{"   ", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if err := l.SetComment(0, tt.in); err != nil {
			t.Fatalf("SetComment(%q) error = %v", tt.in, err)
		}
		s, _ := l.At(0)
		if s.Comment != tt.want {
			t.Errorf("SetComment(%q) stored %q, want %q", tt.in, s.Comment, tt.want)
		}
		if s.Description != "Press A" {
			t.Errorf("comment changed description to %q", s.Description)
		}
	}

	if err := l.SetComment(5, "x"); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("SetComment(5) error = %v", err)
	}
}

func TestListClear(t *testing.T) {
	l := NewList([]Step{key("A"), key("B")})
	l.Clear()
	if l.Len() != 0 || len(l.All()) != 0 {
		t.Error("Clear() left steps behind")
	}
	l.Append(key("C"))
	checkSeq(t, l)
}

func TestParseSelection(t *testing.T) {
	tests := []struct {
		expr    string
		n       int
		want    []int
		wantErr bool
	}{
		{"", 3, []int{0, 1, 2}, false},
		{"all", 2, []int{0, 1}, false},
		{"2", 3, []int{1}, false},
		{"1-3", 5, []int{0, 1, 2}, false},
		{"4, 1-2, 2", 5, []int{0, 1, 3}, false},
		{"1,,3", 3, []int{0, 2}, false},
		{"0", 3, nil, true},
		{"2-9", 3, nil, true},
		{"3-1", 3, nil, true},
		{"a", 3, nil, true},
		{"1-b", 3, nil, true},
	}

	for _, tt := range tests {
		got, err := ParseSelection(tt.expr, tt.n)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSelection(%q) error = %v, wantErr %v", tt.expr, err, tt.wantErr)
			continue
		}
		if err != nil {
			if !errors.Is(err, ErrInvalidSelection) {
				t.Errorf("ParseSelection(%q) error = %v, want ErrInvalidSelection", tt.expr, err)
			}
			continue
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("ParseSelection(%q) mismatch (-want +got):\n%s", tt.expr, diff)
		}
	}
}
