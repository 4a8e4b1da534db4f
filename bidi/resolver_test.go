package bidi

import (
	"testing"
)

func levelsEqual(got []uint8, want []uint8) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestResolveEmptyString(t *testing.T) {
	res := Resolve("", DirectionAuto)

	if len(res.Levels) != 0 {
		t.Errorf("Levels length = %d, want 0", len(res.Levels))
	}
	if len(res.Paragraphs) != 1 {
		t.Fatalf("Paragraphs length = %d, want 1", len(res.Paragraphs))
	}
	p := res.Paragraphs[0]
	if p.Start != 0 || p.End != 0 || p.Level != 0 {
		t.Errorf("Paragraph = %+v, want {0 0 0}", p)
	}
}

func TestResolveAllLatin(t *testing.T) {
	text := "hello world"
	res := Resolve(text, DirectionAuto)

	if len(res.Levels) != len([]rune(text)) {
		t.Fatalf("Levels length = %d, want %d", len(res.Levels), len([]rune(text)))
	}
	for i, level := range res.Levels {
		if level != 0 {
			t.Errorf("Levels[%d] = %d, want 0", i, level)
		}
	}
	if segs := ReorderSegments(text, res, 0, len(text)-1); len(segs) != 0 {
		t.Errorf("ReorderSegments = %v, want none", segs)
	}
}

func TestResolveAllHebrew(t *testing.T) {
	text := "אבגד"
	res := Resolve(text, DirectionAuto)

	if len(res.Paragraphs) != 1 || res.Paragraphs[0].Level != 1 {
		t.Fatalf("Paragraphs = %+v, want one paragraph at level 1", res.Paragraphs)
	}
	for i, level := range res.Levels {
		if level != 1 {
			t.Errorf("Levels[%d] = %d, want 1", i, level)
		}
	}

	indices := ReorderedIndices(text, res, 0, 3)
	want := []int{3, 2, 1, 0}
	for i := range want {
		if indices[i] != want[i] {
			t.Errorf("ReorderedIndices = %v, want %v", indices, want)
			break
		}
	}
}

func TestResolveIsolatedRun(t *testing.T) {
	// Latin, then an isolated Hebrew run, then Latin.
	text := "abc⁧דהו⁩def"
	res := Resolve(text, DirectionAuto)

	want := []uint8{0, 0, 0, 0, 1, 1, 1, 0, 0, 0, 0}
	if !levelsEqual(res.Levels, want) {
		t.Fatalf("Levels = %v, want %v", res.Levels, want)
	}

	segs := ReorderSegments(text, res, 0, len([]rune(text))-1)
	if len(segs) != 1 {
		t.Fatalf("ReorderSegments = %v, want one segment", segs)
	}
	if segs[0].Start != 4 || segs[0].End != 6 {
		t.Errorf("segment = %+v, want {4 6}", segs[0])
	}
}

func TestResolveBracketPair(t *testing.T) {
	// Hebrew text with a parenthesized Latin word. N0 keeps the
	// parentheses attached to the surrounding Hebrew direction.
	text := "אב (abc) ג"
	res := Resolve(text, DirectionAuto)

	want := []uint8{1, 1, 1, 1, 2, 2, 2, 1, 1, 1}
	if !levelsEqual(res.Levels, want) {
		t.Fatalf("Levels = %v, want %v", res.Levels, want)
	}

	segs := ReorderSegments(text, res, 0, len([]rune(text))-1)
	if len(segs) != 2 {
		t.Fatalf("ReorderSegments = %v, want two segments", segs)
	}
	// Higher level flips first, then the whole line.
	if segs[0] != (Segment{Start: 4, End: 6}) {
		t.Errorf("segments[0] = %+v, want {4 6}", segs[0])
	}
	if segs[1] != (Segment{Start: 0, End: 9}) {
		t.Errorf("segments[1] = %+v, want {0 9}", segs[1])
	}
}

func TestResolveNSMAfterBracketPair(t *testing.T) {
	// A combining mark directly after a closing bracket takes the
	// bracket's resolved direction, including when the pair resolved to
	// the embedding direction.
	text := "ג(ג)ֹא"
	res := Resolve(text, DirectionAuto)

	want := []uint8{1, 1, 1, 1, 1, 1}
	if !levelsEqual(res.Levels, want) {
		t.Fatalf("Levels = %v, want %v", res.Levels, want)
	}
}

func TestResolveArabicNumbers(t *testing.T) {
	// W2: European digits after an Arabic letter become Arabic numbers,
	// which rise two levels inside the RTL paragraph.
	text := "ا 123"
	res := Resolve(text, DirectionAuto)

	want := []uint8{1, 1, 2, 2, 2}
	if !levelsEqual(res.Levels, want) {
		t.Errorf("Levels = %v, want %v", res.Levels, want)
	}
}

func TestResolveEuropeanNumbersAfterLatin(t *testing.T) {
	// W7: digits preceded by strong L stay on the base level.
	res := Resolve("abc 123", DirectionAuto)
	for i, level := range res.Levels {
		if level != 0 {
			t.Errorf("Levels[%d] = %d, want 0", i, level)
		}
	}
}

func TestResolveNumbersInRTLContext(t *testing.T) {
	// Digits keep LTR ordering (level 2) inside RTL text, with W4
	// absorbing the common separator and W5 the terminator.
	tests := []struct {
		name string
		text string
		want []uint8
	}{
		{"plain", "א 12", []uint8{1, 1, 2, 2}},
		{"separator", "א 1.2", []uint8{1, 1, 2, 2, 2}},
		{"terminator", "א 10%", []uint8{1, 1, 2, 2, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Resolve(tt.text, DirectionAuto)
			if !levelsEqual(res.Levels, tt.want) {
				t.Errorf("Levels = %v, want %v", res.Levels, tt.want)
			}
		})
	}
}

func TestResolveOverride(t *testing.T) {
	// RLO forces enclosed Latin onto an odd level.
	text := "‮abc‬"
	res := Resolve(text, DirectionLTR)

	want := []uint8{0, 1, 1, 1, 0}
	if !levelsEqual(res.Levels, want) {
		t.Errorf("Levels = %v, want %v", res.Levels, want)
	}
}

func TestResolveFSI(t *testing.T) {
	// FSI picks its direction from its first strong content character.
	text := "⁨א⁩a"
	res := Resolve(text, DirectionAuto)

	want := []uint8{0, 1, 0, 0}
	if !levelsEqual(res.Levels, want) {
		t.Errorf("Levels = %v, want %v", res.Levels, want)
	}
}

func TestResolveStrayPDI(t *testing.T) {
	// A PDI with no matching initiator is a no-op.
	res := Resolve("a⁩b", DirectionAuto)
	for i, level := range res.Levels {
		if level != 0 {
			t.Errorf("Levels[%d] = %d, want 0", i, level)
		}
	}
}

func TestResolveParagraphSplit(t *testing.T) {
	text := "abc\nאב"
	res := Resolve(text, DirectionAuto)

	if len(res.Paragraphs) != 2 {
		t.Fatalf("Paragraphs = %+v, want 2", res.Paragraphs)
	}
	p0, p1 := res.Paragraphs[0], res.Paragraphs[1]
	if p0.Start != 0 || p0.End != 3 || p0.Level != 0 {
		t.Errorf("Paragraphs[0] = %+v, want {0 3 0}", p0)
	}
	if p1.Start != 4 || p1.End != 5 || p1.Level != 1 {
		t.Errorf("Paragraphs[1] = %+v, want {4 5 1}", p1)
	}

	want := []uint8{0, 0, 0, 0, 1, 1}
	if !levelsEqual(res.Levels, want) {
		t.Errorf("Levels = %v, want %v", res.Levels, want)
	}

	// Every index belongs to exactly one paragraph.
	seen := make([]int, len(res.Levels))
	for _, p := range res.Paragraphs {
		for i := p.Start; i <= p.End; i++ {
			seen[i]++
		}
	}
	for i, n := range seen {
		if n != 1 {
			t.Errorf("index %d covered by %d paragraphs, want 1", i, n)
		}
	}
}

func TestResolveNeutralOnly(t *testing.T) {
	// No strong characters: P3 defaults the paragraph to level 0 and
	// N2 resolves the neutrals to it.
	res := Resolve("... !?", DirectionAuto)
	if res.Paragraphs[0].Level != 0 {
		t.Errorf("paragraph level = %d, want 0", res.Paragraphs[0].Level)
	}
	for i, level := range res.Levels {
		if level != 0 {
			t.Errorf("Levels[%d] = %d, want 0", i, level)
		}
	}
}

func TestResolveTrailingWhitespaceReset(t *testing.T) {
	// L1: trailing whitespace returns to the paragraph level even when
	// preceded by RTL content.
	text := "a אב  "
	res := Resolve(text, DirectionLTR)

	want := []uint8{0, 0, 1, 1, 0, 0}
	if !levelsEqual(res.Levels, want) {
		t.Errorf("Levels = %v, want %v", res.Levels, want)
	}
}

func TestResolveBaseDirectionOverride(t *testing.T) {
	text := "abc"
	res := Resolve(text, DirectionRTL)
	if res.Paragraphs[0].Level != 1 {
		t.Errorf("paragraph level = %d, want 1", res.Paragraphs[0].Level)
	}
	// Latin inside an RTL paragraph rises to level 2.
	for i, level := range res.Levels {
		if level != 2 {
			t.Errorf("Levels[%d] = %d, want 2", i, level)
		}
	}
}

func TestResolveDeepNestingOverflow(t *testing.T) {
	// Embeddings past the depth limit are absorbed by the overflow
	// counters without error.
	var b []rune
	for i := 0; i < 200; i++ {
		b = append(b, 0x202B) // RLE
	}
	b = append(b, 'a')
	res := Resolve(string(b), DirectionLTR)
	if len(res.Levels) != 201 {
		t.Fatalf("Levels length = %d, want 201", len(res.Levels))
	}
	// Explicit levels cap at maxDepth; implicit resolution may raise an
	// L character at an odd level by one more.
	if res.Levels[200] > maxDepth+1 {
		t.Errorf("deeply nested level = %d, want at most %d", res.Levels[200], maxDepth+1)
	}
}
