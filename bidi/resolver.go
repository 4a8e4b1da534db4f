package bidi

// Direction is a requested base text direction.
type Direction uint8

const (
	// DirectionAuto derives the base direction from the first strong
	// character of each paragraph (rules P2-P3).
	DirectionAuto Direction = iota
	// DirectionLTR forces a left-to-right base direction (level 0).
	DirectionLTR
	// DirectionRTL forces a right-to-left base direction (level 1).
	DirectionRTL
)

// maxDepth is the maximum explicit embedding depth of UAX #9 (rule X1).
const maxDepth = 125

// maxBracketStack bounds the BD16 bracket-pair stack. Openers beyond this
// depth abort pair processing for the rest of the sequence.
const maxBracketStack = 63

// Paragraph is one paragraph of resolved text: the inclusive rune index
// range [Start, End] (End covers the paragraph separator, when present)
// and the paragraph's base embedding level.
type Paragraph struct {
	Start int
	End   int
	Level uint8
}

// Result holds the outcome of bidirectional resolution: one embedding
// level per rune of the input, and the paragraph partition. Immutable
// once returned.
type Result struct {
	Levels     []uint8
	Paragraphs []Paragraph
}

// Resolve computes the UAX #9 embedding levels for text. The base
// direction applies to every paragraph; DirectionAuto derives it per
// paragraph from the first strong character.
//
// Resolve is deterministic and safe for concurrent use.
func Resolve(text string, base Direction) Result {
	runes := []rune(text)
	if len(runes) == 0 {
		return Result{
			Levels:     []uint8{},
			Paragraphs: []Paragraph{{Start: 0, End: 0, Level: 0}},
		}
	}

	r := &resolver{
		runes: runes,
		// origClasses stays untouched; classes is mutated by override
		// application (X6) and the W/N rules.
		origClasses:    classesOf(runes),
		isolationPairs: map[int]int{},
	}
	r.classes = make([]Class, len(r.origClasses))
	copy(r.classes, r.origClasses)
	r.levels = make([]uint8, len(runes))

	// P1: split into paragraphs at B characters (each paragraph keeps
	// its trailing separator).
	var paragraphs []Paragraph
	start := -1
	for i := range runes {
		if start < 0 {
			start = i
		}
		if r.origClasses[i] == ClassB || i == len(runes)-1 {
			level := uint8(0)
			switch base {
			case DirectionRTL:
				level = 1
			case DirectionLTR:
				level = 0
			default:
				level = r.autoLevel(start, i, false)
			}
			paragraphs = append(paragraphs, Paragraph{Start: start, End: i, Level: level})
			start = -1
		}
	}

	for _, p := range paragraphs {
		r.resolveParagraph(p)
	}

	return Result{Levels: r.levels, Paragraphs: paragraphs}
}

type resolver struct {
	runes       []rune
	origClasses []Class
	classes     []Class
	levels      []uint8

	// isolationPairs maps isolate-initiator index <-> matching PDI index
	// in both directions (BD9), per paragraph.
	isolationPairs map[int]int
}

// autoLevel implements P2-P3 (and the identical scan X5c performs for
// FSI): find the first strong character between start and end, skipping
// characters inside isolates, and derive level 1 for R/AL, otherwise 0.
// When scanning FSI content, a PDI at isolation depth zero ends the scan.
func (r *resolver) autoLevel(start, end int, insideFSI bool) uint8 {
	for i := start; i <= end; i++ {
		c := r.origClasses[i]
		if c&(ClassR|ClassAL) != 0 {
			return 1
		}
		if c&(ClassB|ClassL) != 0 || (insideFSI && c == ClassPDI) {
			return 0
		}
		if c&isolateInitClasses != 0 {
			pdi := r.matchingPDI(i, end)
			if pdi < 0 {
				return 0
			}
			i = pdi
		}
	}
	return 0
}

// matchingPDI returns the index of the PDI matching the isolate initiator
// at index i (BD9), or -1 when unmatched before end.
func (r *resolver) matchingPDI(i, end int) int {
	depth := 1
	for j := i + 1; j <= end; j++ {
		c := r.origClasses[j]
		if c == ClassB {
			return -1
		}
		if c == ClassPDI {
			depth--
			if depth == 0 {
				return j
			}
		} else if c&isolateInitClasses != 0 {
			depth++
		}
	}
	return -1
}

// statusEntry is one entry of the X1 directional status stack.
type statusEntry struct {
	level    uint8
	override Class // 0, ClassL or ClassR
	isolate  bool
	// isolInitIndex is the rune index of the isolate initiator that
	// pushed this entry, for BD9 pairing on pop.
	isolInitIndex int
}

func nextEven(l uint8) uint8 { return (l + 2) &^ 1 }
func nextOdd(l uint8) uint8  { return (l + 1) | 1 }

// resolveParagraph runs rules X1-X10, W1-W7, N0-N2, I1-I2 and L1 for one
// paragraph.
func (r *resolver) resolveParagraph(p Paragraph) {
	clear(r.isolationPairs)

	// Per-paragraph class population counts let later rules skip work
	// for classes that never occur.
	counts := map[Class]int{}

	// === X1-X8: explicit embedding levels and overrides ===
	stack := make([]statusEntry, 1, 16)
	stack[0] = statusEntry{level: p.Level, isolInitIndex: -1}
	overflowIsolates := 0
	overflowEmbeddings := 0
	validIsolates := 0

	for i := p.Start; i <= p.End; i++ {
		c := r.classes[i]
		counts[c]++
		top := &stack[len(stack)-1]

		switch {
		case c&(ClassRLE|ClassLRE) != 0:
			// X2-X3. The initiator itself keeps the pre-push level (§5.2).
			r.levels[i] = top.level
			level := nextEven(top.level)
			if c == ClassRLE {
				level = nextOdd(top.level)
			}
			if level <= maxDepth && overflowIsolates == 0 && overflowEmbeddings == 0 {
				stack = append(stack, statusEntry{level: level, isolInitIndex: -1})
			} else if overflowIsolates == 0 {
				overflowEmbeddings++
			}

		case c&(ClassRLO|ClassLRO) != 0:
			// X4-X5.
			r.levels[i] = top.level
			level := nextEven(top.level)
			override := ClassL
			if c == ClassRLO {
				level = nextOdd(top.level)
				override = ClassR
			}
			if level <= maxDepth && overflowIsolates == 0 && overflowEmbeddings == 0 {
				stack = append(stack, statusEntry{level: level, override: override, isolInitIndex: -1})
			} else if overflowIsolates == 0 {
				overflowEmbeddings++
			}

		case c&isolateInitClasses != 0:
			// X5a-X5c. FSI resolves to RLI or LRI by scanning its own
			// content exactly like P2-P3.
			if c == ClassFSI {
				c = ClassLRI
				if r.autoLevel(i+1, p.End, true) == 1 {
					c = ClassRLI
				}
			}
			r.levels[i] = top.level
			if top.override != 0 {
				r.classes[i] = top.override
			}
			level := nextEven(top.level)
			if c == ClassRLI {
				level = nextOdd(top.level)
			}
			if level <= maxDepth && overflowIsolates == 0 && overflowEmbeddings == 0 {
				validIsolates++
				stack = append(stack, statusEntry{level: level, isolate: true, isolInitIndex: i})
			} else {
				overflowIsolates++
			}

		case c == ClassPDI:
			// X6a. Pop back to the nearest isolate entry, if any;
			// unmatched embedding entries above it are discarded.
			if overflowIsolates > 0 {
				overflowIsolates--
			} else if validIsolates > 0 {
				overflowEmbeddings = 0
				for !stack[len(stack)-1].isolate {
					stack = stack[:len(stack)-1]
				}
				if init := stack[len(stack)-1].isolInitIndex; init >= 0 {
					r.isolationPairs[init] = i
					r.isolationPairs[i] = init
				}
				stack = stack[:len(stack)-1]
				validIsolates--
			}
			top = &stack[len(stack)-1]
			r.levels[i] = top.level
			if top.override != 0 {
				r.classes[i] = top.override
			}

		case c == ClassPDF:
			// X7. Pops one non-isolate entry when present.
			if overflowIsolates == 0 {
				if overflowEmbeddings > 0 {
					overflowEmbeddings--
				} else if !top.isolate && len(stack) > 1 {
					stack = stack[:len(stack)-1]
				}
			}
			r.levels[i] = stack[len(stack)-1].level

		case c == ClassB:
			// X8. Paragraph separators sit at the paragraph level.
			r.levels[i] = p.Level

		default:
			// X6.
			r.levels[i] = top.level
			if top.override != 0 && c != ClassBN {
				counts[top.override]++
				r.classes[i] = top.override
			}
		}
	}

	// === X9-X10: isolating run sequences (BD13) ===
	sequences := r.isolatingRunSequences(p)

	for _, seq := range sequences {
		r.resolveWeakTypes(seq, counts)
		r.resolveNeutralTypes(seq, counts)
		r.resolveImplicitLevels(seq)
	}

	// §5.2: BN-like characters take the level of the preceding resolved
	// character (paragraph level when first). Uses original classes since
	// the W/N rules may have rewritten working classes.
	for i := p.Start; i <= p.End; i++ {
		if r.origClasses[i]&bnLikeClasses != 0 {
			if i == p.Start {
				r.levels[i] = p.Level
			} else {
				r.levels[i] = r.levels[i-1]
			}
		}
	}

	// === L1: reset trailing separators and whitespace ===
	// Segment/paragraph separators, plus any immediately preceding run of
	// whitespace, isolate formatting or BN-like characters, return to the
	// paragraph level. The line-end variant is re-applied per rendered
	// line by ReorderSegments.
	for i := p.Start; i <= p.End; i++ {
		if r.origClasses[i]&(ClassS|ClassB) != 0 {
			r.levels[i] = p.Level
			for j := i - 1; j >= p.Start; j-- {
				if r.origClasses[j]&(ClassWS|isolateInitClasses|ClassPDI|bnLikeClasses) == 0 {
					break
				}
				r.levels[j] = p.Level
			}
		}
	}
	for j := p.End; j >= p.Start; j-- {
		if r.origClasses[j]&(ClassWS|isolateInitClasses|ClassPDI|bnLikeClasses) == 0 {
			break
		}
		r.levels[j] = p.Level
	}
}

// runSequence is one isolating run sequence: the ordered rune indices of
// its level runs, and the sos/eos boundary classes (ClassL or ClassR).
type runSequence struct {
	indices []int
	sos     Class
	eos     Class
}

// levelRun is a maximal run of consecutive non-BN-like characters at one
// resolved level.
type levelRun struct {
	start, end       int
	level            uint8
	startsWithPDI    bool
	endsWithIsolInit bool
}

// isolatingRunSequences implements X10/BD13: level runs chained across
// isolate initiator -> matching PDI boundaries, each with its resolved
// sos/eos direction.
func (r *resolver) isolatingRunSequences(p Paragraph) []runSequence {
	var runs []levelRun
	cur := -1
	for i := p.Start; i <= p.End; i++ {
		c := r.classes[i]
		if c&bnLikeClasses != 0 {
			continue
		}
		isInit := c&isolateInitClasses != 0
		if cur >= 0 && r.levels[i] == runs[cur].level {
			runs[cur].end = i
			runs[cur].endsWithIsolInit = isInit
		} else {
			runs = append(runs, levelRun{
				start:            i,
				end:              i,
				level:            r.levels[i],
				startsWithPDI:    c == ClassPDI,
				endsWithIsolInit: isInit,
			})
			cur++
		}
	}

	var sequences []runSequence
	for ri, run := range runs {
		// A run starts a sequence unless it begins with a PDI that
		// matches an isolate initiator (that run is chained onto the
		// initiator's sequence instead).
		if run.startsWithPDI {
			if _, matched := r.isolationPairs[run.start]; matched {
				continue
			}
		}
		seqRuns := []levelRun{run}
		for last := run; last.endsWithIsolInit; {
			pdi, ok := r.isolationPairs[last.end]
			if !ok {
				break
			}
			found := false
			for j := ri + 1; j < len(runs); j++ {
				if runs[j].start == pdi {
					seqRuns = append(seqRuns, runs[j])
					last = runs[j]
					found = true
					break
				}
			}
			if !found {
				break
			}
		}

		var indices []int
		for _, sr := range seqRuns {
			for i := sr.start; i <= sr.end; i++ {
				if r.classes[i]&bnLikeClasses == 0 {
					indices = append(indices, i)
				}
			}
		}
		if len(indices) == 0 {
			continue
		}

		// sos: max(level of first character, level of nearest preceding
		// non-BN character or paragraph level); odd means R. eos mirrors
		// it at the other end, except a sequence ending in an unmatched
		// isolate initiator always compares against the paragraph level.
		first := indices[0]
		prevLevel := p.Level
		for i := first - 1; i >= p.Start; i-- {
			if r.classes[i]&bnLikeClasses == 0 {
				prevLevel = r.levels[i]
				break
			}
		}
		sos := ClassL
		if max(prevLevel, r.levels[first])&1 == 1 {
			sos = ClassR
		}

		last := indices[len(indices)-1]
		nextLevel := p.Level
		if r.classes[last]&isolateInitClasses == 0 {
			for i := last + 1; i <= p.End; i++ {
				if r.classes[i]&bnLikeClasses == 0 {
					nextLevel = r.levels[i]
					break
				}
			}
		}
		eos := ClassL
		if max(nextLevel, r.levels[last])&1 == 1 {
			eos = ClassR
		}

		sequences = append(sequences, runSequence{indices: indices, sos: sos, eos: eos})
	}
	return sequences
}

// resolveWeakTypes applies W1-W7 to one isolating run sequence.
func (r *resolver) resolveWeakTypes(seq runSequence, counts map[Class]int) {
	idx := seq.indices

	// W1: each NSM takes the class of the nearest preceding character
	// (sos when first); isolate initiators and PDI yield ON.
	if counts[ClassNSM] > 0 {
		for si, i := range idx {
			if r.classes[i] != ClassNSM {
				continue
			}
			prev := seq.sos
			if si > 0 {
				prev = r.classes[idx[si-1]]
			}
			if prev&(isolateInitClasses|ClassPDI) != 0 {
				prev = ClassON
			}
			counts[prev]++
			r.classes[i] = prev
		}
	}

	// W2: EN with a nearest preceding strong type of AL becomes AN.
	if counts[ClassEN] > 0 {
		for si, i := range idx {
			if r.classes[i] != ClassEN {
				continue
			}
			for sj := si - 1; sj >= -1; sj-- {
				prev := seq.sos
				if sj >= 0 {
					prev = r.classes[idx[sj]]
				}
				if prev&strongClasses != 0 {
					if prev == ClassAL {
						counts[ClassAN]++
						r.classes[i] = ClassAN
					}
					break
				}
			}
		}
	}

	// W3: AL becomes R.
	if counts[ClassAL] > 0 {
		for _, i := range idx {
			if r.classes[i] == ClassAL {
				counts[ClassR]++
				r.classes[i] = ClassR
			}
		}
	}

	// W4: a single ES between two ENs becomes EN; a single CS between two
	// numbers of the same type takes that type.
	if counts[ClassES] > 0 || counts[ClassCS] > 0 {
		for si := 1; si < len(idx)-1; si++ {
			i := idx[si]
			c := r.classes[i]
			if c&(ClassES|ClassCS) == 0 {
				continue
			}
			prev := r.classes[idx[si-1]]
			next := r.classes[idx[si+1]]
			if prev != next {
				continue
			}
			if c == ClassES && prev != ClassEN {
				continue
			}
			if prev&(ClassEN|ClassAN) == 0 {
				continue
			}
			counts[prev]++
			r.classes[i] = prev
		}
	}

	// W5: runs of ET adjacent to an EN become EN.
	if counts[ClassET] > 0 {
		for si := 0; si < len(idx); si++ {
			if r.classes[idx[si]] != ClassET {
				continue
			}
			runEnd := si
			for runEnd+1 < len(idx) && r.classes[idx[runEnd+1]] == ClassET {
				runEnd++
			}
			prev := seq.sos
			if si > 0 {
				prev = r.classes[idx[si-1]]
			}
			next := seq.eos
			if runEnd+1 < len(idx) {
				next = r.classes[idx[runEnd+1]]
			}
			if prev == ClassEN || next == ClassEN {
				for sj := si; sj <= runEnd; sj++ {
					counts[ClassEN]++
					r.classes[idx[sj]] = ClassEN
				}
			}
			si = runEnd
		}
	}

	// W6: remaining ET, ES and CS become ON. Per §5.2, BN-like characters
	// adjacent to a changed separator become ON as well; since BN-likes
	// are excluded from the sequence indices, this is reflected through
	// the level smoothing pass instead.
	if counts[ClassET] > 0 || counts[ClassES] > 0 || counts[ClassCS] > 0 {
		for _, i := range idx {
			if r.classes[i]&(ClassET|ClassES|ClassCS) != 0 {
				counts[ClassON]++
				r.classes[i] = ClassON
			}
		}
	}

	// W7: EN with a nearest preceding strong type of L becomes L.
	// Single forward scan tracking the last seen strong type.
	if counts[ClassEN] > 0 {
		strong := seq.sos
		for _, i := range idx {
			c := r.classes[i]
			if c == ClassEN && strong == ClassL {
				r.classes[i] = ClassL
			} else if c&strongClasses != 0 {
				strong = c
			}
		}
	}
}

// resolveNeutralTypes applies N0-N2 to one isolating run sequence.
func (r *resolver) resolveNeutralTypes(seq runSequence, counts map[Class]int) {
	idx := seq.indices
	embedDirection := ClassL
	if r.levels[idx[0]]&1 == 1 {
		embedDirection = ClassR
	}

	// Classes treated as R for the purposes of the N rules.
	const rLike = ClassR | ClassEN | ClassAN
	const strongForN = rLike | ClassL

	// === N0: bracket pairs (BD16) ===
	type opener struct {
		// partner is the closing bracket expected to match this opener.
		partner  rune
		seqIndex int
	}
	var pairs [][2]int
	var stack []opener
	for si, i := range idx {
		// A bracket that lost its neutral class in an earlier rule no
		// longer participates in pairing.
		if r.classes[i]&neutralIsolateClasses == 0 {
			continue
		}
		br := r.runes[i]
		partner, isOpening, isBracket := pairedBracket(br)
		if !isBracket {
			continue
		}
		if isOpening {
			if len(stack) >= maxBracketStack {
				// BD16: a stack overflow stops bracket processing for
				// the rest of the sequence.
				break
			}
			stack = append(stack, opener{partner: partner, seqIndex: si})
			continue
		}
		for sp := len(stack) - 1; sp >= 0; sp-- {
			if stack[sp].partner == br || canonicalBracket(stack[sp].partner) == canonicalBracket(br) {
				pairs = append(pairs, [2]int{stack[sp].seqIndex, si})
				stack = stack[:sp]
				break
			}
		}
	}

	// Pairs are processed in order of the opening bracket's position.
	for a := 1; a < len(pairs); a++ {
		for b := a; b > 0 && pairs[b][0] < pairs[b-1][0]; b-- {
			pairs[b], pairs[b-1] = pairs[b-1], pairs[b]
		}
	}

	for _, pair := range pairs {
		openSi, closeSi := pair[0], pair[1]

		// Inspect the enclosed characters for a strong type matching the
		// embedding direction.
		foundStrong := false
		var use Class
		for si := openSi + 1; si < closeSi; si++ {
			c := r.classes[idx[si]]
			if c&strongForN == 0 {
				continue
			}
			foundStrong = true
			dir := ClassL
			if c&rLike != 0 {
				dir = ClassR
			}
			if dir == embedDirection {
				use = dir
				break
			}
		}

		// A strong type opposite the embedding direction defers to the
		// preceding context: the nearest strong type before the opening
		// bracket (sos when none).
		if foundStrong && use == 0 {
			use = seq.sos
			for si := openSi - 1; si >= 0; si-- {
				c := r.classes[idx[si]]
				if c&strongForN == 0 {
					continue
				}
				dir := ClassL
				if c&rLike != 0 {
					dir = ClassR
				}
				if dir != embedDirection {
					use = dir
				} else {
					use = embedDirection
				}
				break
			}
		}

		if use == 0 {
			continue
		}
		r.classes[idx[openSi]] = use
		r.classes[idx[closeSi]] = use
		counts[use] += 2

		// NSMs (by original class) immediately following a resolved
		// bracket inherit the bracket's new type, whichever direction
		// it resolved to.
		for _, bracketSi := range [2]int{openSi, closeSi} {
			for si := bracketSi + 1; si < len(idx); si++ {
				if r.origClasses[idx[si]] != ClassNSM {
					break
				}
				r.classes[idx[si]] = use
			}
		}
	}

	// === N1/N2: remaining neutral runs ===
	for si := 0; si < len(idx); si++ {
		if r.classes[idx[si]]&neutralIsolateClasses == 0 {
			continue
		}
		runEnd := si
		for runEnd+1 < len(idx) && r.classes[idx[runEnd+1]]&neutralIsolateClasses != 0 {
			runEnd++
		}
		prev := seq.sos
		if si > 0 {
			if r.classes[idx[si-1]]&rLike != 0 {
				prev = ClassR
			} else {
				prev = ClassL
			}
		}
		next := seq.eos
		if runEnd+1 < len(idx) {
			if r.classes[idx[runEnd+1]]&rLike != 0 {
				next = ClassR
			} else {
				next = ClassL
			}
		}
		use := embedDirection
		if prev == next {
			use = prev
		}
		for sj := si; sj <= runEnd; sj++ {
			r.classes[idx[sj]] = use
		}
		si = runEnd
	}
}

// resolveImplicitLevels applies I1-I2 to one isolating run sequence.
func (r *resolver) resolveImplicitLevels(seq runSequence) {
	for _, i := range seq.indices {
		level := r.levels[i]
		c := r.classes[i]
		if level&1 == 1 {
			// I2: on odd levels L, EN and AN go up one.
			if c&(ClassL|ClassEN|ClassAN) != 0 {
				r.levels[i] = level + 1
			}
		} else {
			// I1: on even levels R goes up one, AN and EN go up two.
			if c == ClassR {
				r.levels[i] = level + 1
			} else if c&(ClassAN|ClassEN) != 0 {
				r.levels[i] = level + 2
			}
		}
	}
}
