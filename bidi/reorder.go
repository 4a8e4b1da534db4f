package bidi

// Segment is an inclusive rune index range [Start, End] to be visually
// reversed. Segments returned by ReorderSegments compose: each reversal
// applies on top of the previous ones.
type Segment struct {
	Start int
	End   int
}

// ReorderSegments computes the rule L2 reorder segments for the rune
// range [start, end] of text, which typically covers one rendered line.
// Rule L1's end-of-line level reset is re-applied to the range first, so
// callers pass the original Resolve result unmodified.
//
// For each level from the highest present down to the lowest odd level,
// every maximal contiguous range at or above that level produces one
// segment, highest levels first. Applying the reversals in order yields
// the visual character order.
func ReorderSegments(text string, res Result, start, end int) []Segment {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	start = max(start, 0)
	end = min(end, len(runes)-1)

	var segments []Segment
	for _, p := range res.Paragraphs {
		lineStart := max(start, p.Start)
		lineEnd := min(end, p.End)
		if lineStart >= lineEnd {
			continue
		}

		// Local copy: the L1 line-end reset must not alter the shared
		// resolve result.
		lineLevels := make([]uint8, lineEnd-lineStart+1)
		copy(lineLevels, res.Levels[lineStart:lineEnd+1])

		// L1: whitespace, isolate formatting and BN-like characters at
		// the end of the line return to the paragraph level.
		for i := lineEnd; i >= lineStart; i-- {
			if ClassOf(runes[i])&trailingClasses == 0 {
				break
			}
			lineLevels[i-lineStart] = p.Level
		}

		maxLevel := p.Level
		minOddLevel := uint8(maxDepth + 2)
		for _, level := range lineLevels {
			if level > maxLevel {
				maxLevel = level
			}
			if level|1 < minOddLevel {
				minOddLevel = level | 1
			}
		}

		// L2, highest level first. Single-character ranges reverse to
		// themselves and are omitted.
		for level := maxLevel; level >= minOddLevel; level-- {
			for i := 0; i < len(lineLevels); i++ {
				if lineLevels[i] < level {
					continue
				}
				segStart := i
				for i+1 < len(lineLevels) && lineLevels[i+1] >= level {
					i++
				}
				if i > segStart {
					segments = append(segments, Segment{
						Start: segStart + lineStart,
						End:   i + lineStart,
					})
				}
			}
			if level == 0 {
				break
			}
		}
	}
	return segments
}

// ReorderedIndices returns the permutation mapping visual position to
// logical rune index for the range [start, end] of text: element v holds
// the logical index of the character displayed at visual position v.
func ReorderedIndices(text string, res Result, start, end int) []int {
	segments := ReorderSegments(text, res, start, end)
	indices := make([]int, len([]rune(text)))
	for i := range indices {
		indices[i] = i
	}
	for _, seg := range segments {
		for lo, hi := seg.Start, seg.End; lo < hi; lo, hi = lo+1, hi-1 {
			indices[lo], indices[hi] = indices[hi], indices[lo]
		}
	}
	return indices
}
