package bidi

import (
	"sync"

	xbidi "golang.org/x/text/unicode/bidi"
)

// Class is a bidirectional character type per UAX #9, represented as a
// disjoint power-of-two bit flag. Membership of a character in a set of
// classes is a single bitwise AND against the union of the set's flags.
type Class uint32

const (
	// ClassL is a strong left-to-right character.
	ClassL Class = 1 << iota
	// ClassR is a strong right-to-left (non-Arabic) character.
	ClassR
	// ClassAL is a strong right-to-left Arabic letter.
	ClassAL
	// ClassEN is a European number.
	ClassEN
	// ClassES is a European number separator.
	ClassES
	// ClassET is a European number terminator.
	ClassET
	// ClassAN is an Arabic number.
	ClassAN
	// ClassCS is a common number separator.
	ClassCS
	// ClassB is a paragraph separator.
	ClassB
	// ClassS is a segment separator.
	ClassS
	// ClassWS is whitespace.
	ClassWS
	// ClassON is any other neutral.
	ClassON
	// ClassBN is a boundary neutral.
	ClassBN
	// ClassNSM is a nonspacing mark.
	ClassNSM
	// ClassLRO is the left-to-right override initiator.
	ClassLRO
	// ClassRLO is the right-to-left override initiator.
	ClassRLO
	// ClassLRE is the left-to-right embedding initiator.
	ClassLRE
	// ClassRLE is the right-to-left embedding initiator.
	ClassRLE
	// ClassPDF pops a directional embedding or override.
	ClassPDF
	// ClassLRI is the left-to-right isolate initiator.
	ClassLRI
	// ClassRLI is the right-to-left isolate initiator.
	ClassRLI
	// ClassFSI is the first-strong isolate initiator.
	ClassFSI
	// ClassPDI pops a directional isolate.
	ClassPDI
)

// Class sets used throughout the resolution rules.
const (
	isolateInitClasses = ClassLRI | ClassRLI | ClassFSI
	strongClasses      = ClassL | ClassR | ClassAL
	// neutralIsolateClasses are the NI types of rules N0-N2.
	neutralIsolateClasses = ClassB | ClassS | ClassWS | ClassON | isolateInitClasses | ClassPDI
	// bnLikeClasses are removed by X9; retained here per the UAX #9 §5.2
	// compatibility scheme and skipped by the W/N rules instead.
	bnLikeClasses = ClassBN | ClassLRE | ClassRLE | ClassLRO | ClassRLO | ClassPDF
	// trailingClasses are subject to the end-of-line level reset of L1.
	trailingClasses = ClassS | ClassB | ClassWS | isolateInitClasses | ClassPDI | bnLikeClasses
)

// classNames maps each flag to its UAX #9 abbreviation, for diagnostics.
var classNames = map[Class]string{
	ClassL: "L", ClassR: "R", ClassAL: "AL", ClassEN: "EN", ClassES: "ES",
	ClassET: "ET", ClassAN: "AN", ClassCS: "CS", ClassB: "B", ClassS: "S",
	ClassWS: "WS", ClassON: "ON", ClassBN: "BN", ClassNSM: "NSM",
	ClassLRO: "LRO", ClassRLO: "RLO", ClassLRE: "LRE", ClassRLE: "RLE",
	ClassPDF: "PDF", ClassLRI: "LRI", ClassRLI: "RLI", ClassFSI: "FSI",
	ClassPDI: "PDI",
}

// String returns the UAX #9 abbreviation of the class.
func (c Class) String() string {
	if s, ok := classNames[c]; ok {
		return s
	}
	return "Unknown"
}

// classTable translates golang.org/x/text/unicode/bidi classes into our
// flag representation. Built once, immutable afterwards.
type classTable struct {
	byXClass [xbidi.PDI + 1]Class
}

var classTableOnce = sync.OnceValue(func() *classTable {
	t := &classTable{}
	for x, c := range map[xbidi.Class]Class{
		xbidi.L: ClassL, xbidi.R: ClassR, xbidi.AL: ClassAL,
		xbidi.EN: ClassEN, xbidi.ES: ClassES, xbidi.ET: ClassET,
		xbidi.AN: ClassAN, xbidi.CS: ClassCS, xbidi.B: ClassB,
		xbidi.S: ClassS, xbidi.WS: ClassWS, xbidi.ON: ClassON,
		xbidi.BN: ClassBN, xbidi.NSM: ClassNSM,
		xbidi.LRO: ClassLRO, xbidi.RLO: ClassRLO,
		xbidi.LRE: ClassLRE, xbidi.RLE: ClassRLE, xbidi.PDF: ClassPDF,
		xbidi.LRI: ClassLRI, xbidi.RLI: ClassRLI, xbidi.FSI: ClassFSI,
		xbidi.PDI: ClassPDI,
	} {
		t.byXClass[x] = c
	}
	return t
})

// ClassOf returns the bidirectional class of a character.
// Characters the Unicode database leaves unassigned resolve to ClassL.
func ClassOf(r rune) Class {
	props, _ := xbidi.LookupRune(r)
	x := props.Class()
	t := classTableOnce()
	if int(x) < len(t.byXClass) {
		if c := t.byXClass[x]; c != 0 {
			return c
		}
	}
	return ClassL
}

// classesOf returns the classes of every rune in text, one entry per rune.
func classesOf(runes []rune) []Class {
	classes := make([]Class, len(runes))
	for i, r := range runes {
		classes[i] = ClassOf(r)
	}
	return classes
}
