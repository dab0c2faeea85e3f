package similarity

// Span marks one matched fragment as [Start, End) rune offsets.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// HighlightSpans finds identical fragments shared by the two texts and
// returns their positions in each, for side-by-side highlighting in the
// teacher's comparison view. Fragments shorter than minMatchLen are noise
// and get dropped.
func HighlightSpans(baseText, otherText string, minMatchLen int) (baseSpans, otherSpans []Span) {
	a := []rune(baseText)
	b := []rune(otherText)
	baseSpans = []Span{}
	otherSpans = []Span{}
	collectMatches(a, b, 0, len(a), 0, len(b), minMatchLen, &baseSpans, &otherSpans)
	return baseSpans, otherSpans
}

// collectMatches recursively splits both texts around their longest
// common fragment, emitting matches in left-to-right order.
func collectMatches(a, b []rune, alo, ahi, blo, bhi, minLen int, baseSpans, otherSpans *[]Span) {
	i, j, size := longestMatch(a, b, alo, ahi, blo, bhi)
	if size == 0 {
		return
	}
	collectMatches(a, b, alo, i, blo, j, minLen, baseSpans, otherSpans)
	if size >= minLen {
		*baseSpans = append(*baseSpans, Span{Start: i, End: i + size})
		*otherSpans = append(*otherSpans, Span{Start: j, End: j + size})
	}
	collectMatches(a, b, i+size, ahi, j+size, bhi, minLen, baseSpans, otherSpans)
}

// longestMatch finds the longest run of equal runes between a[alo:ahi]
// and b[blo:bhi], scanning row by row with the run lengths ending at
// each position of b.
func longestMatch(a, b []rune, alo, ahi, blo, bhi int) (besti, bestj, bestsize int) {
	runLens := make(map[int]int)
	for i := alo; i < ahi; i++ {
		next := make(map[int]int)
		for j := blo; j < bhi; j++ {
			if a[i] != b[j] {
				continue
			}
			k := runLens[j-1] + 1
			next[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		runLens = next
	}
	return besti, bestj, bestsize
}
