package parse

// hasUnbalancedDelimiters reports whether content's (), [], and {} nesting
// never closes back to zero, or goes negative at any point — the
// regex/indentation extractors have no grammar to fail against, so this is
// their only signal for spec.md §8's "File with unparseable content"
// boundary case. It is a coarse heuristic: a bracket character inside a
// string or comment is still counted, so well-formed code that embeds an
// unbalanced bracket in a string literal can false-positive. Acceptable
// here since the boundary case only needs to be reachable, not exhaustive.
func hasUnbalancedDelimiters(content []byte) bool {
	depth := map[byte]int{'(': 0, '[': 0, '{': 0}
	closers := map[byte]byte{')': '(', ']': '[', '}': '{'}

	for _, b := range content {
		if _, ok := depth[b]; ok {
			depth[b]++
			continue
		}
		if opener, ok := closers[b]; ok {
			depth[opener]--
			if depth[opener] < 0 {
				return true
			}
		}
	}
	return depth['('] != 0 || depth['['] != 0 || depth['{'] != 0
}
