package speakloud

import "unicode/utf8"

// SelectBest picks the winning candidate. Candidates with a title, an
// author and text are preferred; then candidates with typed structure; then
// any candidate. Within a tier the longest text wins and ties keep the
// earlier candidate. Returns nil only when candidates is empty.
func SelectBest(candidates []*Candidate) *Candidate {
	tiers := []func(*Candidate) bool{
		func(c *Candidate) bool { return c.Title != "" && c.Author != "" && c.Text != "" },
		func(c *Candidate) bool { return HasStructure(c.Blocks) },
		func(c *Candidate) bool { return true },
	}

	for _, eligible := range tiers {
		if best := longest(candidates, eligible); best != nil {
			return best
		}
	}
	return nil
}

func longest(candidates []*Candidate, eligible func(*Candidate) bool) *Candidate {
	var best *Candidate
	bestLen := -1
	for _, c := range candidates {
		if c == nil || !eligible(c) {
			continue
		}
		if n := utf8.RuneCountInString(c.Text); n > bestLen {
			best, bestLen = c, n
		}
	}
	return best
}
