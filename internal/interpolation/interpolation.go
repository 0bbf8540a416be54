package interpolation

import (
	"regexp"
	"slices"
	"sort"
)

// tokenMatch stores a detected placeholder position.
type tokenMatch struct {
	start, end int
	value      string
}

// patterns detect the parts of a Ren'Py string a translation must keep.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`\[\[`),                             // escaped bracket
	regexp.MustCompile(`\{\{`),                             // escaped brace
	regexp.MustCompile(`\[[^\[\]]+\]`),                     // [player], [score:d]
	regexp.MustCompile(`\{/?[a-z]+(?:=[^{}]*)?\}`),         // {b}, {/b}, {color=#f00}
	regexp.MustCompile(`%\([A-Za-z_]\w*\)[-+0-9.]*[sdif]`), // %(name)s
	regexp.MustCompile(`%[-+0-9]*\.?[0-9]*[sdif]`),         // %s, %d, %2d
	regexp.MustCompile(`%%`),                               // escaped percent literal
}

// Find returns the placeholders and text tags of text in order of
// appearance. Escaped brackets and braces are not placeholders.
func Find(text string) []string {
	var all []tokenMatch
	for _, p := range patterns {
		for _, loc := range p.FindAllStringIndex(text, -1) {
			all = append(all, tokenMatch{start: loc[0], end: loc[1], value: text[loc[0]:loc[1]]})
		}
	}
	if len(all) == 0 {
		return nil
	}

	// Earliest first; on a tie the longest wins.
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].start != all[j].start {
			return all[i].start < all[j].start
		}
		return all[i].end-all[i].start > all[j].end-all[j].start
	})

	var tokens []string
	lastEnd := -1
	for _, m := range all {
		if m.start < lastEnd {
			continue
		}
		lastEnd = m.end
		if m.value == "[[" || m.value == "{{" || m.value == "%%" {
			continue
		}
		tokens = append(tokens, m.value)
	}
	return tokens
}

// Compare reports the placeholders of original absent from translated and
// those of translated absent from original, counting repeats. Order is
// ignored since translations may reorder a sentence.
func Compare(original, translated string) (missing, extra []string) {
	want := Find(original)
	got := Find(translated)

	remaining := slices.Clone(got)
	for _, tok := range want {
		if i := slices.Index(remaining, tok); i >= 0 {
			remaining = slices.Delete(remaining, i, i+1)
			continue
		}
		missing = append(missing, tok)
	}
	return missing, remaining
}
