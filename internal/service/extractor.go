package service

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"housing-assistant/internal/config"
	"housing-assistant/internal/model"
)

// tokenSeparator splits the residual text into candidate keywords
var tokenSeparator = regexp.MustCompile(`[\s,，.。:：;；!！?？]+`)

// FacetExtractor turns a free-form housing query into a FacetSet using
// ordered dictionary scans and price patterns. It is safe for concurrent use.
type FacetExtractor struct {
	vocab config.Vocabulary

	terms       []termPattern
	suffixPrice *regexp.Regexp
	prefixPrice *regexp.Regexp
	rangePrice  *regexp.Regexp
}

// termPattern matches one property term; English terms only as whole words
type termPattern struct {
	term string
	re   *regexp.Regexp
}

// NewFacetExtractor compiles the price patterns for the given vocabulary.
// The vocabulary is copied; later changes to the caller's slices have no effect.
func NewFacetExtractor(vocab config.Vocabulary) *FacetExtractor {
	v := config.Vocabulary{
		Cities:              clone(vocab.Cities),
		Orientations:        clone(vocab.Orientations),
		OrientationMarkers:  clone(vocab.OrientationMarkers),
		PropertyTerms:       clone(vocab.PropertyTerms),
		PriceUnits:          clone(vocab.PriceUnits),
		PriceMaxSuffixes:    lowerAll(vocab.PriceMaxSuffixes),
		PriceMinSuffixes:    lowerAll(vocab.PriceMinSuffixes),
		PriceApproxSuffixes: lowerAll(vocab.PriceApproxSuffixes),
		PriceMaxPrefixes:    lowerAll(vocab.PriceMaxPrefixes),
		PriceMinPrefixes:    lowerAll(vocab.PriceMinPrefixes),
		PriceApproxPrefixes: lowerAll(vocab.PriceApproxPrefixes),
		RangeSeparators:     clone(vocab.RangeSeparators),
	}

	units := ""
	if len(v.PriceUnits) > 0 {
		// "5000 kitchen" must not read the k as a unit
		units = `(?:` + alternation(v.PriceUnits, false, true) + `)?`
	}
	suffixes := concat(v.PriceMaxSuffixes, v.PriceMinSuffixes, v.PriceApproxSuffixes)
	prefixes := concat(v.PriceMaxPrefixes, v.PriceMinPrefixes, v.PriceApproxPrefixes)

	e := &FacetExtractor{vocab: v}
	for _, term := range v.PropertyTerms {
		if term == "" {
			continue
		}
		// "small" must not yield "mall", "parking" must not yield "park"
		e.terms = append(e.terms, termPattern{
			term: term,
			re:   regexp.MustCompile(alternation([]string{term}, true, true)),
		})
	}
	if len(suffixes) > 0 {
		e.suffixPrice = regexp.MustCompile(`(?i)(\d+)\s*` + units + `\s*(?:` + alternation(suffixes, false, false) + `)`)
	}
	if len(prefixes) > 0 {
		e.prefixPrice = regexp.MustCompile(`(?i)(` + alternation(prefixes, true, false) + `)\s*(\d+)\s*` + units)
	}
	if len(v.RangeSeparators) > 0 {
		e.rangePrice = regexp.MustCompile(`(?i)(\d+)\s*` + units + `\s*(?:` + alternation(v.RangeSeparators, false, false) + `)\s*(\d+)\s*` + units)
	}
	return e
}

// Extract runs the extraction stages in order: city, orientation, price,
// property terms, then residual tokens. Each stage blanks what it matched
// before handing the text to the next one. It never fails; an empty query
// yields an all-unset FacetSet.
func (e *FacetExtractor) Extract(query string) *model.FacetSet {
	facets := &model.FacetSet{Keywords: []string{}}
	if strings.TrimSpace(query) == "" {
		return facets
	}

	text := query
	facets.City, text = e.extractCity(text)
	facets.Orientation, text = e.extractOrientation(text)
	facets.MinPrice, facets.MaxPrice, text = e.extractPrice(text)

	var terms []string
	terms, text = e.extractTerms(text)
	for _, kw := range append(terms, residualTokens(text)...) {
		facets.Keywords = appendUnique(facets.Keywords, kw)
	}
	return facets
}

func (e *FacetExtractor) extractCity(text string) (*string, string) {
	for _, city := range e.vocab.Cities {
		if city != "" && strings.Contains(text, city) {
			c := city
			return &c, strings.ReplaceAll(text, city, " ")
		}
	}
	return nil, text
}

func (e *FacetExtractor) extractOrientation(text string) (*string, string) {
	for _, phrase := range e.vocab.Orientations {
		if phrase == "" || !strings.Contains(text, phrase) {
			continue
		}
		core := phrase
		for _, marker := range e.vocab.OrientationMarkers {
			if marker != "" {
				core = strings.ReplaceAll(core, marker, "")
			}
		}
		core = strings.Trim(core, " -")
		if core == "" {
			core = phrase
		}
		return &core, strings.ReplaceAll(text, phrase, " ")
	}
	return nil, text
}

// extractPrice searches the suffix, prefix and range patterns against the
// same input. A range overwrites both bounds even when a single bound matched.
func (e *FacetExtractor) extractPrice(text string) (minPrice, maxPrice *int64, residual string) {
	var spans [][]int
	lower := strings.ToLower(text)

	if e.suffixPrice != nil {
		matches := e.suffixPrice.FindAllStringSubmatchIndex(text, -1)
		if len(matches) > 0 {
			if n, ok := parseAmount(text[matches[0][2]:matches[0][3]]); ok {
				switch {
				case containsAny(lower, e.vocab.PriceMaxSuffixes):
					maxPrice = &n
				case containsAny(lower, e.vocab.PriceMinSuffixes):
					minPrice = &n
				}
			}
		}
		spans = appendSpans(spans, matches)
	}

	if e.prefixPrice != nil {
		matches := e.prefixPrice.FindAllStringSubmatchIndex(text, -1)
		for _, m := range matches {
			qualifier := strings.ToLower(text[m[2]:m[3]])
			n, ok := parseAmount(text[m[4]:m[5]])
			if !ok {
				continue
			}
			switch {
			case contains(e.vocab.PriceMaxPrefixes, qualifier):
				if maxPrice == nil {
					v := n
					maxPrice = &v
				}
			case contains(e.vocab.PriceMinPrefixes, qualifier):
				if minPrice == nil {
					v := n
					minPrice = &v
				}
			}
		}
		spans = appendSpans(spans, matches)
	}

	if e.rangePrice != nil {
		matches := e.rangePrice.FindAllStringSubmatchIndex(text, -1)
		if len(matches) > 0 {
			m := matches[0]
			low, okLow := parseAmount(text[m[2]:m[3]])
			high, okHigh := parseAmount(text[m[4]:m[5]])
			if okLow && okHigh {
				minPrice, maxPrice = &low, &high
			}
		}
		spans = appendSpans(spans, matches)
	}

	return minPrice, maxPrice, blankSpans(text, spans)
}

func (e *FacetExtractor) extractTerms(text string) ([]string, string) {
	var found []string
	for _, t := range e.terms {
		if t.re.MatchString(text) {
			found = append(found, t.term)
			text = t.re.ReplaceAllLiteralString(text, " ")
		}
	}
	return found, text
}

// residualTokens returns the leftover words of at least two characters
func residualTokens(text string) []string {
	var tokens []string
	for _, tok := range tokenSeparator.Split(text, -1) {
		if utf8.RuneCountInString(tok) >= 2 {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

func parseAmount(s string) (int64, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func appendSpans(spans [][]int, matches [][]int) [][]int {
	for _, m := range matches {
		spans = append(spans, []int{m[0], m[1]})
	}
	return spans
}

// blankSpans replaces every span, after merging overlaps, with a single space
func blankSpans(text string, spans [][]int) string {
	if len(spans) == 0 {
		return text
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i][0] < spans[j][0] })

	var b strings.Builder
	pos := 0
	for i := 0; i < len(spans); {
		start, end := spans[i][0], spans[i][1]
		for i++; i < len(spans) && spans[i][0] <= end; i++ {
			if spans[i][1] > end {
				end = spans[i][1]
			}
		}
		b.WriteString(text[pos:start])
		b.WriteByte(' ')
		pos = end
	}
	b.WriteString(text[pos:])
	return b.String()
}

// alternation builds a regexp alternation, longest entries first so that
// a phrase is never shadowed by one of its prefixes. The bound flags put a
// word boundary on the leading or trailing edge of entries that start or end
// with an ASCII letter.
func alternation(items []string, boundLeading, boundTrailing bool) string {
	sorted := clone(items)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })

	quoted := make([]string, 0, len(sorted))
	for _, s := range sorted {
		if s == "" {
			continue
		}
		q := regexp.QuoteMeta(s)
		if boundLeading && isASCIILetter(s[0]) {
			q = `\b` + q
		}
		if boundTrailing && isASCIILetter(s[len(s)-1]) {
			q += `\b`
		}
		quoted = append(quoted, q)
	}
	return strings.Join(quoted, "|")
}

func isASCIILetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func containsAny(text string, markers []string) bool {
	for _, m := range markers {
		if m != "" && strings.Contains(text, m) {
			return true
		}
	}
	return false
}

func contains(items []string, s string) bool {
	for _, item := range items {
		if item == s {
			return true
		}
	}
	return false
}

func appendUnique(list []string, s string) []string {
	if contains(list, s) {
		return list
	}
	return append(list, s)
}

func clone(items []string) []string {
	return append([]string(nil), items...)
}

func lowerAll(items []string) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = strings.ToLower(s)
	}
	return out
}

func concat(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}
