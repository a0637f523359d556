package feed

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"
)

// MaxExcerptLength is the bound applied to item excerpts.
const MaxExcerptLength = 1000

// wordBoundaryFloor is how far into the text (as a fraction of maxLen) the
// nearest preceding space must be for truncation to back off to it. Earlier
// than that and the text is cut hard instead.
const wordBoundaryFloor = 0.6

// Normalize turns a raw description into bounded plain text: tags stripped,
// entities decoded, whitespace runs collapsed. maxLen <= 0 disables the
// length bound. Empty input yields an empty string.
func Normalize(raw string, maxLen int) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	text := stripMarkup(raw)
	text = norm.NFC.String(text)
	text = strings.Join(strings.Fields(text), " ")

	if maxLen <= 0 {
		return text
	}

	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}

	// Boundary search happens in rune space: a byte offset would overshoot
	// the floor comparison on multibyte text.
	cutAt := maxLen
	floor := int(wordBoundaryFloor * float64(maxLen))
	for i := maxLen - 1; i >= floor; i-- {
		if runes[i] == ' ' {
			cutAt = i
			break
		}
	}

	return strings.TrimRight(string(runes[:cutAt]), " ") + "…"
}

// stripMarkup drops tags and decodes entities. Input that doesn't parse as
// HTML at all is returned as-is; the whitespace collapse above still applies.
func stripMarkup(raw string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return raw
	}
	return doc.Text()
}
