// Package emails derives candidate contact addresses from resolved names.
package emails

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jonathan/founder-outreach/internal/domain"
	"github.com/jonathan/founder-outreach/internal/types"
)

// GenericLocalParts are used when no person could be resolved.
var GenericLocalParts = []string{"hello", "founders"}

// SplitName returns the first and last whitespace-separated tokens of name.
// A single token is returned as both first and last.
func SplitName(name string) (first, last string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], parts[0]
	default:
		return parts[0], parts[len(parts)-1]
	}
}

// Candidates returns the address patterns for one person, in a fixed order:
// first, first.last, firstlast, {initial}last, first_last. Duplicates are
// dropped while preserving order.
func Candidates(first, last, companyDomain string) []string {
	d := domain.Normalize(companyDomain)
	f := foldName(first)
	l := foldName(last)
	if d == "" || f == "" {
		return nil
	}
	if l == "" {
		l = f
	}

	initial := string([]rune(f)[0])
	locals := []string{
		f,
		f + "." + l,
		f + l,
		initial + l,
		f + "_" + l,
	}

	out := make([]string, 0, len(locals))
	seen := make(map[string]bool, len(locals))
	for _, local := range locals {
		addr := local + "@" + d
		if seen[addr] {
			continue
		}
		seen[addr] = true
		out = append(out, addr)
	}
	return out
}

// Generic returns the fallback addresses used when no person is known.
func Generic(companyDomain string) []string {
	d := domain.Normalize(companyDomain)
	if d == "" {
		return nil
	}
	out := make([]string, 0, len(GenericLocalParts))
	for _, local := range GenericLocalParts {
		out = append(out, local+"@"+d)
	}
	return out
}

// ForPeople concatenates the candidates of every person in order, without
// duplicates. When no person yields a usable name the generic addresses are
// returned instead.
func ForPeople(people []types.Person, companyDomain string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, p := range people {
		first, last := SplitName(p.Name)
		for _, addr := range Candidates(first, last, companyDomain) {
			if seen[addr] {
				continue
			}
			seen[addr] = true
			out = append(out, addr)
		}
	}
	if len(out) == 0 {
		return Generic(companyDomain)
	}
	return out
}

// foldName lower-cases s and keeps its letters and digits. Latin letters are
// folded to ASCII with their diacritics stripped; letters of other scripts are
// kept as they are, so non-Latin names still yield (internationalized) candidates.
func foldName(s string) string {
	var b strings.Builder
	prevLatin := false
	for _, r := range norm.NFC.String(strings.ToLower(s)) {
		switch {
		case unicode.Is(unicode.Latin, r):
			b.WriteString(asciiFold(r))
			prevLatin = true
		case unicode.IsMark(r):
			if !prevLatin {
				b.WriteRune(r)
			}
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevLatin = false
		default:
			prevLatin = false
		}
	}
	return b.String()
}

// asciiFold strips the diacritics of a Latin letter and drops what is left
// outside a-z.
func asciiFold(r rune) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, string(r))
	if err != nil {
		return ""
	}
	var b strings.Builder
	for _, c := range folded {
		if c >= 'a' && c <= 'z' {
			b.WriteRune(c)
		}
	}
	return b.String()
}
