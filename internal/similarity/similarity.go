package similarity

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/blackrent/backoffice/internal/model"
)

// Scores holds per-signal likeness between two customers, each in [0,1].
// A signal is only scored when the field is non-empty on both sides.
type Scores struct {
	Name  float64
	Email float64
	Phone float64
}

// Score computes all three signals for a pair of customers. Email and phone
// are binary indicators (exact match after normalization), name is fuzzy.
func Score(a, b *model.Customer) Scores {
	var s Scores

	if a.Email != "" && b.Email != "" && strings.EqualFold(strings.TrimSpace(a.Email), strings.TrimSpace(b.Email)) {
		s.Email = 1
	}

	aPhone := normalizePhone(a.Phone)
	bPhone := normalizePhone(b.Phone)
	if aPhone != "" && bPhone != "" && aPhone == bPhone {
		s.Phone = 1
	}

	aName := NormalizeName(a.Name)
	bName := NormalizeName(b.Name)
	if aName != "" && bName != "" {
		s.Name = nameLikeness(aName, bName)
	}

	return s
}

// Best picks the strongest eligible signal for a candidate pair. Email and
// phone are eligible only at 1.0, name at nameThreshold or above. The second
// return is the score, the third reports whether any signal qualified.
func (s Scores) Best(nameThreshold float64) (model.Similarity, float64, bool) {
	switch {
	case s.Email == 1:
		return model.SimilarityEmail, s.Email, true
	case s.Phone == 1:
		return model.SimilarityPhone, s.Phone, true
	case s.Name >= nameThreshold:
		return model.SimilarityName, s.Name, true
	}
	return "", 0, false
}

// NormalizeName lower-cases, trims, collapses inner whitespace and folds
// diacritics so manual-entry variants of the same name compare equal
// ("Ján  Novák" -> "jan novak").
func NormalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Join(strings.Fields(s), " ")

	folded, _, err := transform.String(foldTransformer(), s)
	if err != nil {
		return s
	}
	return folded
}

func foldTransformer() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

func normalizePhone(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// nameLikeness is normalized edit distance over already-normalized names:
// 1 - levenshtein/maxLen, so identical strings score 1 and disjoint ones 0.
func nameLikeness(a, b string) float64 {
	if a == b {
		return 1
	}

	ar := []rune(a)
	br := []rune(b)
	longest := len(ar)
	if len(br) > longest {
		longest = len(br)
	}
	if longest == 0 {
		return 0
	}

	return 1 - float64(levenshtein(ar, br))/float64(longest)
}

func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}

			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
