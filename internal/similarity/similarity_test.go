package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blackrent/backoffice/internal/model"
)

func TestScoreEmailBinary(t *testing.T) {
	tests := []struct {
		name     string
		a        model.Customer
		b        model.Customer
		expected float64
	}{
		{
			name:     "same email different case",
			a:        model.Customer{Email: "Jan@X.sk"},
			b:        model.Customer{Email: "jan@x.sk"},
			expected: 1,
		},
		{
			name:     "different emails",
			a:        model.Customer{Email: "jan@x.sk"},
			b:        model.Customer{Email: "jano@x.sk"},
			expected: 0,
		},
		{
			name:     "one side empty",
			a:        model.Customer{Email: "jan@x.sk"},
			b:        model.Customer{},
			expected: 0,
		},
		{
			name:     "both sides empty",
			a:        model.Customer{},
			b:        model.Customer{},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Score(&tt.a, &tt.b).Email)
		})
	}
}

func TestScorePhoneIgnoresFormatting(t *testing.T) {
	a := &model.Customer{Phone: "0900 123 456"}
	b := &model.Customer{Phone: "0900-123-456"}
	c := &model.Customer{Phone: "0900123457"}
	empty := &model.Customer{Phone: "  "}

	assert.Equal(t, float64(1), Score(a, b).Phone)
	assert.Equal(t, float64(0), Score(a, c).Phone)
	assert.Equal(t, float64(0), Score(a, empty).Phone)
}

func TestScoreNameToleratesDiacriticsAndSpacing(t *testing.T) {
	a := &model.Customer{Name: "Ján Novák"}
	b := &model.Customer{Name: "jan  novak"}

	assert.Equal(t, float64(1), Score(a, b).Name)
}

func TestScoreNamePartialLikeness(t *testing.T) {
	a := &model.Customer{Name: "Jan Novak"}
	b := &model.Customer{Name: "Jana Novak"}

	s := Score(a, b).Name
	assert.Greater(t, s, 0.8)
	assert.Less(t, s, 1.0)
}

func TestScoreSymmetry(t *testing.T) {
	a := &model.Customer{Name: "Peter Horváth", Email: "peter@x.sk", Phone: "0911222333"}
	b := &model.Customer{Name: "Petra Horvathova", Email: "petra@x.sk", Phone: "0911 222 333"}

	assert.Equal(t, Score(a, b), Score(b, a))
}

func TestScoreNoComparableFields(t *testing.T) {
	s := Score(&model.Customer{}, &model.Customer{})

	_, _, ok := s.Best(0.5)
	assert.False(t, ok, "pair without any comparable field must yield no signal")
}

func TestBestPrefersStrongSignals(t *testing.T) {
	s := Scores{Name: 0.92, Email: 1, Phone: 1}
	sig, score, ok := s.Best(0.75)

	assert.True(t, ok)
	assert.Equal(t, model.SimilarityEmail, sig)
	assert.Equal(t, float64(1), score)

	s = Scores{Name: 0.92, Phone: 1}
	sig, _, _ = s.Best(0.75)
	assert.Equal(t, model.SimilarityPhone, sig)

	s = Scores{Name: 0.92}
	sig, score, ok = s.Best(0.75)
	assert.True(t, ok)
	assert.Equal(t, model.SimilarityName, sig)
	assert.Equal(t, 0.92, score)

	s = Scores{Name: 0.6}
	_, _, ok = s.Best(0.75)
	assert.False(t, ok)
}
