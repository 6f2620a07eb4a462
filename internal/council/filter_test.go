package council

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sevigo/code-council/internal/core"
)

func TestQualityFilter_Keep(t *testing.T) {
	f := NewQualityFilter(DefaultLexicon())

	tests := []struct {
		name string
		cand core.CandidateAnnotation
		want bool
	}{
		{
			name: "plain error is kept",
			cand: core.CandidateAnnotation{Severity: core.SeverityError, Message: "Missing return type on exported function"},
			want: true,
		},
		{
			name: "hedged message is dropped",
			cand: core.CandidateAnnotation{Severity: core.SeverityWarning, Message: "Consider adding a null check"},
			want: false,
		},
		{
			name: "hedging is case insensitive",
			cand: core.CandidateAnnotation{Severity: core.SeverityError, Message: "This is POSSIBLY wrong"},
			want: false,
		},
		{
			name: "hedged suggestion is dropped",
			cand: core.CandidateAnnotation{Severity: core.SeverityWarning, Message: "Unchecked index access", Suggestion: "You might add a guard"},
			want: false,
		},
		{
			name: "info is always dropped",
			cand: core.CandidateAnnotation{Severity: core.SeverityInfo, Message: "Rename variable"},
			want: false,
		},
		{
			name: "false positive term at matching severity is dropped",
			cand: core.CandidateAnnotation{Severity: core.SeverityError, Message: "This can cause a crash"},
			want: false,
		},
		{
			name: "false positive term at other severity is kept",
			cand: core.CandidateAnnotation{Severity: core.SeverityWarning, Message: "This can cause a crash"},
			want: true,
		},
		{
			name: "co-term present drops",
			cand: core.CandidateAnnotation{Severity: core.SeverityError, Message: "Context value is null here"},
			want: false,
		},
		{
			name: "co-term absent keeps",
			cand: core.CandidateAnnotation{Severity: core.SeverityError, Message: "Context provider is missing"},
			want: true,
		},
		{
			name: "setState with useEffect is dropped",
			cand: core.CandidateAnnotation{Severity: core.SeverityError, Message: "setState inside useEffect loops"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Keep(tt.cand))
		})
	}
}

func TestQualityFilter_Idempotent(t *testing.T) {
	f := NewQualityFilter(nil)
	input := []core.CandidateAnnotation{
		{Severity: core.SeverityError, Message: "Unsafe cast to string"},
		{Severity: core.SeverityWarning, Message: "Consider memoizing"},
		{Severity: core.SeverityInfo, Message: "Typo in comment"},
		{Severity: core.SeverityWarning, Message: "Array index used as key"},
	}

	once := f.Filter(input)
	twice := f.Filter(once)

	assert.Equal(t, once, twice)
	assert.Len(t, once, 2)
	assert.Equal(t, "Unsafe cast to string", once[0].Message)
	assert.Equal(t, "Array index used as key", once[1].Message)
}
