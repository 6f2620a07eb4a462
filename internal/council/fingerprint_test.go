package council

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sevigo/code-council/internal/core"
)

func TestFingerprinter_Clean(t *testing.T) {
	f := NewFingerprinter(DefaultLexicon())

	assert.Equal(t, "variable unused", f.Clean("The Variable IS unused!"))
	assert.Equal(t, "usestate called conditionally", f.Clean("useState is called conditionally"))
	assert.Equal(t, "", f.Clean("it is the"))
}

func TestFingerprinter_Fingerprint(t *testing.T) {
	f := NewFingerprinter(nil)
	base := core.CandidateAnnotation{File: "a.ts", LineStart: 5, LineEnd: 5, Category: "types", Message: "Unused variable"}

	sameBucket := base
	sameBucket.LineStart = 9
	sameBucket.Message = "The variable unused"
	// stop words are removed but word order still matters
	assert.NotEqual(t, f.Fingerprint(base), f.Fingerprint(sameBucket))

	sameBucket.Message = "unused   VARIABLE."
	assert.Equal(t, f.Fingerprint(base), f.Fingerprint(sameBucket))

	nextBucket := base
	nextBucket.LineStart = 10
	assert.NotEqual(t, f.Fingerprint(base), f.Fingerprint(nextBucket))

	otherCategory := base
	otherCategory.Category = "perf"
	assert.NotEqual(t, f.Fingerprint(base), f.Fingerprint(otherCategory))

	assert.Len(t, f.Fingerprint(base), 64)
}
