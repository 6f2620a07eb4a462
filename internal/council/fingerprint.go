package council

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"

	"github.com/sevigo/code-council/internal/core"
)

const (
	lineBucketSize     = 5
	fingerprintMsgSize = 100
)

// Fingerprinter derives a content fingerprint used to collapse near-identical
// candidates reported by different agents or units.
type Fingerprinter struct {
	stopWords map[string]struct{}
}

func NewFingerprinter(lex *Lexicon) *Fingerprinter {
	if lex == nil {
		lex = DefaultLexicon()
	}
	return &Fingerprinter{stopWords: lex.stopWordSet()}
}

// Clean lower-cases and tokenises a message, dropping stop words.
func (f *Fingerprinter) Clean(message string) string {
	tokens := strings.FieldsFunc(lower(message), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	kept := tokens[:0]
	for _, t := range tokens {
		if _, stop := f.stopWords[t]; stop {
			continue
		}
		kept = append(kept, t)
	}
	return strings.Join(kept, " ")
}

// Fingerprint hashes file, line bucket, category and the cleaned message prefix.
func (f *Fingerprinter) Fingerprint(c core.CandidateAnnotation) string {
	cleaned := []rune(f.Clean(c.Message))
	if len(cleaned) > fingerprintMsgSize {
		cleaned = cleaned[:fingerprintMsgSize]
	}
	key := fmt.Sprintf("%s:%d:%s:%s", c.File, c.LineStart/lineBucketSize, c.Category, string(cleaned))
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
