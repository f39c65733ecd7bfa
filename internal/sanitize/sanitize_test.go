package sanitize

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestSanitizer(chance float64) *Sanitizer {
	s := New(rand.New(rand.NewSource(1)))
	s.EmojiChance = chance
	return s
}

func TestClean_StripsThinkSpans(t *testing.T) {
	s := newTestSanitizer(0)

	out := s.Clean("<think>reasoning</think>Hello")
	assert.Equal(t, "Hello.", out)

	out = s.Clean("<think>multi\nline\nreasoning</think>Hi there!")
	assert.Equal(t, "Hi there!", out)
}

func TestClean_StripsUnterminatedTags(t *testing.T) {
	s := newTestSanitizer(0)

	assert.Equal(t, "Hello.", s.Clean("<think>Hello"))
	assert.Equal(t, "Hello.", s.Clean("Hello</think>"))
	assert.Equal(t, "Hello.", s.Clean("<s>Hello</s>"))
}

func TestClean_CollapsesBlankRuns(t *testing.T) {
	s := newTestSanitizer(0)

	assert.Equal(t, "A.\n\nB.", s.Clean("A.\n\n\n\nB."))
	assert.Equal(t, "A.\n\nB.", s.Clean("A.\n  \n \nB."))
}

func TestClean_CompletesSentences(t *testing.T) {
	s := newTestSanitizer(0)

	assert.Equal(t, "Hello.", s.Clean("Hello"))
	assert.Equal(t, "Hello!", s.Clean("Hello!"))
	assert.Equal(t, "Hello?", s.Clean("Hello?"))
	assert.Equal(t, "Hello…", s.Clean("Hello…"))
}

func TestClean_ReflowsParagraphs(t *testing.T) {
	s := newTestSanitizer(0)

	out := s.Clean("first   paragraph\twith  gaps.\n\n  second paragraph.  ")
	assert.Equal(t, "first paragraph with gaps.\n\nsecond paragraph.", out)
}

func TestClean_EmptyInput(t *testing.T) {
	s := newTestSanitizer(1)

	assert.Equal(t, "", s.Clean(""))
	assert.Equal(t, "", s.Clean("   \n \n  "))
	assert.Equal(t, "", s.Clean("<think>only reasoning</think>"))
}

func TestClean_EmojiAppendedWhenChanceHits(t *testing.T) {
	s := newTestSanitizer(1)

	out := s.Clean("Hello.")
	assert.NotEqual(t, "Hello.", out)
	assert.True(t, strings.HasPrefix(out, "Hello."))

	found := false
	for _, e := range s.Palette {
		if strings.HasSuffix(out, e) {
			found = true
		}
	}
	assert.True(t, found, "expected a palette emoji suffix, got %q", out)
}

func TestClean_EmojiSkippedWhenChanceMisses(t *testing.T) {
	s := newTestSanitizer(0)
	assert.Equal(t, "Hello.", s.Clean("Hello."))
}

func TestMaybeAddEmoji_SkipsTrailingEmoji(t *testing.T) {
	s := newTestSanitizer(1)

	assert.Equal(t, "Hello 😊", s.maybeAddEmoji("Hello 😊"))
}

func TestClean_Deterministic(t *testing.T) {
	a := New(rand.New(rand.NewSource(42)))
	b := New(rand.New(rand.NewSource(42)))

	in := "Some reply that might get an emoji"
	assert.Equal(t, a.Clean(in), b.Clean(in))
}
