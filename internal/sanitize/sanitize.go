// Package sanitize turns raw model completions into delivery-ready text.
package sanitize

import (
	"math/rand"
	"regexp"
	"strings"
)

var (
	thinkRe     = regexp.MustCompile(`(?s)<think>.*?</think>`)
	blankRunRe  = regexp.MustCompile(`\n\s*\n`)
	sentenceRe  = regexp.MustCompile(`[.!?…]$`)
	innerSpaces = regexp.MustCompile(`\s+`)
)

// DefaultEmoji is the palette appended (sometimes) to finished replies.
var DefaultEmoji = []string{"😌", "😊", "💖", "🌙", "🎭", "🤍", "💫", "🥀", "🥂", "😒"}

const defaultEmojiChance = 0.2

type Sanitizer struct {
	rng *rand.Rand

	// EmojiChance is the probability of appending a palette emoji to a
	// reply that does not already end in one.
	EmojiChance float64
	Palette     []string
}

// New builds a Sanitizer around the given random source. The source is
// injected so tests can pin both emoji branches.
func New(rng *rand.Rand) *Sanitizer {
	return &Sanitizer{
		rng:         rng,
		EmojiChance: defaultEmojiChance,
		Palette:     DefaultEmoji,
	}
}

// Clean applies the fixed pipeline: strip reasoning spans and sequence
// markers, collapse blank runs, finish the last sentence, re-flow
// paragraphs, then maybe append an emoji.
func (s *Sanitizer) Clean(text string) string {
	cleaned := thinkRe.ReplaceAllString(text, "")
	cleaned = strings.ReplaceAll(cleaned, "<think>", "")
	cleaned = strings.ReplaceAll(cleaned, "</think>", "")
	cleaned = strings.ReplaceAll(cleaned, "</s>", "")
	cleaned = strings.ReplaceAll(cleaned, "<s>", "")

	cleaned = strings.TrimSpace(blankRunRe.ReplaceAllString(cleaned, "\n\n"))
	cleaned = completeSentence(cleaned)
	cleaned = reflowParagraphs(cleaned)
	cleaned = s.maybeAddEmoji(cleaned)

	return cleaned
}

func completeSentence(text string) string {
	if text == "" {
		return text
	}
	if !sentenceRe.MatchString(text) {
		text += "."
	}
	return text
}

func reflowParagraphs(text string) string {
	paragraphs := strings.Split(text, "\n\n")
	formatted := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		if strings.TrimSpace(p) == "" {
			continue
		}
		formatted = append(formatted, strings.TrimSpace(innerSpaces.ReplaceAllString(p, " ")))
	}
	return strings.Join(formatted, "\n\n")
}

func (s *Sanitizer) maybeAddEmoji(text string) string {
	if text == "" {
		return text
	}
	if s.rng.Float64() >= s.EmojiChance {
		return text
	}
	for _, e := range s.Palette {
		if strings.HasSuffix(text, e) {
			return text
		}
	}
	return text + s.Palette[s.rng.Intn(len(s.Palette))]
}
