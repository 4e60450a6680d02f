// Package lang holds a cheap stop-word heuristic that guesses whether a
// fragment of text is still written in the source language.
//
// It is a guardrail for model output, not a language classifier.
package lang

import "strings"

// minSourceWords is the least number of source stop words a fragment must
// contain before it can be judged as source language. Short correct
// translations often carry no target stop words at all.
const minSourceWords = 2

var stopWords = map[string][]string{
	"es": {"de", "la", "que", "el", "en", "y", "a", "los", "se", "del"},
	"en": {"the", "to", "and", "of", "a", "in", "that", "is", "for"},
}

// StopWords returns the function words known for a language code such as
// "es" or "es-419". Unknown languages get nil.
func StopWords(code string) []string {
	return stopWords[base(code)]
}

var names = map[string]string{
	"de": "German",
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"it": "Italian",
	"ko": "Korean",
	"pt": "Portuguese",
}

// Name returns the English name of a language code, or the code itself
// when it is not known.
func Name(code string) string {
	if name, ok := names[base(code)]; ok {
		return name
	}
	return code
}

func base(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexAny(code, "-_"); i >= 0 {
		code = code[:i]
	}
	return code
}

// Detector compares a fragment against the stop words of a source and a
// target language.
type Detector struct {
	source map[string]struct{}
	target map[string]struct{}
}

func NewDetector(sourceLanguage, targetLanguage string) *Detector {
	return NewDetectorWithWords(StopWords(sourceLanguage), StopWords(targetLanguage))
}

func NewDetectorWithWords(source, target []string) *Detector {
	return &Detector{
		source: wordSet(source),
		target: wordSet(target),
	}
}

func wordSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = struct{}{}
	}
	return set
}

// Count returns how many times source and target stop words occur in the
// text, case-insensitively. A word only counts when spaces surround it, so
// "de," or "the." at a clause end is not counted.
func (d *Detector) Count(text string) (source, target int) {
	padded := " " + strings.ToLower(text) + " "
	return occurrences(padded, d.source), occurrences(padded, d.target)
}

func occurrences(padded string, words map[string]struct{}) int {
	n := 0
	for w := range words {
		n += strings.Count(padded, " "+w+" ")
	}
	return n
}

// IsSource reports whether text still looks like the source language.
func (d *Detector) IsSource(text string) bool {
	source, target := d.Count(text)
	return source > target && source >= minSourceWords
}
