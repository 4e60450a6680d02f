// Package translate turns finalized source-language utterances into
// target-language text, guarding against the model answering in the
// source language.
package translate

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"
	"node.town/relay/lang"
	"node.town/relay/llm"
)

type Translator struct {
	model    llm.LanguageModel
	detector *lang.Detector
	prompt   Prompt
	params   llm.GenerationParams
	logger   *log.Logger
	prefixes []string
}

func New(
	model llm.LanguageModel,
	detector *lang.Detector,
	prompt Prompt,
	params llm.GenerationParams,
	logger *log.Logger,
) *Translator {
	prompt = prompt.withDefaults()
	return &Translator{
		model:    model,
		detector: detector,
		prompt:   prompt,
		params:   params,
		logger:   logger,
		prefixes: []string{
			"translation:",
			"output:",
			"english:",
			strings.ToLower(prompt.TargetLanguage) + ":",
		},
	}
}

// Translate returns the translation of text, or "" when no trustworthy
// translation could be produced. It never fails: errors are logged and
// reported as an empty result.
func (t *Translator) Translate(ctx context.Context, text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	out, err := t.complete(ctx, t.prompt.System(), text)
	if err != nil {
		t.logger.Error("translate", "error", err, "text", text)
		return ""
	}

	if !t.detector.IsSource(out) {
		return out
	}

	t.logger.Warn("guardrail", "attempt", 1, "text", text, "output", out)

	out, err = t.complete(ctx, t.prompt.CorrectiveSystem(), text)
	if err != nil {
		t.logger.Error("translate retry", "error", err, "text", text)
		return ""
	}

	if t.detector.IsSource(out) {
		t.logger.Warn("guardrail", "attempt", 2, "text", text, "output", out)
		return ""
	}

	return out
}

func (t *Translator) complete(
	ctx context.Context,
	system string,
	text string,
) (string, error) {
	out, err := t.model.Complete(ctx, t.params.Request(system, Wrap(text)))
	if err != nil {
		return "", err
	}
	out = t.clean(out)
	if out == "" {
		return "", llm.ErrEmptyResponse
	}
	return out, nil
}

// clean strips the labels and tags models sometimes wrap around an answer.
func (t *Translator) clean(out string) string {
	out = strings.TrimSpace(out)
	out = strings.TrimPrefix(out, openTag)
	out = strings.TrimSuffix(out, closeTag)
	out = strings.TrimSpace(out)

	for stripped := true; stripped; {
		stripped = false
		for _, prefix := range t.prefixes {
			if len(out) >= len(prefix) && strings.EqualFold(out[:len(prefix)], prefix) {
				out = strings.TrimSpace(out[len(prefix):])
				stripped = true
				break
			}
		}
	}

	return out
}
