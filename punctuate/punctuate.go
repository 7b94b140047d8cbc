// Package punctuate restores punctuation in raw transcripts using a hosted
// language model. Failures here are recoverable by design: the caller falls
// back to the raw transcript with a visible notice.
package punctuate

import (
	"context"
	"fmt"
	"strings"

	"github.com/skillsenselab/scribe/llm"
)

// instruction is the fixed enrichment intent. The model must only add
// punctuation and sentence boundaries, never translate or rephrase.
const instruction = "Please detect the language of the text and add proper punctuation " +
	"and sentence boundaries. Do not translate or rephrase. Keep the original words and language:\n\n"

// degradedNotice prefixes the fallback text returned when enrichment fails.
const degradedNotice = "⚠️ Punctuation skipped due to an internal error with GPT.\n\nRaw transcription:\n"

// defaultTemperature keeps edits conservative.
const defaultTemperature = 0.3

// Punctuator wraps an LLM provider with the fixed punctuation instruction.
type Punctuator struct {
	provider    llm.Provider
	temperature float64
}

// New creates a Punctuator. A zero temperature selects the conservative default.
func New(provider llm.Provider, temperature float64) *Punctuator {
	if temperature == 0 {
		temperature = defaultTemperature
	}
	return &Punctuator{provider: provider, temperature: temperature}
}

// Run sends the raw transcript to the model and returns the punctuated text
// with surrounding whitespace trimmed. The language hint is advisory; the
// instruction asks the model to detect the language itself.
//
// Any failure — transport, quota, malformed or empty response — comes back as
// an error for the caller to absorb; it must never abort the request.
func (p *Punctuator) Run(ctx context.Context, rawText, language string) (string, error) {
	resp, err := p.provider.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: "user", Content: instruction + rawText},
		},
		Temperature: p.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("punctuate: %w", err)
	}

	text := strings.TrimSpace(resp.Content)
	if text == "" {
		return "", fmt.Errorf("punctuate: empty completion for language %q", language)
	}
	return text, nil
}

// Degraded builds the fallback text for a failed enrichment: the fixed notice
// followed by the raw transcript, verbatim.
func Degraded(rawText string) string {
	return degradedNotice + rawText
}
