package translation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"redub/internal/logging"
	"redub/internal/timeline"
)

// Completer is the chat completion contract the translator drives.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

const promptTemplate = `You are a professional text translator.
You understand the meaning of the text well.
You are able to select the most appropriate formulations so that they fit the context of the text you are translating.
I need you to translate the text below to %[1]s language.
If the text is already in %[1]s, you must write this text in the answer without translation.
If you are not able to translate this text, you must write this text in the answer without translation.
You must remain all [] symbols on their places in original text.
Your answer must be only translated text.

The text you need to translate to %[1]s language:
%[2]s`

// Translator rewrites segment texts into a target language while keeping the
// segment timeline untouched.
type Translator struct {
	completer  Completer
	chunkChars int
	logger     *slog.Logger
}

// NewTranslator constructs the chunked translation driver.
func NewTranslator(completer Completer, chunkChars int, logger *slog.Logger) *Translator {
	if chunkChars <= 0 {
		chunkChars = 4000
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Translator{
		completer:  completer,
		chunkChars: chunkChars,
		logger:     logger.With(logging.String(logging.FieldComponent, "translation")),
	}
}

// Translate returns a copy of the segments with texts replaced by their
// translation. Segment count drift after the round trip is reconciled by
// zipping translations onto segments in order; segments past the shorter
// list keep their original text, and the drift is logged.
func (t *Translator) Translate(ctx context.Context, segments []timeline.TextSegment, language string) ([]timeline.TextSegment, error) {
	if len(segments) == 0 {
		return nil, nil
	}
	language = strings.TrimSpace(language)
	if language == "" {
		return nil, fmt.Errorf("translate: target language required")
	}

	encoded := Encode(timeline.Texts(segments))
	chunks := SplitChunks(encoded, t.chunkChars)

	t.logger.Info("translating transcript",
		logging.Int("segments", len(segments)),
		logging.Int("chunks", len(chunks)),
		logging.String("language", language))

	var translated strings.Builder
	for i, chunk := range chunks {
		prompt := fmt.Sprintf(promptTemplate, language, chunk)
		reply, err := t.completer.Complete(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("translate chunk %d/%d: %w", i+1, len(chunks), err)
		}
		translated.WriteString(reply)
	}

	texts := Decode(translated.String())
	if len(texts) != len(segments) {
		t.logger.Warn("translated segment count drifted",
			logging.Int("original", len(segments)),
			logging.Int("translated", len(texts)))
	}

	out := make([]timeline.TextSegment, len(segments))
	copy(out, segments)
	for i := 0; i < len(out) && i < len(texts); i++ {
		out[i].Text = texts[i]
	}
	return out, nil
}
