// Package prompt defines the text protocol spoken by the self-RAG
// instruct model: the prompt template it expects and the reserved
// control tokens it emits as out-of-band signals.
package prompt

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Token is a reserved literal substring with protocol meaning. Tokens are
// emitted by the model as signals (retrieve, relevance, support, end of
// turn), not as content, and must be stripped before text reaches a caller.
type Token string

// Prompt template fragments.
const (
	SystemPrompt = "### System:\nYou are a helpful and informative professor. You give long, accurate, and detailed explanations to student questions. You answer EVERY question that is given to you. You retrieve data multiple times if necessary.\n\n"

	InstructionPrefix = "### Instruction:\n"
	ResponsePrefix    = "### Response:\n"
)

// Paragraph delimiters bound a contiguous span of retrieved context.
const (
	InitParagraphToken Token = "<paragraph>"
	EndParagraphToken  Token = "</paragraph>"
)

// Control token vocabulary.
const (
	RetrievalToken          Token = "[Retrieval]"
	NoRetrievalToken        Token = "[No Retrieval]"
	IrrelevantToken         Token = "[Irrelevant]"
	EvidenceToken           Token = "[Continue to Use Evidence]"
	UtilityToken            Token = "[Utility:5]"
	RelevantToken           Token = "[Relevant]"
	PartiallySupportedToken Token = "[Partially supported]"
	FullySupportedToken     Token = "[Fully supported]"
	NoSupportToken          Token = "[No support / Contradictory]"
	EndToken                Token = "</s>"
)

// ControlTokens lists every reserved literal that RemoveCruft strips,
// ordered longest first so that scanning always matches the longest
// reserved literal at each position.
var ControlTokens = []Token{
	NoSupportToken,
	EvidenceToken,
	PartiallySupportedToken,
	FullySupportedToken,
	NoRetrievalToken,
	IrrelevantToken,
	RetrievalToken,
	UtilityToken,
	RelevantToken,
	EndToken,
}

// ErrMalformedCompletion reports a completion that does not follow the
// expected template, which signals a backend/template mismatch.
var ErrMalformedCompletion = errors.New("completion does not contain response prefix")

// paragraphPattern matches one retrieved-context span, non-greedily and
// across newlines.
var paragraphPattern = regexp.MustCompile(
	`(?s)` + regexp.QuoteMeta(string(InitParagraphToken)) + `.*?` + regexp.QuoteMeta(string(EndParagraphToken)),
)

// FormatPrompt wraps raw input in the template the model was tuned on:
// system prompt, instruction block, empty response block.
func FormatPrompt(input string) string {
	return SystemPrompt + InstructionPrefix + input + "\n\n" + ResponsePrefix
}

// ExtractPostPrompt returns everything after the first response prefix in
// a raw completion. It fails when the marker is absent, meaning the
// backend returned text that does not follow the expected template.
func ExtractPostPrompt(completion string) (string, error) {
	_, after, found := strings.Cut(completion, ResponsePrefix)
	if !found {
		return "", fmt.Errorf("%w: %q", ErrMalformedCompletion, ResponsePrefix)
	}
	return after, nil
}

// RemoveCruft strips all protocol signals from model output: first every
// paragraph-delimited span of retrieved context, then every control token
// literal, longest match first. The result contains only content text.
// Idempotent: tokens are literal and cannot reappear after removal.
func RemoveCruft(result string) string {
	result = paragraphPattern.ReplaceAllString(result, "")

	var b strings.Builder
	b.Grow(len(result))
	for i := 0; i < len(result); {
		if n := matchControlToken(result[i:]); n > 0 {
			i += n
			continue
		}
		b.WriteByte(result[i])
		i++
	}
	return b.String()
}

// matchControlToken returns the length of the longest control token at the
// start of s, or 0 when s starts with content text.
func matchControlToken(s string) int {
	for _, tok := range ControlTokens {
		if strings.HasPrefix(s, string(tok)) {
			return len(tok)
		}
	}
	return 0
}
