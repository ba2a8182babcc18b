// Package tokens counts and caps text by model tokens.
package tokens

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// FallbackEncoding is used for models tiktoken does not know about.
const FallbackEncoding = "cl100k_base"

// Tokenizer measures text in model tokens.
type Tokenizer interface {
	// Count returns the number of tokens in text.
	Count(text string) int
	// Truncate keeps the beginning of text, at most max tokens.
	Truncate(text string, max int) string
	// Tail keeps the end of text, at most max tokens.
	Tail(text string, max int) string
}

var loaderOnce sync.Once

// Tiktoken is a Tokenizer backed by an OpenAI BPE encoding.
type Tiktoken struct {
	enc *tiktoken.Tiktoken
}

// ForModel returns the tokenizer of model, falling back to cl100k_base.
// Encodings are loaded from the embedded offline loader, so no network
// access is needed.
func ForModel(model string) (*Tiktoken, error) {
	loaderOnce.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	})

	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(FallbackEncoding)
		if err != nil {
			return nil, fmt.Errorf("load tokenizer for %s: %w", model, err)
		}
	}
	return &Tiktoken{enc: enc}, nil
}

// Count returns the number of tokens in text.
func (t *Tiktoken) Count(text string) int {
	return len(t.encode(text))
}

// Truncate keeps the longest prefix of text that fits in max tokens.
// A non-empty text always yields a non-empty result when max > 0.
func (t *Tiktoken) Truncate(text string, max int) string {
	if max <= 0 || text == "" {
		return ""
	}
	toks := t.encode(text)
	if len(toks) <= max {
		return text
	}

	for n := max; n > 0; n-- {
		out := strings.ToValidUTF8(t.enc.Decode(toks[:n]), "")
		if out != "" && t.Count(out) <= max {
			return out
		}
	}
	return firstRune(text)
}

// Tail keeps the longest suffix of text that fits in max tokens.
func (t *Tiktoken) Tail(text string, max int) string {
	if max <= 0 || text == "" {
		return ""
	}
	toks := t.encode(text)
	if len(toks) <= max {
		return text
	}

	for n := max; n > 0; n-- {
		out := strings.ToValidUTF8(t.enc.Decode(toks[len(toks)-n:]), "")
		if out != "" && t.Count(out) <= max {
			return out
		}
	}
	return lastRune(text)
}

func (t *Tiktoken) encode(text string) []int {
	return t.enc.Encode(text, nil, nil)
}

func firstRune(s string) string {
	_, size := utf8.DecodeRuneInString(s)
	return s[:size]
}

func lastRune(s string) string {
	_, size := utf8.DecodeLastRuneInString(s)
	return s[len(s)-size:]
}

// Compile-time interface conformance check.
var _ Tokenizer = (*Tiktoken)(nil)
