package analyze

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

const truncationMarker = "\n[truncated]"

// runesPerToken is the rough ratio used when no encoder is available.
const runesPerToken = 4

// truncator trims note bodies to a token budget. It prefers the real
// tokenizer for the configured model and falls back to a rune estimate
// when the encoding is unknown or cannot be loaded.
type truncator struct {
	model string
	limit int

	once sync.Once
	enc  *tiktoken.Tiktoken
}

func newTruncator(model string, limit int) *truncator {
	return &truncator{model: model, limit: limit}
}

func (t *truncator) truncate(text string) (string, bool) {
	if t.limit <= 0 {
		return text, false
	}
	t.once.Do(func() {
		enc, err := tiktoken.EncodingForModel(t.model)
		if err == nil {
			t.enc = enc
		}
	})

	if t.enc != nil {
		ids := t.enc.Encode(text, nil, nil)
		if len(ids) <= t.limit {
			return text, false
		}
		return t.enc.Decode(ids[:t.limit]) + truncationMarker, true
	}

	max := t.limit * runesPerToken
	runes := []rune(text)
	if len(runes) <= max {
		return text, false
	}
	return string(runes[:max]) + truncationMarker, true
}
