package extract

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
	log "github.com/sirupsen/logrus"
)

var (
	tokenizerOnce sync.Once
	tokenizer     *sentences.DefaultSentenceTokenizer
)

func sentenceTokenizer() *sentences.DefaultSentenceTokenizer {
	tokenizerOnce.Do(func() {
		t, err := english.NewSentenceTokenizer(nil)
		if err != nil {
			log.Warnf("sentence tokenizer unavailable, truncation falls back to a hard cut: %v", err)
			return
		}
		tokenizer = t
	})
	return tokenizer
}

// TruncateInput bounds text to maxChars runes. It keeps whole sentences when
// at least one fits and cuts at the rune limit otherwise. maxChars <= 0
// disables truncation.
func TruncateInput(text string, maxChars int) string {
	if maxChars <= 0 || utf8.RuneCountInString(text) <= maxChars {
		return text
	}

	if t := sentenceTokenizer(); t != nil {
		cut, offset := 0, 0
		for _, s := range t.Tokenize(text) {
			sentence := strings.TrimSpace(s.Text)
			if sentence == "" {
				continue
			}
			idx := strings.Index(text[offset:], sentence)
			if idx < 0 {
				break
			}
			end := offset + idx + len(sentence)
			if utf8.RuneCountInString(text[:end]) > maxChars {
				break
			}
			cut, offset = end, end
		}
		if kept := strings.TrimSpace(text[:cut]); kept != "" {
			return kept
		}
	}

	runes := []rune(text)
	return strings.TrimSpace(string(runes[:maxChars]))
}
