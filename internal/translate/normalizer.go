// Package translate standardizes transcribed text to Traditional Chinese
// (Taiwan variant). Conversion runs through OpenCC dictionaries, so
// phrase-dependent characters resolve by context rather than rune by rune.
package translate

import (
	"strings"

	"github.com/longbridgeapp/opencc"
)

// Normalizer converts Simplified Chinese text to Traditional Chinese.
// A disabled Normalizer degrades to identity rather than failing.
type Normalizer struct {
	s2tw *opencc.OpenCC
	t2tw *opencc.OpenCC
}

// New returns a Normalizer converting simplified to traditional and then
// standardizing to the Taiwan variant. If the conversion dictionaries
// cannot be loaded it degrades to identity.
func New() *Normalizer {
	s2tw, err := opencc.New("s2tw")
	if err != nil {
		return &Normalizer{}
	}
	t2tw, err := opencc.New("t2tw")
	if err != nil {
		return &Normalizer{s2tw: s2tw}
	}
	return &Normalizer{s2tw: s2tw, t2tw: t2tw}
}

// NewDisabled returns a Normalizer that passes text through unchanged.
func NewDisabled() *Normalizer {
	return &Normalizer{}
}

// Normalize converts Simplified Chinese spans to their Taiwan Traditional
// forms. Non-Chinese content passes through untouched; empty or
// whitespace-only input is returned unchanged.
func (n *Normalizer) Normalize(text string) string {
	if n.s2tw == nil || strings.TrimSpace(text) == "" {
		return text
	}
	out, err := n.s2tw.Convert(text)
	if err != nil {
		return text
	}
	if n.t2tw != nil {
		if tw, err := n.t2tw.Convert(out); err == nil {
			out = tw
		}
	}
	return out
}

// IsSimplified reports whether the text looks like Simplified Chinese:
// it contains characters from the simplified probe set and none from the
// traditional probe set.
func (n *Normalizer) IsSimplified(text string) bool {
	hasSimplified := strings.ContainsAny(text, simplifiedProbe)
	hasTraditional := strings.ContainsAny(text, traditionalProbe)
	return hasSimplified && !hasTraditional
}

// Probe sets for script detection, mirrored pairs.
const (
	simplifiedProbe  = "国会时间长东发业产设认为说话语过个学来区域建达觉"
	traditionalProbe = "國會時間長東發業產設認為說話語過個學來區域建達覺"
)
