package translate

import "testing"

func TestNormalizeConvertsSimplified(t *testing.T) {
	n := New()

	tests := []struct {
		in   string
		want string
	}{
		{"这个问题", "這個問題"},
		{"我们说话", "我們說話"},
		{"国家发展", "國家發展"},
		// Phrase-dependent characters resolve by context: 发 is 發 in
		// 出发 but 髮 in 头发, 后 is 後 in 后面 but stays in 皇后.
		{"他出发了", "他出發了"},
		{"头发很长", "頭髮很長"},
		{"后面", "後面"},
		{"皇后", "皇后"},
		// Mixed content converts Han spans and leaves the rest alone.
		{"用 Go 写的时间服务", "用 Go 寫的時間服務"},
		// Already-traditional text is untouched.
		{"這個問題", "這個問題"},
		// Non-Chinese passes through.
		{"hello world 123", "hello world 123"},
	}

	for _, tt := range tests {
		if got := n.Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeEmptyAndWhitespace(t *testing.T) {
	n := New()
	for _, in := range []string{"", "   ", "\n\t"} {
		if got := n.Normalize(in); got != in {
			t.Errorf("Normalize(%q) = %q, want unchanged", in, got)
		}
	}
}

func TestNormalizeDisabledIsIdentity(t *testing.T) {
	n := NewDisabled()
	in := "这个问题"
	if got := n.Normalize(in); got != in {
		t.Errorf("disabled Normalize(%q) = %q, want identity", in, got)
	}
}

func TestIsSimplified(t *testing.T) {
	n := New()

	tests := []struct {
		in   string
		want bool
	}{
		{"这个时间很长", true},
		{"這個時間很長", false},
		{"hello world", false},
		// Mixed scripts are treated as not simplified.
		{"这個", false},
	}
	for _, tt := range tests {
		if got := n.IsSimplified(tt.in); got != tt.want {
			t.Errorf("IsSimplified(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
