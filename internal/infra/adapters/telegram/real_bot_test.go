package telegram

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitMessage(t *testing.T) {
	if parts := splitMessage("short", telegramMaxMessageLen); len(parts) != 1 {
		t.Fatalf("short text split: %d parts", len(parts))
	}

	long := strings.Repeat("line of a report\n", 600)
	parts := splitMessage(long, telegramMaxMessageLen)
	if len(parts) < 2 {
		t.Fatalf("long text not split: %d parts", len(parts))
	}
	var rejoined strings.Builder
	for _, p := range parts {
		if len(p) > telegramMaxMessageLen {
			t.Errorf("part exceeds limit: %d", len(p))
		}
		rejoined.WriteString(p)
	}
	if rejoined.String() != long {
		t.Error("split lost content")
	}
	// Parts should break on newline boundaries when possible.
	if !strings.HasSuffix(parts[0], "\n") {
		t.Errorf("first part does not end at a line break: %q", parts[0][len(parts[0])-20:])
	}
}

func TestSplitMessageKeepsRunesWhole(t *testing.T) {
	// Multi-byte text without newlines: cuts must land on rune boundaries.
	long := strings.Repeat("백엔드 엔지니어 공고 분석 리포트 ", 500)
	parts := splitMessage(long, telegramMaxMessageLen)
	if len(parts) < 2 {
		t.Fatalf("long text not split: %d parts", len(parts))
	}
	var rejoined strings.Builder
	for i, p := range parts {
		if len(p) > telegramMaxMessageLen {
			t.Errorf("part %d exceeds limit: %d", i, len(p))
		}
		if !utf8.ValidString(p) {
			t.Errorf("part %d cut inside a rune: %q...", i, p[:8])
		}
		rejoined.WriteString(p)
	}
	if rejoined.String() != long {
		t.Error("split lost content")
	}
}

func TestDomainUserID(t *testing.T) {
	if got := domainUserID(42); got != "tg-42" {
		t.Errorf("domainUserID = %q", got)
	}
}
