package ai

import (
	"context"
	"testing"

	"telegram-job-scout/internal/domain/ports/adapter"
)

type fakeAI struct {
	name   string
	models []string
	chats  int
}

func (f *fakeAI) ListModels(ctx context.Context) ([]string, error) { return f.models, nil }
func (f *fakeAI) GetModelInfo(model string) (adapter.ModelInfo, error) {
	return adapter.ModelInfo{Name: model, Description: f.name}, nil
}
func (f *fakeAI) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	return 42, nil
}
func (f *fakeAI) Chat(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	f.chats++
	return "reply from " + f.name, nil
}
func (f *fakeAI) ChatJSON(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	f.chats++
	return `{"provider":"` + f.name + `"}`, nil
}

func TestMultiAIAdapter_RoutesByModelPrefix(t *testing.T) {
	oa := &fakeAI{name: "openai", models: []string{"gpt-4o-mini"}}
	ga := &fakeAI{name: "gemini", models: []string{"gemini-2.0-flash"}}
	m := NewMultiAIAdapter("openai", map[string]adapter.AIServiceAdapter{
		"openai": oa,
		"gemini": ga,
	}, nil)

	ctx := context.Background()
	if got, _ := m.Chat(ctx, "gemini-2.0-flash", nil); got != "reply from gemini" {
		t.Errorf("gemini model routed to %q", got)
	}
	if got, _ := m.Chat(ctx, "gpt-4o-mini", nil); got != "reply from openai" {
		t.Errorf("gpt model routed to %q", got)
	}
	// unknown model falls back to the default provider
	if got, _ := m.Chat(ctx, "mystery-model", nil); got != "reply from openai" {
		t.Errorf("unknown model routed to %q", got)
	}
}

func TestMultiAIAdapter_ExplicitMappingWins(t *testing.T) {
	oa := &fakeAI{name: "openai"}
	ga := &fakeAI{name: "gemini"}
	m := NewMultiAIAdapter("openai", map[string]adapter.AIServiceAdapter{
		"openai": oa,
		"gemini": ga,
	}, map[string]string{"gpt-like-but-gemini": "gemini"})

	if got, _ := m.Chat(context.Background(), "gpt-like-but-gemini", nil); got != "reply from gemini" {
		t.Errorf("mapped model routed to %q", got)
	}
}

func TestMultiAIAdapter_ListModelsUnion(t *testing.T) {
	oa := &fakeAI{name: "openai", models: []string{"gpt-4o-mini"}}
	ga := &fakeAI{name: "gemini", models: []string{"gemini-2.0-flash", "gpt-4o-mini"}}
	m := NewMultiAIAdapter("openai", map[string]adapter.AIServiceAdapter{
		"openai": oa,
		"gemini": ga,
	}, nil)

	list, err := m.ListModels(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	seen := map[string]int{}
	for _, name := range list {
		seen[name]++
	}
	if seen["gpt-4o-mini"] != 1 || seen["gemini-2.0-flash"] != 1 {
		t.Errorf("union mismatch: %v", list)
	}
}

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct{ in, want string }{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tt := range tests {
		if got := CleanJSONBlock(tt.in); got != tt.want {
			t.Errorf("CleanJSONBlock(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
