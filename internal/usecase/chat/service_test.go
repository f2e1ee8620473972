package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lexiscope/internal/domain"
	"github.com/kailas-cloud/lexiscope/internal/domain/metadata"
)

type fixture struct {
	idx  *mockIndexes
	meta *mockMeta
	gate *mockGate
	llm  *mockCompleter
	chat *Resolver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		idx:  newMockIndexes(),
		meta: &mockMeta{},
		gate: &mockGate{},
		llm:  &mockCompleter{text: "  The appeal was dismissed.  "},
	}
	f.idx.hits = []domain.Hit{
		{Identity: "42", Index: 3, Content: "The appeal is dismissed with costs.", Score: 0.9},
		{Identity: "42", Index: 1, Content: "Facts of the case.", Score: 0.5},
	}
	f.chat = New(f.idx, f.meta, f.gate, f.llm, mapTexts{"42": "full judgment text", "7": "seven"}, Config{}, zap.NewNop())
	if _, err := f.chat.EnsureReady(context.Background(), "42", true); err != nil {
		t.Fatalf("EnsureReady: %v", err)
	}
	return f
}

func TestEnsureReady(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r, err := f.chat.EnsureReady(ctx, " 42 ", false)
	if err != nil {
		t.Fatalf("EnsureReady: %v", err)
	}
	if r.Status != StatusReady || r.Built || r.Identity != "42" {
		t.Errorf("readiness = %+v", r)
	}

	if _, err := f.chat.EnsureReady(ctx, "7", false); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing index without build: expected ErrNotFound, got %v", err)
	}
	r, err = f.chat.EnsureReady(ctx, "7", true)
	if err != nil || !r.Built {
		t.Errorf("build: readiness=%+v err=%v", r, err)
	}
	if _, err := f.chat.EnsureReady(ctx, "8", true); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing text: expected ErrNotFound, got %v", err)
	}
	if _, err := f.chat.EnsureReady(ctx, "", true); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("empty id: expected ErrInvalidInput, got %v", err)
	}
	if f.idx.builds != 2 {
		t.Errorf("builds = %d, want 2", f.idx.builds)
	}
}

func TestEnsureReady_BuildFailure(t *testing.T) {
	f := newFixture(t)
	f.idx.buildErr = domain.ErrBuild
	if _, err := f.chat.EnsureReady(context.Background(), "7", true); !errors.Is(err, domain.ErrBuild) {
		t.Fatalf("expected ErrBuild, got %v", err)
	}
}

func TestAnswer(t *testing.T) {
	f := newFixture(t)
	rec, err := metadata.New("42", "data/42.txt", metadata.Fields{Title: "A vs B", Judges: "X"}, metadata.StatusReady)
	if err != nil {
		t.Fatal(err)
	}
	f.meta.rec, f.meta.ok = rec, true

	got, err := f.chat.Answer(context.Background(), "42", "What was the outcome?")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if got != "The appeal was dismissed." {
		t.Errorf("answer = %q", got)
	}
	if f.idx.lastK != DefaultTopN {
		t.Errorf("k = %d, want %d", f.idx.lastK, DefaultTopN)
	}
	if f.gate.admits.Load() != 1 {
		t.Error("answer must pass the rate gateway")
	}
	if f.llm.params.Temperature != 0.2 {
		t.Errorf("temperature = %v", f.llm.params.Temperature)
	}

	prompt := f.llm.msgs[0].Content
	for _, want := range []string{"Lexiscope", "Case Title: A vs B", "The appeal is dismissed with costs.", "USER QUESTION: What was the outcome?"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(prompt, "Facts of the case.") {
		t.Error("prompt must hold only the top chunk")
	}
}

func TestAnswer_WithoutMetadata(t *testing.T) {
	f := newFixture(t)
	f.meta.err = errors.New("store down")

	if _, err := f.chat.Answer(context.Background(), "42", "Who?"); err != nil {
		t.Fatalf("metadata is best effort: %v", err)
	}
	if strings.Contains(f.llm.msgs[0].Content, "CASE INFORMATION") {
		t.Error("case information block must be omitted without metadata")
	}
}

func TestAnswer_NormalizesNotFound(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Answer is not available in the context.", metadata.NotAvailable},
		{"The answer is not available in the context", "The " + metadata.NotAvailable},
		{"This information is not available in the most relevant part of the case documents.", metadata.NotAvailable + "."},
	}
	for _, tc := range tests {
		f := newFixture(t)
		f.llm.text = tc.in
		got, err := f.chat.Answer(context.Background(), "42", "q")
		if err != nil {
			t.Fatal(err)
		}
		if got != tc.want {
			t.Errorf("normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestAnswer_CompletionFailure(t *testing.T) {
	for _, e := range []error{domain.ErrCompletionTimeout, domain.ErrCompletionService} {
		f := newFixture(t)
		f.llm.err = e
		got, err := f.chat.Answer(context.Background(), "42", "q")
		if err != nil {
			t.Fatalf("completion failures must not surface: %v", err)
		}
		if got != ErrorAnswer {
			t.Errorf("answer = %q, want %q", got, ErrorAnswer)
		}
	}
}

func TestAnswer_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.chat.Answer(ctx, "42", "  "); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("empty question: expected ErrInvalidInput, got %v", err)
	}
	if _, err := f.chat.Answer(ctx, "99", "q"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("uninitialised case: expected ErrNotFound, got %v", err)
	}

	f.idx.searchErr = domain.ErrEmbeddingProviderError
	if _, err := f.chat.Answer(ctx, "42", "q"); !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Errorf("expected embedding error, got %v", err)
	}
	f.idx.searchErr = nil

	f.gate.err = context.Canceled
	if _, err := f.chat.Answer(ctx, "42", "q"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected admission error, got %v", err)
	}
	if f.llm.calls != 0 {
		t.Errorf("completion called %d times on failure paths", f.llm.calls)
	}
}

func TestAnswerMessages_NoHits(t *testing.T) {
	msgs := answerMessages("q", nil, nil)
	if !strings.Contains(msgs[0].Content, noContent) {
		t.Error("prompt must say no content was found")
	}
}
