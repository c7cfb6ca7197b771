package insight

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/etnz/nexus"
	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// fakeGenerator records the request and answers with a canned response.
type fakeGenerator struct {
	calls  int
	model  string
	prompt string
	system string
	answer string
	err    error
}

func (f *fakeGenerator) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls++
	f.model = model
	f.prompt = contents[0].Parts[0].Text
	f.system = config.SystemInstruction.Parts[0].Text
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: f.answer}}},
		}},
	}, nil
}

func sample() (nexus.Stats, []nexus.Entry) {
	day := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	a := nexus.NewAcquire(day, nexus.Main, nexus.M(1000), nexus.M(10))
	a.ID = "a"
	b := nexus.NewDispose(day.AddDate(0, 0, 1), nexus.Main, nexus.Q(50), nexus.M(12))
	b.ID = "b"
	book := nexus.Process([]nexus.Transaction{a, b})
	v := nexus.ViewOf(nexus.Main)
	return nexus.NewStats(book, v, nexus.DefaultReferencePrice), book.Entries(v)
}

func TestSummarize(t *testing.T) {
	gen := &fakeGenerator{answer: "  Steady accumulation.\n"}
	s := NewWithGenerator(gen, "gemini-test", zerolog.Nop())

	stats, entries := sample()
	got, err := s.Summarize(context.Background(), stats, entries)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got != "Steady accumulation." {
		t.Errorf("Summarize() = %q, want %q", got, "Steady accumulation.")
	}
	if gen.model != "gemini-test" {
		t.Errorf("model = %q, want gemini-test", gen.model)
	}
	for _, want := range []string{"# Main investment", "DISPOSE", "+$100.00"} {
		if !strings.Contains(gen.prompt, want) {
			t.Errorf("prompt does not contain %q:\n%s", want, gen.prompt)
		}
	}
	if !strings.Contains(gen.system, "weighted average cost") {
		t.Errorf("system instruction = %q", gen.system)
	}
}

func TestSummarize_EmptyHistory(t *testing.T) {
	gen := &fakeGenerator{}
	s := NewWithGenerator(gen, "gemini-test", zerolog.Nop())
	stats, _ := sample()

	got, err := s.Summarize(context.Background(), stats, nil)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got != EmptyHistory {
		t.Errorf("Summarize() = %q, want %q", got, EmptyHistory)
	}
	if gen.calls != 0 {
		t.Errorf("Summarize() called the model %d times, want 0", gen.calls)
	}
}

func TestSummarize_Failure(t *testing.T) {
	boom := errors.New("quota exceeded")
	s := NewWithGenerator(&fakeGenerator{err: boom}, "gemini-test", zerolog.Nop())
	stats, entries := sample()

	if _, err := s.Summarize(context.Background(), stats, entries); !errors.Is(err, boom) {
		t.Errorf("Summarize() error = %v, want %v", err, boom)
	}
}

func TestNew_NoKey(t *testing.T) {
	if _, err := New(context.Background(), "", "gemini-test", zerolog.Nop()); err == nil {
		t.Errorf("New(\"\") error = nil, want an error")
	}
}
