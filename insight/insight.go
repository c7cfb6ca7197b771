// Package insight asks a language model for a short commentary on the
// history of a view.
//
// The summarizer only reads a copy of the reports: it never mutates the
// ledger, and its failures are reported to the caller as is.
package insight

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/etnz/nexus"
	"github.com/etnz/nexus/renderer"
	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// EmptyHistory is the summary of a view without transactions. It is returned
// without calling the model.
const EmptyHistory = "There are no transactions to analyze yet. Record an acquisition to get started."

const systemInstruction = `You are a financial assistant reviewing the ledger of a single asset bought and sold in a local currency.
Holdings are valued with the weighted average cost method.
Write a short analysis in markdown (at most 150 words): the trading pattern, the realized profit, the position against the average cost, and one practical suggestion.
Do not invent figures that are not in the reports.`

// Generator is the part of the genai client used by the Summarizer.
// *genai.Models implements it.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Summarizer summarizes the history of a view.
type Summarizer struct {
	gen   Generator
	model string
	log   zerolog.Logger
}

// New creates a Summarizer on the Gemini API.
func New(ctx context.Context, apiKey, model string, log zerolog.Logger) (*Summarizer, error) {
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create genai client: %w", err)
	}
	return NewWithGenerator(client.Models, model, log), nil
}

// NewWithGenerator creates a Summarizer on any Generator.
func NewWithGenerator(gen Generator, model string, log zerolog.Logger) *Summarizer {
	return &Summarizer{
		gen:   gen,
		model: model,
		log:   log.With().Str("component", "insight").Str("model", model).Logger(),
	}
}

// Prompt returns the user prompt sent for the stats and history of a view.
func Prompt(stats nexus.Stats, entries []nexus.Entry) string {
	var b strings.Builder
	b.WriteString("Here are the current figures and the history, most recent first.\n\n")
	b.WriteString(renderer.RenderStats(stats))
	b.WriteString("\n")
	b.WriteString(renderer.RenderHistory(stats.View, entries))
	return b.String()
}

// Summarize returns a markdown commentary on the history of a view.
func (s *Summarizer) Summarize(ctx context.Context, stats nexus.Stats, entries []nexus.Entry) (string, error) {
	if len(entries) == 0 {
		return EmptyHistory, nil
	}
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemInstruction}}},
	}
	s.log.Debug().Str("view", stats.View.String()).Int("entries", len(entries)).Msg("asking for a summary")
	resp, err := s.gen.GenerateContent(ctx, s.model, genai.Text(Prompt(stats, entries)), config)
	if err != nil {
		s.log.Error().Err(err).Msg("summary failed")
		return "", fmt.Errorf("could not generate summary: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from model %s", s.model)
	}
	return strings.TrimSpace(resp.Text()), nil
}
