package consultant

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/buddahbase/buddahbot/internal/config"
	"github.com/buddahbase/buddahbot/internal/store"
)

const (
	// maxSearchedMaterials bounds the knowledge-base lookup per question.
	maxSearchedMaterials = 5
	// maxCitedMaterials bounds how many links are shown under an answer.
	maxCitedMaterials = 3
)

// Gate decides whether a subscriber may ask a question right now. The
// boolean checks fail closed on store errors.
type Gate interface {
	IsEntitled(ctx context.Context, principalID int64) bool
	CanConsume(ctx context.Context, principalID int64) bool
	Consume(ctx context.Context, principalID int64) error
	Remaining(ctx context.Context, principalID int64) int
}

// Searcher looks up knowledge-base materials relevant to a question.
type Searcher interface {
	SearchMaterials(ctx context.Context, query string, limit int) ([]store.Material, error)
}

// Responder answers subscriber questions, enforcing entitlement and the
// daily quota before each model call.
type Responder struct {
	gate      Gate
	searcher  Searcher
	generator Generator
	log       *slog.Logger
	messages  config.MessagesConfig
	dailyMax  int
}

// NewResponder wires the answer pipeline. searcher may be nil when no
// knowledge base is configured.
func NewResponder(gate Gate, searcher Searcher, generator Generator, messages config.MessagesConfig, dailyMax int, log *slog.Logger) *Responder {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Responder{
		gate:      gate,
		searcher:  searcher,
		generator: generator,
		log:       log.With("component", "consultant"),
		messages:  messages,
		dailyMax:  dailyMax,
	}
}

// Answer runs the full question pipeline for one subscriber and returns the
// text to send back. Refusals (no subscription, quota exhausted, model
// failure) are returned as normal texts, not errors.
func (r *Responder) Answer(ctx context.Context, principalID int64, question string) string {
	if !r.gate.IsEntitled(ctx, principalID) {
		return r.messages.NeedSubscription
	}

	if !r.gate.CanConsume(ctx, principalID) {
		return fmt.Sprintf(r.messages.LimitExceeded, r.dailyMax)
	}

	materials := r.findMaterials(ctx, question)

	answer, err := r.generator.Generate(ctx, question, materials)
	if err != nil {
		r.log.ErrorContext(ctx, "Answer generation failed", "user_id", principalID, "error", err)
		return r.messages.AIError
	}

	// The attempt only counts once an answer was actually produced.
	if err := r.gate.Consume(ctx, principalID); err != nil {
		r.log.ErrorContext(ctx, "Failed to record quota consumption", "user_id", principalID, "error", err)
	}

	return r.composeReply(answer, materials, r.gate.Remaining(ctx, principalID))
}

func (r *Responder) findMaterials(ctx context.Context, question string) []store.Material {
	if r.searcher == nil {
		return nil
	}
	materials, err := r.searcher.SearchMaterials(ctx, question, maxSearchedMaterials)
	if err != nil {
		// The knowledge base is an enhancement, not a dependency.
		r.log.WarnContext(ctx, "Knowledge base search failed", "error", err)
		return nil
	}
	return materials
}

func (r *Responder) composeReply(answer string, materials []store.Material, remaining int) string {
	var sb strings.Builder
	sb.WriteString("🤖 AI-консультант Buddah Base:\n\n")
	sb.WriteString(answer)

	if len(materials) > 0 {
		sb.WriteString("\n\n📚 Полезные материалы:\n")
		for i, m := range materials {
			if i >= maxCitedMaterials {
				break
			}
			sb.WriteString(fmt.Sprintf("• %s\n%s\n", m.Title, m.URL))
		}
	}

	sb.WriteString(fmt.Sprintf("\n💡 Осталось вопросов сегодня: %d", remaining))
	return sb.String()
}
