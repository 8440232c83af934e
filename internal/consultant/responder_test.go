package consultant

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buddahbase/buddahbot/internal/config"
	"github.com/buddahbase/buddahbot/internal/store"
)

type fakeGate struct {
	entitled  bool
	canAsk    bool
	remaining int
	consumed  int
}

func (g *fakeGate) IsEntitled(_ context.Context, _ int64) bool { return g.entitled }
func (g *fakeGate) CanConsume(_ context.Context, _ int64) bool { return g.canAsk }

func (g *fakeGate) Consume(_ context.Context, _ int64) error {
	g.consumed++
	return nil
}

func (g *fakeGate) Remaining(_ context.Context, _ int64) int { return g.remaining }

type fakeSearcher struct {
	materials []store.Material
	err       error
}

func (s *fakeSearcher) SearchMaterials(_ context.Context, _ string, _ int) ([]store.Material, error) {
	return s.materials, s.err
}

type fakeGenerator struct {
	answer string
	err    error
	calls  int
}

func (g *fakeGenerator) Generate(_ context.Context, _ string, _ []store.Material) (string, error) {
	g.calls++
	return g.answer, g.err
}

func testMessages() config.MessagesConfig {
	return config.MessagesConfig{
		NeedSubscription: "нужна подписка",
		LimitExceeded:    "лимит %d исчерпан",
		AIError:          "ошибка ИИ",
	}
}

func TestAnswerRefusesWithoutSubscription(t *testing.T) {
	gate := &fakeGate{entitled: false}
	gen := &fakeGenerator{answer: "ответ"}
	r := NewResponder(gate, nil, gen, testMessages(), 5, nil)

	got := r.Answer(context.Background(), 42, "как дела?")

	assert.Equal(t, "нужна подписка", got)
	assert.Zero(t, gen.calls, "model must not be called for non-subscribers")
	assert.Zero(t, gate.consumed)
}

func TestAnswerRefusesWhenQuotaExhausted(t *testing.T) {
	gate := &fakeGate{entitled: true, canAsk: false}
	gen := &fakeGenerator{answer: "ответ"}
	r := NewResponder(gate, nil, gen, testMessages(), 5, nil)

	got := r.Answer(context.Background(), 42, "вопрос")

	assert.Equal(t, "лимит 5 исчерпан", got)
	assert.Zero(t, gen.calls)
	assert.Zero(t, gate.consumed)
}

func TestAnswerConsumesOnlyOnSuccess(t *testing.T) {
	gate := &fakeGate{entitled: true, canAsk: true, remaining: 4}
	gen := &fakeGenerator{answer: "медитируйте каждый день"}
	r := NewResponder(gate, nil, gen, testMessages(), 5, nil)

	got := r.Answer(context.Background(), 42, "как начать медитировать?")

	require.Equal(t, 1, gate.consumed)
	assert.Contains(t, got, "🤖 AI-консультант Buddah Base:")
	assert.Contains(t, got, "медитируйте каждый день")
	assert.Contains(t, got, "Осталось вопросов сегодня: 4")
}

func TestAnswerDoesNotConsumeOnModelFailure(t *testing.T) {
	gate := &fakeGate{entitled: true, canAsk: true}
	gen := &fakeGenerator{err: errors.New("model down")}
	r := NewResponder(gate, nil, gen, testMessages(), 5, nil)

	got := r.Answer(context.Background(), 42, "вопрос")

	assert.Equal(t, "ошибка ИИ", got)
	assert.Zero(t, gate.consumed, "failed answers must not burn quota")
}

func TestAnswerCitesAtMostThreeMaterials(t *testing.T) {
	gate := &fakeGate{entitled: true, canAsk: true, remaining: 2}
	searcher := &fakeSearcher{materials: []store.Material{
		{Title: "Первый", URL: "https://a.example"},
		{Title: "Второй", URL: "https://b.example"},
		{Title: "Третий", URL: "https://c.example"},
		{Title: "Четвёртый", URL: "https://d.example"},
		{Title: "Пятый", URL: "https://e.example"},
	}}
	gen := &fakeGenerator{answer: "ответ"}
	r := NewResponder(gate, searcher, gen, testMessages(), 5, nil)

	got := r.Answer(context.Background(), 42, "медитация")

	assert.Contains(t, got, "📚 Полезные материалы:")
	assert.Contains(t, got, "Третий")
	assert.NotContains(t, got, "Четвёртый")
	assert.Equal(t, 3, strings.Count(got, "• "))
}

func TestAnswerSurvivesSearchFailure(t *testing.T) {
	gate := &fakeGate{entitled: true, canAsk: true, remaining: 1}
	searcher := &fakeSearcher{err: errors.New("kb unavailable")}
	gen := &fakeGenerator{answer: "ответ без материалов"}
	r := NewResponder(gate, searcher, gen, testMessages(), 5, nil)

	got := r.Answer(context.Background(), 42, "вопрос")

	assert.Contains(t, got, "ответ без материалов")
	assert.NotContains(t, got, "📚")
	assert.Equal(t, 1, gate.consumed)
}
