package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/buddahbase/buddahbot/internal/config"
)

func defaultClassifier() *Classifier {
	return NewClassifier(config.KeywordsConfig{
		Files:      config.DefaultFilesKeywords,
		Join:       config.DefaultJoinKeywords,
		Engagement: config.DefaultEngagementKeywords,
	})
}

func TestFilesBeatsJoin(t *testing.T) {
	c := defaultClassifier()

	tests := []struct {
		text string
		want Category
	}{
		// Mixed keywords: files must win over join and engagement.
		{"дайте файлик как вступить", CategoryFiles},
		{"скинь материалы интересно", CategoryFiles},
		{"поделитесь промптами как попасть", CategoryFiles},
		// Pure files requests.
		{"дайте файлик", CategoryFiles},
		{"скиньте student id", CategoryFiles},
		{"есть промпты?", CategoryFiles},
		{"материалы где скачать", CategoryFiles},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Classify(tt.text), "text: %q", tt.text)
	}
}

func TestJoinBeatsEngagement(t *testing.T) {
	c := defaultClassifier()

	assert.Equal(t, CategoryJoin, c.Classify("как вступить, очень интересно"))
	assert.Equal(t, CategoryJoin, c.Classify("сколько стоит подписка"))
	assert.Equal(t, CategoryEngagement, c.Classify("расскажи про нейросеть"))
}

func TestClassifyIsCaseInsensitive(t *testing.T) {
	c := defaultClassifier()

	assert.Equal(t, CategoryEngagement, c.Classify("что такое VEO?"))
	assert.Equal(t, CategoryEngagement, c.Classify("AI штука"))
}

func TestNoMatch(t *testing.T) {
	c := defaultClassifier()

	assert.Equal(t, CategoryNone, c.Classify("привет"))
	assert.False(t, c.Matches("просто сообщение без ключевых слов"))
}

func TestOrderIsDataDriven(t *testing.T) {
	// Priority comes from rule order, not from hard-coded branches.
	c := NewClassifierFromRules([]Rule{
		{Category: CategoryJoin, Keywords: []string{"доступ"}},
		{Category: CategoryFiles, Keywords: []string{"файл"}},
	})

	assert.Equal(t, CategoryJoin, c.Classify("файл про доступ"))
}
