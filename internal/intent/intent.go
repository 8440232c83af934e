// Package intent classifies free-text messages into intent categories by
// keyword matching. The rules are an explicit ordered list evaluated in
// fixed priority order; the first matching category wins.
package intent

import (
	"strings"

	"github.com/buddahbase/buddahbot/internal/config"
)

// Category is the recognized intent of a free-text message.
type Category string

const (
	// CategoryFiles is a request for files or materials. Highest priority:
	// a message matching both a files and a join keyword is a files request.
	CategoryFiles Category = "files"
	// CategoryJoin is join/pricing intent.
	CategoryJoin Category = "join"
	// CategoryEngagement is generic interest worth a nudge.
	CategoryEngagement Category = "engagement"
	// CategoryNone means no rule matched.
	CategoryNone Category = ""
)

// Rule binds one category to its keyword set.
type Rule struct {
	Category Category
	Keywords []string
}

// Classifier evaluates rules in order. It performs no message sending and
// holds no other state, so the priority policy is testable in isolation.
type Classifier struct {
	rules []Rule
}

// NewClassifier builds a Classifier from the configured keyword lists.
// Rules are evaluated files first, then join, then engagement.
func NewClassifier(cfg config.KeywordsConfig) *Classifier {
	return &Classifier{rules: []Rule{
		{Category: CategoryFiles, Keywords: cfg.Files},
		{Category: CategoryJoin, Keywords: cfg.Join},
		{Category: CategoryEngagement, Keywords: cfg.Engagement},
	}}
}

// NewClassifierFromRules builds a Classifier from an explicit rule list.
func NewClassifierFromRules(rules []Rule) *Classifier {
	return &Classifier{rules: rules}
}

// Classify returns the category of the first rule with a keyword contained
// in the text, case-insensitively, or CategoryNone.
func (c *Classifier) Classify(text string) Category {
	lowered := strings.ToLower(text)
	for _, rule := range c.rules {
		for _, keyword := range rule.Keywords {
			if keyword == "" {
				continue
			}
			if strings.Contains(lowered, strings.ToLower(keyword)) {
				return rule.Category
			}
		}
	}
	return CategoryNone
}

// Matches reports whether the text matches any rule at all.
func (c *Classifier) Matches(text string) bool {
	return c.Classify(text) != CategoryNone
}
