package store

import (
	"time"
)

// Subscriber is one row of the subscribers table, one per Telegram user.
// Timestamps travel as strings because the table store emits Postgres
// timestamps both with and without a zone suffix.
type Subscriber struct {
	ID                 int64   `json:"id"`
	Name               string  `json:"name"`
	Username           string  `json:"username"`
	ChatID             int64   `json:"chatid"`
	Status             string  `json:"status"`
	Payed              string  `json:"payed"`
	SubscriptionToDate *string `json:"subscription_to_date"`
	PaymentMethod      *string `json:"payment_method"`
	PaymentLink        *string `json:"payment_link"`
	DailyRequests      int     `json:"daily_requests"`
	CreatedAt          string  `json:"created_at"`
}

// Subscriber status values. Entitlement is decided by SubscriptionEnd, not
// by the stored flag alone; the flag exists for table-side filtering.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// SubscriptionEnd parses the stored expiry timestamp. The second return is
// false when no expiry is set or the value cannot be parsed.
func (s *Subscriber) SubscriptionEnd() (time.Time, bool) {
	if s.SubscriptionToDate == nil || *s.SubscriptionToDate == "" {
		return time.Time{}, false
	}
	return parseStoreTime(*s.SubscriptionToDate)
}

// Material is one row of the knowledge base. Duplicates are allowed; there
// is no uniqueness constraint.
type Material struct {
	Title   string `json:"title"`
	Tags    string `json:"tags"`
	URL     string `json:"url"`
	AddedBy string `json:"added_by"`
}

var storeTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

func parseStoreTime(value string) (time.Time, bool) {
	for _, layout := range storeTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatStoreTime renders a timestamp the way the table store expects it.
func FormatStoreTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
