package admin

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/buddahbase/buddahbot/internal/store"
)

var csvHeader = []string{"ID", "Name", "Username", "Status", "CreatedAt", "SubscriptionToDate", "PaymentMethod", "DailyRequests"}

// ExportCSV renders the active subscriber base as a CSV document, one row
// per active subscriber plus the header.
func (p *Panel) ExportCSV(ctx context.Context) ([]byte, error) {
	subs, err := p.store.ActiveSubscribers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export subscribers: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, sub := range subs {
		if err := w.Write(csvRow(sub)); err != nil {
			return nil, fmt.Errorf("failed to write csv row for %d: %w", sub.ID, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}

	p.log.InfoContext(ctx, "Subscriber CSV exported", "rows", len(subs))
	return buf.Bytes(), nil
}

func csvRow(sub store.Subscriber) []string {
	toDate := ""
	if sub.SubscriptionToDate != nil {
		toDate = *sub.SubscriptionToDate
	}
	method := ""
	if sub.PaymentMethod != nil {
		method = *sub.PaymentMethod
	}
	return []string{
		strconv.FormatInt(sub.ID, 10),
		sub.Name,
		sub.Username,
		sub.Status,
		sub.CreatedAt,
		toDate,
		method,
		strconv.Itoa(sub.DailyRequests),
	}
}
