package tgnvoda

import (
	"context"
	"fmt"
	"net/url"
)

// GetHistory fetches the meter reading history between two dates, the dates
// are passed through to the portal as is (DD.MM.YYYY).
func (c *Client) GetHistory(ctx context.Context, from, to string) ([]HistoryEntry, error) {
	ctx, span := tracer.Start(ctx, "client:GetHistory")
	defer span.End()

	endpoint := fmt.Sprintf("/ajax/%s/countersHistory", url.PathEscape(c.creds.AccountID))
	c.tel.ReportDebug(report_client_get_history, endpoint, from, to)

	res, err := c.Http.R().
		SetContext(ctx).
		SetHeaders(map[string]string{
			"X-Requested-With": "XMLHttpRequest",
			"Referer":          c.absolute(c.countersPath()),
			"Accept":           acceptJSON,
		}).
		SetQueryParams(map[string]string{
			"from": from,
			"to":   to,
		}).
		Get(endpoint)
	if err != nil {
		c.tel.ReportBroken(
			report_client_get_history,
			fmt.Errorf("fetch: %w", err),
			endpoint,
		)
		fail(span, err, "failed to fetch history")
		return nil, err
	}

	entries, skipped, err := c.parser.History(res.Body())
	if err != nil {
		c.tel.ReportBroken(report_client_get_history, err, endpoint)
		fail(span, err, "failed to decode history")
		return nil, err
	}
	for _, rowErr := range skipped {
		c.tel.ReportWarning(report_client_get_history, fmt.Errorf("skip row: %w", rowErr))
	}
	return entries, nil
}
