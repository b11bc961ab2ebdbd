package tgnvoda

import (
	"context"
	"fmt"
)

// FetchAccountAndBilling reads the account overview page. Without a prior
// Authenticate the portal serves the login page and every field comes back nil.
func (c *Client) FetchAccountAndBilling(ctx context.Context) (AccountBilling, error) {
	ctx, span := tracer.Start(ctx, "client:FetchAccountAndBilling")
	defer span.End()

	endpoint := c.accountPath()
	c.tel.ReportDebug(report_client_fetch_account_billing, endpoint)

	res, err := c.Http.R().
		SetContext(ctx).
		Get(endpoint)
	if err != nil {
		c.tel.ReportBroken(
			report_client_fetch_account_billing,
			fmt.Errorf("fetch: %w", err),
			endpoint,
		)
		fail(span, err, "failed to fetch account page")
		return AccountBilling{}, err
	}
	doc, err := parseDocument(res)
	if err != nil {
		c.tel.ReportBroken(
			report_client_fetch_account_billing,
			fmt.Errorf("parse: %w", err),
			endpoint,
		)
		fail(span, err, "failed to parse account page")
		return AccountBilling{}, err
	}

	return c.parser.AccountBilling(doc, c.creds.AccountID), nil
}
