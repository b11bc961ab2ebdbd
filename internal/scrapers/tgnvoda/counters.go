package tgnvoda

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// FetchCountersForm reads the meter readings form together with its csrf token.
func (c *Client) FetchCountersForm(ctx context.Context) (CountersForm, error) {
	ctx, span := tracer.Start(ctx, "client:FetchCountersForm")
	defer span.End()

	endpoint := c.countersPath()
	c.tel.ReportDebug(report_client_fetch_counters_form, endpoint)

	res, err := c.Http.R().
		SetContext(ctx).
		Get(endpoint)
	if err != nil {
		c.tel.ReportBroken(
			report_client_fetch_counters_form,
			fmt.Errorf("fetch: %w", err),
			endpoint,
		)
		fail(span, err, "failed to fetch counters page")
		return CountersForm{}, err
	}
	doc, err := parseDocument(res)
	if err != nil {
		c.tel.ReportBroken(
			report_client_fetch_counters_form,
			fmt.Errorf("parse: %w", err),
			endpoint,
		)
		fail(span, err, "failed to parse counters page")
		return CountersForm{}, err
	}

	form, err := c.parser.CountersForm(doc, c.absolute(endpoint))
	if err != nil {
		c.tel.ReportBroken(report_client_fetch_counters_form, err, endpoint)
		fail(span, err, "unusable counters page")
		return CountersForm{}, fmt.Errorf("tgnvoda scraper: %w", err)
	}
	c.tel.ReportCount("client.counters", int64(len(form.Fields)))
	return form, nil
}

// FormatReading renders a reading the way the portal expects, with a dot as
// the decimal mark and no exponent.
func FormatReading(value float64) string {
	return strings.ReplaceAll(strconv.FormatFloat(value, 'f', -1, 64), ",", ".")
}

// BuildSubmission maps readings keyed by row id onto the form, it returns the
// payload to post and the readings that were applied.
func BuildSubmission(form CountersForm, readings map[string]float64) (map[string]string, []AppliedReading) {
	payload := map[string]string{"_token": form.CsrfToken}
	applied := []AppliedReading{}

	for _, field := range form.Fields {
		if field.RowID == "" {
			continue
		}
		reading, ok := readings[field.RowID]
		if !ok {
			continue
		}

		value := FormatReading(reading)
		if field.ValueInput != nil {
			payload[*field.ValueInput] = value
		}
		if field.RowIDInput != nil {
			payload[*field.RowIDInput] = field.RowID
		}
		if field.TarifInput != nil {
			payload[*field.TarifInput] = field.TarifValue
		}
		applied = append(applied, AppliedReading{
			RowID:     field.RowID,
			Value:     value,
			LastValue: field.LastValue,
		})
	}

	return payload, applied
}

// SubmitReadings sends new meter readings keyed by row id. The form is always
// fetched again since its token is single use. ErrNoMatchingCounters is
// returned without posting anything when no row id is on the page.
func (c *Client) SubmitReadings(ctx context.Context, readings map[string]float64) (SubmitResult, error) {
	ctx, span := tracer.Start(ctx, "client:SubmitReadings")
	defer span.End()

	form, err := c.FetchCountersForm(ctx)
	if err != nil {
		fail(span, err, "failed to fetch counters form")
		return SubmitResult{}, err
	}

	payload, applied := BuildSubmission(form, readings)
	if len(applied) == 0 {
		c.tel.ReportWarning(report_client_submit_readings, ErrNoMatchingCounters, len(readings))
		fail(span, ErrNoMatchingCounters, "no matching counters")
		return SubmitResult{}, fmt.Errorf("tgnvoda scraper: %w", ErrNoMatchingCounters)
	}

	res, err := c.Http.R().
		SetContext(ctx).
		SetHeader("Referer", form.SubmitURL).
		SetFormData(payload).
		Post(form.SubmitURL)
	if err != nil {
		c.tel.ReportBroken(
			report_client_submit_readings,
			fmt.Errorf("post: %w", err),
			form.SubmitURL,
		)
		fail(span, err, "failed to post readings")
		return SubmitResult{}, err
	}
	doc, err := parseDocument(res)
	if err != nil {
		c.tel.ReportBroken(
			report_client_submit_readings,
			fmt.Errorf("parse: %w", err),
			form.SubmitURL,
		)
		fail(span, err, "failed to parse submit response")
		return SubmitResult{}, err
	}

	success, messages := c.parser.SubmitAlerts(doc)
	if !success {
		c.tel.ReportWarning(report_client_submit_readings, "portal rejected readings", messages)
	}
	return SubmitResult{
		Applied:  applied,
		Success:  success,
		Messages: messages,
	}, nil
}
