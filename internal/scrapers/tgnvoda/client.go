// Package tgnvoda is a client for the lk.tgnvoda.ru customer portal of the
// Taganrog water utility. It logs in the way a browser does and scrapes
// account, billing and meter data out of the returned pages.
package tgnvoda

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"tgnvoda/internal/components/assert"
	"tgnvoda/internal/components/telemetry"
	"tgnvoda/lib/restyutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("tgnvoda/internal/scrapers/tgnvoda")

const (
	DefaultBaseURL = "https://lk.tgnvoda.ru"

	loginPath = "/login"

	userAgent        = "HomeAssistant/2025.8 tgn_voda"
	acceptHTML       = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	acceptJSON       = "application/json, text/javascript, */*; q=0.01"
	requestTimeout   = 20 * time.Second
)

const (
	report_client_authenticate          = "client.authenticate"
	report_client_fetch_account_billing = "client.fetch-account-billing"
	report_client_fetch_counters_form   = "client.fetch-counters-form"
	report_client_submit_readings       = "client.submit-readings"
	report_client_get_history           = "client.get-history"
)

type ClientOptions struct {
	// BaseURL defaults to DefaultBaseURL.
	BaseURL     string
	Credentials Credentials
	TLS         TLSPolicy
	// VerifyLogin makes Authenticate check that the portal actually
	// logged the user in instead of trusting the login POST.
	VerifyLogin bool
	// CloudflareBypass wraps the transport with browser-like TLS and headers.
	CloudflareBypass bool
	// Parser defaults to LKParser.
	Parser PageParser
	// Dump receives every http exchange with credentials redacted, nil disables it.
	Dump restyutil.Output
}

// Client owns one portal session. Requests made through a Client share a
// cookie jar and must not be made concurrently, callers serialize access.
type Client struct {
	BaseURL *url.URL
	Http    *resty.Client

	creds       Credentials
	parser      PageParser
	verifyLogin bool
	tel         telemetry.API
}

func NewClient(opts ClientOptions, tel telemetry.API) (*Client, error) {
	assert.NotNil(tel)
	assert.NotEmptyStr(opts.Credentials.AccountID)

	tel = telemetry.NewScopedAPI("tgnvoda_scraper", tel)

	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Parser == nil {
		opts.Parser = LKParser{}
	}

	baseURL, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, err
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(opts.BaseURL)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	httpClient.SetCookieJar(jar)

	transport := http.DefaultTransport.(*http.Transport).Clone()
	var roundTripper http.RoundTripper = transport
	if opts.CloudflareBypass {
		roundTripper = cloudflarebp.AddCloudFlareByPass(transport)
	}
	// applied after wrapping, the bypass sets its own tls config on the transport
	err = opts.TLS.apply(transport)
	if err != nil {
		return nil, err
	}
	httpClient.SetTransport(roundTripper)

	httpClient.SetHeaders(map[string]string{
		"User-Agent": userAgent,
		"Accept":     acceptHTML,
		"Origin":     opts.BaseURL,
		"Referer":    baseURL.JoinPath(loginPath).String(),
	})
	httpClient.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseURL.Hostname()))
	httpClient.SetTimeout(requestTimeout)

	// 2 requests max per second
	// max burst >= 2 just means that no requests will be dropped
	rateLimiter := rate.NewLimiter(2, 2)
	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return rateLimiter.Wait(req.Context())
	})
	restyutil.Dump(httpClient, opts.Dump, restyutil.DefaultRedactions...)
	httpClient.OnAfterResponse(checkStatus)

	telemetry.InstrumentResty(httpClient, tel)

	return &Client{
		BaseURL:     baseURL,
		Http:        httpClient,
		creds:       opts.Credentials,
		parser:      opts.Parser,
		verifyLogin: opts.VerifyLogin,
		tel:         tel,
	}, nil
}

func checkStatus(_ *resty.Client, res *resty.Response) error {
	code := res.StatusCode()
	if code >= 200 && code < 400 {
		return nil
	}
	return &HttpError{
		Method:     res.Request.Method,
		URL:        res.Request.URL,
		StatusCode: code,
		Status:     res.Status(),
	}
}

// AccountID returns the personal account this client reads and writes.
func (c *Client) AccountID() string {
	return c.creds.AccountID
}

func (c *Client) accountPath() string {
	return fmt.Sprintf("/account/%s", url.PathEscape(c.creds.AccountID))
}

func (c *Client) countersPath() string {
	return c.accountPath() + "/counters"
}

func (c *Client) absolute(path string) string {
	return c.BaseURL.JoinPath(path).String()
}

func parseDocument(res *resty.Response) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
}

func fail(span trace.Span, err error, description string) {
	span.RecordError(err)
	span.SetStatus(codes.Error, description)
}

// Authenticate logs into the portal, the session cookies it obtains are used
// by every other method. Unless VerifyLogin is set, wrong credentials are not
// detected here but show up as empty data on the next fetch.
func (c *Client) Authenticate(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "client:Authenticate")
	defer span.End()

	loginError := func(err error) error {
		return fmt.Errorf("tgnvoda scraper: login failed: %w", err)
	}

	res, err := c.Http.R().
		SetContext(ctx).
		Get(loginPath)
	if err != nil {
		c.tel.ReportBroken(
			report_client_authenticate,
			fmt.Errorf("login page request: %w", err),
		)
		fail(span, err, "failed to fetch login page")
		return loginError(err)
	}
	doc, err := parseDocument(res)
	if err != nil {
		c.tel.ReportBroken(
			report_client_authenticate,
			fmt.Errorf("parse login page: %w", err),
		)
		fail(span, err, "failed to parse login page")
		return loginError(err)
	}

	token, ok := c.parser.LoginToken(doc)
	if !ok {
		c.tel.ReportBroken(report_client_authenticate, ErrAuth)
		fail(span, ErrAuth, "failed to find login token")
		return loginError(ErrAuth)
	}

	res, err = c.Http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"_token":   token,
			"login":    c.creds.Login,
			"password": c.creds.Password,
		}).
		Post(loginPath)
	if err != nil {
		c.tel.ReportBroken(
			report_client_authenticate,
			fmt.Errorf("login request: %w", err),
		)
		fail(span, err, "failed to post login request")
		return loginError(err)
	}

	if !c.verifyLogin {
		return nil
	}

	doc, err = parseDocument(res)
	if err != nil {
		c.tel.ReportBroken(
			report_client_authenticate,
			fmt.Errorf("parse login response: %w", err),
		)
		fail(span, err, "failed to parse login response")
		return loginError(err)
	}
	if !c.parser.IsLoggedIn(doc) {
		c.tel.ReportWarning(
			report_client_authenticate,
			fmt.Errorf("test login: could not find %s", loggedInMarker),
		)
		fail(span, ErrLoginRejected, "login rejected")
		return loginError(ErrLoginRejected)
	}
	return nil
}
