package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"AquaScanner/internal/ports"
)

const (
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"
	defaultTimeout   = 10 * time.Second
	defaultAttempts  = 3
	defaultRetryWait = 2 * time.Second
)

// Options configure the page fetcher.
type Options struct {
	UserAgent string
	Timeout   time.Duration
	// Delay is the pause enforced between consecutive requests.
	Delay            time.Duration
	Attempts         int
	RetryWait        time.Duration
	CloudflareBypass bool
}

// RestyFetcher downloads pages politely: one request per Delay, a bounded
// number of attempts with a fixed wait, then a permanent miss.
type RestyFetcher struct {
	client *resty.Client
	logger *slog.Logger
}

var _ ports.PageFetcher = (*RestyFetcher)(nil)

func NewRestyFetcher(opts Options, logger *slog.Logger) *RestyFetcher {
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Attempts <= 0 {
		opts.Attempts = defaultAttempts
	}
	if opts.RetryWait <= 0 {
		opts.RetryWait = defaultRetryWait
	}

	client := resty.New()
	if opts.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}
	client.SetHeader("User-Agent", opts.UserAgent)
	client.SetTimeout(opts.Timeout)
	client.SetRetryCount(opts.Attempts - 1)
	client.SetRetryWaitTime(opts.RetryWait)
	client.SetRetryMaxWaitTime(opts.RetryWait)
	client.AddRetryCondition(func(r *resty.Response, err error) bool {
		if err != nil {
			return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
		}
		return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError
	})

	f := &RestyFetcher{client: client, logger: logger}
	client.AddRetryHook(func(r *resty.Response, err error) {
		if r == nil || r.Request == nil {
			f.debug("retry page", "error", err)
			return
		}
		f.debug("retry page", "url", r.Request.URL, "status", r.StatusCode(), "error", err)
	})

	limit := rate.Inf
	if opts.Delay > 0 {
		limit = rate.Every(opts.Delay)
	}
	limiter := rate.NewLimiter(limit, 1)
	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return limiter.Wait(req.Context())
	})

	return f
}

// Fetch returns the parsed page at pageURL.
func (f *RestyFetcher) Fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	resp, err := f.client.R().SetContext(ctx).Get(pageURL)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", pageURL, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%s returned %s", pageURL, resp.Status())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("parse document %s: %w", pageURL, err)
	}
	f.debug("fetched page", "url", pageURL, "bytes", len(resp.Body()))
	return doc, nil
}

func (f *RestyFetcher) debug(msg string, args ...interface{}) {
	if f.logger != nil {
		f.logger.Debug(msg, args...)
	}
}
