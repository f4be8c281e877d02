package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"jobpipe/internal/domain"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) ([]domain.JobPosting, error)
}

// APIFetcher reads one page of postings from a job board API answering
// {"data": [...]}. There is no pagination and no retry.
type APIFetcher struct {
	url  string
	http *resty.Client
}

func NewAPIFetcher(url string, timeout time.Duration, userAgent string, log zerolog.Logger) *APIFetcher {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")
	if userAgent != "" {
		client.SetHeader("User-Agent", userAgent)
	}
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		log.Debug().
			Str("url", res.Request.URL).
			Int("status", res.StatusCode()).
			Dur("took", res.Time()).
			Int("bytes", len(res.Body())).
			Msg("api response")
		return nil
	})
	return &APIFetcher{url: url, http: client}
}

func (f *APIFetcher) Name() string { return "api" }

func (f *APIFetcher) Fetch(ctx context.Context) ([]domain.JobPosting, error) {
	res, err := f.http.R().SetContext(ctx).Get(f.url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", f.url, err)
	}
	if !res.IsSuccess() {
		return nil, &domain.RemoteFetchError{URL: f.url, StatusCode: res.StatusCode()}
	}
	return decodePostings(f.url, res.Body())
}

type wirePage struct {
	Data *[]wirePosting `json:"data"`
}

type wirePosting struct {
	Title       *string `json:"title"`
	CompanyName *string `json:"company_name"`
	Location    *string `json:"location"`
	Remote      *bool   `json:"remote"`
	URL         *string `json:"url"`
}

func decodePostings(source string, body []byte) ([]domain.JobPosting, error) {
	var page wirePage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, &domain.MalformedSourceError{Path: source, Reason: "decode response body", Err: err}
	}
	if page.Data == nil {
		return nil, &domain.MalformedSourceError{Path: source, Reason: `response has no "data" array`}
	}

	out := make([]domain.JobPosting, 0, len(*page.Data))
	for i, w := range *page.Data {
		if missing := w.missing(); missing != "" {
			return nil, &domain.MalformedSourceError{
				Path:   source,
				Reason: fmt.Sprintf("posting %d has no %s", i, missing),
			}
		}
		out = append(out, domain.JobPosting{
			Title:       *w.Title,
			CompanyName: *w.CompanyName,
			Location:    *w.Location,
			Remote:      *w.Remote,
			URL:         *w.URL,
		})
	}
	return out, nil
}

func (w wirePosting) missing() string {
	switch {
	case w.Title == nil:
		return "title"
	case w.CompanyName == nil:
		return "company_name"
	case w.Location == nil:
		return "location"
	case w.Remote == nil:
		return "remote"
	case w.URL == nil:
		return "url"
	}
	return ""
}
