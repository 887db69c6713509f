package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantmind-br/scrape-go/internal/domain"
)

type fakeEngine struct {
	outcome domain.FetchOutcome
	err     error
	calls   int
}

func (f *fakeEngine) Fetch(ctx context.Context, host domain.HostKey, url string, timeoutMS uint) (domain.FetchOutcome, error) {
	f.calls++
	return f.outcome, f.err
}

type fakeParser struct {
	text string
	err  error
}

func (f *fakeParser) Parse(raw []byte, mediaType string) (domain.ParsedContent, error) {
	if f.err != nil {
		return domain.ParsedContent{}, f.err
	}
	text := f.text
	if text == "" {
		text = string(raw)
	}
	return domain.ParsedContent{Text: text, OriginalMediaType: mediaType}, nil
}

type fakeStore struct {
	byURL   map[string][]domain.CachedResource
	writes  int
	findErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{byURL: make(map[string][]domain.CachedResource)}
}

func (s *fakeStore) FindByURL(ctx context.Context, url string) ([]domain.CachedResource, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.byURL[url], nil
}

func (s *fakeStore) Read(ctx context.Context, uri string) (domain.CachedResource, error) {
	for _, entries := range s.byURL {
		for _, e := range entries {
			if e.URI == uri {
				return e, nil
			}
		}
	}
	return domain.CachedResource{}, errors.New("not found")
}

func (s *fakeStore) Write(ctx context.Context, url, text string, metadata domain.ResourceMetadata) (string, error) {
	s.writes++
	uri := "resource:" + url + ":" + time.Now().String()
	entry := domain.CachedResource{URI: uri, Name: url, Text: text, Metadata: metadata}
	s.byURL[url] = append([]domain.CachedResource{entry}, s.byURL[url]...)
	return uri, nil
}

type fakeExtractor struct {
	outcome domain.ExtractionOutcome
	err     error
}

func (f *fakeExtractor) Extract(ctx context.Context, text, query string) (domain.ExtractionOutcome, error) {
	return f.outcome, f.err
}

func TestScrape_MissThenFetchThenPersist(t *testing.T) {
	store := newFakeStore()
	engine := &fakeEngine{outcome: domain.FetchOutcome{
		Success: true, Backend: domain.Direct, Bytes: []byte("hello"), MediaType: "text/plain",
	}}
	parser := &fakeParser{}
	o := New(store, engine, parser, nil, nil)

	result, err := o.Scrape(context.Background(), domain.ScrapeRequest{
		URL: "http://a/", MaxChars: 100000, SaveResult: true,
	})
	require.NoError(t, err)
	assert.Contains(t, result.InlineText, "hello")
	assert.Contains(t, result.InlineText, "Scraped using: Direct")
	assert.True(t, result.HasResource)
	assert.Equal(t, 1, store.writes)
	assert.False(t, result.Truncated)
}

func TestScrape_CacheHitSkipsFetch(t *testing.T) {
	store := newFakeStore()
	store.byURL["http://c/"] = []domain.CachedResource{
		{
			URI:  "resource:1",
			Text: "cached content",
			Metadata: domain.ResourceMetadata{
				Backend:   "Bypass",
				Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			},
		},
	}
	engine := &fakeEngine{}
	o := New(store, engine, &fakeParser{}, nil, nil)

	result, err := o.Scrape(context.Background(), domain.ScrapeRequest{URL: "http://c/", MaxChars: 100000})
	require.NoError(t, err)
	assert.Equal(t, 0, engine.calls)
	assert.Contains(t, result.InlineText, "Served from cache (originally scraped using: Bypass)")
	assert.Equal(t, 0, store.writes)
}

func TestScrape_ForceRescrapeAddsNewEntry(t *testing.T) {
	store := newFakeStore()
	store.byURL["http://c/"] = []domain.CachedResource{
		{URI: "resource:1", Text: "old", Metadata: domain.ResourceMetadata{Backend: "Bypass", Timestamp: time.Now()}},
	}
	engine := &fakeEngine{outcome: domain.FetchOutcome{Success: true, Backend: domain.Bypass, Bytes: []byte("new"), MediaType: "text/plain"}}
	o := New(store, engine, &fakeParser{}, nil, nil)

	before := len(store.byURL["http://c/"])
	_, err := o.Scrape(context.Background(), domain.ScrapeRequest{
		URL: "http://c/", MaxChars: 100000, SaveResult: true, ForceRescrape: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, engine.calls)
	assert.Len(t, store.byURL["http://c/"], before+1)
}

func TestScrape_AllBackendsFailedPropagates(t *testing.T) {
	store := newFakeStore()
	wantErr := &domain.AllBackendsFailed{TimeoutMS: 1000}
	engine := &fakeEngine{err: wantErr}
	o := New(store, engine, &fakeParser{}, nil, nil)

	_, err := o.Scrape(context.Background(), domain.ScrapeRequest{URL: "http://e/", MaxChars: 100000})
	require.Error(t, err)
	assert.ErrorIs(t, err, wantErr)
}

func TestScrape_InvalidArgumentOnEmptyURL(t *testing.T) {
	o := New(newFakeStore(), &fakeEngine{}, &fakeParser{}, nil, nil)
	_, err := o.Scrape(context.Background(), domain.ScrapeRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestScrape_InvalidArgumentOnNonHTTPURL(t *testing.T) {
	o := New(newFakeStore(), &fakeEngine{}, &fakeParser{}, nil, nil)
	_, err := o.Scrape(context.Background(), domain.ScrapeRequest{URL: "ftp://example.com/file"})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestScrape_Windowing(t *testing.T) {
	store := newFakeStore()
	longText := make([]byte, 250000)
	for i := range longText {
		longText[i] = 'a'
	}
	engine := &fakeEngine{outcome: domain.FetchOutcome{Success: true, Backend: domain.Direct, Bytes: longText, MediaType: "text/plain"}}
	o := New(store, engine, &fakeParser{}, nil, nil)

	result, err := o.Scrape(context.Background(), domain.ScrapeRequest{
		URL: "http://d/", MaxChars: 100000, StartIndex: 50000, SaveResult: true,
	})
	require.NoError(t, err)
	assert.True(t, result.Truncated)
	assert.Contains(t, result.InlineText, "next start_index: 150000")
}

func TestWindow_Law(t *testing.T) {
	cases := []struct {
		text      string
		start     uint
		maxChars  uint
		want      string
		truncated bool
	}{
		{"abcdef", 0, 10, "abcdef", false},
		{"abcdef", 0, 3, "abc", true},
		{"abcdef", 2, 3, "cde", true},
		{"abcdef", 2, 10, "cdef", false},
		{"abcdef", 6, 10, "", false},
		{"abcdef", 100, 10, "", false},
		{"héllo wörld", 1, 4, "éllo", true},
	}
	for _, c := range cases {
		got, truncated := window(c.text, c.start, c.maxChars)
		assert.Equal(t, c.want, got)
		assert.Equal(t, c.truncated, truncated)
		assert.LessOrEqual(t, len([]rune(got)), int(c.maxChars))
	}
}

func TestScrape_ExtractionSuccessReplacesText(t *testing.T) {
	store := newFakeStore()
	engine := &fakeEngine{outcome: domain.FetchOutcome{Success: true, Backend: domain.Direct, Bytes: []byte("raw"), MediaType: "text/plain"}}
	extractor := &fakeExtractor{outcome: domain.ExtractionOutcome{Success: true, Content: "extracted answer"}}
	o := New(store, engine, &fakeParser{}, extractor, nil)

	result, err := o.Scrape(context.Background(), domain.ScrapeRequest{
		URL: "http://f/", MaxChars: 100000, ExtractQuery: "what is the price?",
	})
	require.NoError(t, err)
	assert.Contains(t, result.InlineText, "extracted answer")
	assert.NotContains(t, result.InlineText, "raw")
}

func TestScrape_ExtractionFailureDowngradesToRawText(t *testing.T) {
	store := newFakeStore()
	engine := &fakeEngine{outcome: domain.FetchOutcome{Success: true, Backend: domain.Direct, Bytes: []byte("raw text"), MediaType: "text/plain"}}
	extractor := &fakeExtractor{err: errors.New("provider down")}
	o := New(store, engine, &fakeParser{}, extractor, nil)

	result, err := o.Scrape(context.Background(), domain.ScrapeRequest{
		URL: "http://g/", MaxChars: 100000, ExtractQuery: "query",
	})
	require.NoError(t, err)
	assert.Contains(t, result.InlineText, "raw text")
	assert.Contains(t, result.InlineText, "extraction failed")
}
