package pagination

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/Sternrassler/pokemon-export/pkg/record"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

var (
	pagesFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pokemon_export_pages_fetched_total",
		Help: "Total number of result pages fetched",
	})

	recordsFetched = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pokemon_export_records_fetched",
		Help: "Number of records collected by the last fetch",
	})

	fetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pokemon_export_fetches_total",
		Help: "Total number of fetch runs by outcome",
	}, []string{"status"})
)

var (
	// ErrCountMissing is returned when the discovery response has no numeric count.
	ErrCountMissing = errors.New("count property not found in API response")

	// ErrInvalidJSON is returned when a response body is not valid JSON.
	ErrInvalidJSON = errors.New("response body is not valid JSON")
)

// Endpoint is the collection path appended to the base URL.
const Endpoint = "/pokemon"

// DefaultPageSize is the fixed page size of the legacy exporter.
const DefaultPageSize = 20

// Mode selects how page URLs are built.
type Mode string

const (
	// ModePaged requests offset=(page-1)*limit on each iteration.
	ModePaged Mode = "paged"

	// ModeCompat requests offset=limit&limit=limit on every iteration.
	ModeCompat Mode = "compat"
)

// ParseMode converts a string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModePaged, "":
		return ModePaged, nil
	case ModeCompat:
		return ModeCompat, nil
	default:
		return "", fmt.Errorf("unknown pagination mode %q (want %q or %q)", s, ModePaged, ModeCompat)
	}
}

// Config holds fetcher configuration.
type Config struct {
	// BaseURL is the API root, e.g. https://pokeapi.co/api/v2
	BaseURL string
	// PageSize is the limit sent with every page request (default 20)
	PageSize int
	// Mode selects paged or compat URL construction (default paged)
	Mode Mode
}

// Getter fetches a URL and returns its body. *client.Client implements it.
type Getter interface {
	Get(ctx context.Context, rawURL string) ([]byte, error)
}

// Fetcher collects all records of the paginated endpoint.
type Fetcher struct {
	getter Getter
	config Config
	logger zerolog.Logger
}

// NewFetcher creates a new fetcher.
func NewFetcher(getter Getter, cfg Config, logger zerolog.Logger) (*Fetcher, error) {
	if getter == nil {
		return nil, fmt.Errorf("getter is required")
	}

	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("base url is required")
	}
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", cfg.BaseURL)
	}
	cfg.BaseURL = base

	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.Mode == "" {
		cfg.Mode = ModePaged
	}
	if _, err := ParseMode(string(cfg.Mode)); err != nil {
		return nil, err
	}

	return &Fetcher{
		getter: getter,
		config: cfg,
		logger: logger.With().Str("component", "fetcher").Logger(),
	}, nil
}

// TotalPages returns ceil(total/limit), or 0 when total <= 0.
func TotalPages(total, limit int) int {
	return pageCount(float64(total), limit)
}

// pageCount is TotalPages for a raw JSON count, which may be fractional.
func pageCount(count float64, limit int) int {
	if count <= 0 || limit <= 0 {
		return 0
	}
	return int(math.Ceil(count / float64(limit)))
}

// DiscoveryURL returns the URL of the count request.
func (f *Fetcher) DiscoveryURL() string {
	return f.config.BaseURL + Endpoint
}

// PageURL returns the request URL for a 1-based page number.
func (f *Fetcher) PageURL(page int) string {
	limit := f.config.PageSize
	offset := limit
	if f.config.Mode == ModePaged {
		offset = (page - 1) * limit
	}
	return f.pageURL(offset, limit)
}

func (f *Fetcher) pageURL(offset, limit int) string {
	// offset before limit, as in the legacy request line
	return fmt.Sprintf("%s%s?offset=%d&limit=%d", f.config.BaseURL, Endpoint, offset, limit)
}

// Fetch runs the discovery request and then every page request.
func (f *Fetcher) Fetch(ctx context.Context) Result {
	start := time.Now()
	res := f.fetch(ctx)
	res.Duration = time.Since(start)

	fetchesTotal.WithLabelValues(string(res.Status)).Inc()
	recordsFetched.Set(float64(len(res.Records)))

	switch res.Status {
	case StatusFailed:
		f.logger.Error().
			Err(res.Err).
			Int("pages", res.Pages).
			Dur("duration", res.Duration).
			Msg("An error occurred while fetching data")
	default:
		f.logger.Info().
			Int("records", len(res.Records)).
			Int("pages", res.Pages).
			Dur("duration", res.Duration).
			Msgf("Fetched a total of %d records", len(res.Records))
	}

	return res
}

func (f *Fetcher) fetch(ctx context.Context) Result {
	count, err := f.discover(ctx)
	if err != nil {
		return failed(err, 0, 0)
	}
	total := int(count)

	f.logger.Info().Float64("total", count).Msgf("Total records to fetch: %v", count)

	limit := f.config.PageSize
	totalPages := pageCount(count, limit)
	if totalPages == 0 {
		return Result{Status: StatusEmpty, Total: total}
	}

	var records []record.Record
	// Legacy cursor: starts at limit and is advanced after every page, but in
	// compat mode it never reaches the request URL.
	cursor := limit

	for page := 1; page <= totalPages; page++ {
		pageURL := f.PageURL(page)

		body, err := f.getter.Get(ctx, pageURL)
		if err != nil {
			return failed(fmt.Errorf("fetch page %d: %w", page, err), total, page-1)
		}
		pagesFetchedTotal.Inc()

		offset := cursor
		if f.config.Mode == ModePaged {
			offset = (page - 1) * limit
		}
		f.logger.Info().
			Int("page", page).
			Int("total_pages", totalPages).
			Int("offset", offset).
			Str("url", pageURL).
			Msgf("Fetching items %d from page %d of %v", offset, page, count)

		batch, err := f.parsePage(body, page)
		if err != nil {
			return failed(fmt.Errorf("decode page %d: %w", page, err), total, page)
		}
		records = append(records, batch...)

		if float64(cursor) > count {
			cursor = limit
		} else {
			cursor += limit
		}
	}

	if len(records) == 0 {
		return Result{Status: StatusEmpty, Total: total, Pages: totalPages}
	}

	return Result{
		Status:  StatusFetched,
		Records: records,
		Total:   total,
		Pages:   totalPages,
	}
}

// discover reads the total record count. A fractional count is kept as is so
// the page count rounds up.
func (f *Fetcher) discover(ctx context.Context) (float64, error) {
	body, err := f.getter.Get(ctx, f.DiscoveryURL())
	if err != nil {
		return 0, fmt.Errorf("discovery request: %w", err)
	}

	if !gjson.ValidBytes(body) {
		return 0, fmt.Errorf("discovery response: %w", ErrInvalidJSON)
	}

	count := gjson.GetBytes(body, "count")
	if !count.Exists() || count.Type != gjson.Number {
		f.logger.Error().Msg("'count' property not found in API response")
		return 0, ErrCountMissing
	}

	return count.Float(), nil
}

// parsePage extracts the records of one page. A missing results array is an
// empty page; non-object items are skipped.
func (f *Fetcher) parsePage(body []byte, page int) ([]record.Record, error) {
	if !gjson.ValidBytes(body) {
		return nil, ErrInvalidJSON
	}

	results := gjson.GetBytes(body, "results")
	if !results.Exists() || !results.IsArray() {
		return nil, nil
	}

	var out []record.Record
	index := 0
	results.ForEach(func(_, item gjson.Result) bool {
		rec, err := record.FromResult(item)
		if err != nil {
			f.logger.Warn().
				Int("page", page).
				Int("index", index).
				Str("type", item.Type.String()).
				Msg("Skipping non-object result item")
		} else {
			out = append(out, rec)
		}
		index++
		return true
	})

	return out, nil
}
