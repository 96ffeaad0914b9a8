package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/sha1n/docshelf/internal/domain"
	"github.com/sha1n/docshelf/internal/metrics"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrEmptyQuery indicates a query with no search text
	ErrEmptyQuery = errors.New("query cannot be empty")

	// ErrInvalidFormat indicates an unsupported format filter
	ErrInvalidFormat = errors.New("format must be 'html' or 'pdf'")
)

// TreeSource produces a fresh document tree.
type TreeSource interface {
	Index() (*domain.TreeNode, error)
}

// Query describes one search call.
type Query struct {
	// Text is the free-text query.
	Text string

	// Format optionally restricts hits to domain.FormatHTML or domain.FormatPDF.
	Format string

	// Limit caps the number of hits; zero or anything above the
	// configured maximum uses the maximum.
	Limit int
}

// Hit is a single search result.
type Hit struct {
	Name      string   `json:"name"`
	Path      string   `json:"path"`
	MediaType string   `json:"mime"`
	Title     string   `json:"title,omitempty"`
	Score     float64  `json:"score"`
	Fragments []string `json:"fragments,omitempty"`
}

// Results is the outcome of a search call.
type Results struct {
	Query string `json:"query"`
	Total uint64 `json:"total"`
	Hits  []Hit  `json:"hits"`
}

// Options configures a Searcher.
type Options struct {
	MaxResults  int
	MaxFileSize int64
	Metrics     *metrics.Metrics
}

// Searcher runs full-text queries over a freshly indexed tree.
// Every call builds a throwaway in-memory index; identical concurrent
// calls share one computation.
type Searcher struct {
	root    string
	source  TreeSource
	options Options
	group   singleflight.Group
}

// NewSearcher creates a searcher for documents under root.
func NewSearcher(root string, source TreeSource, options Options) *Searcher {
	if options.MaxResults <= 0 {
		options.MaxResults = 20
	}
	return &Searcher{
		root:    root,
		source:  source,
		options: options,
	}
}

// Search executes q. The shared computation is detached from the caller's
// cancellation, so one caller giving up does not fail the others.
func (s *Searcher) Search(ctx context.Context, q Query) (*Results, error) {
	q, err := s.normalize(q)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	ch := s.group.DoChan(cacheKey(q), func() (any, error) {
		return s.run(context.WithoutCancel(ctx), q)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			s.options.Metrics.ObserveSearch(time.Since(start), 0, res.Err, res.Shared)
			return nil, res.Err
		}
		results := res.Val.(*Results)
		s.options.Metrics.ObserveSearch(time.Since(start), len(results.Hits), nil, res.Shared)
		return results, nil
	}
}

func (s *Searcher) normalize(q Query) (Query, error) {
	q.Text = strings.Join(strings.Fields(q.Text), " ")
	if q.Text == "" {
		return q, ErrEmptyQuery
	}

	q.Format = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(q.Format), "."))
	switch q.Format {
	case "", domain.FormatHTML, domain.FormatPDF:
	case "htm":
		q.Format = domain.FormatHTML
	default:
		return q, fmt.Errorf("%w, got: %s", ErrInvalidFormat, q.Format)
	}

	if q.Limit <= 0 || q.Limit > s.options.MaxResults {
		q.Limit = s.options.MaxResults
	}
	return q, nil
}

func (s *Searcher) run(ctx context.Context, q Query) (_ *Results, err error) {
	tree, err := s.source.Index()
	if err != nil {
		return nil, err
	}

	index, _, err := BuildIndex(ctx, s.root, tree, s.options.MaxFileSize)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := index.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	searchReq := bleve.NewSearchRequestOptions(buildQuery(q), q.Limit, 0, false)
	searchReq.Fields = []string{domain.DocFieldName, domain.DocFieldPath, domain.DocFieldMediaType, domain.DocFieldTitle}
	searchReq.Highlight = bleve.NewHighlight()
	searchReq.Highlight.AddField(domain.DocFieldContent)
	searchReq.Highlight.AddField(domain.DocFieldTitle)

	found, err := index.SearchInContext(ctx, searchReq)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	return toResults(q.Text, found), nil
}

// buildQuery constructs a Bleve query from a normalized Query.
func buildQuery(q Query) query.Query {
	contentQuery := bleve.NewMatchQuery(q.Text)
	contentQuery.SetField(domain.DocFieldContent)

	titleQuery := bleve.NewMatchQuery(q.Text)
	titleQuery.SetField(domain.DocFieldTitle)
	titleQuery.SetBoost(3.0)

	keywordsQuery := bleve.NewMatchQuery(q.Text)
	keywordsQuery.SetField(domain.DocFieldKeywords)
	keywordsQuery.SetBoost(5.0)

	searchQuery := bleve.NewDisjunctionQuery(contentQuery, titleQuery, keywordsQuery)
	if q.Format == "" {
		return searchQuery
	}

	formatQuery := bleve.NewTermQuery(q.Format)
	formatQuery.SetField(domain.DocFieldFormat)
	return bleve.NewConjunctionQuery(searchQuery, formatQuery)
}

func toResults(text string, found *bleve.SearchResult) *Results {
	results := &Results{
		Query: text,
		Total: found.Total,
		Hits:  make([]Hit, 0, len(found.Hits)),
	}
	for _, match := range found.Hits {
		hit := Hit{Score: match.Score}
		hit.Name, _ = match.Fields[domain.DocFieldName].(string)
		hit.Path, _ = match.Fields[domain.DocFieldPath].(string)
		hit.MediaType, _ = match.Fields[domain.DocFieldMediaType].(string)
		hit.Title, _ = match.Fields[domain.DocFieldTitle].(string)
		hit.Fragments = append(hit.Fragments, match.Fragments[domain.DocFieldTitle]...)
		hit.Fragments = append(hit.Fragments, match.Fragments[domain.DocFieldContent]...)
		results.Hits = append(results.Hits, hit)
	}
	return results
}

// cacheKey identifies queries that can share one computation.
func cacheKey(q Query) string {
	return fmt.Sprintf("%s|format=%s|limit=%d", strings.ToLower(q.Text), q.Format, q.Limit)
}
