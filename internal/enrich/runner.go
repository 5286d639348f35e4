// Package enrich runs the batch enrichment loop over a catalog.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shelfline/catalog-enricher/internal/catalog"
	"github.com/shelfline/catalog-enricher/internal/config"
	"github.com/shelfline/catalog-enricher/internal/listing"
	"github.com/shelfline/catalog-enricher/internal/merge"
	"github.com/shelfline/catalog-enricher/internal/metrics"
	"github.com/shelfline/catalog-enricher/internal/pacing"
	"github.com/shelfline/catalog-enricher/internal/query"
)

// Resolver finds the listing for a query across candidate domains.
type Resolver interface {
	Resolve(ctx context.Context, query string, domains []string) (listing.Resolution, error)
}

// DetailFetcher loads a listing page in one language.
type DetailFetcher interface {
	FetchDetails(ctx context.Context, id, domain, lang string) (listing.Details, error)
}

// Checkpointer persists the whole catalog buffer.
type Checkpointer interface {
	Save(cat *catalog.Catalog) error
}

// BrandExtractor derives a brand from a product name.
type BrandExtractor interface {
	Extract(productName string) (string, bool)
}

// Options are fixed for the lifetime of a Runner.
type Options struct {
	Domains         []string
	ListingLanguage string
	TitleLanguage   string
	CheckpointEvery int
	RowDelay        time.Duration
	Start           int
	End             int
}

// OptionsFromConfig extracts runner options from cfg.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		Domains:         append([]string(nil), cfg.Domains...),
		ListingLanguage: cfg.ListingLanguage,
		TitleLanguage:   cfg.TitleLanguage,
		CheckpointEvery: cfg.CheckpointEvery,
		RowDelay:        cfg.RowDelay,
		Start:           cfg.Start,
		End:             cfg.End,
	}
}

// Runner processes catalog rows one at a time.
type Runner struct {
	opts     Options
	brands   BrandExtractor
	resolver Resolver
	details  DetailFetcher
	store    Checkpointer
	metrics  *metrics.EnrichMetrics
}

// NewRunner creates a Runner. m may be nil.
func NewRunner(opts Options, brands BrandExtractor, r Resolver, d DetailFetcher, store Checkpointer, m *metrics.EnrichMetrics) *Runner {
	opts.Domains = append([]string(nil), opts.Domains...)
	if opts.CheckpointEvery < 1 {
		opts.CheckpointEvery = 1
	}
	if opts.ListingLanguage == "" {
		opts.ListingLanguage = merge.DefaultLanguage
	}
	return &Runner{opts: opts, brands: brands, resolver: r, details: d, store: store, metrics: m}
}

// Run enriches the rows of cat within the configured bounds, checkpointing
// every CheckpointEvery rows and once more at the end. Row failures never stop
// the batch. The returned error is non-nil only when the final flush fails or
// ctx was cancelled; in both cases the summary is still valid.
func (r *Runner) Run(ctx context.Context, cat *catalog.Catalog) (Summary, error) {
	sum := newSummary(uuid.NewString())
	logger := slog.Default().With("run_id", sum.RunID)

	start, end := r.bounds(cat.Len())
	sum.Rows = end - start
	logger.Info("Starting enrichment run", "rows", sum.Rows, "start", start, "end", end, "domains", r.opts.Domains)

	for i := start; i < end; i++ {
		if ctx.Err() != nil {
			sum.Cancelled = true
			break
		}

		began := time.Now()
		outcome := r.processRow(ctx, logger, i, cat)
		if outcome.State == StateSkipped && ctx.Err() != nil {
			outcome.Reason = ReasonCancelled
		}
		sum.add(outcome)
		r.metrics.RecordRow(string(outcome.State), outcome.Reason, time.Since(began))

		if sum.Processed%r.opts.CheckpointEvery == 0 {
			r.checkpoint(logger, cat, &sum)
		}

		if i < end-1 {
			if err := pacing.Sleep(ctx, r.opts.RowDelay); err != nil {
				sum.Cancelled = true
				break
			}
		}
	}
	sum.Cancelled = sum.Cancelled || ctx.Err() != nil

	if err := r.store.Save(cat); err != nil {
		r.metrics.RecordCheckpoint(sum.Processed, err)
		sum.finish()
		logger.Error("Final checkpoint failed", "processed", sum.Processed, "error", err)
		return sum, fmt.Errorf("failed to write final checkpoint: %w", err)
	}
	sum.Checkpoints++
	r.metrics.RecordCheckpoint(sum.Processed, nil)
	sum.finish()

	logger.Info("Enrichment run finished",
		"processed", sum.Processed,
		"persisted", sum.Persisted,
		"skipped", sum.Skipped,
		"images_added", sum.ImagesAdded,
		"checkpoints", sum.Checkpoints,
		"cancelled", sum.Cancelled,
		"elapsed", sum.FinishedAt.Sub(sum.StartedAt).Round(time.Millisecond))

	if sum.Cancelled {
		return sum, fmt.Errorf("enrichment interrupted after %d rows: %w", sum.Processed, context.Cause(ctx))
	}
	return sum, nil
}

func (r *Runner) bounds(n int) (int, int) {
	start, end := r.opts.Start, r.opts.End
	if end <= 0 || end > n {
		end = n
	}
	if start < 0 {
		start = 0
	}
	if start > end {
		start = end
	}
	return start, end
}

func (r *Runner) checkpoint(logger *slog.Logger, cat *catalog.Catalog, sum *Summary) {
	err := r.store.Save(cat)
	r.metrics.RecordCheckpoint(sum.Processed, err)
	if err != nil {
		// The next checkpoint rewrites the same full buffer.
		logger.Warn("Checkpoint failed", "processed", sum.Processed, "error", err)
		return
	}
	sum.Checkpoints++
	logger.Info("Progress saved", "processed", sum.Processed, "of", sum.Rows)
}

// processRow drives one row through resolving, detailing and merging. The
// row's record in cat is replaced only when the merge succeeds.
func (r *Runner) processRow(ctx context.Context, logger *slog.Logger, i int, cat *catalog.Catalog) Outcome {
	rec := cat.Records[i]
	out := Outcome{Row: i + 1, Product: strings.TrimSpace(rec.Name), State: StatePending}
	log := logger.With("row", out.Row, "product", out.Product)

	if out.Product == "" {
		log.Info("Skipping row without product name")
		return out.skip(ReasonNoName, nil)
	}

	brandName, _ := r.brands.Extract(out.Product)
	out.Brand = brandName
	q := query.Build(out.Product, brandName, rec.Category, rec.Subcategory)

	out.State = StateResolving
	log.Info("Resolving product", "brand", brandName, "query", q)
	res, err := r.resolver.Resolve(ctx, q, r.opts.Domains)
	if err != nil {
		kind := listing.Classify(err)
		r.metrics.RecordError(string(StateResolving), string(kind))
		log.Info("No listing found", "kind", kind, "error", err)
		return out.skip(string(kind), err)
	}
	out.Identifier, out.Domain = res.Identifier, res.Domain

	out.State = StateDetailing
	d, detailErr := r.fetchDiscovered(ctx, log, res)
	out.ImagesFound = len(d.Images)
	if len(d.Images) == 0 && d.LocalizedTitle == "" {
		reason := ReasonNoData
		if detailErr != nil {
			reason = string(listing.Classify(detailErr))
		}
		log.Info("Listing yielded no usable data", "id", res.Identifier, "domain", res.Domain, "reason", reason)
		return out.skip(reason, detailErr)
	}

	out.State = StateMerging
	merged, ch := merge.Merge(rec, d)
	merged.Brand = brandName
	cat.Records[i] = merged

	out.State = StatePersisted
	out.ImagesAdded = ch.ImagesAdded
	out.MainImageSet = ch.MainImageSet
	out.NameLocalized = ch.NameReplaced
	r.metrics.RecordImages(out.ImagesFound, ch.ImagesAdded, ch.MainImageSet)
	log.Info("Merged listing data",
		"id", res.Identifier,
		"domain", res.Domain,
		"images_found", out.ImagesFound,
		"images_added", ch.ImagesAdded,
		"main_image_set", ch.MainImageSet,
		"name_localized", ch.NameReplaced)

	return out
}

// fetchDiscovered loads the listing language for media and text and the title
// language for a localized title. A failed fetch drops only its own language.
// The returned error is the listing-language failure, if any.
func (r *Runner) fetchDiscovered(ctx context.Context, log *slog.Logger, res listing.Resolution) (merge.Discovered, error) {
	d := merge.Discovered{
		DefaultLanguage:   r.opts.ListingLanguage,
		ShortDescriptions: make(map[string]string),
		LongDescriptions:  make(map[string]string),
	}

	primary, err := r.details.FetchDetails(ctx, res.Identifier, res.Domain, r.opts.ListingLanguage)
	if err != nil {
		kind := listing.Classify(err)
		r.metrics.RecordError(string(StateDetailing), string(kind))
		log.Warn("Listing page unavailable", "lang", r.opts.ListingLanguage, "kind", kind, "error", err)
	} else {
		d.Images = primary.Images
		addText(d, r.opts.ListingLanguage, primary)
	}

	titleLang := r.opts.TitleLanguage
	switch {
	case titleLang == "":
	case titleLang == r.opts.ListingLanguage:
		d.LocalizedTitle, d.Language = primary.Title, titleLang
	case ctx.Err() == nil:
		localized, lerr := r.details.FetchDetails(ctx, res.Identifier, res.Domain, titleLang)
		if lerr != nil {
			kind := listing.Classify(lerr)
			r.metrics.RecordError(string(StateDetailing), string(kind))
			log.Warn("Localized page unavailable", "lang", titleLang, "kind", kind, "error", lerr)
			break
		}
		d.LocalizedTitle, d.Language = localized.Title, titleLang
		addText(d, titleLang, localized)
	}

	return d, err
}

func addText(d merge.Discovered, lang string, det listing.Details) {
	if len(det.Bullets) > 0 {
		d.ShortDescriptions[lang] = strings.Join(det.Bullets, "\n")
	}
	if det.LongText != "" {
		d.LongDescriptions[lang] = det.LongText
	}
}

// errorText renders err for reports, empty for nil.
func errorText(err error) string {
	if err == nil || errors.Is(err, context.Canceled) {
		return ""
	}
	return err.Error()
}
