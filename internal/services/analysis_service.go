package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"bondscope/internal/cache"
	"bondscope/internal/config"
	"bondscope/internal/dataprocessing"
	"bondscope/internal/exporter"
	"bondscope/internal/infrastructure"
	api "bondscope/pkg/contracts/api/v1"
	"bondscope/pkg/contracts/domain"
)

// AllDonors is the selector that stands for every donor in name lists.
const AllDonors = "All"

// Names the analysis results are cached under.
const (
	fnGlobalStats       = "global_stats"
	fnPartyStats        = "party_stats"
	fnDonorStats        = "donor_stats"
	fnCorrelate         = "correlate"
	fnLeague            = "league"
	fnPartyRedemptions  = "redemptions_by_party"
	fnTimeline          = "timeline"
	fnPurchaseHeatmap   = "purchase_heatmap"
	fnRedemptionHeatmap = "redemption_heatmap"
	fnWordCloudText     = "wordcloud_text"
)

// CachedFunctions lists every name accepted by InvalidateCache.
var CachedFunctions = []string{
	fnGlobalStats, fnPartyStats, fnDonorStats, fnCorrelate, fnLeague,
	fnPartyRedemptions, fnTimeline, fnPurchaseHeatmap, fnRedemptionHeatmap, fnWordCloudText,
}

// perDonor are the functions whose cached results are keyed by donor.
var perDonor = map[string]bool{fnDonorStats: true, fnCorrelate: true}

// WordCloudRenderer draws a word cloud image from space-separated text.
type WordCloudRenderer interface {
	Render(ctx context.Context, text string) ([]byte, error)
}

// Dataset is one loaded, normalized pair of disclosure tables. It is never
// mutated after loading.
type Dataset struct {
	ID          string
	LoadedAt    time.Time
	Purchases   []domain.PurchaseRecord
	Redemptions []domain.RedemptionRecord

	purchaseReport   dataprocessing.PreprocessReport
	redemptionReport dataprocessing.PreprocessReport
	totals           []domain.DonorTotal
	names            []string
}

// Info describes the dataset for API responses.
func (d *Dataset) Info() api.DatasetInfo {
	return api.DatasetInfo{
		ID:          d.ID,
		LoadedAt:    d.LoadedAt,
		Purchases:   tableInfo(len(d.Purchases), d.purchaseReport),
		Redemptions: tableInfo(len(d.Redemptions), d.redemptionReport),
	}
}

// Totals returns the donor totals, largest first.
func (d *Dataset) Totals() []domain.DonorTotal { return d.totals }

func tableInfo(n int, r dataprocessing.PreprocessReport) api.TableInfo {
	return api.TableInfo{
		Records:        n,
		InvalidDates:   r.InvalidDates,
		InvalidAmounts: r.InvalidAmounts,
		InvalidNames:   r.InvalidNames,
	}
}

// AnalysisService owns the loaded dataset and answers analysis queries
// through the result cache.
type AnalysisService struct {
	data         config.DataConfig
	purchaseSrc  dataprocessing.TableSource
	redeemSrc    dataprocessing.TableSource
	loader       *dataprocessing.Loader
	preprocessor *dataprocessing.Preprocessor
	cache        *cache.Cache
	renderer     WordCloudRenderer
	tracer       trace.Tracer
	metrics      *infrastructure.AnalysisMetrics
	logger       *slog.Logger

	mu      sync.RWMutex
	dataset *Dataset
}

// Option configures an AnalysisService.
type Option func(*AnalysisService)

// WithCache routes computations through c. Without it every call computes.
func WithCache(c *cache.Cache) Option {
	return func(s *AnalysisService) { s.cache = c }
}

// WithTracer sets the tracer used for operation spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *AnalysisService) { s.tracer = t }
}

// WithMetrics records operation counts and latency.
func WithMetrics(m *infrastructure.AnalysisMetrics) Option {
	return func(s *AnalysisService) { s.metrics = m }
}

// WithRenderer enables word cloud images.
func WithRenderer(r WordCloudRenderer) Option {
	return func(s *AnalysisService) { s.renderer = r }
}

// NewAnalysisService creates a service for the configured tables. No data
// is read until Reload.
func NewAnalysisService(cfg *config.Config, logger *slog.Logger, opts ...Option) (*AnalysisService, error) {
	if logger == nil {
		logger = slog.Default()
	}

	purchaseCols, err := dataprocessing.MappingFromStrings(cfg.Columns.Purchases)
	if err != nil {
		return nil, fmt.Errorf("purchase columns: %w", err)
	}
	redemptionCols, err := dataprocessing.MappingFromStrings(cfg.Columns.Redemptions)
	if err != nil {
		return nil, fmt.Errorf("redemption columns: %w", err)
	}
	if len(purchaseCols) == 0 {
		purchaseCols = dataprocessing.DefaultPurchaseColumns()
	}
	if len(redemptionCols) == 0 {
		redemptionCols = dataprocessing.DefaultRedemptionColumns()
	}

	s := &AnalysisService{
		data: cfg.Data,
		purchaseSrc: dataprocessing.TableSource{
			Path:    cfg.Data.PurchasesPath,
			Sheet:   cfg.Data.PurchasesSheet,
			Columns: purchaseCols,
		},
		redeemSrc: dataprocessing.TableSource{
			Path:    cfg.Data.RedemptionsPath,
			Sheet:   cfg.Data.RedemptionsSheet,
			Columns: redemptionCols,
		},
		loader: dataprocessing.NewLoader(logger),
		preprocessor: dataprocessing.NewPreprocessor(logger, dataprocessing.PreprocessorConfig{
			PurchaseColumns:   purchaseCols,
			RedemptionColumns: redemptionCols,
			ValidityPeriod:    cfg.ValidityPeriod(),
		}),
		tracer: noop.NewTracerProvider().Tracer(infrastructure.MeterName),
		logger: logger.With(slog.String("component", "analysis_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Reload reads both tables from disk, replaces the dataset and purges the
// cache. On failure the previous dataset stays in place.
func (s *AnalysisService) Reload(ctx context.Context) (result *api.ReloadResult, err error) {
	ctx, done := s.track(ctx, "reload")
	defer func() { done(err) }()

	start := time.Now()
	if s.data.LoadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.data.LoadTimeout)
		defer cancel()
	}

	rawPurchases, rawRedemptions, err := s.loader.LoadDataset(ctx, s.purchaseSrc, s.redeemSrc)
	if err != nil {
		return nil, err
	}
	purchases, purchaseReport, err := s.preprocessor.Purchases(ctx, rawPurchases)
	if err != nil {
		return nil, err
	}
	redemptions, redemptionReport, err := s.preprocessor.Redemptions(ctx, rawRedemptions)
	if err != nil {
		return nil, err
	}

	ds := &Dataset{
		ID:               uuid.NewString(),
		LoadedAt:         time.Now().UTC(),
		Purchases:        purchases,
		Redemptions:      redemptions,
		purchaseReport:   purchaseReport,
		redemptionReport: redemptionReport,
		totals:           dataprocessing.AggregateDonors(purchases),
		names:            dataprocessing.DonorNames(purchases),
	}

	s.mu.Lock()
	s.dataset = ds
	s.mu.Unlock()

	dropped := 0
	if s.cache != nil {
		dropped = s.cache.Purge()
	}
	s.metrics.RecordLoad(ctx, "purchases", len(purchases))
	s.metrics.RecordLoad(ctx, "redemptions", len(redemptions))

	s.logger.InfoContext(ctx, "dataset loaded",
		slog.String("dataset_id", ds.ID),
		slog.Int("purchases", len(purchases)),
		slog.Int("redemptions", len(redemptions)),
		slog.Int("donors", len(ds.totals)),
		slog.Int("cache_entries_dropped", dropped))

	return &api.ReloadResult{
		Dataset:       ds.Info(),
		CacheEntries:  dropped,
		DurationMilli: time.Since(start).Milliseconds(),
	}, nil
}

// Dataset returns the loaded dataset.
func (s *AnalysisService) Dataset() (*Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dataset == nil {
		return nil, ErrNoDataset
	}
	return s.dataset, nil
}

// Loaded reports whether a dataset is in place.
func (s *AnalysisService) Loaded() bool {
	_, err := s.Dataset()
	return err == nil
}

// Overview returns the global purchase and party statistics with the
// purchased versus redeemed check. Party statistics are omitted when no
// redemption carries an amount or a date.
func (s *AnalysisService) Overview(ctx context.Context) (result *api.Overview, err error) {
	ctx, done := s.track(ctx, "overview")
	defer func() { done(err) }()

	ds, err := s.Dataset()
	if err != nil {
		return nil, err
	}

	global, err := cached(ctx, s, ds, fnGlobalStats, nil, func() (domain.GlobalStats, error) {
		return dataprocessing.ComputeGlobalStats(ds.Purchases)
	})
	if err != nil {
		return nil, err
	}

	var parties *domain.PartyStats
	ps, err := cached(ctx, s, ds, fnPartyStats, nil, func() (domain.PartyStats, error) {
		return dataprocessing.ComputePartyStats(ds.Redemptions)
	})
	switch {
	case err == nil:
		parties = &ps
	case errors.Is(err, dataprocessing.ErrEmptyInput), errors.Is(err, dataprocessing.ErrEmptyRange):
		s.logger.DebugContext(ctx, "party stats unavailable", slog.String("error", err.Error()))
	default:
		return nil, err
	}

	disc := dataprocessing.ComputeDiscrepancy(ds.Purchases, ds.Redemptions)
	return &api.Overview{
		Global:            global,
		Parties:           parties,
		Discrepancy:       disc,
		PurchasedINR:      exporter.FormatINR(disc.Purchased),
		RedeemedINR:       exporter.FormatINR(disc.Redeemed),
		DifferenceINR:     exporter.FormatINR(disc.Difference),
		DifferenceWords:   exporter.AmountInWords(disc.Difference),
		DifferenceSpelled: exporter.SpellINR(disc.Difference),
		Dataset:           ds.Info(),
	}, nil
}

// Donors returns one page of donor totals, largest first. Tier and Search
// filter before paging; Search matches a case-insensitive substring.
func (s *AnalysisService) Donors(ctx context.Context, q api.DonorListQuery) (page *api.DonorPage, err error) {
	ctx, done := s.track(ctx, "donors")
	defer func() { done(err) }()

	ds, err := s.Dataset()
	if err != nil {
		return nil, err
	}

	var tier domain.Tier
	if q.Tier != "" {
		t, ok := domain.ParseTier(q.Tier)
		if !ok {
			return nil, fmt.Errorf("%w: tier %q", ErrInvalidQuery, q.Tier)
		}
		tier = t
	}
	search := strings.ToUpper(strings.TrimSpace(q.Search))

	filtered := make([]domain.DonorTotal, 0, len(ds.totals))
	for _, t := range ds.totals {
		if tier != 0 && t.Tier != tier {
			continue
		}
		if search != "" && !strings.Contains(strings.ToUpper(t.DonorName), search) {
			continue
		}
		filtered = append(filtered, t)
	}

	total := len(filtered)
	lo := min(q.Offset, total)
	hi := total
	if q.Limit > 0 {
		hi = min(lo+q.Limit, total)
	}
	return &api.DonorPage{Total: total, Offset: lo, Donors: filtered[lo:hi]}, nil
}

// DonorNames lists donor names for a selector. Without a prefix the list
// starts with AllDonors.
func (s *AnalysisService) DonorNames(ctx context.Context, q api.DonorNamesQuery) (names []string, err error) {
	_, done := s.track(ctx, "donor_names")
	defer func() { done(err) }()

	ds, err := s.Dataset()
	if err != nil {
		return nil, err
	}

	prefix := strings.ToUpper(strings.TrimSpace(q.Prefix))
	if prefix == "" {
		names = append([]string{AllDonors}, ds.names...)
	} else {
		names = make([]string, 0)
		for _, n := range ds.names {
			if strings.HasPrefix(strings.ToUpper(n), prefix) {
				names = append(names, n)
			}
		}
	}
	if q.Limit > 0 && len(names) > q.Limit {
		names = names[:q.Limit]
	}
	return names, nil
}

// DonorDetail returns statistics, the validity-window correlation and a
// news search link for one donor.
func (s *AnalysisService) DonorDetail(ctx context.Context, name string) (detail *api.DonorDetail, err error) {
	ctx, done := s.track(ctx, "donor_detail", attribute.String("donor", name))
	defer func() { done(err) }()

	ds, err := s.Dataset()
	if err != nil {
		return nil, err
	}
	donor, err := s.resolveDonor(ds, name)
	if err != nil {
		return nil, err
	}

	stats, err := cached(ctx, s, ds, fnDonorStats, donor, func() (domain.DonorStats, error) {
		return dataprocessing.ComputeDonorStats(donor, ds.Purchases, ds.totals)
	})
	if err != nil {
		return nil, err
	}
	corr, err := s.correlation(ctx, ds, donor)
	if err != nil {
		return nil, err
	}

	return &api.DonorDetail{
		Stats:        stats,
		TotalINR:     exporter.FormatINR(stats.TotalDonation),
		TotalWords:   exporter.AmountInWords(stats.TotalDonation),
		TotalSpelled: exporter.SpellINR(stats.TotalDonation),
		Correlation:  corr,
		SearchURL:    dataprocessing.SearchURL(donor),
	}, nil
}

// Correlation counts, per party, the redemptions inside the donor's
// validity window. See dataprocessing.Correlate for what the count means.
func (s *AnalysisService) Correlation(ctx context.Context, name string) (result *api.Correlation, err error) {
	ctx, done := s.track(ctx, "correlation", attribute.String("donor", name))
	defer func() { done(err) }()

	ds, err := s.Dataset()
	if err != nil {
		return nil, err
	}
	donor, err := s.resolveDonor(ds, name)
	if err != nil {
		return nil, err
	}
	corr, err := s.correlation(ctx, ds, donor)
	if err != nil {
		return nil, err
	}
	return &corr, nil
}

func (s *AnalysisService) correlation(ctx context.Context, ds *Dataset, donor string) (api.Correlation, error) {
	return cached(ctx, s, ds, fnCorrelate, donor, func() (api.Correlation, error) {
		own := dataprocessing.PurchasesBy(ds.Purchases, donor)
		c := api.Correlation{
			Donor:   donor,
			Parties: dataprocessing.Correlate(own, ds.Redemptions),
		}
		if w, ok := dataprocessing.ValidityWindow(own); ok {
			c.WindowStart = w.Start.Format(domain.ISODate)
			c.WindowEnd = w.End.Format(domain.ISODate)
		}
		return c, nil
	})
}

// SearchLink returns the news search URL for a donor. The donor does not
// need to be in the dataset.
func (s *AnalysisService) SearchLink(name string) api.SearchLink {
	if n, ok := dataprocessing.NormalizeName(name); ok {
		name = n
	}
	return api.SearchLink{Donor: name, URL: dataprocessing.SearchURL(name)}
}

// League returns donor counts and money per tier.
func (s *AnalysisService) League(ctx context.Context) (rows []domain.LeagueRow, err error) {
	ctx, done := s.track(ctx, "league")
	defer func() { done(err) }()

	ds, err := s.Dataset()
	if err != nil {
		return nil, err
	}
	return cached(ctx, s, ds, fnLeague, nil, func() ([]domain.LeagueRow, error) {
		return dataprocessing.BuildLeague(ds.totals)
	})
}

// Parties returns each party's share of redeemed money.
func (s *AnalysisService) Parties(ctx context.Context) (rows []domain.PartyRedemption, err error) {
	ctx, done := s.track(ctx, "parties")
	defer func() { done(err) }()

	ds, err := s.Dataset()
	if err != nil {
		return nil, err
	}
	return cached(ctx, s, ds, fnPartyRedemptions, nil, func() ([]domain.PartyRedemption, error) {
		return dataprocessing.RedemptionsByParty(ds.Redemptions)
	})
}

// Timeline returns money issued and encashed per month.
func (s *AnalysisService) Timeline(ctx context.Context) (points []domain.TimelinePoint, err error) {
	ctx, done := s.track(ctx, "timeline")
	defer func() { done(err) }()

	ds, err := s.Dataset()
	if err != nil {
		return nil, err
	}
	return cached(ctx, s, ds, fnTimeline, nil, func() ([]domain.TimelinePoint, error) {
		return dataprocessing.MonthlyTimeline(ds.Purchases, ds.Redemptions), nil
	})
}

// Heatmap counts the records of dataset per year and month.
func (s *AnalysisService) Heatmap(ctx context.Context, dataset string) (table domain.HeatmapTable, err error) {
	ctx, done := s.track(ctx, "heatmap", attribute.String("dataset", dataset))
	defer func() { done(err) }()

	ds, err := s.Dataset()
	if err != nil {
		return domain.HeatmapTable{}, err
	}
	switch dataset {
	case api.DatasetPurchases:
		return cached(ctx, s, ds, fnPurchaseHeatmap, nil, func() (domain.HeatmapTable, error) {
			return dataprocessing.PurchaseHeatmap(ds.Purchases), nil
		})
	case api.DatasetRedemptions:
		return cached(ctx, s, ds, fnRedemptionHeatmap, nil, func() (domain.HeatmapTable, error) {
			return dataprocessing.RedemptionHeatmap(ds.Redemptions), nil
		})
	}
	return domain.HeatmapTable{}, fmt.Errorf("%w: %q", ErrUnknownDataset, dataset)
}

// DayVolume counts the records of dataset per day of month.
func (s *AnalysisService) DayVolume(ctx context.Context, dataset string) (v domain.DayVolume, err error) {
	_, done := s.track(ctx, "day_volume", attribute.String("dataset", dataset))
	defer func() { done(err) }()

	ds, err := s.Dataset()
	if err != nil {
		return v, err
	}
	switch dataset {
	case api.DatasetPurchases:
		return dataprocessing.PurchaseDayVolume(ds.Purchases), nil
	case api.DatasetRedemptions:
		return dataprocessing.RedemptionDayVolume(ds.Redemptions), nil
	}
	return v, fmt.Errorf("%w: %q", ErrUnknownDataset, dataset)
}

// WordCloudText returns the upper-cased donor name corpus.
func (s *AnalysisService) WordCloudText(ctx context.Context) (result *api.WordCloudText, err error) {
	ctx, done := s.track(ctx, "wordcloud_text")
	defer func() { done(err) }()

	ds, err := s.Dataset()
	if err != nil {
		return nil, err
	}
	text, err := cached(ctx, s, ds, fnWordCloudText, nil, func() (string, error) {
		return dataprocessing.WordCloudText(ds.Purchases), nil
	})
	if err != nil {
		return nil, err
	}
	return &api.WordCloudText{Text: text, Words: len(strings.Fields(text))}, nil
}

// WordCloudImage renders the donor name corpus with the configured
// renderer.
func (s *AnalysisService) WordCloudImage(ctx context.Context) (img []byte, err error) {
	if s.renderer == nil {
		return nil, ErrRendererUnavailable
	}
	text, err := s.WordCloudText(ctx)
	if err != nil {
		return nil, err
	}
	ctx, done := s.track(ctx, "wordcloud_render")
	defer func() { done(err) }()
	return s.renderer.Render(ctx, text.Text)
}

// PurgeCache drops every cached result and returns how many there were.
func (s *AnalysisService) PurgeCache() int {
	if s.cache == nil {
		return 0
	}
	return s.cache.Purge()
}

// InvalidateCache drops the cached results of fn and returns how many were
// dropped. With a donor, only that donor's result of a per-donor function
// is dropped.
func (s *AnalysisService) InvalidateCache(fn, donor string) (int, error) {
	if !slices.Contains(CachedFunctions, fn) {
		return 0, fmt.Errorf("%w: unknown cached function %q", ErrInvalidQuery, fn)
	}
	donor = strings.TrimSpace(donor)
	if donor != "" && !perDonor[fn] {
		return 0, fmt.Errorf("%w: %s is not cached per donor", ErrInvalidQuery, fn)
	}
	if s.cache == nil {
		return 0, nil
	}
	if donor == "" {
		return s.cache.InvalidateFunc(fn), nil
	}

	ds, err := s.Dataset()
	if err != nil {
		return 0, err
	}
	name, err := s.resolveDonor(ds, donor)
	if err != nil {
		return 0, err
	}
	if s.cache.Invalidate(fn, cacheArgs{Dataset: ds.ID, Args: name}) {
		return 1, nil
	}
	return 0, nil
}

// CacheStats reports cache usage. A service without a cache reports zeros.
func (s *AnalysisService) CacheStats() api.CacheStats {
	if s.cache == nil {
		return api.CacheStats{}
	}
	st := s.cache.Stats()
	return api.CacheStats{
		Entries:   st.Entries,
		Capacity:  st.Capacity,
		Hits:      st.Hits,
		Misses:    st.Misses,
		Evictions: st.Evictions,
	}
}

// resolveDonor maps user input to a donor name in the dataset. Whitespace
// is normalized and an exact match wins over a case-insensitive one.
func (s *AnalysisService) resolveDonor(ds *Dataset, name string) (string, error) {
	normalized, ok := dataprocessing.NormalizeName(name)
	if !ok {
		return "", &DonorNotFoundError{Name: name, Suggestions: []string{}}
	}
	if t, err := dataprocessing.FindDonor(ds.totals, normalized); err == nil {
		return t.DonorName, nil
	}
	for _, n := range ds.names {
		if strings.EqualFold(n, normalized) {
			return n, nil
		}
	}
	return "", &DonorNotFoundError{
		Name:        normalized,
		Suggestions: suggestNames(normalized, ds.names, maxSuggestions),
	}
}

// track starts a span for op and returns a func that records its outcome.
func (s *AnalysisService) track(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := s.tracer.Start(ctx, "analysis."+op, trace.WithAttributes(attrs...))
	start := time.Now()
	return ctx, func(err error) {
		s.metrics.RecordOperation(ctx, op, time.Since(start), err)
		if err != nil {
			infrastructure.RecordError(ctx, err)
		}
		span.End()
	}
}

type cacheArgs struct {
	Dataset string `json:"dataset"`
	Args    any    `json:"args,omitempty"`
}

// cached runs compute through the service cache. Keys include the dataset
// ID so a result computed from a replaced dataset is never served.
func cached[T any](ctx context.Context, s *AnalysisService, ds *Dataset, fn string, args any, compute func() (T, error)) (T, error) {
	if s.cache == nil {
		return compute()
	}
	v, err := s.cache.Do(ctx, fn, cacheArgs{Dataset: ds.ID, Args: args}, func() (any, error) {
		v, err := compute()
		return v, err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
