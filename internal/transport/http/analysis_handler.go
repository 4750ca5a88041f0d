package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"bondscope/internal/dataprocessing"
	apierrors "bondscope/internal/errors"
	appmiddleware "bondscope/internal/middleware"
	"bondscope/internal/services"
	api "bondscope/pkg/contracts/api/v1"
)

type donorKey struct{}

var datasets = []string{api.DatasetPurchases, api.DatasetRedemptions}

// AnalysisHandler serves the bond analysis endpoints.
type AnalysisHandler struct {
	service      AnalysisServiceInterface
	validator    *appmiddleware.Validator
	query        *appmiddleware.QueryParamValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewAnalysisHandler creates a new analysis handler with RFC 7807 error handling
func NewAnalysisHandler(service AnalysisServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *AnalysisHandler {
	return &AnalysisHandler{
		service:      service,
		validator:    appmiddleware.NewValidator(logger),
		query:        appmiddleware.NewQueryParamValidator(logger, errorHandler),
		logger:       logger.With(slog.String("component", "analysis_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the analysis routes
func (h *AnalysisHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/overview", h.GetOverview)
	r.Get("/league", h.GetLeague)
	r.Get("/parties", h.GetParties)
	r.Get("/timeline", h.GetTimeline)
	r.Get("/heatmap", h.GetHeatmap)
	r.Get("/volume", h.GetVolume)
	r.Get("/wordcloud/text", h.GetWordCloudText)
	r.Get("/wordcloud", h.GetWordCloudImage)

	r.Route("/donors", func(r chi.Router) {
		r.Get("/", h.ListDonors)
		r.Get("/names", h.ListDonorNames)
		r.Route("/{name}", func(r chi.Router) {
			r.Use(h.DonorCtx)
			r.Get("/", h.GetDonor)
			r.Get("/correlation", h.GetCorrelation)
			r.Get("/search", h.GetSearchLink)
		})
	})

	r.Post("/reload", h.Reload)
	r.Get("/cache", h.GetCacheStats)
	r.Delete("/cache", h.PurgeCache)

	return r
}

// DonorCtx validates the {name} path parameter and stores it in the context.
func (h *AnalysisHandler) DonorCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		if unescaped, err := url.PathUnescape(name); err == nil {
			name = unescaped
		}
		if err := h.validator.ValidateStruct(api.DonorPath{Name: name}); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), donorKey{}, name)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func donorFrom(r *http.Request) string {
	name, _ := r.Context().Value(donorKey{}).(string)
	return name
}

// GetOverview handles GET /api/v1/overview
func (h *AnalysisHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.service.Overview(r.Context())
	if err != nil {
		h.fail(w, r, "overview", err)
		return
	}
	h.success(w, r, overview)
}

// ListDonors handles GET /api/v1/donors
func (h *AnalysisHandler) ListDonors(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.query.ValidateInt(w, r, "limit", 0, 10000, 0)
	if !ok {
		return
	}
	offset, ok := h.query.ValidateInt(w, r, "offset", 0, 1<<31-1, 0)
	if !ok {
		return
	}
	q := api.DonorListQuery{
		Limit:  limit,
		Offset: offset,
		Tier:   r.URL.Query().Get("tier"),
		Search: r.URL.Query().Get("q"),
	}
	if err := h.validator.ValidateStruct(q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	page, err := h.service.Donors(r.Context(), q)
	if err != nil {
		h.fail(w, r, "donors", err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   page.Donors,
		"count":  len(page.Donors),
		"total":  page.Total,
		"offset": page.Offset,
	})
}

// ListDonorNames handles GET /api/v1/donors/names
func (h *AnalysisHandler) ListDonorNames(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.query.ValidateInt(w, r, "limit", 0, 10000, 0)
	if !ok {
		return
	}
	q := api.DonorNamesQuery{Prefix: r.URL.Query().Get("prefix"), Limit: limit}
	if err := h.validator.ValidateStruct(q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	names, err := h.service.DonorNames(r.Context(), q)
	if err != nil {
		h.fail(w, r, "donor names", err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   names,
		"count":  len(names),
	})
}

// GetDonor handles GET /api/v1/donors/{name}
func (h *AnalysisHandler) GetDonor(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.DonorDetail(r.Context(), donorFrom(r))
	if err != nil {
		h.fail(w, r, "donor statistics", err)
		return
	}
	h.success(w, r, detail)
}

// GetCorrelation handles GET /api/v1/donors/{name}/correlation
func (h *AnalysisHandler) GetCorrelation(w http.ResponseWriter, r *http.Request) {
	corr, err := h.service.Correlation(r.Context(), donorFrom(r))
	if err != nil {
		h.fail(w, r, "correlation", err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   corr,
		"note":   "Counts redemptions inside the donor's validity window. This is a time-based association only; it does not identify which bonds a party redeemed.",
	})
}

// GetSearchLink handles GET /api/v1/donors/{name}/search
func (h *AnalysisHandler) GetSearchLink(w http.ResponseWriter, r *http.Request) {
	h.success(w, r, h.service.SearchLink(donorFrom(r)))
}

// GetLeague handles GET /api/v1/league
func (h *AnalysisHandler) GetLeague(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.League(r.Context())
	if err != nil {
		h.fail(w, r, "league", err)
		return
	}
	h.success(w, r, rows)
}

// GetParties handles GET /api/v1/parties
func (h *AnalysisHandler) GetParties(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.Parties(r.Context())
	if err != nil {
		h.fail(w, r, "party redemptions", err)
		return
	}
	h.success(w, r, rows)
}

// GetTimeline handles GET /api/v1/timeline
func (h *AnalysisHandler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	points, err := h.service.Timeline(r.Context())
	if err != nil {
		h.fail(w, r, "timeline", err)
		return
	}
	h.success(w, r, points)
}

// GetHeatmap handles GET /api/v1/heatmap?dataset=purchases|redemptions
func (h *AnalysisHandler) GetHeatmap(w http.ResponseWriter, r *http.Request) {
	dataset, ok := h.query.ValidateEnum(w, r, "dataset", datasets, api.DatasetPurchases)
	if !ok {
		return
	}
	table, err := h.service.Heatmap(r.Context(), dataset)
	if err != nil {
		h.fail(w, r, "heatmap", err)
		return
	}
	h.success(w, r, table)
}

// GetVolume handles GET /api/v1/volume?dataset=purchases|redemptions
func (h *AnalysisHandler) GetVolume(w http.ResponseWriter, r *http.Request) {
	dataset, ok := h.query.ValidateEnum(w, r, "dataset", datasets, api.DatasetPurchases)
	if !ok {
		return
	}
	volume, err := h.service.DayVolume(r.Context(), dataset)
	if err != nil {
		h.fail(w, r, "day volume", err)
		return
	}
	h.success(w, r, volume)
}

// GetWordCloudText handles GET /api/v1/wordcloud/text
func (h *AnalysisHandler) GetWordCloudText(w http.ResponseWriter, r *http.Request) {
	text, err := h.service.WordCloudText(r.Context())
	if err != nil {
		h.fail(w, r, "word cloud text", err)
		return
	}
	h.success(w, r, text)
}

// GetWordCloudImage handles GET /api/v1/wordcloud
func (h *AnalysisHandler) GetWordCloudImage(w http.ResponseWriter, r *http.Request) {
	img, err := h.service.WordCloudImage(r.Context())
	if err != nil {
		h.fail(w, r, "word cloud", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img)
}

// Reload handles POST /api/v1/reload
func (h *AnalysisHandler) Reload(w http.ResponseWriter, r *http.Request) {
	h.logger.InfoContext(r.Context(), "dataset reload requested",
		slog.String("request_id", middleware.GetReqID(r.Context())))

	result, err := h.service.Reload(r.Context())
	if err != nil {
		h.fail(w, r, "reload", err)
		return
	}
	h.success(w, r, result)
}

// GetCacheStats handles GET /api/v1/cache
func (h *AnalysisHandler) GetCacheStats(w http.ResponseWriter, r *http.Request) {
	h.success(w, r, h.service.CacheStats())
}

// PurgeCache handles DELETE /api/v1/cache[?fn=<function>[&donor=<name>]].
// Without fn every cached result is dropped.
func (h *AnalysisHandler) PurgeCache(w http.ResponseWriter, r *http.Request) {
	donor := r.URL.Query().Get("donor")
	if r.URL.Query().Get("fn") == "" {
		if donor != "" {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("donor", "donor requires fn"))
			return
		}
		n := h.service.PurgeCache()
		h.logger.InfoContext(r.Context(), "cache purged via api",
			slog.Int("entries", n),
			slog.String("request_id", middleware.GetReqID(r.Context())))
		render.JSON(w, r, map[string]interface{}{
			"status":  "success",
			"purged":  n,
			"message": "Analysis cache cleared",
		})
		return
	}

	fn, ok := h.query.ValidateEnum(w, r, "fn", services.CachedFunctions, "")
	if !ok {
		return
	}
	n, err := h.service.InvalidateCache(fn, donor)
	if err != nil {
		h.fail(w, r, "cache invalidation", err)
		return
	}
	h.logger.InfoContext(r.Context(), "cache entries invalidated via api",
		slog.String("fn", fn),
		slog.String("donor", donor),
		slog.Int("entries", n),
		slog.String("request_id", middleware.GetReqID(r.Context())))
	render.JSON(w, r, map[string]interface{}{
		"status":  "success",
		"purged":  n,
		"fn":      fn,
		"message": "Cached " + fn + " results cleared",
	})
}

func (h *AnalysisHandler) success(w http.ResponseWriter, r *http.Request, data interface{}) {
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   data,
	})
}

// fail maps service errors to API errors and writes the problem response.
func (h *AnalysisHandler) fail(w http.ResponseWriter, r *http.Request, what string, err error) {
	h.errorHandler.HandleError(w, r, toAPIError(what, err))
}

func toAPIError(what string, err error) error {
	var notFound *services.DonorNotFoundError
	switch {
	case errors.As(err, &notFound):
		return apierrors.DonorNotFoundError(notFound.Name, notFound.Suggestions)
	case errors.Is(err, services.ErrNoDataset):
		return apierrors.ServiceUnavailable("Dataset not loaded yet")
	case errors.Is(err, services.ErrRendererUnavailable):
		return apierrors.ServiceUnavailable("Word cloud rendering is not configured")
	case errors.Is(err, services.ErrUnknownDataset), errors.Is(err, services.ErrInvalidQuery):
		return apierrors.NewAppValidationError(err.Error())
	case errors.Is(err, dataprocessing.ErrEmptyInput), errors.Is(err, dataprocessing.ErrEmptyRange):
		return apierrors.NewEmptyError("No records to compute "+what, err).WithContext("computation", what)
	case errors.Is(err, dataprocessing.ErrNotFound):
		return apierrors.NewNotFoundError(what, err)
	case errors.Is(err, dataprocessing.ErrMissingColumn):
		return apierrors.NewParsingError(err.Error(), err)
	}
	return err
}
