package http

import (
	"context"

	api "bondscope/pkg/contracts/api/v1"
	"bondscope/pkg/contracts/domain"
)

// AnalysisServiceInterface is the part of services.AnalysisService the
// handlers use.
type AnalysisServiceInterface interface {
	Overview(ctx context.Context) (*api.Overview, error)
	Donors(ctx context.Context, q api.DonorListQuery) (*api.DonorPage, error)
	DonorNames(ctx context.Context, q api.DonorNamesQuery) ([]string, error)
	DonorDetail(ctx context.Context, name string) (*api.DonorDetail, error)
	Correlation(ctx context.Context, name string) (*api.Correlation, error)
	SearchLink(name string) api.SearchLink
	League(ctx context.Context) ([]domain.LeagueRow, error)
	Parties(ctx context.Context) ([]domain.PartyRedemption, error)
	Timeline(ctx context.Context) ([]domain.TimelinePoint, error)
	Heatmap(ctx context.Context, dataset string) (domain.HeatmapTable, error)
	DayVolume(ctx context.Context, dataset string) (domain.DayVolume, error)
	WordCloudText(ctx context.Context) (*api.WordCloudText, error)
	WordCloudImage(ctx context.Context) ([]byte, error)
	Reload(ctx context.Context) (*api.ReloadResult, error)
	PurgeCache() int
	InvalidateCache(fn, donor string) (int, error)
	CacheStats() api.CacheStats
}
