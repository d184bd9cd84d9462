package metadata

import (
	"context"
	"log/slog"

	"github.com/Digital-Shane/media-resolver/internal/media"
	"github.com/Digital-Shane/media-resolver/internal/provider/tmdb"
)

// Catalog is the subset of *tmdb.Client the service reads from.
type Catalog interface {
	Details(ctx context.Context, t media.Type, id string) (tmdb.Details, error)
	SeasonDetails(ctx context.Context, showID string, number int) (*tmdb.SeasonDetails, error)
	AllEpisodes(ctx context.Context, show *tmdb.ShowDetails) ([]tmdb.Episode, error)
}

// Service fetches and assembles full records.
type Service struct {
	catalog   Catalog
	assembler *Assembler
	logger    *slog.Logger
}

// NewService wires a catalog to an assembler.
func NewService(c Catalog, a *Assembler, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{catalog: c, assembler: a, logger: logger}
}

// Lookup fetches an item and, for shows, one season with its episodes. The
// season is the one whose id is seasonID, or season number 1 when seasonID is
// empty or unknown.
func (s *Service) Lookup(ctx context.Context, t media.Type, numericID, seasonID string) (*media.Record, error) {
	details, err := s.catalog.Details(ctx, t, numericID)
	if err != nil {
		return nil, err
	}

	var season *tmdb.SeasonDetails
	if show, ok := details.(*tmdb.ShowDetails); ok {
		summary, found := show.Season(seasonID)
		if !found {
			summary, found = show.SeasonByNumber(1)
		}
		if found {
			season, err = s.catalog.SeasonDetails(ctx, numericID, summary.SeasonNumber)
			if err != nil {
				return nil, err
			}
		}
	}
	return s.assembler.Assemble(details, t, season)
}

// LookupID is Lookup keyed by a canonical id. An id that does not decode
// reports false.
func (s *Service) LookupID(ctx context.Context, id, seasonID string) (*media.Record, bool, error) {
	decoded, ok := media.DecodeID(id)
	if !ok {
		return nil, false, nil
	}
	rec, err := s.Lookup(ctx, decoded.Type, decoded.NumericID, seasonID)
	if err != nil {
		return nil, true, err
	}
	return rec, true, nil
}

// FullShow fetches every season of a show and returns the record with all
// episodes ordered by season then episode.
func (s *Service) FullShow(ctx context.Context, numericID string) (*media.Record, error) {
	details, err := s.catalog.Details(ctx, media.Series, numericID)
	if err != nil {
		return nil, err
	}
	show, ok := details.(*tmdb.ShowDetails)
	if !ok {
		return nil, media.ErrUnsupportedType
	}

	eps, err := s.catalog.AllEpisodes(ctx, show)
	if err != nil {
		return nil, err
	}

	rec, err := s.assembler.Assemble(show, media.Series, nil)
	if err != nil {
		return nil, err
	}
	rec.Episodes = Episodes(eps, 0)
	s.logger.Debug("assembled full show",
		"id", numericID,
		"seasons", len(rec.Seasons),
		"episodes", len(rec.Episodes))
	return rec, nil
}
