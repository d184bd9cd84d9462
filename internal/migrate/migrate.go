// Package migrate rewrites deprecated media and embed URLs into canonical
// /media/{id} URLs. A URL that is not in a recognized old shape is reported
// as not convertible, never as an error.
package migrate

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/Digital-Shane/media-resolver/internal/media"
	"github.com/Digital-Shane/media-resolver/internal/metrics"
	"github.com/Digital-Shane/media-resolver/internal/provider"
	"github.com/Digital-Shane/media-resolver/internal/provider/legacy"
	"github.com/Digital-Shane/media-resolver/internal/provider/tmdb"
)

const (
	mediaPrefix      = "/media/"
	legacyJWPrefix   = "/media/JW"
	legacyShowPrefix = "/media/tmdb-show"
	embedPrefix      = "/embed/tmdb-"
)

// ErrNotMigratable is returned by callers that need an error for a URL the
// migrator does not recognize.
var ErrNotMigratable = errors.New("url is not a recognized legacy or embed url")

var (
	// /media/tmdb-show-1396/3572/62085
	legacyShowRe = regexp.MustCompile(`^/media/tmdb-show-(\d+)(/.*)?$`)

	// /media/JW-movie-122
	legacyJWRe = regexp.MustCompile(`^/media/JW-(movie|show)-(\d+)`)

	// /embed/tmdb-tv-1396/1/2. Anything after the season lands in the
	// episode group so malformed tails fail to parse and drop the suffix.
	embedTVRe = regexp.MustCompile(`^/embed/tmdb-tv-(\d+)(?:/([^/]*))?(?:/(.*?))?/?$`)

	// /embed/tmdb-movie-27205
	embedMovieRe = regexp.MustCompile(`^/embed/tmdb-movie-(\d+)/?$`)
)

// Catalog is the subset of *tmdb.Client used for migration.
type Catalog interface {
	Details(ctx context.Context, t media.Type, id string) (tmdb.Details, error)
	SeasonDetails(ctx context.Context, showID string, number int) (*tmdb.SeasonDetails, error)
	FindByIMDbID(ctx context.Context, imdbID string) (*tmdb.FindResults, error)
}

// LegacyCatalog resolves ids of the old catalog. *legacy.Client implements it.
type LegacyCatalog interface {
	Title(ctx context.Context, itemType, id string) (*legacy.Title, error)
}

// Migrator converts old URL shapes.
type Migrator struct {
	catalog Catalog
	legacy  LegacyCatalog
	logger  *slog.Logger
}

// New creates a Migrator.
func New(c Catalog, l LegacyCatalog, logger *slog.Logger) *Migrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Migrator{catalog: c, legacy: l, logger: logger}
}

// IsLegacyURL reports whether raw has one of the old /media shapes.
func IsLegacyURL(raw string) bool {
	path := pathOf(raw)
	return strings.HasPrefix(path, legacyJWPrefix) || strings.HasPrefix(path, legacyShowPrefix)
}

// IsEmbedURL reports whether raw has the old /embed shape.
func IsEmbedURL(raw string) bool {
	return strings.HasPrefix(pathOf(raw), embedPrefix)
}

// Convert applies whichever converter matches raw.
func (m *Migrator) Convert(ctx context.Context, raw string) (string, bool, error) {
	if IsEmbedURL(raw) {
		return m.ConvertEmbedURL(ctx, raw)
	}
	return m.ConvertLegacyURL(ctx, raw)
}

// ConvertLegacyURL rewrites /media/tmdb-show-{id}[/suffix] and
// /media/JW-{movie|show}-{id}. The query string is kept verbatim.
func (m *Migrator) ConvertLegacyURL(ctx context.Context, raw string) (string, bool, error) {
	u, err := url.Parse(raw)
	if err != nil || !IsLegacyURL(raw) {
		return "", false, nil
	}

	var (
		target string
		ok     bool
	)
	if match := legacyShowRe.FindStringSubmatch(u.Path); match != nil {
		target, ok, err = m.convertShow(ctx, match[1], match[2])
	} else if match := legacyJWRe.FindStringSubmatch(u.Path); match != nil {
		target, ok, err = m.convertJW(ctx, match[1], match[2])
	}
	return m.finish("legacy", raw, withQuery(target, u.RawQuery), ok, err)
}

// ConvertEmbedURL rewrites /embed/tmdb-tv-{id}/{season}/{episode} and
// /embed/tmdb-movie-{id}. Season and episode numbers become the current
// season and episode ids; when they cannot be resolved the show URL is
// returned without them.
func (m *Migrator) ConvertEmbedURL(ctx context.Context, raw string) (string, bool, error) {
	u, err := url.Parse(raw)
	if err != nil || !IsEmbedURL(raw) {
		return "", false, nil
	}

	var (
		target string
		ok     bool
	)
	if match := embedTVRe.FindStringSubmatch(u.Path); match != nil {
		target, ok, err = m.convertEmbedShow(ctx, match[1], match[2], match[3])
	} else if match := embedMovieRe.FindStringSubmatch(u.Path); match != nil {
		target, ok, err = m.canonical(ctx, media.Movie, match[1])
	}
	return m.finish("embed", raw, withQuery(target, u.RawQuery), ok, err)
}

func (m *Migrator) finish(kind, raw, target string, ok bool, err error) (string, bool, error) {
	switch {
	case err != nil:
		metrics.MigrationsTotal.WithLabelValues(kind, "error").Inc()
		return "", false, err
	case !ok:
		metrics.MigrationsTotal.WithLabelValues(kind, "skipped").Inc()
		return "", false, nil
	}
	metrics.MigrationsTotal.WithLabelValues(kind, "converted").Inc()
	m.logger.Debug("migrated url", "kind", kind, "from", raw, "to", target)
	return target, true, nil
}

func (m *Migrator) convertShow(ctx context.Context, id, suffix string) (string, bool, error) {
	target, ok, err := m.canonical(ctx, media.Series, id)
	if !ok || err != nil {
		return "", ok, err
	}
	return target + suffix, true, nil
}

func (m *Migrator) convertJW(ctx context.Context, itemType, id string) (string, bool, error) {
	t, err := media.ParseItemType(itemType)
	if err != nil {
		return "", false, err
	}

	title, err := m.legacy.Title(ctx, itemType, id)
	if err != nil {
		return "", false, err
	}
	if title == nil {
		return "", false, nil
	}

	var numericID string
	if imdbID := title.IMDbID(); t == media.Movie && imdbID != "" {
		numericID = m.findMovie(ctx, imdbID)
	}
	if numericID == "" {
		numericID = title.TMDBID()
	}
	if numericID == "" {
		return "", false, nil
	}

	canonical, err := media.EncodeID(t, numericID, title.Title)
	if err != nil {
		// A non numeric catalog link cannot be turned into an id.
		m.logger.Warn("legacy record has unusable catalog id",
			"legacy_id", id,
			"catalog_id", numericID,
			"error", err)
		return "", false, nil
	}
	return mediaPrefix + string(canonical), true, nil
}

// findMovie re-resolves the current catalog id of a movie from its IMDb id.
// Failures are logged and reported as "".
func (m *Migrator) findMovie(ctx context.Context, imdbID string) string {
	found, err := m.catalog.FindByIMDbID(ctx, imdbID)
	if err != nil {
		m.logger.Warn("imdb lookup failed, using legacy catalog link",
			"imdb_id", imdbID,
			"error", err)
		return ""
	}
	if len(found.MovieResults) == 0 {
		return ""
	}
	return strconv.Itoa(found.MovieResults[0].ID)
}

func (m *Migrator) convertEmbedShow(ctx context.Context, id, season, episode string) (string, bool, error) {
	details, err := m.catalog.Details(ctx, media.Series, id)
	if err != nil {
		if provider.IsNotFound(err) {
			return "", false, nil
		}
		return "", false, err
	}
	show, ok := details.(*tmdb.ShowDetails)
	if !ok {
		return "", false, media.ErrUnsupportedType
	}

	canonical, err := media.EncodeID(media.Series, strconv.Itoa(show.ID), show.Name)
	if err != nil {
		return "", false, err
	}
	return mediaPrefix + string(canonical) + m.episodeSuffix(ctx, show, season, episode), true, nil
}

// episodeSuffix maps season and episode numbers to "/{seasonId}/{episodeId}".
// Anything that does not resolve gives "".
func (m *Migrator) episodeSuffix(ctx context.Context, show *tmdb.ShowDetails, season, episode string) string {
	if season == "" || episode == "" {
		return ""
	}
	seasonNumber, err := strconv.Atoi(season)
	if err != nil {
		return ""
	}
	episodeNumber, err := strconv.Atoi(episode)
	if err != nil {
		return ""
	}

	summary, ok := show.SeasonByNumber(seasonNumber)
	if !ok {
		return ""
	}
	details, err := m.catalog.SeasonDetails(ctx, strconv.Itoa(show.ID), seasonNumber)
	if err != nil {
		m.logger.Warn("season lookup failed, dropping episode anchor",
			"show_id", show.ID,
			"season", seasonNumber,
			"error", err)
		return ""
	}
	ep, ok := details.EpisodeByNumber(episodeNumber)
	if !ok {
		return ""
	}

	seasonID := summary.ID
	if details.ID != 0 {
		seasonID = details.ID
	}
	return "/" + strconv.Itoa(seasonID) + "/" + strconv.Itoa(ep.ID)
}

// canonical fetches an item and returns its /media URL. An unknown item is
// reported as not convertible.
func (m *Migrator) canonical(ctx context.Context, t media.Type, id string) (string, bool, error) {
	details, err := m.catalog.Details(ctx, t, id)
	if err != nil {
		if provider.IsNotFound(err) {
			return "", false, nil
		}
		return "", false, err
	}

	var title string
	switch d := details.(type) {
	case *tmdb.MovieDetails:
		title = d.Title
	case *tmdb.ShowDetails:
		title = d.Name
	}
	canonical, err := media.EncodeID(t, id, title)
	if err != nil {
		return "", false, err
	}
	return mediaPrefix + string(canonical), true, nil
}

func withQuery(target, rawQuery string) string {
	if target == "" || rawQuery == "" {
		return target
	}
	return target + "?" + rawQuery
}

func pathOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Path
}
