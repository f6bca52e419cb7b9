package metadata

import (
	"context"
	"errors"
	"strings"

	"filmtrack/internal/logging"
	"filmtrack/internal/services"
	"filmtrack/internal/tmdb"
)

// Search runs one cached search. An empty kind means multi.
func (r *Resolver) Search(ctx context.Context, query string, kind tmdb.MediaKind, page int) (*tmdb.Response, error) {
	ctx = withCorrelation(ctx, "search")
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, services.Wrap(services.ErrInvalidInput, "metadata", "search", "query must not be empty", nil)
	}
	if kind == "" {
		kind = tmdb.KindMulti
	}
	if page < 1 {
		page = 1
	}
	resp, _, err := r.search(ctx, query, kind, page)
	return resp, err
}

func (r *Resolver) search(ctx context.Context, query string, kind tmdb.MediaKind, page int) (*tmdb.Response, bool, error) {
	key := searchKey(kind, query, page)
	resp, hit, err := fetch(ctx, r, key, func(ctx context.Context) (*tmdb.Response, error) {
		switch kind {
		case tmdb.KindMovie:
			return r.client.SearchMovie(ctx, query, page)
		case tmdb.KindTV:
			return r.client.SearchTV(ctx, query, page)
		default:
			return r.client.SearchMulti(ctx, query, page)
		}
	})
	if err != nil {
		return nil, false, classify(err, "search", query)
	}
	return resp, hit, nil
}

// FetchDetails returns the full record for a known id.
func (r *Resolver) FetchDetails(ctx context.Context, id int64, kind tmdb.MediaKind) (*tmdb.Details, error) {
	ctx = withCorrelation(ctx, "details")
	if err := validateID(id, kind, "details"); err != nil {
		return nil, err
	}
	details, hit, err := fetch(ctx, r, detailsKey(kind, id), func(ctx context.Context) (*tmdb.Details, error) {
		if kind == tmdb.KindTV {
			return r.client.TVDetails(ctx, id)
		}
		return r.client.MovieDetails(ctx, id)
	})
	if err != nil {
		return nil, classify(err, "details", string(kind))
	}
	logging.WithContext(ctx, r.logger).Debug("details fetched",
		logging.Int64("id", id),
		logging.String("kind", string(kind)),
		logging.Bool("cached", hit))
	return details, nil
}

// FetchImages returns the top ranked backdrops for a known id.
func (r *Resolver) FetchImages(ctx context.Context, id int64, kind tmdb.MediaKind) ([]tmdb.Image, error) {
	ctx = withCorrelation(ctx, "images")
	if err := validateID(id, kind, "images"); err != nil {
		return nil, err
	}
	images, hit, err := fetch(ctx, r, backdropsKey(kind, id, r.imageLanguage), func(ctx context.Context) (*tmdb.ImagesResponse, error) {
		return r.client.Images(ctx, kind, id, r.imageLanguage)
	})
	if err != nil {
		return nil, classify(err, "images", string(kind))
	}
	ranked := tmdb.RankImages(images.Backdrops, r.imageLimit)
	logging.WithContext(ctx, r.logger).Debug("images fetched",
		logging.Int64("id", id),
		logging.Int("available", len(images.Backdrops)),
		logging.Int("returned", len(ranked)),
		logging.Bool("cached", hit))
	return ranked, nil
}

// FetchGenres returns the genre list for movies or TV.
func (r *Resolver) FetchGenres(ctx context.Context, kind tmdb.MediaKind) ([]tmdb.Genre, error) {
	ctx = withCorrelation(ctx, "genres")
	if !kind.Concrete() {
		return nil, services.Wrap(services.ErrInvalidInput, "metadata", "genres", "kind must be movie or tv", nil)
	}
	list, _, err := fetch(ctx, r, genresKey(kind, r.language), func(ctx context.Context) (*tmdb.GenreList, error) {
		return r.client.Genres(ctx, kind)
	})
	if err != nil {
		return nil, classify(err, "genres", string(kind))
	}
	return list.Genres, nil
}

func validateID(id int64, kind tmdb.MediaKind, op string) error {
	if id <= 0 {
		return services.Wrap(services.ErrInvalidInput, "metadata", op, "id must be positive", nil)
	}
	if !kind.Concrete() {
		return services.Wrap(services.ErrInvalidInput, "metadata", op, "kind must be movie or tv", nil)
	}
	return nil
}

// classify tags a remote failure with a service marker. Context errors and
// errors that already carry a marker pass through.
func classify(err error, op, subject string) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, services.ErrInvalidInput):
		return err
	case tmdb.IsNotFound(err):
		return services.Wrap(services.ErrNotFound, "metadata", op, subject, err)
	default:
		return services.Wrap(services.ErrTransport, "metadata", op, subject, err)
	}
}
