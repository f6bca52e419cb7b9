package metadata

import (
	"fmt"

	"filmtrack/internal/tmdb"
)

func searchKey(kind tmdb.MediaKind, query string, page int) string {
	return fmt.Sprintf("search_%s_%s_%d", kind, query, page)
}

func detailsKey(kind tmdb.MediaKind, id int64) string {
	return fmt.Sprintf("%s_details_%d", kind, id)
}

func backdropsKey(kind tmdb.MediaKind, id int64, lang string) string {
	return fmt.Sprintf("backdrops_%s_%d_%s", kind, id, lang)
}

func genresKey(kind tmdb.MediaKind, lang string) string {
	return fmt.Sprintf("genres_%s_%s", kind, lang)
}
