package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"filmtrack/internal/cache"
	"filmtrack/internal/logging"
	"filmtrack/internal/requestqueue"
	"filmtrack/internal/search"
	"filmtrack/internal/services"
	"filmtrack/internal/tmdb"
)

// fakeAPI serves canned responses keyed by "kind:query" and records calls.
type fakeAPI struct {
	mu       sync.Mutex
	searches map[string]*tmdb.Response
	errs     map[string]error
	records  map[int64]*tmdb.Details
	images   *tmdb.ImagesResponse
	genres   *tmdb.GenreList
	calls    []string
	started  chan struct{}
	release  chan struct{}
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		searches: make(map[string]*tmdb.Response),
		errs:     make(map[string]error),
		records:  make(map[int64]*tmdb.Details),
	}
}

func (f *fakeAPI) record(call string) error {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	err := f.errs[call]
	started, release := f.started, f.release
	f.mu.Unlock()
	if started != nil {
		select {
		case started <- struct{}{}:
		default:
		}
	}
	if release != nil {
		<-release
	}
	return err
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

func (f *fakeAPI) search(kind tmdb.MediaKind, query string) (*tmdb.Response, error) {
	key := fmt.Sprintf("%s:%s", kind, query)
	if err := f.record(key); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if resp, ok := f.searches[key]; ok {
		return resp, nil
	}
	return &tmdb.Response{Page: 1}, nil
}

func (f *fakeAPI) SearchMulti(_ context.Context, query string, _ int) (*tmdb.Response, error) {
	return f.search(tmdb.KindMulti, query)
}

func (f *fakeAPI) SearchMovie(_ context.Context, query string, _ int) (*tmdb.Response, error) {
	return f.search(tmdb.KindMovie, query)
}

func (f *fakeAPI) SearchTV(_ context.Context, query string, _ int) (*tmdb.Response, error) {
	return f.search(tmdb.KindTV, query)
}

func (f *fakeAPI) details(kind tmdb.MediaKind, id int64) (*tmdb.Details, error) {
	if err := f.record(fmt.Sprintf("%s_details:%d", kind, id)); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if d, ok := f.records[id]; ok {
		return d, nil
	}
	return nil, &tmdb.HTTPError{StatusCode: http.StatusNotFound}
}

func (f *fakeAPI) MovieDetails(_ context.Context, id int64) (*tmdb.Details, error) {
	return f.details(tmdb.KindMovie, id)
}

func (f *fakeAPI) TVDetails(_ context.Context, id int64) (*tmdb.Details, error) {
	return f.details(tmdb.KindTV, id)
}

func (f *fakeAPI) Images(_ context.Context, kind tmdb.MediaKind, id int64, lang string) (*tmdb.ImagesResponse, error) {
	if err := f.record(fmt.Sprintf("%s_images:%d:%s", kind, id, lang)); err != nil {
		return nil, err
	}
	return f.images, nil
}

func (f *fakeAPI) Genres(_ context.Context, kind tmdb.MediaKind) (*tmdb.GenreList, error) {
	if err := f.record(fmt.Sprintf("%s_genres", kind)); err != nil {
		return nil, err
	}
	return f.genres, nil
}

func result(id int64, title, original string) tmdb.Result {
	return tmdb.Result{ID: id, Title: title, OriginalTitle: original, MediaType: "movie"}
}

func newTestResolver(api tmdb.API, opts ...Option) (*Resolver, *cache.Cache, *requestqueue.Queue) {
	c := cache.New(nil)
	q := requestqueue.New(0)
	return New(api, c, q, opts...), c, q
}

func TestResolveByTitleAcceptsEarly(t *testing.T) {
	api := newFakeAPI()
	api.searches["multi:三体"] = &tmdb.Response{Results: []tmdb.Result{
		{ID: 108545, Name: "三体", OriginalName: "Three-Body", MediaType: "tv"},
	}}
	r, _, _ := newTestResolver(api)

	res, err := r.ResolveByTitle(context.Background(), "三体 第一季", tmdb.KindMulti)
	if err != nil {
		t.Fatalf("ResolveByTitle returned error: %v", err)
	}
	if res.Status != StatusMatched || res.Record == nil || res.Record.ID != 108545 {
		t.Fatalf("unexpected resolution %+v", res)
	}
	if res.Score < 0.8 {
		t.Fatalf("expected high-confidence score, got %f", res.Score)
	}
	if !slices.Contains(res.Strategies, "三体") {
		t.Fatalf("expected stripped title among strategies, got %v", res.Strategies)
	}
	if res.Attempts != 1 || len(api.Calls()) != 1 {
		t.Fatalf("expected a single attempt, got %d attempts and calls %v", res.Attempts, api.Calls())
	}
	if res.Attempts >= len(res.Strategies) {
		t.Fatalf("expected early exit before exhausting %d strategies", len(res.Strategies))
	}
	if res.CorrelationID == "" {
		t.Fatal("expected a correlation id")
	}
}

func TestResolveByTitleCachedPathSkipsQueue(t *testing.T) {
	api := newFakeAPI()
	r, c, q := newTestResolver(api)
	seeded := tmdb.Response{Page: 1, Results: []tmdb.Result{{ID: 7, Name: "三体", MediaType: "tv"}}}
	if err := c.SetJSON(context.Background(), "search_multi_三体_1", seeded); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	res, err := r.ResolveByTitle(context.Background(), "三体", tmdb.KindMulti)
	if err != nil {
		t.Fatalf("ResolveByTitle returned error: %v", err)
	}
	if res.Status != StatusMatched || res.Record.ID != 7 || res.CacheHits != 1 {
		t.Fatalf("unexpected resolution %+v", res)
	}
	if stats := q.Stats(); stats.Executed != 0 {
		t.Fatalf("expected zero queue executions, got %d", stats.Executed)
	}
	if calls := api.Calls(); len(calls) != 0 {
		t.Fatalf("expected no remote calls, got %v", calls)
	}
}

func TestResolveByTitleWritesResponsesToCache(t *testing.T) {
	api := newFakeAPI()
	api.searches["movie:Dune"] = &tmdb.Response{Results: []tmdb.Result{result(438631, "Dune", "Dune")}}
	r, c, _ := newTestResolver(api)

	if _, err := r.ResolveByTitle(context.Background(), "Dune", tmdb.KindMovie); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get(context.Background(), "search_movie_Dune_1"); !ok {
		t.Fatal("expected search response cached under its strategy key")
	}
	if _, err := r.ResolveByTitle(context.Background(), "Dune", tmdb.KindMovie); err != nil {
		t.Fatal(err)
	}
	if calls := api.Calls(); len(calls) != 1 {
		t.Fatalf("expected second resolution served from cache, calls %v", calls)
	}
}

func TestResolveByTitleReturnsBestEffort(t *testing.T) {
	api := newFakeAPI()
	api.searches["movie:abcdef ghij"] = &tmdb.Response{Results: []tmdb.Result{result(1, "abcdef zzzz", "")}}
	api.searches["movie:abcdef"] = &tmdb.Response{Results: []tmdb.Result{result(2, "abcdxy", "")}}
	r, _, _ := newTestResolver(api)

	res, err := r.ResolveByTitle(context.Background(), "abcdef ghij", tmdb.KindMovie)
	if err != nil {
		t.Fatalf("ResolveByTitle returned error: %v", err)
	}
	if res.Status != StatusBestEffort || res.Record == nil || res.Record.ID != 2 {
		t.Fatalf("expected best sub-threshold match across strategies, got %+v", res)
	}
	if res.Score <= 0.3 || res.Score > 0.8 {
		t.Fatalf("expected score between thresholds, got %f", res.Score)
	}
	if res.Query != "abcdef" || res.Attempts != 2 {
		t.Fatalf("unexpected query %q attempts %d", res.Query, res.Attempts)
	}
}

func TestResolveByTitleThresholdsAreConfigurable(t *testing.T) {
	api := newFakeAPI()
	api.searches["movie:abcdef ghij"] = &tmdb.Response{Results: []tmdb.Result{result(1, "abcdef zzzz", "")}}
	r, _, _ := newTestResolver(api, WithThresholds(search.Thresholds{Accept: 0.6, Fallback: 0.1}))

	res, err := r.ResolveByTitle(context.Background(), "abcdef ghij", tmdb.KindMovie)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusMatched || res.Attempts != 1 {
		t.Fatalf("expected lowered accept threshold to match on first strategy, got %+v", res)
	}
}

func TestResolveByTitleSkipsFailingStrategies(t *testing.T) {
	api := newFakeAPI()
	api.errs["movie:abcdef ghij"] = &tmdb.HTTPError{StatusCode: http.StatusBadGateway}
	api.searches["movie:abcdef"] = &tmdb.Response{Results: []tmdb.Result{result(3, "zzzzzz", "")}}
	r, _, _ := newTestResolver(api)

	res, err := r.ResolveByTitle(context.Background(), "abcdef ghij", tmdb.KindMovie)
	if err != nil {
		t.Fatalf("no match must not be an error, got %v", err)
	}
	if res.Status != StatusNoMatch || res.Record != nil || res.Found() {
		t.Fatalf("expected no match, got %+v", res)
	}
	if res.Attempts != 2 || res.Failures != 1 {
		t.Fatalf("expected failing strategy skipped, attempts %d failures %d", res.Attempts, res.Failures)
	}
}

func TestStrategyFailureLogsRetriable(t *testing.T) {
	api := newFakeAPI()
	api.errs["movie:abcdef ghij"] = &tmdb.HTTPError{StatusCode: http.StatusBadGateway}
	api.errs["movie:abcdef"] = &tmdb.HTTPError{StatusCode: http.StatusUnauthorized}
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	r, _, _ := newTestResolver(api, WithLogger(logger))

	if _, err := r.ResolveByTitle(context.Background(), "abcdef ghij", tmdb.KindMovie); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	retriable := map[string]bool{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var rec struct {
			EventType string `json:"event_type"`
			Query     string `json:"query"`
			Retriable *bool  `json:"retriable"`
		}
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("decode %q: %v", line, err)
		}
		if rec.EventType != "strategy_failed" {
			continue
		}
		if rec.Retriable == nil {
			t.Fatalf("strategy_failed line lacks retriable: %s", line)
		}
		retriable[rec.Query] = *rec.Retriable
	}
	want := map[string]bool{"abcdef ghij": true, "abcdef": false}
	if len(retriable) != len(want) || retriable["abcdef ghij"] != true || retriable["abcdef"] != false {
		t.Fatalf("retriable by query = %v, want %v", retriable, want)
	}
}

func TestWithThresholdsAcceptsFullRange(t *testing.T) {
	r, _, _ := newTestResolver(newFakeAPI(), WithThresholds(search.Thresholds{Accept: 0, Fallback: 0}))
	if r.thresholds != (search.Thresholds{}) {
		t.Fatalf("zero thresholds ignored, got %+v", r.thresholds)
	}

	r, _, _ = newTestResolver(newFakeAPI(), WithThresholds(search.Thresholds{Accept: 1.5, Fallback: 0.2}))
	if r.thresholds != search.Default() {
		t.Fatalf("out of range thresholds applied: %+v", r.thresholds)
	}
}

func TestResolveByTitleAllStrategiesFail(t *testing.T) {
	api := newFakeAPI()
	api.errs["multi:Heat"] = errors.New("connection refused")
	r, _, _ := newTestResolver(api)

	res, err := r.ResolveByTitle(context.Background(), "Heat", tmdb.KindMulti)
	if err != nil {
		t.Fatalf("exhausted strategies must report an empty result, got %v", err)
	}
	if res.Status != StatusNoMatch || res.Failures != res.Attempts {
		t.Fatalf("unexpected resolution %+v", res)
	}
}

func TestResolveByTitleInvalidInput(t *testing.T) {
	r, _, _ := newTestResolver(newFakeAPI())
	res, err := r.ResolveByTitle(context.Background(), "   ", tmdb.KindMulti)
	if !errors.Is(err, services.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if res.Status != StatusInvalidInput {
		t.Fatalf("expected invalid_input status, got %s", res.Status)
	}
}

func TestKeywordStrategiesOnlyUseMultiSearch(t *testing.T) {
	api := newFakeAPI()
	r, _, _ := newTestResolver(api)

	if _, err := r.ResolveByTitle(context.Background(), "英雄", tmdb.KindMovie); err != nil {
		t.Fatal(err)
	}
	if calls := api.Calls(); !slices.Equal(calls, []string{"movie:英雄"}) {
		t.Fatalf("expected keywords skipped for movie search, got %v", calls)
	}

	if _, err := r.ResolveByTitle(context.Background(), "英雄", tmdb.KindMulti); err != nil {
		t.Fatal(err)
	}
	if calls := api.Calls()[1:]; !slices.Equal(calls, []string{"multi:英雄", "multi:Hero"}) {
		t.Fatalf("expected keyword tried on multi search, got %v", calls)
	}
}

func TestResolveSkipsPersonResults(t *testing.T) {
	api := newFakeAPI()
	api.searches["multi:Heat"] = &tmdb.Response{Results: []tmdb.Result{
		{ID: 1, Name: "Heat Miser", MediaType: "person"},
		{ID: 949, Title: "Heat", MediaType: "movie"},
	}}
	r, _, _ := newTestResolver(api)
	res, err := r.ResolveByTitle(context.Background(), "Heat", tmdb.KindMulti)
	if err != nil {
		t.Fatal(err)
	}
	if res.Record == nil || res.Record.ID != 949 {
		t.Fatalf("expected movie result chosen over person, got %+v", res.Record)
	}
}

func TestResolveStopsWhenContextCanceled(t *testing.T) {
	api := newFakeAPI()
	api.release = make(chan struct{})
	api.started = make(chan struct{}, 1)
	r, _, _ := newTestResolver(api)
	t.Cleanup(func() { close(api.release) })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := r.ResolveByTitle(ctx, "abcdef ghij", tmdb.KindMovie)
		done <- err
	}()
	<-api.started
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("resolution did not return after cancellation")
	}
}

func TestFetchDetailsCachesAndClassifiesErrors(t *testing.T) {
	api := newFakeAPI()
	api.records[550] = &tmdb.Details{Result: tmdb.Result{ID: 550, Title: "搏击俱乐部", MediaType: "movie"}, Runtime: 139}
	r, c, _ := newTestResolver(api)
	ctx := context.Background()

	for range 2 {
		details, err := r.FetchDetails(ctx, 550, tmdb.KindMovie)
		if err != nil {
			t.Fatalf("FetchDetails returned error: %v", err)
		}
		if details.Runtime != 139 {
			t.Fatalf("unexpected details %+v", details)
		}
	}
	if calls := api.Calls(); len(calls) != 1 {
		t.Fatalf("expected one remote call, got %v", calls)
	}
	if _, ok := c.Get(ctx, "movie_details_550"); !ok {
		t.Fatal("expected details cached under movie_details_550")
	}

	if _, err := r.FetchDetails(ctx, 404, tmdb.KindTV); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	api.errs["movie_details:500"] = &tmdb.HTTPError{StatusCode: http.StatusInternalServerError}
	if _, err := r.FetchDetails(ctx, 500, tmdb.KindMovie); !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
	if _, err := r.FetchDetails(ctx, 0, tmdb.KindMovie); !errors.Is(err, services.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero id, got %v", err)
	}
	if _, err := r.FetchDetails(ctx, 1, tmdb.KindMulti); !errors.Is(err, services.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for multi kind, got %v", err)
	}
}

func TestFetchImagesRanksAndCaps(t *testing.T) {
	api := newFakeAPI()
	var backdrops []tmdb.Image
	for i := range 7 {
		backdrops = append(backdrops, tmdb.Image{FilePath: fmt.Sprintf("/%d.jpg", i), VoteCount: int64(i), Width: 1920, Height: 1080})
	}
	api.images = &tmdb.ImagesResponse{ID: 550, Backdrops: backdrops}
	r, c, _ := newTestResolver(api)

	images, err := r.FetchImages(context.Background(), 550, tmdb.KindMovie)
	if err != nil {
		t.Fatalf("FetchImages returned error: %v", err)
	}
	if len(images) != 5 || images[0].FilePath != "/6.jpg" || images[4].FilePath != "/2.jpg" {
		t.Fatalf("unexpected ranked images %+v", images)
	}
	if calls := api.Calls(); !slices.Equal(calls, []string{"movie_images:550:zh,en,null"}) {
		t.Fatalf("unexpected calls %v", calls)
	}
	if _, ok := c.Get(context.Background(), "backdrops_movie_550_zh,en,null"); !ok {
		t.Fatal("expected images cached in the backdrops bucket")
	}
}

func TestFetchGenresUsesLanguageKey(t *testing.T) {
	api := newFakeAPI()
	api.genres = &tmdb.GenreList{Genres: []tmdb.Genre{{ID: 18, Name: "剧情"}}}
	r, c, _ := newTestResolver(api, WithLanguage("zh-CN"))

	genres, err := r.FetchGenres(context.Background(), tmdb.KindTV)
	if err != nil {
		t.Fatalf("FetchGenres returned error: %v", err)
	}
	if len(genres) != 1 || genres[0].Name != "剧情" {
		t.Fatalf("unexpected genres %+v", genres)
	}
	if _, ok := c.Get(context.Background(), "genres_tv_zh-CN"); !ok {
		t.Fatal("expected genres cached under genres_tv_zh-CN")
	}
}

func TestConcurrentMissesShareOneCall(t *testing.T) {
	api := newFakeAPI()
	api.records[1] = &tmdb.Details{Result: tmdb.Result{ID: 1, Title: "Alien"}}
	api.started = make(chan struct{}, 1)
	api.release = make(chan struct{})
	r, _, _ := newTestResolver(api)

	var wg sync.WaitGroup
	errs := make(chan error, 5)
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.FetchDetails(context.Background(), 1, tmdb.KindMovie)
			errs <- err
		}()
	}
	<-api.started
	time.Sleep(50 * time.Millisecond)
	close(api.release)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("FetchDetails returned error: %v", err)
		}
	}
	if calls := api.Calls(); len(calls) != 1 {
		t.Fatalf("expected concurrent misses to share one call, got %v", calls)
	}
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	r, _, _ := newTestResolver(newFakeAPI())
	if _, err := r.Search(context.Background(), " ", tmdb.KindMulti, 1); !errors.Is(err, services.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
