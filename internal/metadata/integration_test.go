package metadata_test

import (
	"context"
	"testing"

	"filmtrack/internal/blobstore"
	"filmtrack/internal/cache"
	"filmtrack/internal/metadata"
	"filmtrack/internal/requestqueue"
	"filmtrack/internal/testsupport"
	"filmtrack/internal/tmdb"
)

func TestResolveAgainstStubServerPersistsAcrossInstances(t *testing.T) {
	server := testsupport.NewTMDBServer(t)
	server.JSON("/search/multi?三体", `{"page":1,"results":[{"id":108545,"name":"三体","original_name":"Three-Body","media_type":"tv","first_air_date":"2023-01-15"}]}`)
	cfg := testsupport.NewConfig(t, testsupport.WithTMDBServer(server))

	client, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language)
	if err != nil {
		t.Fatalf("tmdb.New: %v", err)
	}
	store := testsupport.MustOpenSQLiteStore(t, cfg)

	first := metadata.New(client, cache.New(store), requestqueue.New(cfg.Queue.Interval()))
	res, err := first.ResolveByTitle(context.Background(), "三体 第一季", tmdb.KindMulti)
	if err != nil {
		t.Fatalf("ResolveByTitle: %v", err)
	}
	if res.Status != metadata.StatusMatched || res.Record.ID != 108545 || res.Record.Year() != "2023" {
		t.Fatalf("unexpected resolution %+v", res)
	}
	if got := server.Requests("/search/multi?三体"); got != 1 {
		t.Fatalf("expected one request, got %d", got)
	}

	// A fresh cache over the same store answers from the persistent tier.
	queue := requestqueue.New(0)
	second := metadata.New(client, cache.New(store), queue)
	res, err = second.ResolveByTitle(context.Background(), "三体", tmdb.KindMulti)
	if err != nil {
		t.Fatalf("ResolveByTitle: %v", err)
	}
	if res.Status != metadata.StatusMatched || res.CacheHits != 1 {
		t.Fatalf("expected cached match, got %+v", res)
	}
	if server.TotalRequests() != 1 || queue.Stats().Executed != 0 {
		t.Fatalf("expected no further requests, server saw %d", server.TotalRequests())
	}
}

func TestFetchDetailsSurfacesTransportFailure(t *testing.T) {
	server := testsupport.NewTMDBServer(t)
	server.Respond("/movie/550", 503, `{"status_message":"maintenance"}`)
	cfg := testsupport.NewConfig(t, testsupport.WithTMDBServer(server))

	client, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language)
	if err != nil {
		t.Fatalf("tmdb.New: %v", err)
	}
	r := metadata.New(client, cache.New(blobstore.NewMemoryStore()), nil)
	if _, err := r.FetchDetails(context.Background(), 550, tmdb.KindMovie); err == nil || !tmdb.IsRetriable(err) {
		t.Fatalf("expected retriable transport error, got %v", err)
	}
}
