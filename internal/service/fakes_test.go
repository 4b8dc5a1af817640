package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/weiawesome/ward-rooms/internal/cache"
	"github.com/weiawesome/ward-rooms/internal/domain"
	"github.com/weiawesome/ward-rooms/internal/imagestore"
	"github.com/weiawesome/ward-rooms/internal/repository"
	"github.com/weiawesome/ward-rooms/pkg/pubsub"
)

var errInjected = errors.New("injected failure")

// fakeImageStore keeps uploaded URLs in memory with per-file failure injection.
type fakeImageStore struct {
	mu         sync.Mutex
	stored     map[string]bool
	seq        int
	uploads    int
	deletes    int
	failUpload map[string]error
	deleteErr  error
}

func newFakeImageStore() *fakeImageStore {
	return &fakeImageStore{
		stored:     make(map[string]bool),
		failUpload: make(map[string]error),
	}
}

func (f *fakeImageStore) Upload(ctx context.Context, img domain.ImageUpload) (string, error) {
	if img.Content != nil {
		if _, err := io.ReadAll(img.Content); err != nil {
			return "", err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads++
	if err := f.failUpload[img.Filename]; err != nil {
		return "", err
	}
	f.seq++
	url := fmt.Sprintf("https://images.test/room-management/rooms/%d-%s", f.seq, img.Filename)
	f.stored[url] = true
	return url, nil
}

func (f *fakeImageStore) Delete(ctx context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.stored, url)
	return nil
}

func (f *fakeImageStore) has(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stored[url]
}

func (f *fakeImageStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.stored)
}

// seed stores urls as if they had been uploaded earlier.
func (f *fakeImageStore) seed(urls ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range urls {
		f.stored[u] = true
	}
}

var _ imagestore.ImageStore = (*fakeImageStore)(nil)

// faultyRepo wraps a real repository and fails selected calls.
type faultyRepo struct {
	repository.RoomRepository
	createErr       error
	updateErr       error
	updateImagesErr error
	softDeleteErr   error
	listErr         error
}

func (r *faultyRepo) Create(ctx context.Context, room *domain.Room) error {
	if r.createErr != nil {
		return r.createErr
	}
	return r.RoomRepository.Create(ctx, room)
}

func (r *faultyRepo) Update(ctx context.Context, room *domain.Room) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	return r.RoomRepository.Update(ctx, room)
}

func (r *faultyRepo) UpdateImages(ctx context.Context, id string, images []string) error {
	if r.updateImagesErr != nil {
		return r.updateImagesErr
	}
	return r.RoomRepository.UpdateImages(ctx, id, images)
}

func (r *faultyRepo) SoftDelete(ctx context.Context, id string, at time.Time) error {
	if r.softDeleteErr != nil {
		return r.softDeleteErr
	}
	return r.RoomRepository.SoftDelete(ctx, id, at)
}

func (r *faultyRepo) Count(ctx context.Context, filter domain.RoomFilter) (int64, error) {
	if r.listErr != nil {
		return 0, r.listErr
	}
	return r.RoomRepository.Count(ctx, filter)
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []*pubsub.Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, channel string, event *pubsub.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

// flakyCache delays writes and optionally fails deletes.
type flakyCache struct {
	cache.RoomCache
	setDelay  time.Duration
	deleteErr error
}

func (c *flakyCache) Set(ctx context.Context, key string, result *cache.RoomCacheResult, ttl time.Duration) error {
	time.Sleep(c.setDelay)
	return c.RoomCache.Set(ctx, key, result, ttl)
}

func (c *flakyCache) Delete(ctx context.Context, keys ...string) error {
	if c.deleteErr != nil {
		return c.deleteErr
	}
	return c.RoomCache.Delete(ctx, keys...)
}
