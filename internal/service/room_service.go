package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/weiawesome/ward-rooms/internal/audit"
	"github.com/weiawesome/ward-rooms/internal/cache"
	"github.com/weiawesome/ward-rooms/internal/domain"
	"github.com/weiawesome/ward-rooms/internal/imagestore"
	"github.com/weiawesome/ward-rooms/internal/metrics"
	"github.com/weiawesome/ward-rooms/internal/repository"
	"github.com/weiawesome/ward-rooms/pkg/log"
	"github.com/weiawesome/ward-rooms/pkg/pubsub"
)

const (
	cacheSetTimeout     = 2 * time.Second
	flightTimeout       = 10 * time.Second
	compensationTimeout = 30 * time.Second
)

// Operation names used for metrics.
const (
	opCreate      = "create"
	opUpdate      = "update"
	opDelete      = "delete"
	opDeleteImage = "delete_image"
)

// Options tunes RoomService.
type Options struct {
	CacheTTL  time.Duration
	MaxImages int
}

// roomServiceImpl implements RoomService interface.
type roomServiceImpl struct {
	repo      repository.RoomRepository
	images    imagestore.ImageStore
	cache     cache.RoomCache
	publisher pubsub.Publisher
	cacheTTL  time.Duration
	maxImages int
	sf        singleflight.Group
}

// NewRoomService creates a new room service.
func NewRoomService(
	repo repository.RoomRepository,
	images imagestore.ImageStore,
	roomCache cache.RoomCache,
	publisher pubsub.Publisher,
	opts Options,
) RoomService {
	if opts.MaxImages <= 0 || opts.MaxImages > domain.MaxImagesPerRoom {
		opts.MaxImages = domain.MaxImagesPerRoom
	}
	if roomCache == nil {
		roomCache = cache.NopRoomCache{}
	}
	if publisher == nil {
		publisher = pubsub.NopPublisher{}
	}
	return &roomServiceImpl{
		repo:      repo,
		images:    images,
		cache:     roomCache,
		publisher: publisher,
		cacheTTL:  opts.CacheTTL,
		maxImages: opts.MaxImages,
	}
}

// CreateRoom uploads the images, then persists the room. Uploaded images are
// removed again when any step fails.
func (s *roomServiceImpl) CreateRoom(ctx context.Context, userID string, req *domain.CreateRoomRequest, images []domain.ImageUpload) (room *domain.Room, err error) {
	defer func() { metrics.ObserveRoomOperation(opCreate, err) }()
	l := log.Ctx(ctx)

	if err := s.checkImageCount(images); err != nil {
		return nil, err
	}

	urls, err := s.uploadAll(ctx, images)
	if err != nil {
		return nil, err
	}

	room = domain.NewRoom(req, urls)
	if err := s.repo.Create(ctx, room); err != nil {
		s.compensate(ctx, urls)
		return nil, domain.NewStorageError("create room", err)
	}

	l.Info().Str(log.FieldRoomID, room.ID).Str(log.FieldRoomCode, room.RoomID).Int(log.FieldCount, len(urls)).Msg("room created")
	audit.Log(ctx, audit.ActionCreateRoom, userID, room.ID, "room created")
	s.publish(ctx, pubsub.EventRoomCreated, room, nil)
	return room, nil
}

// GetRoom returns an active room, served from cache when possible. Cached
// entries are revalidated against the repository so a room deleted while a
// cache fill was in flight is never served.
func (s *roomServiceImpl) GetRoom(ctx context.Context, id string) (*domain.Room, error) {
	key := s.cache.BuildKeyByID(id)

	result, err, _ := s.sf.Do(key, func() (interface{}, error) {
		// The flight is shared, so one caller's cancellation must not fail the rest.
		ctx, cancel := context.WithTimeout(log.Detached(ctx), flightTimeout)
		defer cancel()
		l := log.Ctx(ctx)

		cached, err := s.cache.Get(ctx, key)
		if err == nil {
			active, err := s.repo.IsActive(ctx, id)
			if err != nil {
				return nil, repoError("get room", err)
			}
			if !active {
				metrics.IncCacheLookup("stale")
				s.invalidate(ctx, id)
				return nil, domain.ErrRoomNotFound
			}
			metrics.IncCacheLookup("hit")
			return &cached.Room, nil
		}
		if errors.Is(err, cache.ErrCacheMiss) {
			metrics.IncCacheLookup("miss")
		} else {
			metrics.IncCacheLookup("error")
			l.Warn().Err(err).Msg("cache get error")
		}

		room, err := s.repo.FindActiveByID(ctx, id)
		if err != nil {
			return nil, repoError("get room", err)
		}

		s.asyncCacheSet(ctx, key, room)
		return room, nil
	})
	if err != nil {
		return nil, err
	}

	// Callers sharing a flight must not alias each other's struct.
	room := *result.(*domain.Room)
	return &room, nil
}

// UpdateRoom merges req into the active room. Supplied images replace the
// stored ones: the old images are deleted before the new ones are uploaded,
// so a failed upload leaves the room pointing at deleted images.
func (s *roomServiceImpl) UpdateRoom(ctx context.Context, userID, id string, req *domain.UpdateRoomRequest, images []domain.ImageUpload) (room *domain.Room, err error) {
	defer func() { metrics.ObserveRoomOperation(opUpdate, err) }()
	l := log.Ctx(ctx)

	if err := s.checkImageCount(images); err != nil {
		return nil, err
	}

	room, err = s.repo.FindActiveByID(ctx, id)
	if err != nil {
		return nil, repoError("get room", err)
	}

	var uploaded []string
	if len(images) > 0 {
		s.deleteImages(ctx, room.Images)

		uploaded, err = s.uploadAll(ctx, images)
		if err != nil {
			return nil, err
		}
		room.Images = uploaded
	}

	req.Apply(room)

	if err := s.repo.Update(ctx, room); err != nil {
		s.compensate(ctx, uploaded)
		return nil, repoError("update room", err)
	}

	s.invalidate(ctx, room.ID)
	l.Info().Str(log.FieldRoomID, room.ID).Bool("images_replaced", len(uploaded) > 0).Msg("room updated")
	audit.Log(ctx, audit.ActionUpdateRoom, userID, room.ID, "room updated")
	s.publish(ctx, pubsub.EventRoomUpdated, room, nil)
	return room, nil
}

// DeleteRoom soft-deletes the room and purges its images concurrently.
// Only the flag update decides the outcome.
func (s *roomServiceImpl) DeleteRoom(ctx context.Context, userID, id string) (err error) {
	defer func() { metrics.ObserveRoomOperation(opDelete, err) }()
	l := log.Ctx(ctx)

	room, err := s.repo.FindActiveByID(ctx, id)
	if err != nil {
		return repoError("get room", err)
	}

	errs := settle(ctx,
		func(ctx context.Context) error {
			return s.repo.SoftDelete(ctx, room.ID, time.Now().UTC())
		},
		func(ctx context.Context) error {
			s.deleteImages(ctx, room.Images)
			return nil
		},
	)
	if errs[0] != nil {
		return repoError("delete room", errs[0])
	}

	s.invalidate(ctx, room.ID)
	l.Info().Str(log.FieldRoomID, room.ID).Int(log.FieldCount, len(room.Images)).Msg("room deleted")
	audit.Log(ctx, audit.ActionDeleteRoom, userID, room.ID, "room deleted")
	s.publish(ctx, pubsub.EventRoomDeleted, room, nil)
	return nil
}

// DeleteImage detaches one image. The record update and the provider delete
// run concurrently; a provider failure is only logged.
func (s *roomServiceImpl) DeleteImage(ctx context.Context, userID string, req *domain.DeleteImageRequest) (remaining int, err error) {
	defer func() { metrics.ObserveRoomOperation(opDeleteImage, err) }()
	l := log.Ctx(ctx)

	verr := &domain.ValidationError{}
	if strings.TrimSpace(req.RoomID) == "" {
		verr.Add("roomId", "room id is required")
	}
	if strings.TrimSpace(req.ImageURL) == "" {
		verr.Add("imageUrl", "image url is required")
	}
	if verr.HasErrors() {
		return 0, verr
	}

	room, err := s.repo.FindActiveByID(ctx, req.RoomID)
	if err != nil {
		return 0, repoError("get room", err)
	}
	if !room.HasImage(req.ImageURL) {
		return 0, domain.NewValidationError("imageUrl", "image not found in room")
	}

	images := room.ImagesWithout(req.ImageURL)
	errs := settle(ctx,
		func(ctx context.Context) error {
			return s.repo.UpdateImages(ctx, room.ID, images)
		},
		func(ctx context.Context) error {
			return s.images.Delete(ctx, req.ImageURL)
		},
	)
	metrics.ObserveImageOperation("delete", errs[1])
	if errs[1] != nil {
		l.Warn().Err(errs[1]).Str(log.FieldImageURL, req.ImageURL).Msg("failed to delete image from store")
	}
	if errs[0] != nil {
		return 0, repoError("update room images", errs[0])
	}

	room.Images = images
	s.invalidate(ctx, room.ID)
	audit.LogWithDetail(ctx, audit.ActionDeleteImage, userID, room.ID, req.ImageURL, "room image deleted")
	s.publish(ctx, pubsub.EventRoomImageDeleted, room, []string{req.ImageURL})
	return len(images), nil
}

func (s *roomServiceImpl) checkImageCount(images []domain.ImageUpload) error {
	if len(images) > s.maxImages {
		return domain.NewValidationError("images", fmt.Sprintf("at most %d images are allowed", s.maxImages))
	}
	return nil
}

// uploadAll uploads every image concurrently and returns the URLs in input
// order. On any failure the images already uploaded are deleted.
func (s *roomServiceImpl) uploadAll(ctx context.Context, images []domain.ImageUpload) ([]string, error) {
	urls := make([]string, len(images))
	if len(images) == 0 {
		return urls, nil
	}

	g, gCtx := errgroup.WithContext(ctx)
	for i, img := range images {
		g.Go(func() error {
			url, err := s.images.Upload(gCtx, img)
			metrics.ObserveImageOperation("upload", err)
			if err != nil {
				return err
			}
			urls[i] = url
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		uploaded := make([]string, 0, len(urls))
		for _, url := range urls {
			if url != "" {
				uploaded = append(uploaded, url)
			}
		}
		s.compensate(ctx, uploaded)

		if errors.Is(err, imagestore.ErrInvalidImage) || errors.Is(err, imagestore.ErrImageTooLarge) {
			return nil, domain.NewValidationError("images", err.Error())
		}
		return nil, domain.NewStorageError("upload images", err)
	}
	return urls, nil
}

// compensate deletes images left behind by a failed mutation. It outlives
// request cancellation; failures are only logged.
func (s *roomServiceImpl) compensate(ctx context.Context, urls []string) {
	if len(urls) == 0 {
		return
	}
	cctx, cancel := context.WithTimeout(log.Detached(ctx), compensationTimeout)
	defer cancel()

	l := log.Ctx(ctx)
	for i, err := range s.deleteAll(cctx, urls) {
		metrics.ObserveCompensation(err)
		if err != nil {
			l.Error().Err(err).Str(log.FieldImageURL, urls[i]).Msg("compensation: failed to delete uploaded image")
		}
	}
	l.Warn().Int(log.FieldCount, len(urls)).Msg("compensation: uploaded images rolled back")
}

// deleteImages removes images best-effort, logging each failure.
func (s *roomServiceImpl) deleteImages(ctx context.Context, urls []string) {
	l := log.Ctx(ctx)
	for i, err := range s.deleteAll(ctx, urls) {
		metrics.ObserveImageOperation("delete", err)
		if err != nil {
			l.Warn().Err(err).Str(log.FieldImageURL, urls[i]).Msg("failed to delete image")
		}
	}
}

func (s *roomServiceImpl) deleteAll(ctx context.Context, urls []string) []error {
	tasks := make([]func(context.Context) error, len(urls))
	for i, url := range urls {
		tasks[i] = func(ctx context.Context) error {
			return s.images.Delete(ctx, url)
		}
	}
	return settle(ctx, tasks...)
}

func (s *roomServiceImpl) asyncCacheSet(ctx context.Context, key string, room *domain.Room) {
	result := &cache.RoomCacheResult{Room: *room}
	detached := log.Detached(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(detached, cacheSetTimeout)
		defer cancel()

		if err := s.cache.Set(ctx, key, result, s.cacheTTL); err != nil {
			l := log.Ctx(ctx)
			l.Warn().Err(err).Str("key", key).Msg("cache set error")
		}
	}()
}

func (s *roomServiceImpl) invalidate(ctx context.Context, id string) {
	if err := s.cache.Delete(ctx, s.cache.BuildKeyByID(id)); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str(log.FieldRoomID, id).Msg("cache delete error")
	}
}

func (s *roomServiceImpl) publish(ctx context.Context, eventType string, room *domain.Room, imageURLs []string) {
	l := log.Ctx(ctx)

	event, err := pubsub.NewEvent(eventType, room.ID, pubsub.RoomEventPayload{
		RoomID:     room.ID,
		RoomCode:   room.RoomID,
		Branch:     room.HospitalBranch,
		Status:     string(room.Status),
		ImageCount: len(room.Images),
		ImageURLs:  imageURLs,
	})
	if err != nil {
		l.Error().Err(err).Str("event", eventType).Msg("failed to build event")
		return
	}
	if err := s.publisher.Publish(ctx, pubsub.ChannelRoomEvents, event); err != nil {
		l.Warn().Err(err).Str("event", eventType).Str(log.FieldRoomID, room.ID).Msg("failed to publish event")
	}
}

// repoError maps repository failures to service errors.
func repoError(op string, err error) error {
	if errors.Is(err, repository.ErrRoomNotFound) {
		return domain.ErrRoomNotFound
	}
	return domain.NewStorageError(op, err)
}
