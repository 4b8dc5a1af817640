package service

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/weiawesome/ward-rooms/internal/domain"
	"github.com/weiawesome/ward-rooms/internal/repository"
)

const (
	defaultLimit = 10
	maxLimit     = 50
)

type queryEngineImpl struct {
	repo repository.RoomRepository
}

// NewQueryEngine creates a query engine over repo.
func NewQueryEngine(repo repository.RoomRepository) QueryEngine {
	return &queryEngineImpl{repo: repo}
}

// ListRooms returns one page of active rooms, newest first.
func (q *queryEngineImpl) ListRooms(ctx context.Context, query *domain.ListRoomsQuery) (*domain.RoomPage, error) {
	page, limit := normalizePaging(query.Page, query.Limit)
	filter := domain.RoomFilter{
		Search: strings.TrimSpace(query.Search),
		Status: strings.TrimSpace(query.Status),
		Branch: strings.TrimSpace(query.Branch),
	}

	var rooms []domain.Room
	var total int64

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		rooms, err = q.repo.List(gCtx, filter, (page-1)*limit, limit)
		return err
	})

	g.Go(func() error {
		var err error
		total, err = q.repo.Count(gCtx, filter)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, domain.NewStorageError("list rooms", err)
	}

	if rooms == nil {
		rooms = []domain.Room{}
	}
	return &domain.RoomPage{
		Rooms: rooms,
		Total: total,
		Page:  page,
		Limit: limit,
		Pages: int((total + int64(limit) - 1) / int64(limit)),
	}, nil
}

// RoomStats aggregates every active room.
func (q *queryEngineImpl) RoomStats(ctx context.Context) (*domain.RoomStats, error) {
	var overview *domain.StatsOverview
	var byBranch []domain.BranchStatusCount

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		overview, err = q.repo.Overview(gCtx)
		return err
	})

	g.Go(func() error {
		var err error
		byBranch, err = q.repo.CountByBranchStatus(gCtx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, domain.NewStorageError("room stats", err)
	}

	if byBranch == nil {
		byBranch = []domain.BranchStatusCount{}
	}
	return &domain.RoomStats{
		Overview:       *overview,
		StatusByBranch: byBranch,
	}, nil
}

// normalizePaging clamps page to at least 1 and limit to [1, maxLimit].
// An absent limit means the default; an explicit zero is clamped like any
// other value.
func normalizePaging(page int, requested *int) (int, int) {
	if page < 1 {
		page = 1
	}
	if requested == nil {
		return page, defaultLimit
	}
	limit := *requested
	switch {
	case limit < 1:
		limit = 1
	case limit > maxLimit:
		limit = maxLimit
	}
	return page, limit
}
