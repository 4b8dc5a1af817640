package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/weiawesome/ward-rooms/internal/config"
	"github.com/weiawesome/ward-rooms/internal/directory"
	"github.com/weiawesome/ward-rooms/internal/domain"
	"github.com/weiawesome/ward-rooms/internal/service"
	"github.com/weiawesome/ward-rooms/internal/validation"
	"github.com/weiawesome/ward-rooms/pkg/log"
	"github.com/weiawesome/ward-rooms/pkg/middleware"
	"github.com/weiawesome/ward-rooms/pkg/response"
)

const genericErrorMessage = "something went wrong"

// Options tunes request handling.
type Options struct {
	// MaxBodyBytes caps multipart request bodies. Zero disables the cap.
	MaxBodyBytes int64
	// ExposeErrors returns internal error text to clients. Development only.
	ExposeErrors bool
	// RoomOptions is served as-is from /config/options.
	RoomOptions config.OptionsConfig
}

// Handler handles HTTP requests for the room service.
type Handler struct {
	roomService    service.RoomService
	queryEngine    service.QueryEngine
	directory      directory.Directory
	validator      *validation.Validator
	authMiddleware *middleware.AuthMiddleware
	opts           Options
}

// NewHandler creates a new HTTP handler.
func NewHandler(
	roomService service.RoomService,
	queryEngine service.QueryEngine,
	dir directory.Directory,
	authMiddleware *middleware.AuthMiddleware,
	opts Options,
) *Handler {
	return &Handler{
		roomService:    roomService,
		queryEngine:    queryEngine,
		directory:      dir,
		validator:      validation.New(),
		authMiddleware: authMiddleware,
		opts:           opts,
	}
}

// RegisterRoutes registers all routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		rooms := api.Group("/rooms")
		{
			// Public routes
			rooms.GET("", h.ListRooms)
			rooms.GET("/stats", h.RoomStats)
			rooms.GET("/:id", h.GetRoom)

			// Protected routes
			rooms.POST("", h.authMiddleware.RequireAuth(), h.CreateRoom)
			rooms.PUT("/:id", h.authMiddleware.RequireAuth(), h.UpdateRoom)
			rooms.DELETE("/image", h.authMiddleware.RequireAuth(), h.DeleteImage)
			rooms.DELETE("/:id", h.authMiddleware.RequireAuth(), h.DeleteRoom)
		}

		cfg := api.Group("/config")
		{
			cfg.GET("/branches", h.Branches)
			cfg.GET("/floors", h.Floors)
			cfg.GET("/options", h.RoomOptions)
		}
	}
}

// CreateRoom creates a room from a multipart form or a JSON body.
func (h *Handler) CreateRoom(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var (
		req    *domain.CreateRoomRequest
		images []domain.ImageUpload
	)
	if c.ContentType() == binding.MIMEJSON {
		req = &domain.CreateRoomRequest{}
		if err := c.ShouldBindJSON(req); err != nil {
			l.Warn().Err(err).Msg("failed to bind create room request")
			response.BadRequest(c, "invalid JSON body")
			return
		}
		if err := h.validator.Struct(req); err != nil {
			h.writeError(c, err, "failed to create room")
			return
		}
	} else {
		form, err := h.multipartForm(c)
		if err != nil {
			l.Warn().Err(err).Msg("failed to parse create room form")
			response.BadRequest(c, "invalid multipart form")
			return
		}
		req, err = h.validator.CreateRequestFromForm(form.Value)
		if err != nil {
			h.writeError(c, err, "failed to create room")
			return
		}
		var cleanup func()
		images, cleanup, err = validation.ImagesFromForm(form)
		if err != nil {
			h.writeError(c, err, "failed to create room")
			return
		}
		defer cleanup()
	}

	room, err := h.roomService.CreateRoom(ctx, middleware.GetUserID(c), req, images)
	if err != nil {
		h.writeError(c, err, "failed to create room")
		return
	}

	response.Created(c, "Room created successfully", room)
}

// GetRoom retrieves an active room by its internal ID.
func (h *Handler) GetRoom(c *gin.Context) {
	ctx := c.Request.Context()

	room, err := h.roomService.GetRoom(ctx, c.Param("id"))
	if err != nil {
		h.writeError(c, err, "failed to get room")
		return
	}

	response.Success(c, room)
}

// ListRooms lists active rooms with filters and pagination.
func (h *Handler) ListRooms(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var query domain.ListRoomsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		l.Warn().Err(err).Msg("failed to bind list rooms query")
		response.BadRequest(c, "invalid query parameters")
		return
	}

	page, err := h.queryEngine.ListRooms(ctx, &query)
	if err != nil {
		h.writeError(c, err, "failed to list rooms")
		return
	}

	response.Paginated(c, page.Rooms, response.Pagination{
		Current: page.Page,
		Pages:   page.Pages,
		Total:   page.Total,
		Limit:   page.Limit,
	})
}

// RoomStats returns the aggregate room statistics.
func (h *Handler) RoomStats(c *gin.Context) {
	ctx := c.Request.Context()

	stats, err := h.queryEngine.RoomStats(ctx)
	if err != nil {
		h.writeError(c, err, "failed to get room stats")
		return
	}

	response.Success(c, stats)
}

// UpdateRoom applies a partial update, optionally replacing the images.
func (h *Handler) UpdateRoom(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var (
		req    *domain.UpdateRoomRequest
		images []domain.ImageUpload
	)
	if c.ContentType() == binding.MIMEJSON {
		req = &domain.UpdateRoomRequest{}
		if err := c.ShouldBindJSON(req); err != nil {
			l.Warn().Err(err).Msg("failed to bind update room request")
			response.BadRequest(c, "invalid JSON body")
			return
		}
		if err := h.validator.Struct(req); err != nil {
			h.writeError(c, err, "failed to update room")
			return
		}
	} else {
		form, err := h.multipartForm(c)
		if err != nil {
			l.Warn().Err(err).Msg("failed to parse update room form")
			response.BadRequest(c, "invalid multipart form")
			return
		}
		req, err = h.validator.UpdateRequestFromForm(form.Value)
		if err != nil {
			h.writeError(c, err, "failed to update room")
			return
		}
		var cleanup func()
		images, cleanup, err = validation.ImagesFromForm(form)
		if err != nil {
			h.writeError(c, err, "failed to update room")
			return
		}
		defer cleanup()
	}

	room, err := h.roomService.UpdateRoom(ctx, middleware.GetUserID(c), c.Param("id"), req, images)
	if err != nil {
		h.writeError(c, err, "failed to update room")
		return
	}

	response.SuccessWithMessage(c, "Room updated successfully", room)
}

// DeleteRoom soft-deletes a room and purges its images.
func (h *Handler) DeleteRoom(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.roomService.DeleteRoom(ctx, middleware.GetUserID(c), c.Param("id")); err != nil {
		h.writeError(c, err, "failed to delete room")
		return
	}

	response.SuccessMessage(c, "Room deleted successfully")
}

// DeleteImage removes one image from a room.
func (h *Handler) DeleteImage(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.DeleteImageRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		l.Warn().Err(err).Msg("failed to bind delete image request")
		response.BadRequest(c, "invalid JSON body")
		return
	}

	remaining, err := h.roomService.DeleteImage(ctx, middleware.GetUserID(c), &req)
	if err != nil {
		h.writeError(c, err, "failed to delete image")
		return
	}

	response.SuccessWithMessage(c, "Image deleted successfully", gin.H{"remainingImages": remaining})
}

// Branches proxies the hospital branch list from the directory service.
func (h *Handler) Branches(c *gin.Context) {
	ctx := c.Request.Context()

	branches, err := h.directory.Branches(ctx)
	if err != nil {
		h.writeError(c, err, "failed to fetch branches")
		return
	}

	response.Success(c, branches)
}

// Floors proxies the floor list from the directory service.
func (h *Handler) Floors(c *gin.Context) {
	ctx := c.Request.Context()

	floors, err := h.directory.Floors(ctx)
	if err != nil {
		h.writeError(c, err, "failed to fetch floors")
		return
	}

	response.Success(c, floors)
}

// RoomOptions returns the static option lists used by room forms.
func (h *Handler) RoomOptions(c *gin.Context) {
	response.Success(c, h.opts.RoomOptions)
}

func (h *Handler) multipartForm(c *gin.Context) (*multipart.Form, error) {
	if h.opts.MaxBodyBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.opts.MaxBodyBytes)
	}
	return c.MultipartForm()
}

// writeError maps service errors onto the response envelope.
func (h *Handler) writeError(c *gin.Context, err error, msg string) {
	l := log.Ctx(c.Request.Context())

	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		details := make([]response.FieldDetail, len(verr.Fields))
		for i, f := range verr.Fields {
			details[i] = response.FieldDetail{Path: f.Field, Message: f.Message}
		}
		response.ValidationFailed(c, details)
	case errors.Is(err, domain.ErrRoomNotFound):
		response.NotFound(c, "Room not found")
	case errors.Is(err, directory.ErrUpstream):
		l.Warn().Err(err).Msg(msg)
		response.BadGateway(c, msg)
	default:
		l.Error().Err(err).Msg(msg)
		message := genericErrorMessage
		if h.opts.ExposeErrors {
			message = err.Error()
		}
		response.InternalError(c, message)
	}
}
