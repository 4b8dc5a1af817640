package audit

import (
	"context"

	"github.com/weiawesome/ward-rooms/pkg/log"
)

// Audit actions for room mutations.
const (
	ActionCreateRoom  = "room.create"
	ActionUpdateRoom  = "room.update"
	ActionDeleteRoom  = "room.delete"
	ActionDeleteImage = "room.image_delete"
)

// Field constants for audit entries.
const (
	FieldAction = "action"
	FieldDetail = "detail"
)

// anonymous is recorded when the route is not behind authentication.
const anonymous = "anonymous"

// Log emits a structured audit log entry via the context logger.
func Log(ctx context.Context, action, userID, roomID, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, actor(userID)).
		Str(log.FieldRoomID, roomID).
		Msg(msg)
}

// LogWithDetail emits an audit log with extra detail field.
func LogWithDetail(ctx context.Context, action, userID, roomID, detail, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, actor(userID)).
		Str(log.FieldRoomID, roomID).
		Str(FieldDetail, detail).
		Msg(msg)
}

func actor(userID string) string {
	if userID == "" {
		return anonymous
	}
	return userID
}
