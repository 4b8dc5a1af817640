package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/ward-rooms/pkg/log"
)

func TestLogWithDetail(t *testing.T) {
	var buf bytes.Buffer
	ctx := log.WithLogger(context.Background(), log.New(log.Config{Level: "info", Output: &buf}))

	LogWithDetail(ctx, ActionDeleteImage, "", "room-1", "https://cdn/x.jpg", "image removed")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, log.LogTypeAudit, entry[log.FieldLogType])
	assert.Equal(t, ActionDeleteImage, entry[FieldAction])
	assert.Equal(t, "anonymous", entry[log.FieldUserID])
	assert.Equal(t, "room-1", entry[log.FieldRoomID])
	assert.Equal(t, "https://cdn/x.jpg", entry[FieldDetail])
	assert.Equal(t, "image removed", entry["message"])
}
