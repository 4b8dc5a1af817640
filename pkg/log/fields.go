package log

const (
	// Request
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	// Actor (matches pkg/middleware/auth.go keys)
	FieldUserID = "user_id"

	// Service
	FieldService = "service"

	// Domain
	FieldRoomID   = "room_id"
	FieldRoomCode = "room_code"
	FieldImageURL = "image_url"
	FieldImageKey = "image_key"
	FieldCount    = "count"

	// Log type (for audit log)
	FieldLogType = "log_type"
	LogTypeAudit = "audit"
)
