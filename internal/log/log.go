package log

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	// UserIDKey is the fiber Locals key the auth middleware stores the caller id under.
	UserIDKey = "user_id"
	startKey  = "log_start"
)

type entry struct {
	TS        string         `json:"ts"`
	Level     string         `json:"level"`
	ReqID     string         `json:"req_id,omitempty"`
	IP        string         `json:"ip,omitempty"`
	Method    string         `json:"method,omitempty"`
	Path      string         `json:"path,omitempty"`
	UserID    string         `json:"user_id,omitempty"`
	Action    string         `json:"action,omitempty"`
	Status    int            `json:"status,omitempty"`
	LatencyMs int64          `json:"latency_ms,omitempty"`
	Err       string         `json:"err,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// Timing records when a request started so entries written while handling
// it carry latency_ms.
func Timing() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(startKey, time.Now())
		return c.Next()
	}
}

func fromCtx(e *entry, c *fiber.Ctx) {
	e.IP = c.IP()
	e.Method = c.Method()
	e.Path = c.Path()
	e.Status = c.Response().StatusCode()
	if rid, ok := c.Locals("requestid").(string); ok {
		e.ReqID = rid
	}
	if uid, ok := c.Locals(UserIDKey).(string); ok {
		e.UserID = uid
	}
	if start, ok := c.Locals(startKey).(time.Time); ok {
		e.LatencyMs = time.Since(start).Milliseconds()
	}
}

// write emits one JSON line. c may be nil for work done outside a request.
func write(level string, c *fiber.Ctx, action string, err error, fields map[string]any) {
	e := entry{TS: time.Now().UTC().Format(time.RFC3339), Level: level, Action: action, Fields: fields}
	if c != nil {
		fromCtx(&e, c)
	}
	if err != nil {
		e.Err = err.Error()
	}
	b, merr := json.Marshal(e)
	if merr != nil {
		// unencodable field values; keep the action at least
		e.Fields = map[string]any{"marshal_error": merr.Error()}
		b, _ = json.Marshal(e)
	}
	log.Println(string(b))
}

func Info(c *fiber.Ctx, action string, fields map[string]any) { write("info", c, action, nil, fields) }
func Audit(c *fiber.Ctx, action string, fields map[string]any) { write("audit", c, action, nil, fields) }

// Security entries are logged at warn.
func Security(c *fiber.Ctx, action string, fields map[string]any) {
	write("warn", c, action, nil, fields)
}

func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	write("error", c, action, err, fields)
}
