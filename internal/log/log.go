package log

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
)

type level string

const (
	levelInfo  level = "info"
	levelAudit level = "audit"
	levelWarn  level = "warn"
	levelError level = "error"
)

type entry struct {
	TS     string         `json:"ts"`
	Level  level          `json:"level"`
	Action string         `json:"action,omitempty"`
	ReqID  string         `json:"req_id,omitempty"`
	UserID string         `json:"user_id,omitempty"`
	IP     string         `json:"ip,omitempty"`
	Method string         `json:"method,omitempty"`
	Path   string         `json:"path,omitempty"`
	Status int            `json:"status,omitempty"`
	Err    string         `json:"err,omitempty"`
	Fields map[string]any `json:"fields,omitempty"`
}

func (e *entry) fill(c *fiber.Ctx) {
	if c == nil {
		return
	}
	e.IP, e.Method, e.Path = c.IP(), c.Method(), c.Path()
	e.Status = c.Response().StatusCode()
	e.ReqID, _ = c.Locals("requestid").(string)
	e.UserID, _ = c.Locals("user_id").(string)
}

func emit(lv level, c *fiber.Ctx, action string, err error, fields map[string]any) {
	e := entry{TS: time.Now().UTC().Format(time.RFC3339), Level: lv, Action: action, Fields: fields}
	e.fill(c)
	if err != nil {
		e.Err = err.Error()
	}
	b, mErr := json.Marshal(e)
	if mErr != nil {
		// unencodable field values: keep the event, drop the fields
		e.Fields = map[string]any{"marshal_err": mErr.Error()}
		b, _ = json.Marshal(e)
	}
	log.Println(string(b))
}

func Info(c *fiber.Ctx, action string, fields map[string]any) { emit(levelInfo, c, action, nil, fields) }

func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	emit(levelAudit, c, action, nil, fields)
}

func Security(c *fiber.Ctx, action string, fields map[string]any) {
	emit(levelWarn, c, action, nil, fields)
}

// Warn is for failures the request recovered from.
func Warn(c *fiber.Ctx, action string, err error, fields map[string]any) {
	emit(levelWarn, c, action, err, fields)
}

func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	emit(levelError, c, action, err, fields)
}
