package log

import (
	"io"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

var logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap:        logrus.FieldMap{logrus.FieldKeyTime: "ts", logrus.FieldKeyMsg: "action"},
	})
	return l
}

// Configure sets level ("debug", "info", ...) and format ("json" or "text").
func Configure(level, format string, out io.Writer) {
	if out != nil {
		logger.SetOutput(out)
	}
	if format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
}

// SetOutput redirects all entries; tests use it to capture logs.
func SetOutput(w io.Writer) { logger.SetOutput(w) }

func Logger() *logrus.Logger { return logger }

func entry(c *fiber.Ctx, fields map[string]any) *logrus.Entry {
	e := logrus.NewEntry(logger)
	if len(fields) > 0 {
		e = e.WithField("fields", fields)
	}
	if c != nil {
		e = e.WithFields(logrus.Fields{
			"ip":     c.IP(),
			"method": c.Method(),
			"path":   c.Path(),
			"status": c.Response().StatusCode(),
		})
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			e = e.WithField("req_id", rid)
		}
	}
	return e
}

func Info(c *fiber.Ctx, action string, fields map[string]any) {
	entry(c, fields).Info(action)
}

func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	entry(c, fields).WithField("audit", true).Info(action)
}

func Security(c *fiber.Ctx, action string, fields map[string]any) {
	entry(c, fields).Warn(action)
}

func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	entry(c, fields).WithError(err).Error(action)
}
