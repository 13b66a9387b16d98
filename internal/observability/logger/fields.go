package logger

import (
	"strings"
	"time"

	"go.uber.org/zap"
)

// ---- HTTP ----

func RequestID(v string) zap.Field { return zap.String("request_id", v) }
func Method(v string) zap.Field { return zap.String("method", v) }
func Path(v string) zap.Field { return zap.String("path", v) }
func Status(v int) zap.Field { return zap.Int("status", v) }
func Bytes(v int) zap.Field { return zap.Int("bytes", v) }
func ClientIP(v string) zap.Field { return zap.String("client_ip", v) }
func Duration(v time.Duration) zap.Field { return zap.Duration("duration", v) }
func DurationMs(v int64) zap.Field { return zap.Int64("duration_ms", v) }

// ---- Fastpass ----

// UID es el identificador del usuario en la aplicación host.
func UID(v string) zap.Field { return zap.String("uid", v) }

// Email loguea el email enmascarado (j***@example.com).
func Email(v string) zap.Field { return zap.String("email", MaskEmail(v)) }

func ConsumerKey(v string) zap.Field { return zap.String("consumer_key", v) }
func Nonce(v string) zap.Field { return zap.String("nonce", v) }
func Host(v string) zap.Field { return zap.String("host", v) }
func Source(v string) zap.Field { return zap.String("source", v) }

// ---- Sistema ----

func Component(v string) zap.Field { return zap.String("component", v) }
func Op(v string) zap.Field { return zap.String("op", v) }
func Err(err error) zap.Field { return zap.Error(err) }
func Any(key string, v any) zap.Field {
	return zap.Any(key, v)
}

// MaskEmail deja la primera letra del local-part y el dominio.
func MaskEmail(v string) string {
	at := strings.LastIndexByte(v, '@')
	if at <= 0 {
		if v == "" {
			return ""
		}
		return "***"
	}
	return v[:1] + "***" + v[at:]
}
