package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config del logger del servicio.
type Config struct {
	Env     string // "development" emite consola legible; cualquier otro valor, JSON
	Level   string // debug, info, warn, error
	Service string // nombre estampado en cada evento; por defecto "fehka-api"
}

// Logger envuelve zerolog con los campos fijos del servicio. Los componentes
// que necesitan sub-loggers (caso de uso, cliente SOAP) derivan del zerolog
// interno vía Zerolog().
type Logger struct {
	zl zerolog.Logger
}

// New arma el logger raíz. Todos los eventos llevan timestamp y el nombre del
// servicio; el logger global de zerolog se apunta al mismo destino para las
// librerías que escriben por él.
func New(cfg Config) *Logger {
	var w io.Writer = os.Stdout
	if cfg.Env == "development" {
		w = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	service := cfg.Service
	if service == "" {
		service = "fehka-api"
	}

	zl := zerolog.New(w).
		Level(parseLevel(cfg.Level)).
		With().
		Timestamp().
		Str("service", service).
		Logger()

	log.Logger = zl

	return &Logger{zl: zl}
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.zl.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }
func (l *Logger) Fatal() *zerolog.Event { return l.zl.Fatal() }

// With deriva un sublogger con campos fijos adicionales.
func (l *Logger) With() zerolog.Context {
	return l.zl.With()
}

// Zerolog expone el logger interno para componentes que reciben un
// zerolog.Logger plano.
func (l *Logger) Zerolog() zerolog.Logger {
	return l.zl
}
