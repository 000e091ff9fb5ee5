// Package stdlogger adapts the global zerolog logger to the printf-style
// interfaces expected by libraries that do not speak zerolog.
package stdlogger

import (
	"github.com/rs/zerolog/log"
)

// Adapter forwards printf-style log calls to the global zerolog logger.
type Adapter struct{}

// New creates a new Adapter.
func New() *Adapter {
	return &Adapter{}
}

// Debugf logs a formatted message at debug level.
func (a *Adapter) Debugf(format string, args ...interface{}) {
	log.Debug().Msgf(format, args...)
}

// Infof logs a formatted message at info level.
func (a *Adapter) Infof(format string, args ...interface{}) {
	log.Info().Msgf(format, args...)
}

// Warningf logs a formatted message at warn level.
func (a *Adapter) Warningf(format string, args ...interface{}) {
	log.Warn().Msgf(format, args...)
}

// Errorf logs a formatted message at error level.
func (a *Adapter) Errorf(format string, args ...interface{}) {
	log.Error().Msgf(format, args...)
}

// Printf logs a formatted message at info level. It satisfies gorm's
// logger.Writer interface.
func (a *Adapter) Printf(format string, args ...interface{}) {
	log.Info().Msgf(format, args...)
}
