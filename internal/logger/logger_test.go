package logger

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func TestInit_Level(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	Init("production", "warn")
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	Init("production", "shouting")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

	Init("development", "")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestInit_ContextFallback(t *testing.T) {
	Init("production", "debug")

	assert.Same(t, &log.Logger, zerolog.Ctx(context.Background()))
}
