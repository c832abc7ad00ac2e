package main

import (
	"bytes"
	"context"
	"io"
	"testing"

	"tradechart/internal/config"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLI_ConfigErrorIsReturned(t *testing.T) {
	t.Setenv("TRADES_SOURCE", "ftp")

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	app := newCLI(logger)
	app.Writer = &bytes.Buffer{}
	app.ErrWriter = &bytes.Buffer{}

	err := app.RunContext(context.Background(), []string{
		"tradechart", "--symbol", "PLTR", "--start", "2024-12-23", "--end", "2024-12-24",
	})

	require.Error(t, err)
	var cfgErr *config.Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "TRADES_SOURCE", cfgErr.Key)
	assert.Contains(t, err.Error(), "load config")
}

func TestCLI_RequiresSymbol(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	app := newCLI(logger)
	app.Writer = &bytes.Buffer{}
	app.ErrWriter = &bytes.Buffer{}

	err := app.RunContext(context.Background(), []string{"tradechart", "--start", "2024-12-23", "--end", "2024-12-24"})

	assert.ErrorContains(t, err, "symbol")
}
