package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/batchdl/internal/application/usecase"
	"github.com/bnema/batchdl/internal/infrastructure/config"
	"github.com/bnema/batchdl/internal/infrastructure/filesystem"
	"github.com/bnema/batchdl/internal/infrastructure/httpfetch"
	"github.com/bnema/batchdl/internal/logging"
)

// screen replays terminal output, honoring cursor-up, clear-to-end and
// newline, and returns the visible rows.
func screen(out string) []string {
	var rows []string
	row := 0
	put := func(s string) {
		for len(rows) <= row {
			rows = append(rows, "")
		}
		rows[row] += s
	}

	for i := 0; i < len(out); {
		switch {
		case strings.HasPrefix(out[i:], "\033["):
			j := i + 2
			for j < len(out) && (out[j] >= '0' && out[j] <= '9' || out[j] == ';') {
				j++
			}
			n, _ := strconv.Atoi(out[i+2 : j])
			switch out[j] {
			case 'A':
				row = max(row-max(n, 1), 0)
			case 'J':
				if row < len(rows) {
					rows = rows[:row]
				}
			}
			i = j + 1
		case out[i] == '\r':
			i++
		case out[i] == '\n':
			put("")
			row++
			i++
		default:
			put(out[i : i+1])
			i++
		}
	}
	return rows
}

func newTestApp(gate *logging.ConsoleGate, mode config.DisplayMode) *App {
	return &App{
		Config: &config.Config{
			Display: config.DisplayConfig{Mode: mode, BarWidth: 10},
			Logging: config.LoggingConfig{Format: "json"},
		},
		console: gate,
	}
}

func TestNewDisplay_FailureLogDoesNotBreakRedraw(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "broken.txt") {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("content"))
	}))
	defer srv.Close()

	var term bytes.Buffer
	gate := logging.NewConsoleGate(&term, zerolog.ErrorLevel)
	ctx := logging.WithContext(context.Background(), zerolog.New(gate).Level(zerolog.WarnLevel))

	app := newTestApp(gate, config.DisplayModeANSI)
	display, err := app.NewDisplay(&term)
	require.NoError(t, err)
	assert.True(t, gate.Muted())

	fs := filesystem.New()
	runBatch := usecase.NewRunBatchUseCase(
		usecase.NewDownloadFileUseCase(httpfetch.New(srv.Client(), "test"), fs, nil),
		fs,
		usecase.RunBatchOptions{},
	)
	out, runErr := runBatch.Execute(ctx, usecase.RunBatchInput{
		URLs:           []string{srv.URL + "/a.txt", srv.URL + "/broken.txt", srv.URL + "/c.txt"},
		DestinationDir: t.TempDir(),
		Workers:        1,
		Renderer:       display,
	})
	require.Error(t, runErr)
	require.NoError(t, display.Close())
	assert.Equal(t, 1, out.Failed)

	rows := screen(term.String())
	require.NotEmpty(t, rows)
	assert.Contains(t, rows[0], "3/3")
	for _, r := range rows[1:] {
		assert.Empty(t, r)
	}
	assert.NotContains(t, term.String(), "download failed")

	assert.False(t, gate.Muted(), "closing the display unmutes the console")
	logging.FromContext(ctx).Warn().Msg("after batch")
	assert.Contains(t, term.String(), "after batch")
}

func TestNewDisplay_LogModeKeepsConsole(t *testing.T) {
	gate := logging.NewConsoleGate(&bytes.Buffer{}, zerolog.ErrorLevel)
	app := newTestApp(gate, config.DisplayModeLog)

	display, err := app.NewDisplay(&bytes.Buffer{})
	require.NoError(t, err)
	defer display.Close()

	assert.False(t, gate.Muted())
}
