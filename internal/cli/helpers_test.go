package cli

import (
	"io"
	"log/slog"
	"path/filepath"
	"strings"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var (
	worldContent  = filepath.Join("..", "content", "testdata", "world.yaml")
	brokenContent = filepath.Join("..", "content", "testdata", "broken.yaml")
	harborContent = filepath.Join("..", "harness", "testdata", "content", "harbor.yaml")
	scenarioDir   = filepath.Join("..", "harness", "testdata", "scenarios")
	goldenDir     = filepath.Join("..", "harness", "testdata", "golden")
)

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}
