package main

import (
	"log/slog"
	"os"
	"strings"

	"jobtrack/internal/cli"
	"jobtrack/internal/store"

	"github.com/joho/godotenv"
)

func rewriteDirectAppLookupArgs(argv []string) []string {
	// `jobtrack <app-id>` works like `jobtrack apps show <app-id>`.
	//
	// Cobra treats the first non-flag token as a subcommand, so argv is rewritten before
	// parsing. Persistent flags often come first, so look for the first positional token.
	if len(argv) < 2 {
		return argv
	}

	// Unknown flags are skipped without consuming a value so the id is never swallowed.
	valueFlags := map[string]bool{
		"--dir":    true,
		"--user":   true,
		"--server": true,
		"--format": true,
	}
	boolFlags := map[string]bool{
		"--pretty": true,
	}

	insert := func(i int) []string {
		out := make([]string, 0, len(argv)+2)
		out = append(out, argv[:i]...)
		out = append(out, "apps", "show")
		return append(out, argv[i:]...)
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			if i+1 < len(argv) && store.LooksLikeApplicationID(argv[i+1]) {
				return insert(i + 1)
			}
			return argv
		}
		if strings.HasPrefix(a, "-") {
			if strings.Contains(a, "=") || boolFlags[a] {
				continue
			}
			if valueFlags[a] {
				i++
			}
			continue
		}
		if store.LooksLikeApplicationID(a) {
			return insert(i)
		}
		return argv
	}
	return argv
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if strings.TrimSpace(os.Getenv("JOBTRACK_DEBUG")) != "" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func main() {
	// A missing .env is fine; real environment variables win over it.
	_ = godotenv.Load()

	os.Args = rewriteDirectAppLookupArgs(os.Args)

	cmd := cli.NewRootCmd(cli.WithLogger(newLogger()))
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
