package main

import (
	"os"
	"strings"

	"formbuilder/internal/cli"
)

func isGestureScript(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasSuffix(s, ".jsonl") && len(s) > len(".jsonl")
}

// rewriteScriptArgs turns `formbuilder [flags] drag.jsonl` into
// `formbuilder [flags] gesture replay drag.jsonl`.
//
// Cobra treats the first non-flag token as a subcommand, so argv is rewritten before
// parsing. Persistent flags may come first, so the first positional token is located
// while skipping flag values.
func rewriteScriptArgs(argv []string) []string {
	if len(argv) < 2 {
		return argv
	}
	valueFlags := map[string]bool{
		"--seed":   true,
		"--config": true,
		"--format": true,
	}

	replay := func(i int) []string {
		out := make([]string, 0, len(argv)+2)
		out = append(out, argv[:i]...)
		out = append(out, "gesture", "replay")
		return append(out, argv[i:]...)
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			if i+1 < len(argv) && isGestureScript(argv[i+1]) {
				return replay(i + 1)
			}
			return argv
		}
		if strings.HasPrefix(a, "-") {
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++
			}
			continue
		}
		if isGestureScript(a) {
			return replay(i)
		}
		return argv
	}
	return argv
}

func main() {
	os.Args = rewriteScriptArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
