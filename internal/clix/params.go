// Package clix holds flag parsing shared by the CLI commands.
package clix

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
)

const (
	DefaultLimit = 20
	MaxLimit     = 500
)

type PaginationParams struct {
	Limit  int
	Offset int
}

// AddPaginationFlags registers --limit/-n and --offset on flags.
func AddPaginationFlags(flags *pflag.FlagSet) {
	flags.IntP("limit", "n", DefaultLimit, "Maximum number of entries to show")
	flags.Int("offset", 0, "Number of entries to skip")
}

func ParsePagination(flags *pflag.FlagSet) (PaginationParams, error) {
	limit, err := flags.GetInt("limit")
	if err != nil {
		limit = DefaultLimit
	}
	offset, _ := flags.GetInt("offset")
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		return PaginationParams{}, fmt.Errorf("--limit must be at most %d", MaxLimit)
	}
	if offset < 0 {
		return PaginationParams{}, fmt.Errorf("--offset must not be negative")
	}
	return PaginationParams{Limit: limit, Offset: offset}, nil
}

// ReadPrompts returns the trimmed non-blank lines of r, skipping lines
// starting with '#'.
func ReadPrompts(r io.Reader) ([]string, error) {
	var prompts []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		prompts = append(prompts, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return prompts, nil
}
