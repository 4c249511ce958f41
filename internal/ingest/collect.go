// Package ingest gathers local PDFs for the command-line batch runner.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/pdf-data-extractor/constants"
	"github.com/joseph-ayodele/pdf-data-extractor/internal/entity"
)

type FileResult struct {
	Path         string
	HashHex      string
	Deduplicated bool
	Err          string
}

type Stats struct {
	Scanned      int
	Matched      int
	Loaded       int
	Deduplicated int
	Failed       int
}

type CollectOptions struct {
	SkipHidden bool
	// Dedupe drops files whose bytes match an earlier file.
	Dedupe bool
}

// Collect loads every PDF named in paths, in argument order. Directories are walked in lexical
// order. Unreadable files are reported in the results and skipped; a missing argument fails.
func Collect(ctx context.Context, paths []string, opts CollectOptions) ([]entity.SourceDocument, []FileResult, Stats, error) {
	var (
		docs    []entity.SourceDocument
		results []FileResult
		stats   Stats
	)
	if len(paths) == 0 {
		return nil, nil, stats, errors.New("no input paths")
	}
	seen := map[string]string{}

	load := func(path string) {
		stats.Matched++
		data, err := os.ReadFile(path)
		if err != nil {
			results = append(results, FileResult{Path: path, Err: err.Error()})
			stats.Failed++
			return
		}
		sum := sha256.Sum256(data)
		h := hex.EncodeToString(sum[:])
		if first, dup := seen[h]; dup && opts.Dedupe {
			results = append(results, FileResult{Path: path, HashHex: h, Deduplicated: true, Err: "same content as " + first})
			stats.Deduplicated++
			return
		}
		seen[h] = path
		docs = append(docs, entity.SourceDocument{Filename: filepath.Base(path), Data: data})
		results = append(results, FileResult{Path: path, HashHex: h})
		stats.Loaded++
	}

	for _, root := range paths {
		if err := ctx.Err(); err != nil {
			return docs, results, stats, err
		}
		info, err := os.Stat(root)
		if err != nil {
			return docs, results, stats, fmt.Errorf("stat %s: %w", root, err)
		}
		if !info.IsDir() {
			stats.Scanned++
			if IsAllowed(root) {
				load(root)
			}
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				results = append(results, FileResult{Path: path, Err: walkErr.Error()})
				stats.Failed++
				return nil
			}
			if opts.SkipHidden && path != root && IsHidden(path) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			stats.Scanned++
			if IsAllowed(path) {
				load(path)
			}
			return ctx.Err()
		})
		if err != nil {
			return docs, results, stats, fmt.Errorf("walk %s: %w", root, err)
		}
	}
	return docs, results, stats, nil
}

// IsAllowed reports whether path has an accepted extension.
func IsAllowed(path string) bool {
	return constants.IsAllowedExt(filepath.Ext(path))
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
