// cmd/stampver/locate.go
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	gocodewalker "github.com/boyter/gocodewalker"
)

var errNoVersionFile = errors.New("no assembly metadata file with a version declaration found")

// versionProbeRe is the cheap acceptance check: a candidate file counts
// only if it mentions AssemblyVersion somewhere.
var versionProbeRe = regexp.MustCompile(`(?i)AssemblyVersion`)

// locatedFile is the accepted candidate plus its content, so the probe
// read is not repeated downstream.
type locatedFile struct {
	Path    string
	Content string
}

// candidateFilenames expands the configured base names with the
// configured metadata extension, preserving the configured priority
// order.
func candidateFilenames(cfg Config) []string {
	ext := *cfg.Extension
	names := make([]string, 0, len(cfg.CandidateNames))
	for _, base := range cfg.CandidateNames {
		names = append(names, base+"."+ext)
	}
	return names
}

// locateVersionFile tries each candidate filename first under the
// project's properties directory, then at the solution root. The first
// readable file whose content passes the version probe wins; candidate
// order is the authority when several files exist.
func locateVersionFile(layout projectLayout, cfg Config) (locatedFile, error) {
	for _, name := range candidateFilenames(cfg) {
		locations := []string{
			filepath.Join(layout.ProjectDir, *cfg.PropertiesDir, name),
			filepath.Join(layout.SolutionDir, name),
		}
		for _, path := range locations {
			content, err := os.ReadFile(path)
			if err != nil {
				if !errors.Is(err, os.ErrNotExist) {
					slog.Warn("Cannot read candidate file.", "path", path, "error", err)
				}
				continue
			}
			if !versionProbeRe.Match(content) {
				slog.Debug("Candidate lacks a version declaration, skipping.", "path", path)
				continue
			}
			slog.Debug("Accepted version file.", "path", path)
			return locatedFile{Path: path, Content: string(content)}, nil
		}
	}
	return locatedFile{}, errNoVersionFile
}

// scanForVersionFile walks the solution tree looking for any file whose
// basename matches a candidate name and whose content passes the
// version probe. Only used behind --scan when the fixed search order
// comes up empty. The walker honors .gitignore, so generated trees stay
// out of the search.
func scanForVersionFile(layout projectLayout, cfg Config) (locatedFile, error) {
	wanted := make(map[string]struct{})
	for _, name := range candidateFilenames(cfg) {
		wanted[strings.ToLower(name)] = struct{}{}
	}

	fileListQueue := make(chan *gocodewalker.File, 100)
	fileWalker := gocodewalker.NewFileWalker(layout.SolutionDir, fileListQueue)
	fileWalker.SetErrorHandler(func(e error) bool {
		slog.Warn("Error reported by file walker.", "root", layout.SolutionDir, "error", e)
		return true
	})

	var walkErr error
	walkDone := make(chan struct{})
	go func() {
		defer close(walkDone)
		walkErr = fileWalker.Start()
	}()

	var found *locatedFile
	for f := range fileListQueue {
		if found != nil {
			continue // drain so the walker goroutine can finish
		}
		if _, ok := wanted[strings.ToLower(filepath.Base(f.Location))]; !ok {
			continue
		}
		content, err := os.ReadFile(f.Location)
		if err != nil {
			slog.Warn("Cannot read discovered candidate.", "path", f.Location, "error", err)
			continue
		}
		if !versionProbeRe.Match(content) {
			continue
		}
		slog.Info("Discovered version file by scan.", "path", f.Location)
		found = &locatedFile{Path: f.Location, Content: string(content)}
	}
	<-walkDone

	if found != nil {
		return *found, nil
	}
	if walkErr != nil {
		return locatedFile{}, fmt.Errorf("scanning '%s' for version files: %w", layout.SolutionDir, walkErr)
	}
	return locatedFile{}, errNoVersionFile
}
