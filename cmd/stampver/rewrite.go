// cmd/stampver/rewrite.go
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
)

var (
	// Declaration content must be non-empty and free of whitespace;
	// anything else (empty quotes, prose) is left alone. Matching is
	// case-insensitive but the replacement preserves the attribute
	// spelling found in the file.
	assemblyVersionRe     = regexp.MustCompile(`(?i)(AssemblyVersion\(\s*")([^"\s]+)("\s*\))`)
	assemblyFileVersionRe = regexp.MustCompile(`(?i)(AssemblyFileVersion\(\s*")([^"\s]+)("\s*\))`)
	versionTokenRe        = regexp.MustCompile(`version\s*=\s*\S+`)
)

// rewriteDeclarations substitutes the new version into every selected
// declaration and reports whether the content changed.
func rewriteDeclarations(content, version string, updateVersion, updateFileVersion bool) (string, bool) {
	out := content
	if updateVersion {
		out = assemblyVersionRe.ReplaceAllString(out, "${1}"+version+"${3}")
	}
	if updateFileVersion {
		out = assemblyFileVersionRe.ReplaceAllString(out, "${1}"+version+"${3}")
	}
	return out, out != content
}

// writeVersionFile rewrites the located metadata file in place with the
// selected declarations updated. Callers suppress the whole write by
// passing both update flags false; that case never reaches here.
func writeVersionFile(loc locatedFile, version string, updateVersion, updateFileVersion, dryRun bool) error {
	updated, changed := rewriteDeclarations(loc.Content, version, updateVersion, updateFileVersion)
	if !changed {
		slog.Debug("Declarations already carry the target version.", "path", loc.Path)
	}
	if dryRun {
		slog.Info("Dry run: not rewriting metadata file.", "path", loc.Path, "version", version)
		return nil
	}
	if err := os.WriteFile(loc.Path, []byte(updated), 0644); err != nil {
		return fmt.Errorf("rewriting version file '%s': %w", loc.Path, err)
	}
	slog.Info("Rewrote version declarations.", "path", loc.Path, "version", version)
	return nil
}

// replaceFirstVersionToken swaps only the first version=value token,
// normalizing it to version=<new>; the rest of the file is preserved
// byte for byte.
func replaceFirstVersionToken(content, version string) (string, bool) {
	loc := versionTokenRe.FindStringIndex(content)
	if loc == nil {
		return content, false
	}
	return content[:loc[0]] + "version=" + version + content[loc[1]:], true
}

// patchOutputFile resolves outputPath against the working directory and
// then the solution root, and patches the first location that exists.
// The file is reporting output, not build-critical state: missing in
// both places means skip, never create.
func patchOutputFile(outputPath, workDir, solutionDir, version string, dryRun bool) error {
	if outputPath == "" {
		return nil
	}
	for _, dir := range []string{workDir, solutionDir} {
		path := outputPath
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, outputPath)
		}
		content, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("reading version output file '%s': %w", path, err)
		}
		patched, replaced := replaceFirstVersionToken(string(content), version)
		if !replaced {
			slog.Warn("Version output file has no version= token, leaving it untouched.", "path", path)
			return nil
		}
		if dryRun {
			slog.Info("Dry run: not patching version output file.", "path", path, "version", version)
			return nil
		}
		if err := os.WriteFile(path, []byte(patched), 0644); err != nil {
			return fmt.Errorf("patching version output file '%s': %w", path, err)
		}
		slog.Info("Patched version output file.", "path", path, "version", version)
		return nil
	}
	slog.Debug("Version output file not present in either location, skipping.", "path", outputPath)
	return nil
}
