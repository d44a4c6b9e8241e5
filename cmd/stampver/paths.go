// cmd/stampver/paths.go
package main

import "path/filepath"

// projectLayout holds the directories the locator searches. The base
// directory is where the build step runs; the solution root is its
// parent.
type projectLayout struct {
	ProjectDir  string
	SolutionDir string
}

// resolveLayout computes the project directory as
// <solution>/<srcDir>/<name> by default, or <solution>/<path> when an
// explicit project path is given. Pure string composition, no
// filesystem access.
func resolveLayout(baseDir, projectName, projectPath, srcDir string) projectLayout {
	solutionDir := filepath.Join(baseDir, "..")
	projectDir := filepath.Join(solutionDir, srcDir, projectName)
	if projectPath != "" {
		projectDir = filepath.Join(solutionDir, projectPath)
	}
	return projectLayout{ProjectDir: projectDir, SolutionDir: solutionDir}
}
