// cmd/stampver/locate_test.go
package main

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Test Helper Functions ---

// setupSolution creates a throwaway solution tree from a map of
// relative paths to contents. Keys ending in a separator become
// directories.
func setupSolution(t *testing.T, structure map[string]string) string {
	t.Helper()
	tempDir := t.TempDir()
	paths := make([]string, 0, len(structure))
	for p := range structure {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, relPath := range paths {
		content := structure[relPath]
		absPath := filepath.Join(tempDir, relPath)
		if strings.HasSuffix(relPath, "/") {
			require.NoError(t, os.MkdirAll(absPath, 0755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(absPath), 0755))
		require.NoError(t, os.WriteFile(absPath, []byte(content), 0644))
	}
	return tempDir
}

func defaultLayout(solutionDir string) projectLayout {
	return resolveLayout(filepath.Join(solutionDir, "build"), "App", "", "src")
}

const goodDeclaration = `[assembly: AssemblyVersion("1.2.3.4")]
[assembly: AssemblyFileVersion("1.2.3.4")]
`

// --- Tests ---

func TestLocateVersionFile_PropertiesFirst(t *testing.T) {
	solution := setupSolution(t, map[string]string{
		"build/":                             "",
		"src/App/Properties/AssemblyInfo.cs": goodDeclaration,
		"AssemblyInfo.cs":                    goodDeclaration,
	})

	located, err := locateVersionFile(defaultLayout(solution), defaultConfig)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(solution, "src", "App", "Properties", "AssemblyInfo.cs"), located.Path)
	assert.Equal(t, goodDeclaration, located.Content)
}

// Candidate order outranks location: GlobalAssemblyInfo at the solution
// root wins over a plain AssemblyInfo under Properties.
func TestLocateVersionFile_CandidateOrderIsAuthority(t *testing.T) {
	solution := setupSolution(t, map[string]string{
		"build/":                             "",
		"GlobalAssemblyInfo.cs":              goodDeclaration,
		"src/App/Properties/AssemblyInfo.cs": goodDeclaration,
	})

	located, err := locateVersionFile(defaultLayout(solution), defaultConfig)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(solution, "GlobalAssemblyInfo.cs"), located.Path)
}

func TestLocateVersionFile_ContentProbeRejects(t *testing.T) {
	solution := setupSolution(t, map[string]string{
		"build/":                             "",
		"GlobalAssemblyInfo.cs":              "// nothing version-shaped here\n",
		"src/App/Properties/AssemblyInfo.cs": goodDeclaration,
	})

	located, err := locateVersionFile(defaultLayout(solution), defaultConfig)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(solution, "src", "App", "Properties", "AssemblyInfo.cs"), located.Path)
}

func TestLocateVersionFile_NothingFound(t *testing.T) {
	solution := setupSolution(t, map[string]string{
		"build/":                 "",
		"src/App/Properties/":    "",
		"src/App/Program.cs":     "class Program {}",
		"notes/AssemblyInfo.txt": goodDeclaration, // wrong extension, wrong place
	})

	_, err := locateVersionFile(defaultLayout(solution), defaultConfig)
	assert.ErrorIs(t, err, errNoVersionFile)
}

func TestLocateVersionFile_ExplicitProjectPath(t *testing.T) {
	solution := setupSolution(t, map[string]string{
		"build/":                                  "",
		"modules/Core/Properties/AssemblyInfo.cs": goodDeclaration,
	})
	layout := resolveLayout(filepath.Join(solution, "build"), "App", "modules/Core", "src")

	located, err := locateVersionFile(layout, defaultConfig)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(solution, "modules", "Core", "Properties", "AssemblyInfo.cs"), located.Path)
}

func TestLocateVersionFile_ConfiguredExtension(t *testing.T) {
	solution := setupSolution(t, map[string]string{
		"build/":                             "",
		"src/App/Properties/AssemblyInfo.vb": goodDeclaration,
	})
	cfg := defaultConfig
	cfg.Extension = func(s string) *string { return &s }("vb")

	located, err := locateVersionFile(defaultLayout(solution), cfg)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(solution, "src", "App", "Properties", "AssemblyInfo.vb"), located.Path)

	_, err = locateVersionFile(defaultLayout(solution), defaultConfig)
	assert.ErrorIs(t, err, errNoVersionFile)
}

func TestScanForVersionFile_FindsNestedCandidate(t *testing.T) {
	solution := setupSolution(t, map[string]string{
		"build/":                            "",
		"legacy/Lib/Shared/AssemblyInfo.cs": goodDeclaration,
		"legacy/Lib/Shared/Helper.cs":       "class Helper {}",
		"src/App/Program.cs":                "class Program {}",
	})

	located, err := scanForVersionFile(defaultLayout(solution), defaultConfig)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(solution, "legacy", "Lib", "Shared", "AssemblyInfo.cs"), located.Path)
	assert.Equal(t, goodDeclaration, located.Content)
}

func TestScanForVersionFile_NothingToDiscover(t *testing.T) {
	solution := setupSolution(t, map[string]string{
		"build/":             "",
		"src/App/Program.cs": "class Program {}",
	})

	_, err := scanForVersionFile(defaultLayout(solution), defaultConfig)
	assert.ErrorIs(t, err, errNoVersionFile)
}

func TestCandidateFilenames_Order(t *testing.T) {
	names := candidateFilenames(defaultConfig)
	assert.Equal(t, []string{
		"GlobalAssemblyInfo.cs",
		"AssemblyInfo.cs",
		"AssemblyCommonInfo.cs",
		"AssemblyInfo.Common.cs",
	}, names)
}
