// cmd/stampver/main.go
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	pflag "github.com/spf13/pflag"
)

const toolVersion = "0.3.0"

// Exit codes are part of the CI contract: 1 and 2 are reserved for the
// two recognized failure modes, everything else unexpected exits 3.
const (
	exitOK                   = 0
	exitNoVersionFile        = 1
	exitPatternNotRecognized = 2
	exitFailure              = 3
)

// --- Global Variables for Flags ---
var (
	baseDirFlagValue    string
	projectName         string
	projectPath         string
	buildMajor          int
	buildMinor          int
	buildNumber         int
	buildRevision       int
	forceZeros          bool
	skipAssemblyVersion bool
	skipFileVersion     bool
	skipTeamCity        bool
	versionOutputFile   string
	scanFallback        bool
	dryRun              bool
	envFileFlag         string
	logLevelStr         string
	configFileFlag      string
	versionFlag         bool
)

func init() {
	pflag.StringVarP(&baseDirFlagValue, "directory", "d", ".", "Base directory the build step runs from.")
	pflag.StringVarP(&projectName, "project-name", "n", "App", "Project name; selects <solution>/src/<name>.")
	pflag.StringVarP(&projectPath, "project-path", "p", "", "Explicit project path relative to the solution root (overrides --project-name).")
	pflag.IntVar(&buildMajor, "build-major", -1, "Override major component when > 0.")
	pflag.IntVar(&buildMinor, "build-minor", -1, "Override minor component when > 0.")
	pflag.IntVar(&buildNumber, "build-number", -1, "Build component: 0 recomputes the day count, > 0 sets it, < 0 keeps the extracted value.")
	pflag.IntVar(&buildRevision, "build-revision", 0, "Revision component: > 0 sets it, otherwise the extracted revision is kept.")
	pflag.BoolVar(&forceZeros, "force-zeros", false, "Render major/minor/build as 0; only the revision is kept.")
	pflag.BoolVar(&skipAssemblyVersion, "skip-assembly-version", false, "Leave AssemblyVersion declarations untouched.")
	pflag.BoolVar(&skipFileVersion, "skip-assembly-file-version", false, "Leave AssemblyFileVersion declarations untouched.")
	pflag.BoolVar(&skipTeamCity, "skip-teamcity", false, "Do not emit the TeamCity buildNumber service message.")
	pflag.StringVarP(&versionOutputFile, "version-output-file", "o", "version.txt", "File whose version= token is patched, if it exists.")
	pflag.BoolVar(&scanFallback, "scan", false, "When the fixed candidate search misses, scan the solution tree for a version file.")
	pflag.BoolVar(&dryRun, "dry-run", false, "Compute and report the version without writing any file.")
	pflag.StringVar(&envFileFlag, "env-file", "", "Dotenv file to load before reading BUILD_NUMBER from the environment.")
	pflag.StringVar(&logLevelStr, "loglevel", "info", "Set logging verbosity (debug, info, warn, error).")
	pflag.StringVarP(&configFileFlag, "config", "c", "", "Path to a custom configuration file.")
	pflag.BoolVarP(&versionFlag, "version", "v", false, "Print version and exit.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: %s [flags]

Stamp assembly version metadata during a CI build.

Locates the project's assembly metadata file, merges the extracted
version with the overrides given below, rewrites the declarations in
place, patches a version= token in the output file if present, and
reports the result to TeamCity.

Flags:
`, os.Args[0])
		pflag.PrintDefaults()
	}
}

// --- Main Execution ---
func main() {
	pflag.Parse()

	if versionFlag {
		fmt.Printf("stampver version %s\n", toolVersion)
		os.Exit(exitOK)
	}

	// Setup Logging. Stdout stays reserved for the service message.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(logLevelStr)); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid log level %q, defaulting to 'info'.\n", logLevelStr)
		logLevel = slog.LevelInfo
	}
	logOpts := &slog.HandlerOptions{Level: logLevel, AddSource: logLevel <= slog.LevelDebug}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, logOpts)))

	// Load Configuration
	appConfig, loadErr := loadConfig(configFileFlag)
	if loadErr != nil {
		slog.Error("Failed to load configuration, using defaults.", "error", loadErr)
		appConfig = defaultConfig
	}

	// Resolve Directories
	baseDir, err := filepath.Abs(baseDirFlagValue)
	if err != nil {
		slog.Error("Could not determine absolute base directory.", "path", baseDirFlagValue, "error", err)
		fmt.Fprintf(os.Stderr, "Error: Invalid base directory '%s': %v\n", baseDirFlagValue, err)
		os.Exit(exitFailure)
	}
	layout := resolveLayout(baseDir, projectName, projectPath, *appConfig.SrcDir)
	slog.Debug("Resolved project layout.", "project_dir", layout.ProjectDir, "solution_dir", layout.SolutionDir)

	// Locate the Version File
	located, locErr := locateVersionFile(layout, appConfig)
	if locErr != nil && scanFallback && errors.Is(locErr, errNoVersionFile) {
		slog.Info("Fixed candidate search missed, scanning solution tree.", "root", layout.SolutionDir)
		located, locErr = scanForVersionFile(layout, appConfig)
	}
	if locErr != nil {
		slog.Error("No version file located.", "project_dir", layout.ProjectDir, "solution_dir", layout.SolutionDir, "error", locErr)
		fmt.Fprintf(os.Stderr, "Error: %v\n", locErr)
		if errors.Is(locErr, errNoVersionFile) {
			os.Exit(exitNoVersionFile)
		}
		os.Exit(exitFailure)
	}

	// Extract the Current Version
	now := time.Now()
	extracted, extErr := extractVersion(located.Content, now)
	if extErr != nil {
		slog.Error("Version declaration not recognized.", "path", located.Path, "error", extErr)
		fmt.Fprintf(os.Stderr, "Error: %v: %s\n", extErr, located.Path)
		os.Exit(exitPatternNotRecognized)
	}
	slog.Debug("Extracted version.", "path", located.Path, "version", extracted.String())

	// Determine the Revision Override (flag beats environment)
	revision := buildRevision
	if !pflag.CommandLine.Changed("build-revision") {
		if counter := ciBuildCounter(envFileFlag); counter > 0 {
			slog.Debug("Using CI build counter as revision.", "counter", counter)
			revision = counter
		}
	}

	// Compose the Final Version
	final := composeVersion(extracted, Overrides{
		Major:      buildMajor,
		Minor:      buildMinor,
		Build:      buildNumber,
		Revision:   revision,
		ForceZeros: forceZeros,
	}, now)
	version := final.String()
	slog.Info("Composed version.", "extracted", extracted.String(), "version", version)

	// Rewrite the Metadata File
	if skipAssemblyVersion && skipFileVersion {
		slog.Info("Both declaration updates suppressed, leaving metadata file untouched.", "path", located.Path)
	} else if err := writeVersionFile(located, version, !skipAssemblyVersion, !skipFileVersion, dryRun); err != nil {
		slog.Error("Failed to rewrite metadata file.", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitFailure)
	}

	// Patch the Version Output File (best effort by design)
	if err := patchOutputFile(versionOutputFile, baseDir, layout.SolutionDir, version, dryRun); err != nil {
		slog.Error("Failed to patch version output file.", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitFailure)
	}

	// Notify the CI Host
	if !skipTeamCity {
		reportBuildNumber(os.Stdout, version)
	}

	slog.Debug("Execution finished.")
}
