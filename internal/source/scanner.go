package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoDataDirs is returned when no Claude data directory with a projects/ folder exists.
var ErrNoDataDirs = errors.New("no Claude data directories found")

// ConfigDirEnv lists Claude data directories, comma separated.
const ConfigDirEnv = "CLAUDE_CONFIG_DIR"

// ResolveDirs picks the Claude data directories to read.
//
// Precedence: explicit (flags), then CLAUDE_CONFIG_DIR, then configured
// (config file), then ~/.config/claude and ~/.claude. Only directories
// containing projects/ qualify. Duplicates are dropped.
func ResolveDirs(explicit, configured []string) ([]string, error) {
	candidates := [][]string{
		explicit,
		splitEnvDirs(os.Getenv(ConfigDirEnv)),
		configured,
		defaultDirs(),
	}

	for _, group := range candidates {
		if len(group) == 0 {
			continue
		}
		if dirs := qualifying(group); len(dirs) > 0 {
			return dirs, nil
		}
		// An explicit choice that matches nothing must not fall through to
		// someone else's logs.
		if len(explicit) > 0 {
			break
		}
	}
	return nil, ErrNoDataDirs
}

func splitEnvDirs(v string) []string {
	var dirs []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			dirs = append(dirs, p)
		}
	}
	return dirs
}

func defaultDirs() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = filepath.Join(home, ".config")
	}
	return []string{
		filepath.Join(configHome, "claude"),
		filepath.Join(home, ".claude"),
	}
}

func qualifying(dirs []string) []string {
	seen := make(map[string]struct{}, len(dirs))
	var out []string
	for _, d := range dirs {
		d = expandHome(d)
		clean := filepath.Clean(d)
		if _, dup := seen[clean]; dup {
			continue
		}
		seen[clean] = struct{}{}
		if info, err := os.Stat(filepath.Join(clean, "projects")); err == nil && info.IsDir() {
			out = append(out, clean)
		}
	}
	return out
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

// ScanDirs discovers the JSONL session files under each dir's projects/ folder.
// Files are returned sorted by path so load order is stable.
func ScanDirs(dirs []string) ([]DiscoveredFile, error) {
	var files []DiscoveredFile
	for _, dir := range dirs {
		found, err := ScanDir(dir)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// ScanDir walks one Claude data directory and discovers all JSONL session files.
// Unreadable entries abort the walk.
func ScanDir(claudeDir string) ([]DiscoveredFile, error) {
	projectsDir := filepath.Join(claudeDir, "projects")

	info, err := os.Stat(projectsDir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", projectsDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", projectsDir)
	}

	var files []DiscoveredFile

	err = filepath.WalkDir(projectsDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walking %s: %w", path, err)
		}
		if d.IsDir() || filepath.Ext(path) != ".jsonl" {
			return nil
		}

		rel, _ := filepath.Rel(projectsDir, path)
		parts := strings.Split(rel, string(filepath.Separator))

		// Logs sitting directly in projects/ have no project directory.
		projectDir := ""
		if len(parts) >= 2 {
			projectDir = parts[0]
		}

		files = append(files, DiscoveredFile{
			Path:       path,
			Project:    decodeProjectName(projectDir),
			ProjectDir: projectDir,
			SessionID:  strings.TrimSuffix(d.Name(), ".jsonl"),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

// decodeProjectName extracts a human-readable project name from the encoded directory name.
// Claude Code encodes absolute paths by replacing "/" with "-", so:
//
//	"-Users-alice-projects-gitlore" -> "gitlore"
//	"-Users-alice-projects-my-cool-project" -> "my-cool-project"
//
// We find the last known path component ("projects", "repos", "src", ...)
// and take everything after it. Falls back to the last non-empty segment.
func decodeProjectName(dirName string) string {
	if dirName == "" {
		return "unknown"
	}
	parts := strings.Split(dirName, "-")

	knownParents := map[string]bool{
		"projects": true, "repos": true, "src": true,
		"code": true, "workspace": true, "dev": true,
	}

	for i := len(parts) - 2; i >= 0; i-- {
		if knownParents[strings.ToLower(parts[i])] {
			if name := strings.Join(parts[i+1:], "-"); name != "" {
				return name
			}
		}
	}

	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] != "" {
			return parts[i]
		}
	}

	return dirName
}

// CountProjects returns the number of unique projects in a set of discovered files.
func CountProjects(files []DiscoveredFile) int {
	seen := make(map[string]struct{})
	for _, f := range files {
		seen[f.ProjectDir] = struct{}{}
	}
	return len(seen)
}
