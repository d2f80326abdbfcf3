package source

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// makeDataDir creates <root>/projects/<project>/<session>.jsonl files.
func makeDataDir(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, body := range files {
		path := filepath.Join(root, "projects", rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.MkdirAll(filepath.Join(root, "projects"), 0o750); err != nil {
		t.Fatal(err)
	}
	return root
}

func isolateHome(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv(ConfigDirEnv, "")
}

func TestResolveDirs_Explicit(t *testing.T) {
	isolateHome(t)
	a := makeDataDir(t, nil)
	b := makeDataDir(t, nil)

	dirs, err := ResolveDirs([]string{a, b, a}, nil)
	if err != nil {
		t.Fatalf("ResolveDirs: %v", err)
	}
	if len(dirs) != 2 {
		t.Errorf("dirs = %v, want 2 unique", dirs)
	}
}

func TestResolveDirs_ExplicitWithoutProjectsFails(t *testing.T) {
	isolateHome(t)
	// A valid env dir must not be used when the flag points elsewhere.
	t.Setenv(ConfigDirEnv, makeDataDir(t, nil))

	_, err := ResolveDirs([]string{t.TempDir()}, nil)
	if !errors.Is(err, ErrNoDataDirs) {
		t.Fatalf("err = %v, want ErrNoDataDirs", err)
	}
}

func TestResolveDirs_EnvCommaList(t *testing.T) {
	isolateHome(t)
	a := makeDataDir(t, nil)
	b := makeDataDir(t, nil)
	t.Setenv(ConfigDirEnv, " "+a+" ,"+t.TempDir()+", "+b)

	dirs, err := ResolveDirs(nil, []string{makeDataDir(t, nil)})
	if err != nil {
		t.Fatalf("ResolveDirs: %v", err)
	}
	if len(dirs) != 2 || dirs[0] != a || dirs[1] != b {
		t.Errorf("dirs = %v, want [%s %s]", dirs, a, b)
	}
}

func TestResolveDirs_ConfiguredThenDefaults(t *testing.T) {
	isolateHome(t)
	cfgDir := makeDataDir(t, nil)

	dirs, err := ResolveDirs(nil, []string{cfgDir})
	if err != nil || len(dirs) != 1 || dirs[0] != cfgDir {
		t.Fatalf("configured: dirs = %v err = %v", dirs, err)
	}

	legacy := filepath.Join(os.Getenv("HOME"), ".claude", "projects")
	if err := os.MkdirAll(legacy, 0o750); err != nil {
		t.Fatal(err)
	}
	dirs, err = ResolveDirs(nil, nil)
	if err != nil || len(dirs) != 1 || dirs[0] != filepath.Dir(legacy) {
		t.Fatalf("defaults: dirs = %v err = %v", dirs, err)
	}
}

func TestResolveDirs_NothingFound(t *testing.T) {
	isolateHome(t)
	if _, err := ResolveDirs(nil, nil); !errors.Is(err, ErrNoDataDirs) {
		t.Fatalf("err = %v, want ErrNoDataDirs", err)
	}
}

func TestScanDirs(t *testing.T) {
	root := makeDataDir(t, map[string]string{
		"-Users-alice-projects-gitlore/aaa.jsonl":    "",
		"-Users-alice-projects-gitlore/bbb.jsonl":    "",
		"-home-bob-code-my-cool-project/ccc.jsonl":   "",
		"-home-bob-code-my-cool-project/notes.txt":   "",
		"-home-bob-code-my-cool-project/ccc/x.jsonl": "",
	})

	files, err := ScanDirs([]string{root})
	if err != nil {
		t.Fatalf("ScanDirs: %v", err)
	}
	if len(files) != 4 {
		t.Fatalf("files = %d, want 4", len(files))
	}
	for i := 1; i < len(files); i++ {
		if files[i-1].Path > files[i].Path {
			t.Errorf("files not sorted: %s before %s", files[i-1].Path, files[i].Path)
		}
	}

	byID := make(map[string]DiscoveredFile)
	for _, f := range files {
		byID[f.SessionID] = f
	}
	if got := byID["aaa"].Project; got != "gitlore" {
		t.Errorf("aaa project = %q, want gitlore", got)
	}
	if got := byID["x"].Project; got != "my-cool-project" {
		t.Errorf("x project = %q, want my-cool-project", got)
	}
	if n := CountProjects(files); n != 2 {
		t.Errorf("CountProjects = %d, want 2", n)
	}
}

func TestScanDir_MissingProjects(t *testing.T) {
	if _, err := ScanDir(t.TempDir()); err == nil {
		t.Fatal("expected error for dir without projects/")
	}
}

func TestDecodeProjectName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"-Users-alice-projects-gitlore", "gitlore"},
		{"-Users-alice-projects-my-cool-project", "my-cool-project"},
		{"-home-bob-src-api", "api"},
		{"-tmp-scratch", "scratch"},
		{"", "unknown"},
	}
	for _, tt := range tests {
		if got := decodeProjectName(tt.in); got != tt.want {
			t.Errorf("decodeProjectName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
