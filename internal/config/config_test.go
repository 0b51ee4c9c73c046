package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for explicitly named missing config file")
	}

	// Without an explicit path a missing file falls back to defaults.
	cwd, _ := os.Getwd()
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(cwd)

	s, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Storm.Bin != "storm" {
		t.Errorf("storm.bin = %q, want %q", s.Storm.Bin, "storm")
	}
	if s.Java.Bin != "java" {
		t.Errorf("java.bin = %q, want %q", s.Java.Bin, "java")
	}
	if want := filepath.Join(os.TempDir(), "petrel"); s.Cache.Dir != want {
		t.Errorf("cache.dir = %q, want %q", s.Cache.Dir, want)
	}
	if s.Build.Command == "" || s.UI.Port != 8080 || s.UI.Scheme != "http" {
		t.Errorf("unexpected defaults: %+v", s)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "petrel.yaml")
	content := "storm:\n  bin: /opt/storm/bin/storm\ncache:\n  dir: /var/cache/petrel\nui:\n  port: 8744\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Storm.Bin != "/opt/storm/bin/storm" {
		t.Errorf("storm.bin = %q", s.Storm.Bin)
	}
	if s.Cache.Dir != "/var/cache/petrel" {
		t.Errorf("cache.dir = %q", s.Cache.Dir)
	}
	if s.UI.Port != 8744 {
		t.Errorf("ui.port = %d", s.UI.Port)
	}
	// Untouched keys keep their defaults.
	if s.Java.Bin != "java" {
		t.Errorf("java.bin = %q, want default", s.Java.Bin)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("PETREL_STORM_BIN", "storm-0.9")
	t.Setenv("PETREL_BUILD_COMMAND", "mvn -q -Dstorm_version={version} package")

	cwd, _ := os.Getwd()
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(cwd)

	s, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Storm.Bin != "storm-0.9" {
		t.Errorf("storm.bin = %q, want env override", s.Storm.Bin)
	}
	if s.Build.Command != "mvn -q -Dstorm_version={version} package" {
		t.Errorf("build.command = %q, want env override", s.Build.Command)
	}
}
