package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/localrivet/clustersummary/internal/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		configPath = ""
	}()
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"summarize", "batch", "evaluate", "serve", "http", "config"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestEvaluateCommand(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "none.json")
	out, err := execute(t, "evaluate", "--config", missing,
		"--candidate", "the cat sat on the mat",
		"--reference", "the cat sat on the mat")
	if err != nil {
		t.Fatalf("evaluate error = %v", err)
	}
	if strings.TrimSpace(out) != "1.0000" {
		t.Errorf("evaluate output = %q, want 1.0000", out)
	}
}

func TestSummarizeCommand(t *testing.T) {
	dir := t.TempDir()
	vectors := filepath.Join(dir, "vectors.txt")
	if err := os.WriteFile(vectors, []byte("cat 1 0\nmat 1 0\ndogs 0 1\nbark 0 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg := config.NewConfig()
	cfg.Vectors.Path = vectors
	cfg.Vectors.Dimension = 2
	cfg.Preprocess.Tokenizer = "regex"
	cfg.Logging.Level = "disabled"
	cfgPath := filepath.Join(dir, "config.json")
	if err := cfg.SaveToFile(cfgPath); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "summarize", "--config", cfgPath,
		"The cat lay on the mat. Dogs bark at every cat. The mat is soft and warm. Dogs bark all night long.")
	if err != nil {
		t.Fatalf("summarize error = %v", err)
	}
	if !strings.Contains(out, "The cat lay on the mat.") {
		t.Errorf("summarize output = %q", out)
	}
}

func TestConfigInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.json")
	if _, err := execute(t, "config", "init", path); err != nil {
		t.Fatalf("config init error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if !strings.Contains(string(data), "short_sentence_tokens") {
		t.Errorf("config file missing keys:\n%s", data)
	}
}
