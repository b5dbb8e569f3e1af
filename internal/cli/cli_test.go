package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ppiankov/wikitopics/internal/model"
)

func TestLoadConfig_Defaults(t *testing.T) {
	v := viper.New()
	if err := setDefaults(v, defaultsForTest()); err != nil {
		t.Fatalf("setDefaults failed: %v", err)
	}

	cfg, err := loadConfig(v)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.HTTP.Timeout != 30*time.Second {
		t.Errorf("timeout = %v", cfg.HTTP.Timeout)
	}
	if cfg.Collect.Threshold != 10 || cfg.Collect.MaxDepth != 2 {
		t.Errorf("collect = %+v", cfg.Collect)
	}
	if len(cfg.Collect.Seeds) != 2 {
		t.Errorf("seeds = %v", cfg.Collect.Seeds)
	}
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "collect:\n  threshold: -1\n  seeds:\n    - Category:Space opera novels\nhttp:\n  timeout: 5s\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WIKITOPICS_COLLECT_MAX_DEPTH", "4")

	v := viper.New()
	if err := setDefaults(v, defaultsForTest()); err != nil {
		t.Fatal(err)
	}
	v.SetConfigFile(path)
	v.SetEnvPrefix("WIKITOPICS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig failed: %v", err)
	}

	cfg, err := loadConfig(v)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.Collect.Threshold != -1 {
		t.Errorf("threshold = %d", cfg.Collect.Threshold)
	}
	if cfg.Collect.MaxDepth != 4 {
		t.Errorf("max depth from env = %d", cfg.Collect.MaxDepth)
	}
	if len(cfg.Collect.Seeds) != 1 || cfg.Collect.Seeds[0] != "Category:Space opera novels" {
		t.Errorf("seeds = %v", cfg.Collect.Seeds)
	}
	if cfg.HTTP.Timeout != 5*time.Second {
		t.Errorf("timeout = %v", cfg.HTTP.Timeout)
	}
	if cfg.Normalize.MinLength != 3 {
		t.Errorf("untouched keys should keep defaults, min length = %d", cfg.Normalize.MinLength)
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	if err := writeDefaultConfig(path); err != nil {
		t.Fatalf("writeDefaultConfig failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"# wikitopics configuration file", "threshold: 10", "base_url: https://en.wikipedia.org"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("config missing %q", want)
		}
	}

	if err := writeDefaultConfig(path); err == nil {
		t.Error("expected refusal to overwrite")
	}
}

func TestApplyWalkFlags(t *testing.T) {
	file := filepath.Join(t.TempDir(), "seeds.txt")
	if err := os.WriteFile(file, []byte("# seeds\nCategory:A\n\nCategory:B\nCategory:A\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := harvestCmd.Flags().Parse([]string{"--seeds-file", file, "--threshold=-1", "--workers", "3", "--no-robots"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	t.Cleanup(func() {
		seedsFile, noRobots = "", false
		harvestCmd.Flags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
	})

	cfg := defaultsForTest()
	if err := applyWalkFlags(harvestCmd, cfg); err != nil {
		t.Fatalf("applyWalkFlags failed: %v", err)
	}

	if strings.Join(cfg.Collect.Seeds, ",") != "Category:A,Category:B" {
		t.Errorf("seeds = %v", cfg.Collect.Seeds)
	}
	if cfg.Collect.Threshold != -1 || cfg.Collect.MaxDepth != 2 {
		t.Errorf("collect = %+v", cfg.Collect)
	}
	if cfg.Concurrency.Workers != 3 || cfg.Wiki.RespectRobots {
		t.Errorf("workers/robots not applied: %+v %+v", cfg.Concurrency, cfg.Wiki)
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)
	if !strings.HasPrefix(out.String(), "wikitopics v") {
		t.Errorf("unexpected version output: %q", out.String())
	}
}

func defaultsForTest() *model.Config {
	return model.DefaultConfig()
}
