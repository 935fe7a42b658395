package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestLoadJSONWithEnv(t *testing.T) {
	t.Setenv("AMBIENCE_TEST_REDIS", "redis://cache:6379/0")
	path := writeFile(t, "ambience.json", `{
		"server": {"port": 9000},
		"world": {"name": "level2", "tick_ms": 50, "cooldown_ticks": 20, "rotation": ["level2_ambience"], "history_size": 50, "played_history_size": 500},
		"redis": {"url": "${AMBIENCE_TEST_REDIS}", "stream": "${AMBIENCE_TEST_STREAM:ambience:sounds}"},
		"sounds": [{"id": "drip", "name": "Drip", "length": 30}],
		"events": [{"name": "drips", "default_duration": 40, "outcomes": [{"name": "drip", "sound": "drip"}]}]
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Redis.URL != "redis://cache:6379/0" {
		t.Errorf("redis url = %q", cfg.Redis.URL)
	}
	if cfg.Redis.Stream != "ambience:sounds" {
		t.Errorf("redis stream = %q, want default", cfg.Redis.Stream)
	}
	if cfg.Server.Port != 9000 || cfg.Server.LogLevel != DefaultLogLevel {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.World.CooldownTicks != 20 || len(cfg.World.Rotation) != 1 ||
		cfg.World.HistorySize != 50 || cfg.World.PlayedHistory != 500 {
		t.Errorf("world = %+v", cfg.World)
	}
	if len(cfg.Events) != 1 || cfg.Events[0].Outcomes[0].Sound != "drip" {
		t.Errorf("events = %+v", cfg.Events)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "ambience.yaml", `
world:
  name: level2
  rotation: [level2_ambience, drips]
events:
  - name: drips
    default_duration: 40
    outcomes:
      - name: drip
        sound: drip
        weight: 3
      - name: splash
        sound: splash
        duration: 90
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.World.TickMillis != DefaultTickMillis || cfg.Server.Port != DefaultPort {
		t.Errorf("defaults not applied: %+v %+v", cfg.World, cfg.Server)
	}
	o := cfg.Events[0].Outcomes
	if len(o) != 2 || o[0].Weight != 3 || o[1].Duration != 90 {
		t.Errorf("outcomes = %+v", o)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := writeFile(t, "bad.json", `{
		"world": {"cooldown_ticks": -1, "played_history_size": -3},
		"events": [{"name": "empty"}, {"name": "empty", "outcomes": [{"name": "x", "sound": "y"}]}]
	}`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"cooldown_ticks", "played_history_size", "no outcomes", "duplicate name"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
