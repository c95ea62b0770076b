package hook

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeHook creates dir/name/hook.json with the given manifest.
func writeHook(t *testing.T, dir string, m Manifest) string {
	t.Helper()
	hookDir := filepath.Join(dir, m.Name)
	if err := os.MkdirAll(hookDir, 0755); err != nil {
		t.Fatalf("failed to create hook dir: %v", err)
	}
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("failed to marshal manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(hookDir, ManifestFile), data, 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	return hookDir
}

func TestManager_Discover(t *testing.T) {
	tmpDir := t.TempDir()
	hookDir := writeHook(t, tmpDir, Manifest{
		Name:        "notify",
		Version:     "1.0.0",
		Description: "Desktop notification",
		Executable:  "notify",
		Events:      []string{EventGameOver},
	})

	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	hooks := manager.List()
	if len(hooks) != 1 {
		t.Fatalf("expected 1 hook, got %d", len(hooks))
	}

	h := hooks[0]
	if h.Manifest.Name != "notify" {
		t.Errorf("expected hook name 'notify', got %q", h.Manifest.Name)
	}
	if h.Path != hookDir {
		t.Errorf("expected path %q, got %q", hookDir, h.Path)
	}
	if h.Executable != filepath.Join(hookDir, "notify") {
		t.Errorf("expected executable under hook dir, got %q", h.Executable)
	}
	if !h.Wants(EventGameOver) {
		t.Error("hook should want game_over")
	}
	if h.Wants("post_created") {
		t.Error("hook should not want an event it did not list")
	}
}

func TestManager_Discover_SkipsBadManifests(t *testing.T) {
	tmpDir := t.TempDir()
	writeHook(t, tmpDir, Manifest{Name: "good", Executable: "run", Events: []string{EventGameOver}})
	writeHook(t, tmpDir, Manifest{Name: "no-exec", Events: []string{EventGameOver}})

	badDir := filepath.Join(tmpDir, "broken")
	if err := os.MkdirAll(badDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(badDir, ManifestFile), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(tmpDir, "empty"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "stray-file"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	hooks := manager.List()
	if len(hooks) != 1 || hooks[0].Manifest.Name != "good" {
		t.Errorf("expected only the valid hook, got %d hooks", len(hooks))
	}
}

func TestManager_Discover_NonExistentDir(t *testing.T) {
	manager := NewManager(filepath.Join(t.TempDir(), "missing"))
	if err := manager.Discover(); err != nil {
		t.Errorf("Discover() on a missing dir should not fail: %v", err)
	}
	if len(manager.List()) != 0 {
		t.Error("expected no hooks")
	}
}

func TestManager_GetAndSubscribers(t *testing.T) {
	tmpDir := t.TempDir()
	writeHook(t, tmpDir, Manifest{Name: "b-hook", Executable: "run", Events: []string{EventGameOver}})
	writeHook(t, tmpDir, Manifest{Name: "a-hook", Executable: "run", Events: []string{EventGameOver, "other"}})
	writeHook(t, tmpDir, Manifest{Name: "c-hook", Executable: "run", Events: []string{"other"}})

	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	if _, err := manager.Get("a-hook"); err != nil {
		t.Errorf("Get(a-hook) error = %v", err)
	}
	if _, err := manager.Get("missing"); !errors.Is(err, ErrHookNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrHookNotFound", err)
	}

	subs := manager.Subscribers(EventGameOver)
	if len(subs) != 2 {
		t.Fatalf("expected 2 subscribers, got %d", len(subs))
	}
	if subs[0].Manifest.Name != "a-hook" || subs[1].Manifest.Name != "b-hook" {
		t.Errorf("subscribers not sorted by name: %s, %s", subs[0].Manifest.Name, subs[1].Manifest.Name)
	}
	if manager.Dir() != tmpDir {
		t.Errorf("Dir() = %q, want %q", manager.Dir(), tmpDir)
	}
}
