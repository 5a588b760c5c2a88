package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, path string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--backend", "file", "--storage-path", path}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestPatientLifecycle(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")
	path := filepath.Join(t.TempDir(), "storage.json")

	out, err := run(t, path, "add", "--name", "Jane Doe", "--age", "54", "--email", "jane@example.com",
		"--problem", "Glaucoma", "--severity", "Critical")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !strings.HasPrefix(out, "Added patient ") {
		t.Fatalf("unexpected add output %q", out)
	}
	id := strings.TrimSpace(strings.TrimPrefix(out, "Added patient "))

	out, err = run(t, path, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "Jane Doe") || !strings.Contains(out, id) {
		t.Fatalf("list should show the patient, got %q", out)
	}

	out, err = run(t, path, "update", id, "--status", "Treated")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !strings.Contains(out, `"status": "Treated"`) || !strings.Contains(out, `"name": "Jane Doe"`) {
		t.Fatalf("update should merge fields, got %q", out)
	}

	out, err = run(t, path, "stats")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !strings.Contains(out, "Treated    1") || !strings.Contains(out, "Critical   1") {
		t.Fatalf("unexpected stats %q", out)
	}

	out, _ = run(t, path, "search", "GLAUC")
	if !strings.Contains(out, id) {
		t.Fatalf("search should match the problem, got %q", out)
	}

	if _, err := run(t, path, "delete", id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := run(t, path, "get", id); err == nil {
		t.Fatalf("expected get of a deleted patient to fail")
	}
	out, _ = run(t, path, "list")
	if !strings.Contains(out, "No patients found") {
		t.Fatalf("expected empty list, got %q", out)
	}
}

func TestUpdateNeedsAField(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")
	path := filepath.Join(t.TempDir(), "storage.json")
	if _, err := run(t, path, "update", "abc"); err == nil || !strings.Contains(err.Error(), "nothing to update") {
		t.Fatalf("expected nothing-to-update error, got %v", err)
	}
}

func TestAddRequiresName(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")
	path := filepath.Join(t.TempDir(), "storage.json")
	if _, err := run(t, path, "add", "--age", "40"); err == nil {
		t.Fatalf("expected add without --name to fail")
	}
}

func TestSeedOnlyFillsEmptyRegister(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")
	path := filepath.Join(t.TempDir(), "storage.json")
	seed := filepath.Join("..", "..", "pkg", "patients", "testdata", "seed.yaml")

	out, err := run(t, path, "seed", seed)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if out != "Seeded 3 patients\n" {
		t.Fatalf("unexpected seed output %q", out)
	}
	out, _ = run(t, path, "seed", seed)
	if !strings.Contains(out, "nothing seeded") {
		t.Fatalf("second seed should be a no-op, got %q", out)
	}
}

func TestSeedReportsEmptyFile(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")
	dir := t.TempDir()
	seed := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(seed, []byte("patients: []\n"), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	out, err := run(t, filepath.Join(dir, "storage.json"), "seed", seed)
	if err == nil || !strings.Contains(err.Error(), "seed file has no patients") {
		t.Fatalf("expected empty seed error, got %v", err)
	}
	if strings.Contains(out, "already has patients") {
		t.Fatalf("empty seed file reported as populated register: %q", out)
	}
}

func TestUndeclaredSeverityWarns(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")
	path := filepath.Join(t.TempDir(), "storage.json")

	out, err := run(t, path, "add", "--name", "Ray Kim", "--severity", "Urgent")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !strings.Contains(out, `warning: severity "Urgent" is not one of Low, Medium, High, Critical`) {
		t.Fatalf("expected severity warning, got %q", out)
	}
	if !strings.Contains(out, "Added patient ") {
		t.Fatalf("patient should still be added, got %q", out)
	}
	if strings.Contains(out, "warning: status") {
		t.Fatalf("default status should not warn, got %q", out)
	}
}
