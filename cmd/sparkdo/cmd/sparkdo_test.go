package cmd_test

import (
	"bytes"
	"strings"
	"testing"

	"sparkdo/cmd/sparkdo/cmd"
	"sparkdo/internal/chime"
	"sparkdo/storage"
)

// run executes the CLI against a shared in-memory KV, so state carries
// across invocations like it would across processes on a real backend.
func run(t *testing.T, kv storage.KV, rec *chime.Recorder, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cfg := &cmd.Config{
		ConfigPath: "/nonexistent/sparkdo-config.yaml",
		KV:         kv,
		Output:     rec,
		NoTUI:      true,
	}
	code := cmd.Execute(args, &stdout, &stderr, cfg)
	return stdout.String(), stderr.String(), code
}

func TestAddAndList(t *testing.T) {
	kv := storage.NewMemory()
	rec := chime.NewRecorder()

	out, stderr, code := run(t, kv, rec, "add", "Buy milk")
	if code != 0 {
		t.Fatalf("add failed: %s", stderr)
	}
	if !strings.Contains(out, "Buy milk") {
		t.Errorf("add output missing task text: %q", out)
	}

	out, _, code = run(t, kv, rec, "add", "Call Alice", "-p", "high")
	if code != 0 {
		t.Fatal("second add failed")
	}
	if !strings.Contains(out, "high") {
		t.Errorf("expected high priority in output: %q", out)
	}

	out, _, code = run(t, kv, rec, "list")
	if code != 0 {
		t.Fatal("list failed")
	}
	// Most recent first.
	alice := strings.Index(out, "Call Alice")
	milk := strings.Index(out, "Buy milk")
	if alice == -1 || milk == -1 || alice > milk {
		t.Errorf("expected Call Alice before Buy milk:\n%s", out)
	}
	if !strings.Contains(out, "0/2 done (0%)") {
		t.Errorf("expected stats footer, got:\n%s", out)
	}
}

func TestAddRejectsBlank(t *testing.T) {
	kv := storage.NewMemory()

	_, stderr, code := run(t, kv, chime.NewRecorder(), "add", "   ")
	if code == 0 {
		t.Error("blank add must fail")
	}
	if !strings.Contains(stderr, "empty") {
		t.Errorf("expected empty-text error, got: %q", stderr)
	}
}

func TestDoneToggleAndVictory(t *testing.T) {
	kv := storage.NewMemory()
	rec := chime.NewRecorder()

	out, _, _ := run(t, kv, rec, "add", "only task")
	id := firstID(t, out)

	out, stderr, code := run(t, kv, rec, "done", id)
	if code != 0 {
		t.Fatalf("done failed: %s", stderr)
	}
	if !strings.Contains(out, "now done") {
		t.Errorf("expected done confirmation, got: %q", out)
	}
	if !strings.Contains(out, "All tasks complete!") {
		t.Errorf("expected victory notice, got: %q", out)
	}

	out, _, _ = run(t, kv, rec, "done", id)
	if !strings.Contains(out, "now open") {
		t.Errorf("expected reopen confirmation, got: %q", out)
	}
}

func TestDoneUnknownID(t *testing.T) {
	kv := storage.NewMemory()

	_, stderr, code := run(t, kv, chime.NewRecorder(), "done", "42")
	if code == 0 {
		t.Error("unknown id must fail")
	}
	if !strings.Contains(stderr, "no task with id 42") {
		t.Errorf("unexpected error: %q", stderr)
	}
}

func TestRm(t *testing.T) {
	kv := storage.NewMemory()
	rec := chime.NewRecorder()

	out, _, _ := run(t, kv, rec, "add", "doomed")
	id := firstID(t, out)

	if _, stderr, code := run(t, kv, rec, "rm", id); code != 0 {
		t.Fatalf("rm failed: %s", stderr)
	}
	if _, _, code := run(t, kv, rec, "rm", id); code == 0 {
		t.Error("second rm must fail: task is gone")
	}

	out, _, _ = run(t, kv, rec, "list")
	if !strings.Contains(out, "No tasks.") {
		t.Errorf("expected empty list, got: %q", out)
	}
}

func TestMv(t *testing.T) {
	kv := storage.NewMemory()
	rec := chime.NewRecorder()

	run(t, kv, rec, "add", "one")
	out, _, _ := run(t, kv, rec, "add", "two")
	id := firstID(t, out)

	// "two" is at the head; move it to the bottom.
	if _, stderr, code := run(t, kv, rec, "mv", id, "1"); code != 0 {
		t.Fatalf("mv failed: %s", stderr)
	}

	out, _, _ = run(t, kv, rec, "list")
	if one, two := strings.Index(out, "one"), strings.Index(out, "two"); one == -1 || two == -1 || one > two {
		t.Errorf("expected one before two after move:\n%s", out)
	}
}

func TestClear(t *testing.T) {
	kv := storage.NewMemory()
	rec := chime.NewRecorder()

	run(t, kv, rec, "add", "a")
	out, _, _ := run(t, kv, rec, "add", "b")
	run(t, kv, rec, "done", firstID(t, out))

	if _, _, code := run(t, kv, rec, "clear", "--done"); code != 0 {
		t.Fatal("clear --done failed")
	}
	out, _, _ = run(t, kv, rec, "list")
	if strings.Contains(out, "[x]") {
		t.Errorf("expected completed tasks to be gone:\n%s", out)
	}
	if !strings.Contains(out, "medium a") {
		t.Errorf("expected the open task to remain:\n%s", out)
	}

	run(t, kv, rec, "clear")
	out, _, _ = run(t, kv, rec, "list")
	if !strings.Contains(out, "No tasks.") {
		t.Errorf("expected empty list after clear:\n%s", out)
	}
}

func TestStatsJSON(t *testing.T) {
	kv := storage.NewMemory()
	rec := chime.NewRecorder()

	run(t, kv, rec, "add", "one")

	out, _, code := run(t, kv, rec, "stats", "--json")
	if code != 0 {
		t.Fatal("stats failed")
	}
	for _, want := range []string{`"total": 1`, `"completed": 0`, `"percentage": 0`} {
		if !strings.Contains(out, want) {
			t.Errorf("stats json missing %s:\n%s", want, out)
		}
	}
}

func TestListJSON(t *testing.T) {
	kv := storage.NewMemory()
	rec := chime.NewRecorder()

	run(t, kv, rec, "add", "serialize me", "-p", "low")

	out, _, code := run(t, kv, rec, "list", "--json")
	if code != 0 {
		t.Fatal("list --json failed")
	}
	for _, want := range []string{`"text": "serialize me"`, `"priority": "low"`, `"completed": false`} {
		if !strings.Contains(out, want) {
			t.Errorf("list json missing %s:\n%s", want, out)
		}
	}
}

func TestMuteFlagSilencesFeedback(t *testing.T) {
	kv := storage.NewMemory()
	rec := chime.NewRecorder()

	if _, _, code := run(t, kv, rec, "add", "quiet", "--mute"); code != 0 {
		t.Fatal("add --mute failed")
	}
	if rec.Started() || rec.Emissions() != 0 {
		t.Error("muted run must not touch the audio backend")
	}
}

func TestConfigSample(t *testing.T) {
	out, _, code := run(t, storage.NewMemory(), chime.NewRecorder(), "config", "sample")
	if code != 0 {
		t.Fatal("config sample failed")
	}
	if !strings.Contains(out, "storage:") || !strings.Contains(out, "sound:") {
		t.Errorf("sample config incomplete:\n%s", out)
	}
}

func TestOneShotCommandsDrainAudioBeforeExit(t *testing.T) {
	kv := storage.NewMemory()
	rec := chime.NewRecorder()

	if _, _, code := run(t, kv, rec, "add", "audible"); code != 0 {
		t.Fatal("add failed")
	}
	if rec.Drains() == 0 {
		t.Error("expected the cue to be drained before exit")
	}

	// A muted run never activates the backend, so there is nothing to
	// drain either.
	rec = chime.NewRecorder()
	run(t, kv, rec, "add", "silent", "--mute")
	if rec.Drains() != 0 {
		t.Error("muted run must not drain an inactive backend")
	}
}

func TestCredits(t *testing.T) {
	kv := storage.NewMemory()
	rec := chime.NewRecorder()

	out, _, code := run(t, kv, rec, "credits")
	if code != 0 {
		t.Fatal("credits failed")
	}
	if !strings.Contains(out, "sparkdo") {
		t.Errorf("unexpected credits output: %q", out)
	}
	if rec.Emissions() != 1 {
		t.Errorf("expected the credits chime, got %d emissions", rec.Emissions())
	}
}

// firstID extracts the task id from "Added 3: ..." output.
func firstID(t *testing.T, addOutput string) string {
	t.Helper()
	fields := strings.Fields(addOutput)
	if len(fields) < 2 {
		t.Fatalf("unexpected add output: %q", addOutput)
	}
	return strings.TrimSuffix(fields[1], ":")
}
