package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T) (configPath, outputDir string) {
	t.Helper()
	base := t.TempDir()
	outputDir = filepath.Join(base, "out")
	content := fmt.Sprintf(`[paths]
output_dir = %q
log_dir = %q

[render]
aspect_ratios = ["square"]
square_size = 64
vertical_width = 48
vertical_height = 96
margin_px = 4
workers = 2

[animation]
target_duration_seconds = 2.0

[encode]
formats = ["gif"]

[logging]
level = "error"
`, outputDir, filepath.Join(base, "logs"))

	configPath = filepath.Join(base, "config.toml")
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return configPath, outputDir
}

func writeTestDataset(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	manifest := `source_id: testville
variable: temperature
units: degC
data: observations.csv
`
	csv := "DATE,TAVG\n" +
		"2024-05-10,1.0\n" +
		"2024-05-11,2.0\n" +
		"2024-05-12,4.0\n" +
		"2024-05-13,3.0\n"
	if err := os.WriteFile(filepath.Join(dir, "dataset.yaml"), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "observations.csv"), []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}
	return filepath.Join(dir, "dataset.yaml")
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRenderCommandProducesGIF(t *testing.T) {
	configPath, outputDir := writeTestConfig(t)
	manifest := writeTestDataset(t)

	out, err := runCommand(t, "--config", configPath, "render", manifest)
	if err != nil {
		t.Fatalf("render: %v\n%s", err, out)
	}
	artifact := filepath.Join(outputDir, "testville_square.gif")
	if _, err := os.Stat(artifact); err != nil {
		t.Fatalf("expected %s: %v", artifact, err)
	}
	if !strings.Contains(out, "testville_square.gif") {
		t.Fatalf("summary missing artifact path:\n%s", out)
	}
}

func TestRenderCommandExportsStill(t *testing.T) {
	configPath, outputDir := writeTestConfig(t)
	manifest := writeTestDataset(t)

	out, err := runCommand(t, "--config", configPath, "render", manifest, "--still")
	if err != nil {
		t.Fatalf("render: %v\n%s", err, out)
	}
	if _, err := os.Stat(filepath.Join(outputDir, "testville_square_still.png")); err != nil {
		t.Fatalf("expected still: %v", err)
	}
}

func TestRenderCommandCopiesArtifacts(t *testing.T) {
	configPath, _ := writeTestConfig(t)
	manifest := writeTestDataset(t)
	copyDir := filepath.Join(t.TempDir(), "publish")

	out, err := runCommand(t, "--config", configPath, "render", manifest, "--copy-to", copyDir)
	if err != nil {
		t.Fatalf("render: %v\n%s", err, out)
	}
	if _, err := os.Stat(filepath.Join(copyDir, "testville_square.gif")); err != nil {
		t.Fatalf("expected copied artifact: %v", err)
	}
}

func TestRenderCommandFailsWhenNothingSucceeds(t *testing.T) {
	configPath, _ := writeTestConfig(t)
	manifest := writeTestDataset(t)

	// mp4-only with a nonexistent ffmpeg leaves zero successful variants.
	raw, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatal(err)
	}
	patched := strings.Replace(string(raw), `formats = ["gif"]`,
		"formats = [\"mp4\"]\nffmpeg_binary = \"skylapse-test-no-such-ffmpeg\"", 1)
	if err := os.WriteFile(configPath, []byte(patched), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runCommand(t, "--config", configPath, "render", manifest)
	if err == nil {
		t.Fatalf("expected failure, got:\n%s", out)
	}
}

func TestRenderCommandRejectsMissingManifest(t *testing.T) {
	configPath, _ := writeTestConfig(t)
	if _, err := runCommand(t, "--config", configPath, "render",
		filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing manifest")
	}
}

func TestRunsCommandListsRecordedRun(t *testing.T) {
	configPath, _ := writeTestConfig(t)
	manifest := writeTestDataset(t)

	if out, err := runCommand(t, "--config", configPath, "render", manifest); err != nil {
		t.Fatalf("render: %v\n%s", err, out)
	}

	out, err := runCommand(t, "--config", configPath, "runs")
	if err != nil {
		t.Fatalf("runs: %v\n%s", err, out)
	}
	if !strings.Contains(out, "testville") {
		t.Fatalf("runs output missing source:\n%s", out)
	}
}

func TestRunsCommandShowsRunDetails(t *testing.T) {
	configPath, _ := writeTestConfig(t)
	manifest := writeTestDataset(t)

	if out, err := runCommand(t, "--config", configPath, "render", manifest); err != nil {
		t.Fatalf("render: %v\n%s", err, out)
	}

	listing, err := runCommand(t, "--config", configPath, "runs")
	if err != nil {
		t.Fatalf("runs: %v\n%s", err, listing)
	}
	runID := regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`).FindString(listing)
	if runID == "" {
		t.Fatalf("no run id in listing:\n%s", listing)
	}

	out, err := runCommand(t, "--config", configPath, "runs", runID)
	if err != nil {
		t.Fatalf("runs %s: %v\n%s", runID, err, out)
	}
	// Pixel dimensions and file size get distinct column headers.
	for _, fragment := range []string{"DIMENSIONS", "BYTES", "64x64", "square-gif"} {
		if !strings.Contains(out, fragment) {
			t.Fatalf("expected %q in run detail:\n%s", fragment, out)
		}
	}
}
