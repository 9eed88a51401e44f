package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptchart/internal/models"
	"promptchart/pkg/category"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	for _, k := range []string{"OPENAI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY", "PORT", "DATABASE_URL", "REDIS_ADDR"} {
		t.Setenv(k, "")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "model:\n  openai_api_key: sk-test\n" +
		"database:\n  driver: sqlite3\n  dsn: \"" + filepath.Join(dir, "history.db") + "\"\n" +
		"log:\n  level: error\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestAnalyzeAndHistoryCommands(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, "--config", cfg, "analyze", "--json", "60% rent, 40% food")
	require.NoError(t, err)
	var cats []category.Category
	require.NoError(t, json.Unmarshal([]byte(out), &cats))
	assert.Equal(t, []category.Category{{Name: "rent", Value: 60}, {Name: "food", Value: 40}}, cats)

	out, err = run(t, "--config", cfg, "history", "list", "--json")
	require.NoError(t, err)
	var items []models.Analysis
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "60% rent, 40% food", items[0].Prompt)

	out, err = run(t, "--config", cfg, "history", "show", items[0].ID.String())
	require.NoError(t, err)
	assert.Contains(t, out, "rent")
	assert.Contains(t, out, "60%")
	historyJSON = false
	analyzeJSON = false
}

func TestAnalyzeCommand_Errors(t *testing.T) {
	cfg := writeConfig(t)

	_, err := run(t, "--config", cfg, "analyze", "   ")
	assert.ErrorContains(t, err, "prompt is required")

	analyzeInput = "-"
	_, err = run(t, "--config", cfg, "analyze", "also text")
	assert.ErrorContains(t, err, "not both")
	analyzeInput = ""
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "promptchart dev\n", out)
}

func TestDoctorCommand(t *testing.T) {
	cfg := writeConfig(t)
	out, err := run(t, "--config", cfg, "doctor")
	require.NoError(t, err)
	assert.Contains(t, out, "Completion provider: openai")
	assert.Contains(t, out, "Database connection successful.")
	assert.Contains(t, out, "Queue: not configured")
}

func TestSummarizeAndBar(t *testing.T) {
	cats := []category.Category{{Name: "a", Value: 50}, {Name: "b", Value: 30}, {Name: "c", Value: 20}}
	assert.Equal(t, "a 50%, b 30%, +1 more", summarize(cats, 2))
	assert.Equal(t, "a 50%, b 30%, c 20%", summarize(cats, 5))
	assert.Equal(t, strings.Repeat("#", 15), bar(50))
	assert.Equal(t, strings.Repeat("#", barWidth), bar(140))
	assert.Equal(t, "abcd...", truncate("abcdefghij", 7))
	assert.Equal(t, "short", truncate("short", 7))
}

func TestRenderCategories(t *testing.T) {
	var buf bytes.Buffer
	renderCategories(&buf, []category.Category{{Name: "Laptops", Value: 67}, {Name: "Phones", Value: 33}})
	out := buf.String()
	assert.Contains(t, out, "Laptops")
	assert.Contains(t, out, "67%")
	assert.Contains(t, out, "33%")
}

func TestBatchCommand(t *testing.T) {
	cfg := writeConfig(t)
	dir := t.TempDir()
	file := filepath.Join(dir, "prompts.txt")
	require.NoError(t, os.WriteFile(file, []byte("# budgets\n60% rent, 40% food\n\n25% tea, 75% coffee\n"), 0o600))

	out, err := run(t, "--config", cfg, "batch", "--local", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Analyzed 2 prompts, 0 failed.")
	batchLocal = false

	_, err = run(t, "--config", cfg, "batch", file)
	assert.ErrorContains(t, err, "--local")

	promptDir := filepath.Join(dir, "prompts")
	require.NoError(t, os.MkdirAll(promptDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(promptDir, "a.txt"), []byte("10% a, 90% b"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(promptDir, "b.html"), []byte("<p>30% red and 70% blue</p>"), 0o600))

	out, err = run(t, "--config", cfg, "batch", "--local", promptDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Analyzed 2 prompts, 0 failed.")
	assert.Contains(t, out, "red 30%")
	batchLocal = false
}
