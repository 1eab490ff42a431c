package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/agromind/internal/config"
	"github.com/verte-zerg/agromind/internal/model"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	for _, name := range []string{
		config.EnvListURL, config.EnvChatURL, config.EnvChatDecoder,
		config.EnvUserAvatar, config.EnvAssistantAvatar, config.EnvHistory,
	} {
		t.Setenv(name, "")
	}
	return dir
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func chatServer(t *testing.T, content string, prompts *[]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Prompt string `json:"prompt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if prompts != nil {
			*prompts = append(*prompts, body.Prompt)
		}
		payload, _ := json.Marshal(map[string]any{
			"choices": []any{map[string]any{"message": map[string]string{"content": content}}},
		})
		w.Header().Set("Content-Type", "application/json")
		w.Write(payload)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestFormatTableAlignsWideCells(t *testing.T) {
	lines := formatTable(
		[]column{{title: "Role"}, {title: "Turns", alignRight: true}},
		[][]string{{"用户", "12"}, {"assistant", "3"}},
	)
	require.Len(t, lines, 3)
	assert.Equal(t, "Role       Turns", lines[0])
	assert.Equal(t, "用户          12", lines[1])
	assert.Equal(t, "assistant      3", lines[2])
}

func TestFormatTableFillsShortRows(t *testing.T) {
	lines := formatTable(fetchColumns, [][]string{{"2024-01-10 08:00:00", "2024-01-01", "2024-01-07", "3"}})
	require.Len(t, lines, 2)
	assert.Equal(t, "Fetched              Start       End         Records  Error", lines[0])
	assert.Equal(t, "2024-01-10 08:00:00  2024-01-01  2024-01-07        3", lines[1])
}

func TestResolveConfigPrecedence(t *testing.T) {
	dir := isolate(t)
	cfgPath := filepath.Join(dir, "config", "agromind", "config.toml")
	require.NoError(t, os.MkdirAll(filepath.Dir(cfgPath), 0o755))
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
[list]
base-url = "http://file/list"
[chat]
base-url = "http://file/chat"
[ui]
language = "zh"
`), 0o644))
	t.Setenv(config.EnvChatURL, "http://env/chat")

	root := newRootCmd()
	require.NoError(t, root.ParseFlags([]string{"--list-url", "http://flag/list"}))
	cfg, err := resolveConfig(root)
	require.NoError(t, err)

	assert.Equal(t, "http://flag/list", cfg.ListBaseURL)
	assert.Equal(t, "http://env/chat", cfg.ChatBaseURL)
	assert.Equal(t, "zh", cfg.Language)
	assert.Equal(t, config.DefaultChatTimeout, cfg.ChatTimeout)
}

func TestResolveConfigRejectsUnknownDecoder(t *testing.T) {
	isolate(t)
	root := newRootCmd()
	require.NoError(t, root.ParseFlags([]string{"--decoder", "xml"}))
	_, err := resolveConfig(root)
	assert.Error(t, err)
}

func TestDefaultConfigTemplateIsValid(t *testing.T) {
	dir := isolate(t)
	var uncommented []string
	for _, line := range strings.Split(defaultConfigTemplate(), "\n") {
		if strings.HasPrefix(line, "# ") && strings.Contains(line, " = ") {
			line = strings.TrimPrefix(line, "# ")
		}
		uncommented = append(uncommented, line)
	}
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(uncommented, "\n")), 0o644))

	fileCfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, fileCfg.Chat.Decoder)
	cfg, err := config.Resolve(fileCfg)
	require.NoError(t, err)
	assert.NoError(t, config.Validate(cfg))
	assert.False(t, cfg.HistoryEnabled)
}

func TestVersionFlag(t *testing.T) {
	isolate(t)
	out, err := runCLI(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, "agromind 1.0\n", out)
}

func TestCardsCommandPrintsRecords(t *testing.T) {
	isolate(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/list/2024-1-1/2024-1-3" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`[{"range":"2024-01-01~01-03","title":"Irrigation advice","content":"Irrigate 30-40mm.","data":{
			"irrigation":[{"time":"2024-01-01","value":10},{"time":"2024-01-02","value":20},{"time":"2024-01-03","value":35}]}}]`))
	}))
	t.Cleanup(server.Close)

	out, err := runCLI(t, "cards", "--list-url", server.URL+"/list", "--start", "2024-01-01", "--end", "2024-01-03")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-01-01~01-03")
	assert.Contains(t, out, "Irrigation advice")
	assert.Contains(t, out, "Irrigation (max 35)")
	assert.NotContains(t, out, "\x1b[")
}

func TestCardsCommandRejectsInvertedRange(t *testing.T) {
	isolate(t)
	_, err := runCLI(t, "cards", "--start", "2024-01-05", "--end", "2024-01-01")
	assert.ErrorContains(t, err, "invalid range")
}

func TestAskCommandPrintsFinalAnswer(t *testing.T) {
	isolate(t)
	var prompts []string
	server := chatServer(t, "Thought: check soil\nFinal Answer: Water 30mm.", &prompts)

	out, err := runCLI(t, "ask", "--chat-url", server.URL+"/agent/chat", "How", "much?")
	require.NoError(t, err)
	assert.Equal(t, "Water 30mm.\n", out)
	assert.Equal(t, []string{"How much?"}, prompts)
}

func TestAskCommandReportsErrorKind(t *testing.T) {
	isolate(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	_, err := runCLI(t, "ask", "--chat-url", server.URL, "hello")
	assert.ErrorContains(t, err, "http_status")
}

func TestHistoryRequiresOptIn(t *testing.T) {
	isolate(t)
	_, err := runCLI(t, "history")
	assert.ErrorContains(t, err, "history is disabled")
}

func TestHistoryShowsRecordedAsk(t *testing.T) {
	isolate(t)
	server := chatServer(t, "x\nFinal Answer: Yes.", nil)
	_, err := runCLI(t, "ask", "--history", "--chat-url", server.URL, "Is it dry?")
	require.NoError(t, err)

	out, err := runCLI(t, "history", "--history", "--format", "json")
	require.NoError(t, err)
	var sessions []model.SessionSummary
	require.NoError(t, json.Unmarshal([]byte(out), &sessions))
	require.Len(t, sessions, 1)
	assert.Equal(t, 2, sessions[0].Turns)

	out, err = runCLI(t, "history", "--history", "--session", sessions[0].SessionID, "--format", "yaml")
	require.NoError(t, err)
	var hist sessionHistory
	require.NoError(t, yaml.Unmarshal([]byte(out), &hist))
	assert.Equal(t, []model.ChatTurn{
		{Role: model.RoleUser, Content: "Is it dry?"},
		{Role: model.RoleAssistant, Content: "Yes."},
	}, hist.Turns)

	out, err = runCLI(t, "history", "--history", "--session", sessions[0].SessionID)
	require.NoError(t, err)
	assert.Contains(t, out, "user: Is it dry?")
	assert.Contains(t, out, "assistant: Yes.")
}

func TestHistoryRejectsUnknownFormat(t *testing.T) {
	isolate(t)
	_, err := runCLI(t, "history", "--history", "--format", "xml")
	assert.ErrorContains(t, err, "--format")
}
