package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/viper"

	"github.com/axiomhq/bytesize"
	"github.com/axiomhq/bytesize/internal/server"
)

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func mustRun(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	out, stderr, err := run(t, stdin, args...)
	if err != nil {
		t.Fatalf("bytesize %s: %v\n%s", strings.Join(args, " "), err, stderr)
	}
	return out
}

func TestCompressDecompress(t *testing.T) {
	for _, text := range []string{"hello world", "see https://example.com", "ping 5551234 ❤"} {
		out := mustRun(t, "", "compress", text)
		want := hex.EncodeToString(bytesize.Compress(text)) + "\n"
		if out != want {
			t.Fatalf("compress %q = %q, want %q", text, out, want)
		}
		if got := mustRun(t, "", "decompress", strings.TrimSpace(out)); got != text+"\n" {
			t.Fatalf("decompress = %q, want %q", got, text+"\n")
		}
		// Same round trip through stdin with raw bytes.
		raw := mustRun(t, text, "compress", "--raw")
		if got := mustRun(t, raw, "decompress", "--raw"); got != text {
			t.Fatalf("raw round trip = %q, want %q", got, text)
		}
	}
}

func TestDashLeadingText(t *testing.T) {
	out := mustRun(t, "", "compress", "--", "-- hi --")
	if want := hex.EncodeToString(bytesize.Compress("-- hi --")) + "\n"; out != want {
		t.Fatalf("compress = %q, want %q", out, want)
	}
	if _, _, err := run(t, "", "compress", "----"); err == nil {
		t.Fatalf("expected ---- to be rejected as a flag")
	}
	if got := mustRun(t, "----", "compress"); got != hex.EncodeToString(bytesize.Compress("----"))+"\n" {
		t.Fatalf("stdin compress = %q", got)
	}
}

func TestDecompressErrors(t *testing.T) {
	if _, _, err := run(t, "", "decompress", "zz"); err == nil {
		t.Fatalf("expected an error for invalid hex")
	}
	_, _, err := run(t, "", "decompress", "61e0")
	if err == nil || !strings.Contains(err.Error(), "offset 1") {
		t.Fatalf("err = %v, want a decode error at offset 1", err)
	}
}

func TestCustomFlags(t *testing.T) {
	out := mustRun(t, "", "--custom", "bytesize", "--custom-spaces", "compress", " bytesize bytesize")
	if got := strings.TrimSpace(out); len(got) != 8 {
		t.Fatalf("compress = %s, want 4 bytes", got)
	}
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	config := "log_level: debug\nengine:\n  custom_words:\n    - kubernetes\n    - namespace\n"
	if err := os.WriteFile(path, []byte(config), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	out, stderr, err := run(t, "", "-c", path, "engine")
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	e := bytesize.EmptyBuilder().SetCustom([]string{"kubernetes", "namespace"}).Engine()
	if !strings.Contains(out, fmt.Sprintf("fingerprint: %016x", e.Fingerprint())) {
		t.Fatalf("output does not carry the fingerprint of the configured engine:\n%s", out)
	}
	if !strings.Contains(out, `"kubernetes"`) || !strings.Contains(out, "custom_words: 2") {
		t.Fatalf("output:\n%s", out)
	}
	if !strings.Contains(stderr, "engine ready") {
		t.Fatalf("debug log missing from stderr:\n%s", stderr)
	}

	if _, _, err := run(t, "", "-c", filepath.Join(t.TempDir(), "missing.yaml"), "engine"); err == nil {
		t.Fatalf("expected an error for a missing config file")
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("BYTESIZE_ENGINE_CUSTOM_SPACES", "true")
	out := mustRun(t, "", "engine")
	if !strings.Contains(out, "custom_spaces: true") || !strings.Contains(out, "custom_capacity: 16") {
		t.Fatalf("output:\n%s", out)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("BYTESIZE_SERVER_ADDRESS", "127.0.0.1:9999")
	cfg, err := LoadConfig(viper.New(), "")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	want := &Config{
		LogLevel: "info",
		Engine:   bytesize.DefaultConfig(),
		Server:   server.Config{Address: "127.0.0.1:9999", EngineCacheTTL: 10 * time.Minute},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config (-want +got):\n%s", diff)
	}
}

func TestBadLogLevel(t *testing.T) {
	if _, _, err := run(t, "", "--log-level", "chatty", "engine"); err == nil {
		t.Fatalf("expected an error for an unknown log level")
	}
}

func TestLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bytesize.log")
	t.Setenv("BYTESIZE_LOG_FILE_PATH", path)
	mustRun(t, "", "--log-level", "debug", "compress", "hi")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "compressed") {
		t.Fatalf("log file:\n%s", data)
	}
}

func TestTokensCommand(t *testing.T) {
	out := mustRun(t, "", "tokens", "the 1000 ❤")
	for _, want := range []string{"OneByte", "Number", `"1000"`, "HEAVY BLACK HEART"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output lacks %q:\n%s", want, out)
		}
	}
	out = mustRun(t, "", "tokens", "--verbose", "--", "----")
	if !strings.Contains(out, "Kind") || !strings.Contains(out, "Count: (int) 4") {
		t.Fatalf("verbose output:\n%s", out)
	}
}

func TestStats(t *testing.T) {
	lines := []string{"hello world", "see you at 1830", "ok\xff"}
	e := bytesize.NewBuilder().Engine()
	cs, err := compressors(e)
	if err != nil {
		t.Fatalf("compressors: %v", err)
	}
	st, err := collectStats(e, cs, lines)
	if err != nil {
		t.Fatalf("collectStats: %v", err)
	}
	var want int
	for _, l := range lines {
		want += len(e.Compress(l))
	}
	if st.messages != 3 || st.out["bytesize"] != want || st.lossy != 1 {
		t.Fatalf("stats = %+v, want bytesize %d", st, want)
	}
	for _, name := range []string{"zstd", "zstd-best", "s2"} {
		if st.out[name] == 0 {
			t.Fatalf("no output recorded for %s", name)
		}
	}

	out := mustRun(t, strings.Join(lines, "\n")+"\n", "stats")
	for _, name := range []string{"input", "bytesize", "zstd-best", "s2"} {
		if !strings.Contains(out, name) {
			t.Fatalf("output lacks %s:\n%s", name, out)
		}
	}
}

func TestSuggest(t *testing.T) {
	var sb strings.Builder
	for i := range 200 {
		fmt.Fprintf(&sb, "xqzvjk id=%d zzwpfh kkq\n", i)
	}
	out := mustRun(t, sb.String(), "suggest")
	cfg, err := bytesize.ParseConfig([]byte(out))
	if err != nil {
		t.Fatalf("ParseConfig(%q): %v", out, err)
	}
	if len(cfg.CustomWords) == 0 || cfg.CustomSpaces {
		t.Fatalf("config = %+v", cfg)
	}
	if diff := cmp.Diff(bytesize.TrainCustom(strings.Split(strings.TrimSuffix(sb.String(), "\n"), "\n"), false), cfg.CustomWords); diff != "" {
		t.Fatalf("suggested words (-want +got):\n%s", diff)
	}
}

func TestEngineDescriptorFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.bin")
	written := mustRun(t, "", "--custom", "alpha,beta", "engine", "--write", path)
	read := mustRun(t, "", "engine", "--read", path)
	if written != read {
		t.Fatalf("descriptor changed the engine:\n%s\nvs\n%s", written, read)
	}
}
