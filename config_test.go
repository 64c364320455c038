package bytesize

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseConfig(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Config
	}{
		{"empty document keeps defaults", "", DefaultConfig()},
		{"spaces only", "custom_spaces: true\n", Config{CustomWords: DefaultCustomWords, CustomSpaces: true}},
		{"words", "custom_words:\n  - \"https://\"\n  - .example.org\n", Config{CustomWords: []string{"https://", ".example.org"}}},
		{"no words", "custom_words: []\n", Config{CustomWords: []string{}}},
		{"json", `{"custom_words": ["abc"], "custom_spaces": true}`, Config{CustomWords: []string{"abc"}, CustomSpaces: true}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseConfig([]byte(tc.in))
			if err != nil {
				t.Fatalf("ParseConfig: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseConfigErrors(t *testing.T) {
	if _, err := ParseConfig([]byte("custom_word: [a]\n")); err == nil {
		t.Fatalf("unknown field accepted")
	}
	if _, err := ParseConfig([]byte("custom_spaces: maybe\n")); err == nil {
		t.Fatalf("invalid bool accepted")
	}
	_, err := ParseConfig([]byte("custom_words: [a, '']\n"))
	if !errors.Is(err, ErrEmptyCustomWord) {
		t.Fatalf("err = %v, want ErrEmptyCustomWord", err)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bytesize.yaml")
	c := Config{CustomWords: []string{"\r\n", "C:\\", "ünï"}, CustomSpaces: true}
	data, err := c.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if diff := cmp.Diff(c, got); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing file err = %v", err)
	}
}

func TestConfigBuilder(t *testing.T) {
	if DefaultConfig().Builder().Engine().Fingerprint() != NewBuilder().Engine().Fingerprint() {
		t.Fatalf("DefaultConfig differs from NewBuilder")
	}
	c := Config{CustomWords: []string{"abc"}, CustomSpaces: true}
	e := c.Builder().Engine()
	if !e.CustomSpaces() || len(e.CustomWords()) != 1 {
		t.Fatalf("builder lost configuration")
	}
}
