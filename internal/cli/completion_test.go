package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestGenerateCompletion(t *testing.T) {
	t.Parallel()
	compressions := []string{"none", "gzip", "zstd", "lz4"}

	tests := []struct {
		shell    string
		contains []string
	}{
		{"bash", []string{"Bash completion script", "_primegen_completions", "--compress)", "none gzip zstd lz4", "--output|-o)", "complete -F _primegen_completions primegen"}},
		{"zsh", []string{"#compdef primegen", "'(-n --limit)'{-n,--limit}'[Exclusive upper bound]:value:'", ":value:(none gzip zstd lz4)", "'--config[YAML configuration file]:file:_files'"}},
		{"fish", []string{"Fish completion script", "complete -c primegen -s t -l threads", "-l compress -d 'Output compression' -xa 'none gzip zstd lz4'", "-l output -d 'Output file path' -rF"}},
		{"powershell", []string{"Register-ArgumentCompleter -CommandName 'primegen'", "@{Name = '--verify'; Description = 'Audit the output file' }", "'none', 'gzip', 'zstd', 'lz4'"}},
		{"ps", []string{"Register-ArgumentCompleter"}},
	}
	for _, tt := range tests {
		t.Run(tt.shell, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			if err := GenerateCompletion(&buf, tt.shell, compressions); err != nil {
				t.Fatalf("GenerateCompletion(%s) error = %v", tt.shell, err)
			}
			out := buf.String()
			for _, want := range tt.contains {
				if !strings.Contains(out, want) {
					t.Errorf("%s script missing %q", tt.shell, want)
				}
			}
			if strings.Contains(out, "%!") {
				t.Errorf("%s script has malformed format verbs", tt.shell)
			}
		})
	}
}

func TestGenerateCompletion_UnsupportedShell(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	err := GenerateCompletion(&buf, "tcsh", nil)
	if err == nil || !strings.Contains(err.Error(), "unsupported shell") {
		t.Errorf("expected unsupported shell error, got %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("nothing should be written, got %q", buf.String())
	}
}

func TestCompletionFlagsCoverEveryShell(t *testing.T) {
	t.Parallel()
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		var buf bytes.Buffer
		if err := GenerateCompletion(&buf, shell, []string{"none"}); err != nil {
			t.Fatal(err)
		}
		for _, f := range completionFlags([]string{"none"}) {
			if !strings.Contains(buf.String(), f.name) {
				t.Errorf("%s script does not mention --%s", shell, f.name)
			}
		}
	}
}
