package cli

import (
	"fmt"
	"io"
	"strings"
)

// completionFlag describes one flag for the completion generators.
type completionFlag struct {
	name   string
	short  string
	desc   string
	values []string // suggested values; nil for switches
	file   bool     // complete file names
	arg    bool     // takes a free-form argument
}

// completionFlags lists the flags offered by every shell script. The value
// list of --compress is filled in by GenerateCompletion.
func completionFlags(compressions []string) []completionFlag {
	return []completionFlag{
		{name: "help", short: "h", desc: "Show help message"},
		{name: "version", short: "V", desc: "Show version information"},
		{name: "limit", short: "n", desc: "Exclusive upper bound", arg: true},
		{name: "threads", short: "t", desc: "Number of concurrent segments", values: []string{"1", "2", "4", "8", "16", "32"}},
		{name: "output", short: "o", desc: "Output file path", file: true},
		{name: "compress", desc: "Output compression", values: compressions},
		{name: "sorted", desc: "Rewrite the output in ascending order"},
		{name: "verify", desc: "Audit the output file"},
		{name: "upload", desc: "Upload target (dir, s3://, minio://)", arg: true},
		{name: "upload-endpoint", desc: "Custom S3 or MinIO endpoint", arg: true},
		{name: "timeout", desc: "Maximum execution time", values: []string{"1m", "5m", "10m", "30m", "1h"}},
		{name: "json", desc: "Print the run summary as JSON"},
		{name: "quiet", short: "q", desc: "Quiet mode for scripts"},
		{name: "no-color", desc: "Disable colored output"},
		{name: "server", desc: "Start HTTP server mode"},
		{name: "port", desc: "Server port", values: []string{"8080", "3000", "5000", "9000"}},
		{name: "interactive", desc: "Start the big-number REPL"},
		{name: "completion", desc: "Generate completion script", values: []string{"bash", "zsh", "fish", "powershell"}},
		{name: "calibrate", desc: "Benchmark thread counts"},
		{name: "auto-calibrate", desc: "Quick calibration when no profile is cached"},
		{name: "calibration-profile", desc: "Calibration profile file", file: true},
		{name: "log-level", desc: "Minimum log level", values: []string{"debug", "info", "warn", "error", "disabled"}},
		{name: "config", desc: "YAML configuration file", file: true},
	}
}

// GenerateCompletion writes a shell completion script for primegen.
//
// Parameters:
//   - out: The writer to output the completion script.
//   - shell: The shell type ("bash", "zsh", "fish", "powershell").
//   - compressions: The accepted values of --compress.
//
// Returns:
//   - error: An error if the shell is not supported or the write fails.
func GenerateCompletion(out io.Writer, shell string, compressions []string) error {
	flags := completionFlags(compressions)
	var script string
	switch shell {
	case "bash":
		script = bashCompletion(flags)
	case "zsh":
		script = zshCompletion(flags)
	case "fish":
		script = fishCompletion(flags)
	case "powershell", "ps":
		script = powerShellCompletion(flags)
	default:
		return fmt.Errorf("unsupported shell: %s (accepted values: bash, zsh, fish, powershell)", shell)
	}
	_, err := io.WriteString(out, script)
	return err
}

func bashCompletion(flags []completionFlag) string {
	var opts []string
	var cases strings.Builder
	for _, f := range flags {
		names := "--" + f.name
		opts = append(opts, "--"+f.name)
		if f.short != "" {
			opts = append(opts, "-"+f.short)
			names += "|-" + f.short
		}
		switch {
		case f.file:
			fmt.Fprintf(&cases, "        %s)\n            COMPREPLY=( $(compgen -f -- \"${cur}\") )\n            return 0\n            ;;\n", names)
		case len(f.values) > 0:
			fmt.Fprintf(&cases, "        %s)\n            COMPREPLY=( $(compgen -W \"%s\" -- \"${cur}\") )\n            return 0\n            ;;\n", names, strings.Join(f.values, " "))
		}
	}
	return fmt.Sprintf(`# Bash completion script for primegen
# Add this to your ~/.bashrc or ~/.bash_completion

_primegen_completions() {
    local cur prev opts
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"
    opts="%s"

    case "${prev}" in
%s    esac

    if [[ "${cur}" == -* ]]; then
        COMPREPLY=( $(compgen -W "${opts}" -- "${cur}") )
        return 0
    fi
}

complete -F _primegen_completions primegen
`, strings.Join(opts, " "), cases.String())
}

func zshCompletion(flags []completionFlag) string {
	var b strings.Builder
	b.WriteString("#compdef primegen\n\n# Zsh completion script for primegen\n# Add this to your ~/.zshrc or place in $fpath\n\n_primegen() {\n    _arguments -s")
	for _, f := range flags {
		spec := "--" + f.name
		if f.short != "" {
			spec = fmt.Sprintf("(-%s --%s)'{-%s,--%s}'", f.short, f.name, f.short, f.name)
		}
		action := ""
		switch {
		case f.file:
			action = ":file:_files"
		case len(f.values) > 0:
			action = fmt.Sprintf(":value:(%s)", strings.Join(f.values, " "))
		case f.arg:
			action = ":value:"
		}
		fmt.Fprintf(&b, " \\\n        '%s[%s]%s'", spec, f.desc, action)
	}
	b.WriteString("\n}\n\n_primegen \"$@\"\n")
	return b.String()
}

func fishCompletion(flags []completionFlag) string {
	var b strings.Builder
	b.WriteString("# Fish completion script for primegen\n# Add this to ~/.config/fish/completions/primegen.fish\n\n# Disable file completion by default\ncomplete -c primegen -f\n\n")
	for _, f := range flags {
		line := "complete -c primegen"
		if f.short != "" {
			line += " -s " + f.short
		}
		line += fmt.Sprintf(" -l %s -d '%s'", f.name, f.desc)
		switch {
		case f.file:
			line += " -rF"
		case len(f.values) > 0:
			line += fmt.Sprintf(" -xa '%s'", strings.Join(f.values, " "))
		case f.arg:
			line += " -x"
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func powerShellCompletion(flags []completionFlag) string {
	var opts, cases strings.Builder
	for _, f := range flags {
		names := []string{"--" + f.name}
		if f.short != "" {
			names = append(names, "-"+f.short)
		}
		for _, n := range names {
			fmt.Fprintf(&opts, "        @{Name = '%s'; Description = '%s' }\n", n, f.desc)
		}
		if len(f.values) > 0 {
			quoted := make([]string, len(f.values))
			for i, v := range f.values {
				quoted[i] = "'" + v + "'"
			}
			fmt.Fprintf(&cases, "        { $_ -in @('%s') } {\n            @(%s) | Where-Object { $_ -like \"$wordToComplete*\" } | ForEach-Object {\n                [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)\n            }\n            return\n        }\n",
				strings.Join(names, "', '"), strings.Join(quoted, ", "))
		}
	}
	return fmt.Sprintf(`# PowerShell completion script for primegen
# Add this to your $PROFILE

Register-ArgumentCompleter -CommandName 'primegen' -Native -ScriptBlock {
    param($wordToComplete, $commandAst, $cursorPosition)

    $options = @(
%s    )

    $elements = $commandAst.CommandElements
    $prevElement = if ($elements.Count -gt 2) { $elements[-2].ToString() } else { '' }

    switch ($prevElement) {
%s    }

    $options | Where-Object { $_.Name -like "$wordToComplete*" } | ForEach-Object {
        [System.Management.Automation.CompletionResult]::new($_.Name, $_.Name, 'ParameterName', $_.Description)
    }
}
`, opts.String(), cases.String())
}
