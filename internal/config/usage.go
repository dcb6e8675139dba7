package config

import (
	"flag"
	"fmt"
	"os"

	"github.com/agbru/primegen/internal/ui"
)

// setCustomUsage configures the flag set with a colored usage function.
func setCustomUsage(fs *flag.FlagSet) {
	fs.Usage = func() {
		// Respect NO_COLOR even before app initialization
		t := ui.GetCurrentTheme()
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			t = ui.NoColorTheme
		}

		out := fs.Output()

		// Header
		fmt.Fprintf(out, "\n%sprimegen%s\n", t.Bold, t.Reset)
		fmt.Fprintf(out, "Concurrent segmented prime sieve with arbitrary-precision limits.\n\n")
		fmt.Fprintf(out, "%sUsage:%s\n  %s [flags]\n\n%sFlags:%s\n", t.Warning, t.Reset, fs.Name(), t.Warning, t.Reset)

		fs.VisitAll(func(f *flag.Flag) {
			name, usage := flag.UnquoteUsage(f)
			flagSig := fmt.Sprintf("-%s", f.Name)
			if len(name) > 0 {
				flagSig += " " + name
			}

			// Print formatted flag
			fmt.Fprintf(out, "  %s%-25s%s %s", t.Primary, flagSig, t.Reset, usage)

			// Print default value if meaningful
			if f.DefValue != "" && f.DefValue != "0" && f.DefValue != "false" {
				fmt.Fprintf(out, " %s(default %s)%s", t.Secondary, f.DefValue, t.Reset)
			}
			fmt.Fprintln(out)
		})
		fmt.Fprintf(out, "\n%sExamples:%s\n", t.Warning, t.Reset)
		fmt.Fprintf(out, "  %s -limit 1000000 -threads 8\n", fs.Name())
		fmt.Fprintf(out, "  %s -limit 100000000000 -o primes.txt.zst -compress zstd -sorted\n", fs.Name())
		fmt.Fprintf(out, "  %s -limit 1000000 -verify -upload s3://bucket/runs/\n", fs.Name())
		fmt.Fprintln(out)
	}
}
