package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/agbru/primegen/internal/bignum"
	"github.com/agbru/primegen/internal/service"
)

// REPLConfig holds configuration for the REPL session.
type REPLConfig struct {
	// Timeout is the maximum duration of each primes command.
	Timeout time.Duration
	// Threads is the worker count of primes commands (0 for the service default).
	Threads int
	// HexOutput displays arithmetic results in hexadecimal.
	HexOutput bool
}

// REPL is an interactive big-number calculator with a prime sieve command.
type REPL struct {
	config REPLConfig
	svc    service.Service
	in     io.Reader
	out    io.Writer
}

// NewREPL creates a new REPL instance.
//
// Parameters:
//   - svc: The service evaluating arithmetic and sieve commands.
//   - config: REPL configuration.
//
// Returns:
//   - *REPL: A new REPL instance reading stdin and writing stdout.
func NewREPL(svc service.Service, config REPLConfig) *REPL {
	if config.Timeout <= 0 {
		config.Timeout = time.Minute
	}
	return &REPL{
		config: config,
		svc:    svc,
		in:     os.Stdin,
		out:    os.Stdout,
	}
}

// SetInput sets a custom input reader (useful for testing).
func (r *REPL) SetInput(in io.Reader) {
	r.in = in
}

// SetOutput sets a custom output writer (useful for testing).
func (r *REPL) SetOutput(out io.Writer) {
	r.out = out
}

// Start runs the session until an exit command or EOF.
func (r *REPL) Start() {
	r.printBanner()
	r.printHelp()
	fmt.Fprintln(r.out)

	reader := bufio.NewReader(r.in)
	for {
		fmt.Fprint(r.out, ColorGreen()+"primegen> "+ColorReset())

		input, err := reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if err != nil && !errors.Is(err, io.EOF) {
			fmt.Fprintf(r.out, "%sRead error: %v%s\n", ColorRed(), err, ColorReset())
			continue
		}
		if input != "" && !r.processCommand(input) {
			return
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(r.out, "\nGoodbye!")
			return
		}
	}
}

func (r *REPL) printBanner() {
	fmt.Fprintf(r.out, "\n%s╔══════════════════════════════════════════════════════════╗%s\n", ColorCyan(), ColorReset())
	fmt.Fprintf(r.out, "%s║%s     %sprimegen - Big Number Calculator%s                     %s║%s\n",
		ColorCyan(), ColorReset(), ColorBold(), ColorReset(), ColorCyan(), ColorReset())
	fmt.Fprintf(r.out, "%s╚══════════════════════════════════════════════════════════╝%s\n\n", ColorCyan(), ColorReset())
}

func (r *REPL) printHelp() {
	fmt.Fprintf(r.out, "%sAvailable commands:%s\n", ColorBold(), ColorReset())
	fmt.Fprintf(r.out, "  %s<op> <a> [b]%s      - Evaluate an operation (%s)\n", ColorYellow(), ColorReset(), opList())
	fmt.Fprintf(r.out, "  %sprimes <n> [t]%s    - Sieve the primes below n with t workers\n", ColorYellow(), ColorReset())
	fmt.Fprintf(r.out, "  %s<n>%s               - Show n in decimal and hexadecimal\n", ColorYellow(), ColorReset())
	fmt.Fprintf(r.out, "  %shexmode%s           - Toggle hexadecimal results\n", ColorYellow(), ColorReset())
	fmt.Fprintf(r.out, "  %sstatus%s            - Display current configuration\n", ColorYellow(), ColorReset())
	fmt.Fprintf(r.out, "  %shelp%s              - Display this help\n", ColorYellow(), ColorReset())
	fmt.Fprintf(r.out, "  %sexit%s / %squit%s       - Exit interactive mode\n", ColorYellow(), ColorReset(), ColorYellow(), ColorReset())
}

func opList() string {
	ops := make([]string, 0, len(service.Ops))
	for op := range service.Ops {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return strings.Join(ops, ", ")
}

// processCommand parses and executes a user command.
// Returns false if the REPL should exit.
func (r *REPL) processCommand(input string) bool {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return true
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "primes", "p":
		r.cmdPrimes(args)
	case "hexmode":
		r.cmdHexMode()
	case "status", "st":
		r.cmdStatus()
	case "help", "h", "?":
		r.printHelp()
	case "exit", "quit", "q":
		fmt.Fprintf(r.out, "%sGoodbye!%s\n", ColorGreen(), ColorReset())
		return false
	default:
		if arity, ok := service.Ops[cmd]; ok {
			r.cmdArith(cmd, arity, args)
			return true
		}
		if n, err := bignum.Parse(cmd); err == nil {
			r.printValue("value", n.String())
			fmt.Fprintf(r.out, "  hex = %s0x%s%s (%d bits)\n", ColorCyan(), n.Text(16), ColorReset(), n.BitLen())
			return true
		}
		fmt.Fprintf(r.out, "%sUnknown command: %s%s\n", ColorRed(), cmd, ColorReset())
		fmt.Fprintf(r.out, "Type %shelp%s to see available commands.\n", ColorYellow(), ColorReset())
	}
	return true
}

func (r *REPL) cmdArith(op string, arity int, args []string) {
	if len(args) != arity {
		operands := "<a> <b>"
		if arity == 1 {
			operands = "<a>"
		}
		fmt.Fprintf(r.out, "%sUsage: %s %s%s\n", ColorRed(), op, operands, ColorReset())
		return
	}
	vals := []bignum.Nat{bignum.Zero(), bignum.Zero()}
	for i, arg := range args {
		v, err := bignum.Parse(arg)
		if err != nil {
			fmt.Fprintf(r.out, "%sInvalid value: %s%s\n", ColorRed(), arg, ColorReset())
			return
		}
		vals[i] = v
	}

	res, err := r.svc.Arith(op, vals[0], vals[1])
	if err != nil {
		fmt.Fprintf(r.out, "%sError: %v%s\n", ColorRed(), err, ColorReset())
		return
	}
	if r.config.HexOutput && op != "hex" && op != "cmp" && op != "bits" {
		if n, err := bignum.Parse(res); err == nil {
			res = "0x" + n.Text(16)
		}
	}
	r.printValue(op, res)
}

func (r *REPL) cmdPrimes(args []string) {
	if len(args) == 0 || len(args) > 2 {
		fmt.Fprintf(r.out, "%sUsage: primes <n> [threads]%s\n", ColorRed(), ColorReset())
		return
	}
	limit, err := bignum.Parse(args[0])
	if err != nil {
		fmt.Fprintf(r.out, "%sInvalid value: %s%s\n", ColorRed(), args[0], ColorReset())
		return
	}
	threads := r.config.Threads
	if len(args) == 2 {
		threads, err = strconv.Atoi(args[1])
		if err != nil || threads < 1 {
			fmt.Fprintf(r.out, "%sInvalid thread count: %s%s\n", ColorRed(), args[1], ColorReset())
			return
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.config.Timeout)
	defer cancel()

	sp := newSpinner()
	sp.UpdateSuffix(fmt.Sprintf(" Sieving below %s...", limit))
	sp.Start()
	res, err := r.svc.Primes(ctx, limit, threads)
	sp.Stop()
	if err != nil {
		fmt.Fprintf(r.out, "%sError: %v%s\n", ColorRed(), err, ColorReset())
		return
	}

	source := "computed"
	if res.Cached {
		source = "cached"
	}
	fmt.Fprintf(r.out, "\n%sResult:%s\n", ColorBold(), ColorReset())
	fmt.Fprintf(r.out, "  Time:    %s%s%s (%s, %d threads)\n", ColorGreen(), FormatExecutionDuration(res.Duration), ColorReset(), source, res.Threads)
	fmt.Fprintf(r.out, "  Primes:  %s%s%s\n", ColorCyan(), formatNumberString(strconv.Itoa(len(res.Primes))), ColorReset())
	if n := len(res.Primes); n > 0 {
		fmt.Fprintf(r.out, "  Largest: %s%s%s\n", ColorGreen(), res.Primes[n-1], ColorReset())
		shown := res.Primes
		if n > 10 {
			shown = res.Primes[:10]
		}
		suffix := ""
		if n > len(shown) {
			suffix = " ..."
		}
		fmt.Fprintf(r.out, "  First:   %s%s\n", strings.Join(shown, " "), suffix)
	}
	fmt.Fprintln(r.out)
}

// printValue prints a labelled result, eliding the middle of long values.
func (r *REPL) printValue(label, s string) {
	if n := len(s); n > TruncationLimit {
		fmt.Fprintf(r.out, "  %s = %s%s...%s%s (%d digits, truncated)\n",
			label, ColorGreen(), s[:DisplayEdges], s[n-DisplayEdges:], ColorReset(), n)
		return
	}
	fmt.Fprintf(r.out, "  %s = %s%s%s\n", label, ColorGreen(), s, ColorReset())
}

func (r *REPL) cmdHexMode() {
	r.config.HexOutput = !r.config.HexOutput
	status := "disabled"
	if r.config.HexOutput {
		status = "enabled"
	}
	fmt.Fprintf(r.out, "Hexadecimal display: %s%s%s\n", ColorGreen(), status, ColorReset())
}

func (r *REPL) cmdStatus() {
	fmt.Fprintf(r.out, "\n%sCurrent configuration:%s\n", ColorBold(), ColorReset())
	fmt.Fprintf(r.out, "  Timeout:        %s%s%s\n", ColorCyan(), r.config.Timeout, ColorReset())
	threads := "auto"
	if r.config.Threads > 0 {
		threads = strconv.Itoa(r.config.Threads)
	}
	fmt.Fprintf(r.out, "  Threads:        %s%s%s\n", ColorCyan(), threads, ColorReset())
	hexStatus := "no"
	if r.config.HexOutput {
		hexStatus = "yes"
	}
	fmt.Fprintf(r.out, "  Hexadecimal:    %s%s%s\n", ColorCyan(), hexStatus, ColorReset())
	fmt.Fprintln(r.out)
}
