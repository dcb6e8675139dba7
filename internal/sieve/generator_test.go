package sieve_test

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/agbru/primegen/internal/bignum"
	"github.com/agbru/primegen/internal/sieve"
	"github.com/agbru/primegen/internal/sieve/mocks"
	"github.com/agbru/primegen/internal/testutil"
)

func run(t *testing.T, limit uint64, threads int) (string, sieve.Result) {
	t.Helper()
	var out bytes.Buffer
	g := sieve.NewGenerator(sieve.NewLockedSink(&out))
	res, err := g.Generate(context.Background(), sieve.Config{Limit: bignum.New(limit), Threads: threads})
	if err != nil {
		t.Fatalf("Generate(%d, %d) error = %v", limit, threads, err)
	}
	return out.String(), res
}

func sortedValues(t *testing.T, s string) []uint64 {
	t.Helper()
	vals, err := testutil.ParseLines(s)
	if err != nil {
		t.Fatalf("malformed output: %v", err)
	}
	slices.Sort(vals)
	return vals
}

func TestGenerate_IndependentOfThreadCount(t *testing.T) {
	defer goleak.VerifyNone(t)

	want := testutil.ReferencePrimes(100)
	for _, threads := range []int{1, 2, 4, 10} {
		t.Run(fmt.Sprintf("threads=%d", threads), func(t *testing.T) {
			out, res := run(t, 100, threads)
			got := sortedValues(t, out)
			if len(got) != 25 {
				t.Errorf("got %d primes, want 25", len(got))
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("primes below 100 mismatch (-want +got):\n%s", diff)
			}
			if res.Primes != 25 || res.Threads != threads {
				t.Errorf("Result = %+v", res)
			}
		})
	}
}

func TestGenerate_EightThreadsNoDuplicatesOrGaps(t *testing.T) {
	defer goleak.VerifyNone(t)

	out, _ := run(t, 1000, 8)
	if !strings.HasSuffix(out, "\n") {
		t.Fatalf("output does not end with a newline")
	}
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	seen := make(map[string]bool, len(lines))
	for _, l := range lines {
		if seen[l] {
			t.Errorf("duplicate prime %s", l)
		}
		seen[l] = true
	}
	got := sortedValues(t, out)
	if diff := cmp.Diff(testutil.ReferencePrimes(1000), got); diff != "" {
		t.Errorf("primes below 1000 mismatch (-want +got):\n%s", diff)
	}
}

// Within each segment's batch primes are ascending, so the output splits
// into at most `threads` ascending runs.
func TestGenerate_BatchesAreContiguous(t *testing.T) {
	out, _ := run(t, 100000, 6)
	vals, err := testutil.ParseLines(out)
	if err != nil {
		t.Fatal(err)
	}
	runs := 1
	for i := 1; i < len(vals); i++ {
		if vals[i] < vals[i-1] {
			runs++
		}
	}
	if runs > 6 {
		t.Errorf("output has %d ascending runs, want at most 6", runs)
	}
}

func TestGenerate_SmallLimits(t *testing.T) {
	t.Parallel()
	tests := []struct {
		limit   uint64
		threads int
		want    string
	}{
		{1, 1, ""},
		{2, 1, ""},
		{2, 2, ""},
		{3, 1, "2\n"},
		{3, 3, "2\n"},
		{10, 10, "2\n3\n5\n7\n"},
	}
	for _, tt := range tests {
		out, _ := run(t, tt.limit, tt.threads)
		var sorted bytes.Buffer
		if err := sieve.SortLines(strings.NewReader(out), &sorted); err != nil {
			t.Fatal(err)
		}
		if sorted.String() != tt.want {
			t.Errorf("limit=%d threads=%d: got %q, want %q", tt.limit, tt.threads, sorted.String(), tt.want)
		}
	}
}

func TestGenerate_ConfigErrorsTouchNoSink(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		cfg  sieve.Config
		want error
	}{
		{"zero limit", sieve.Config{Limit: bignum.Zero(), Threads: 4}, sieve.ErrZeroLimit},
		{"zero threads", sieve.Config{Limit: bignum.New(100), Threads: 0}, sieve.ErrZeroThreads},
		{"more threads than values", sieve.Config{Limit: bignum.New(3), Threads: 4}, sieve.ErrTooManyThreads},
		{"segment wider than a bitset", sieve.Config{Limit: bignum.One().Lsh(70), Threads: 2}, sieve.ErrSegmentTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)
			sink := mocks.NewMockSink(ctrl) // any Append call fails the test

			_, err := sieve.NewGenerator(sink).Generate(context.Background(), tt.cfg)
			if !errors.Is(err, tt.want) {
				t.Errorf("Generate() error = %v, want %v", err, tt.want)
			}
			if !sieve.IsConfigError(err) {
				t.Errorf("IsConfigError(%v) = false", err)
			}
		})
	}
}

func TestConfigValidate_SegmentSize(t *testing.T) {
	t.Parallel()
	huge := sieve.Config{Limit: bignum.One().Lsh(70), Threads: 2}
	if err := huge.Validate(); !errors.Is(err, sieve.ErrSegmentTooLarge) {
		t.Errorf("Validate(2^70, 2) = %v, want ErrSegmentTooLarge", err)
	}
	fits := sieve.Config{Limit: bignum.One().Lsh(40), Threads: 4}
	if err := fits.Validate(); err != nil {
		t.Errorf("Validate(2^40, 4) = %v, want nil", err)
	}
}

func TestGenerate_SinkFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctrl := gomock.NewController(t)
	sink := mocks.NewMockSink(ctrl)
	boom := errors.New("disk full")
	sink.EXPECT().Append(gomock.Any()).Return(boom).Times(4)

	_, err := sieve.NewGenerator(sink).Generate(context.Background(), sieve.Config{Limit: bignum.New(1000), Threads: 4})
	if !errors.Is(err, boom) {
		t.Errorf("Generate() error = %v, want %v", err, boom)
	}
}

func TestGenerate_Canceled(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	_, err := sieve.NewGenerator(sieve.NewLockedSink(&out)).Generate(ctx, sieve.Config{Limit: bignum.New(100000), Threads: 4})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Generate() error = %v, want context.Canceled", err)
	}
	if out.Len() != 0 {
		t.Errorf("canceled run wrote %d bytes", out.Len())
	}
}

type recordingObserver struct {
	mu      sync.Mutex
	updates []sieve.ProgressUpdate
}

func (r *recordingObserver) Update(u sieve.ProgressUpdate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, u)
}

func TestGenerate_ProgressReachesOneHundredPercent(t *testing.T) {
	t.Parallel()
	rec := &recordingObserver{}
	subject := sieve.NewProgressSubject()
	subject.Register(rec)
	subject.Register(sieve.NoOpObserver{})

	var out bytes.Buffer
	g := sieve.NewGenerator(sieve.NewLockedSink(&out), sieve.WithObserver(subject))
	res, err := g.Generate(context.Background(), sieve.Config{Limit: bignum.New(5000), Threads: 5})
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.updates) != 5 {
		t.Fatalf("got %d updates, want one per segment", len(rec.updates))
	}
	completed := make([]int, 0, 5)
	var primes int
	for _, u := range rec.updates {
		if u.Value > 1 || u.Total != 5 {
			t.Errorf("bad update %+v", u)
		}
		completed = append(completed, u.Completed)
		primes += u.Primes
	}
	slices.Sort(completed)
	if diff := cmp.Diff([]int{1, 2, 3, 4, 5}, completed); diff != "" {
		t.Errorf("completed counts mismatch (-want +got):\n%s", diff)
	}
	if int64(primes) != res.Primes || res.Primes != 669 {
		t.Errorf("primes from updates = %d, result = %d, want 669", primes, res.Primes)
	}
}

// goldenEntry mirrors the records written by cmd/generate-golden.
type goldenEntry struct {
	Limit  string `json:"limit"`
	Count  int    `json:"count"`
	Last   string `json:"last"`
	Sum    string `json:"sum"`
	SHA256 string `json:"sha256"`
}

func TestGenerate_AgainstGoldenFile(t *testing.T) {
	file, err := os.Open(filepath.Join("testdata", "primes_golden.json"))
	if err != nil {
		t.Fatalf("Failed to open golden file: %v. Did you run 'go run ./cmd/generate-golden'?", err)
	}
	defer file.Close()

	var cases []goldenEntry
	if err := json.NewDecoder(file).Decode(&cases); err != nil {
		t.Fatalf("Failed to decode golden file: %v", err)
	}

	for _, tc := range cases {
		for _, threads := range []int{1, 3} {
			t.Run(fmt.Sprintf("limit=%s/threads=%d", tc.Limit, threads), func(t *testing.T) {
				t.Parallel()
				limit := bignum.MustParse(tc.Limit)
				if bignum.New(uint64(threads)).Greater(limit) {
					t.Skip("fewer values than threads")
				}
				var raw, sorted bytes.Buffer
				res, err := sieve.NewGenerator(sieve.NewLockedSink(&raw)).
					Generate(context.Background(), sieve.Config{Limit: limit, Threads: threads})
				if err != nil {
					t.Fatal(err)
				}
				if err := sieve.SortLines(&raw, &sorted); err != nil {
					t.Fatal(err)
				}
				if res.Primes != int64(tc.Count) {
					t.Errorf("count = %d, want %d", res.Primes, tc.Count)
				}
				sum := sha256.Sum256(sorted.Bytes())
				if got := hex.EncodeToString(sum[:]); got != tc.SHA256 {
					t.Errorf("sha256 = %s, want %s", got, tc.SHA256)
				}
			})
		}
	}
}

func BenchmarkGenerate(b *testing.B) {
	for _, threads := range []int{1, 4} {
		b.Run(fmt.Sprintf("threads=%d", threads), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				var out bytes.Buffer
				g := sieve.NewGenerator(sieve.NewLockedSink(&out))
				if _, err := g.Generate(context.Background(), sieve.Config{Limit: bignum.New(1_000_000), Threads: threads}); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
