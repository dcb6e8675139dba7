// Package orchestration runs a complete primegen job: the concurrent sieve
// with its live progress display, then the optional sort, verify and
// upload stages, and reports the outcome.
package orchestration

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/agbru/primegen/internal/blobstore"
	miniostore "github.com/agbru/primegen/internal/blobstore/minio"
	s3store "github.com/agbru/primegen/internal/blobstore/s3"
	"github.com/agbru/primegen/internal/cli"
	"github.com/agbru/primegen/internal/config"
	apperrors "github.com/agbru/primegen/internal/errors"
	"github.com/agbru/primegen/internal/logging"
	"github.com/agbru/primegen/internal/output"
	"github.com/agbru/primegen/internal/sieve"
	"github.com/agbru/primegen/internal/verify"
	"github.com/agbru/primegen/pkg/models"
)

// ProgressBufferMultiplier defines the buffer size multiplier for the progress
// channel. A larger buffer reduces the likelihood of dropped updates when the
// UI is slow to consume them.
const ProgressBufferMultiplier = 5

// StoreFactory returns the Store an upload target is written to.
type StoreFactory func(ctx context.Context, target blobstore.Target, endpoint string) (blobstore.Store, error)

// RunOptions carries the collaborators of a run.
type RunOptions struct {
	// Threads is the resolved number of segments.
	Threads int
	// Progress receives the progress display. Use io.Discard to hide it.
	Progress io.Writer
	// Stdout receives the primes when the configuration writes to "-".
	Stdout io.Writer
	// Stores builds upload destinations. Nil means DefaultStores.
	Stores StoreFactory
	// Logger records stage outcomes. Nil means the global zerolog logger.
	Logger logging.Logger
}

// DefaultStores maps a target scheme to its backend: the local file system,
// Amazon S3 or a MinIO server.
//
// For MinIO the endpoint is required; an "https://" prefix selects TLS.
func DefaultStores(ctx context.Context, target blobstore.Target, endpoint string) (blobstore.Store, error) {
	switch target.Scheme {
	case "file":
		return blobstore.NewLocalStore(""), nil
	case "s3":
		client, err := s3store.NewClient(ctx, endpoint)
		if err != nil {
			return nil, fmt.Errorf("s3 client: %w", err)
		}
		return s3store.NewClientStore(client, target.Bucket, "", s3store.DefaultUploadConfig()), nil
	case "minio":
		if endpoint == "" {
			return nil, apperrors.NewConfigError("minio upload needs --upload-endpoint")
		}
		secure := strings.HasPrefix(endpoint, "https://")
		host := strings.TrimPrefix(strings.TrimPrefix(endpoint, "https://"), "http://")
		client, err := miniostore.NewClient(host, secure)
		if err != nil {
			return nil, fmt.Errorf("minio client: %w", err)
		}
		return miniostore.NewStore(client, target.Bucket, ""), nil
	default:
		return nil, apperrors.NewConfigError("unsupported upload scheme %q", target.Scheme)
	}
}

// ExecuteSieve runs every requested stage of a job and records each one in
// the returned summary.
//
// The sieve configuration is validated before the output file is created.
// The file is written to a temporary name and only renamed into place once
// the sieve succeeded, so a failed or canceled run leaves no partial output.
// Stages after a failure are not run.
//
// Parameters:
//   - ctx: The context for managing cancellation and deadlines.
//   - cfg: The application configuration.
//   - opts: Thread count, writers and collaborators.
//
// Returns:
//   - models.RunSummary: The summary, complete up to the failing stage.
//   - error: A ConfigError, a SieveError naming the failed stage, or a
//     VerificationError.
func ExecuteSieve(ctx context.Context, cfg config.AppConfig, opts RunOptions) (models.RunSummary, error) {
	start := time.Now()
	summary := models.RunSummary{
		RunID:     uuid.NewString(),
		Limit:     cfg.Limit.String(),
		Threads:   opts.Threads,
		StartedAt: start,
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewZerologAdapter(log.Logger.With().Str("run_id", summary.RunID).Logger())
	}

	finish := func(err error) (models.RunSummary, error) {
		summary.Duration = time.Since(start)
		if err != nil {
			summary.Error = err.Error()
			logger.Error("run failed", err, logging.Duration("duration", summary.Duration))
		} else {
			logger.Info("run completed",
				logging.Int64("primes", summary.Primes),
				logging.Duration("duration", summary.Duration))
		}
		return summary, err
	}

	compression, err := output.ParseCompression(cfg.Compress)
	if err != nil {
		return finish(apperrors.NewConfigError("%v", err))
	}
	summary.Compression = string(compression)
	sieveCfg := sieve.Config{Limit: cfg.Limit, Threads: opts.Threads}
	if err := sieveCfg.Validate(); err != nil {
		return finish(fmt.Errorf("%w: %w", apperrors.NewConfigError("invalid sieve configuration"), err))
	}

	// ── Stage: generate ──────────────────────────────────────────────────
	path, err := runGenerate(ctx, cfg, sieveCfg, compression, opts, &summary)
	if err != nil {
		return finish(err)
	}
	if cfg.ToStdout() {
		return finish(nil)
	}

	// ── Stage: sort ──────────────────────────────────────────────────────
	if cfg.Sorted {
		t := time.Now()
		err := output.Rewrite(path, sieve.SortLines)
		if err := summary.AddStage(models.StageSort, time.Since(t), err); err != nil {
			return finish(apperrors.NewSieveError(models.StageSort, err))
		}
		summary.Sorted = true
		logger.Debug("output sorted", logging.String("path", path))
	} else {
		summary.SkipStage(models.StageSort)
	}

	// ── Stage: verify ────────────────────────────────────────────────────
	if cfg.Verify {
		t := time.Now()
		rep, err := auditFile(path, cfg)
		if err == nil {
			summary.Verify = toVerifySummary(rep)
			if !rep.OK() {
				err = apperrors.VerificationError{Summary: rep.String()}
			}
		}
		if err := summary.AddStage(models.StageVerify, time.Since(t), err); err != nil {
			var verErr apperrors.VerificationError
			if errors.As(err, &verErr) {
				return finish(err)
			}
			return finish(apperrors.NewSieveError(models.StageVerify, err))
		}
	} else {
		summary.SkipStage(models.StageVerify)
	}

	// ── Stage: upload ────────────────────────────────────────────────────
	if cfg.Upload != "" {
		t := time.Now()
		dest, err := upload(ctx, cfg, path, opts.Stores)
		if err := summary.AddStage(models.StageUpload, time.Since(t), err); err != nil {
			return finish(apperrors.NewSieveError(models.StageUpload, err))
		}
		summary.UploadedTo = dest
		logger.Info("output uploaded", logging.String("destination", dest))
	} else {
		summary.SkipStage(models.StageUpload)
	}

	return finish(nil)
}

// runGenerate runs the sieve into the configured destination and commits
// it. It returns the final path, empty for standard output.
func runGenerate(ctx context.Context, cfg config.AppConfig, sieveCfg sieve.Config, compression output.Compression, opts RunOptions, summary *models.RunSummary) (string, error) {
	t := time.Now()

	var (
		dst   io.Writer
		file  *output.File
		bw    *bufio.Writer
		path  string
		stage = func(err error) error {
			return summary.AddStage(models.StageGenerate, time.Since(t), err)
		}
	)
	if cfg.ToStdout() {
		stdout := opts.Stdout
		if stdout == nil {
			stdout = os.Stdout
		}
		bw = bufio.NewWriterSize(stdout, 64*1024)
		dst = bw
		summary.Output = "-"
	} else {
		path = output.WithExtension(cfg.Output, compression)
		f, err := output.Create(path, compression)
		if err != nil {
			return "", apperrors.NewSieveError(models.StageGenerate, stage(err))
		}
		file, dst = f, f
		summary.Output = path
	}

	sink := sieve.NewLockedSink(dst)
	res, err := generateWithProgress(ctx, sink, sieveCfg, opts.Progress)
	summary.SmallPrimes = res.SmallPrimes
	summary.Primes = res.Primes
	if err == nil && bw != nil {
		err = bw.Flush()
	}
	if err == nil && file != nil {
		err = file.Commit()
	}
	if err != nil {
		if file != nil {
			_ = file.Abort()
		}
		_ = stage(err)
		if sieve.IsConfigError(err) {
			return "", fmt.Errorf("%w: %w", apperrors.NewConfigError("invalid sieve configuration"), err)
		}
		return "", apperrors.NewSieveError(models.StageGenerate, err)
	}

	summary.Bytes = sink.Written()
	if file != nil {
		if info, statErr := os.Stat(path); statErr == nil {
			summary.Bytes = info.Size()
		}
	}
	return path, stage(nil)
}

// generateWithProgress runs the generator while a display goroutine renders
// the progress bar. Progress fans out through a ProgressSubject to the
// display channel, the debug log and the Prometheus gauges.
func generateWithProgress(ctx context.Context, sink sieve.Sink, cfg sieve.Config, progressOut io.Writer) (sieve.Result, error) {
	if progressOut == nil {
		progressOut = io.Discard
	}
	progressChan := make(chan sieve.ProgressUpdate, cfg.Threads*ProgressBufferMultiplier)

	metrics := sieve.NewMetricsObserver()
	metrics.Reset()
	subject := sieve.NewProgressSubject()
	subject.Register(sieve.NewChannelObserver(progressChan))
	subject.Register(sieve.NewLoggingObserver(log.Logger, 0.1))
	subject.Register(metrics)

	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go cli.DisplayProgress(&displayWg, progressChan, cfg.Threads, progressOut)

	var res sieve.Result
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(progressChan)
		var err error
		res, err = sieve.NewGenerator(sink, sieve.WithObserver(subject)).Generate(gctx, cfg)
		return err
	})
	err := g.Wait()
	displayWg.Wait()
	return res, err
}

func auditFile(path string, cfg config.AppConfig) (verify.Report, error) {
	r, err := output.Open(path)
	if err != nil {
		return verify.Report{}, err
	}
	defer r.Close()
	return verify.Audit(r, cfg.Limit)
}

func toVerifySummary(rep verify.Report) *models.VerifySummary {
	return &models.VerifySummary{
		OK:         rep.OK(),
		Lines:      int64(rep.Lines),
		Expected:   int64(rep.Expected),
		Duplicates: int64(rep.Duplicates),
		Composites: int64(rep.Composites),
		Missing:    int64(rep.Missing),
		Malformed:  int64(rep.Malformed),
		OutOfRange: int64(rep.OutOfRange),
	}
}

// upload copies the committed file to cfg.Upload and returns where it went.
func upload(ctx context.Context, cfg config.AppConfig, path string, stores StoreFactory) (string, error) {
	if stores == nil {
		stores = DefaultStores
	}
	target, err := blobstore.ParseTarget(cfg.Upload)
	if err != nil {
		return "", err
	}
	store, err := stores(ctx, target, cfg.UploadEndpoint)
	if err != nil {
		return "", err
	}
	key := target.ObjectKey(filepath.Base(path))
	if err := blobstore.UploadFile(ctx, store, key, path); err != nil {
		return "", err
	}
	target.Key = key
	return target.String(), nil
}

// AnalyzeRun prints the outcome of a run in the format selected by cfg and
// returns the process exit code.
//
// Parameters:
//   - summary: The summary returned by ExecuteSieve.
//   - runErr: The error returned by ExecuteSieve.
//   - cfg: The application configuration.
//   - out: The io.Writer for the report.
//
// Returns:
//   - int: An exit code indicating success (0) or the type of failure.
func AnalyzeRun(summary models.RunSummary, runErr error, cfg config.AppConfig, out io.Writer) int {
	if cfg.JSONOutput {
		if err := cli.DisplayJSONSummary(out, summary); err != nil {
			return apperrors.ExitErrorGeneric
		}
		return apperrors.ExitCode(runErr)
	}
	if cfg.Quiet {
		if runErr != nil {
			return apperrors.HandleSieveError(runErr, summary.Duration, out, nil)
		}
		cli.DisplayQuietSummary(out, summary)
		return apperrors.ExitSuccess
	}

	cli.DisplayRunSummary(out, summary)
	if runErr != nil {
		fmt.Fprintf(out, "\nGlobal Status: Failure.\n")
		return apperrors.HandleSieveError(runErr, summary.Duration, out, cli.CLIColorProvider{})
	}
	fmt.Fprintf(out, "\nGlobal Status: Success. %s%d%s primes written.\n",
		cli.ColorGreen(), summary.Primes, cli.ColorReset())
	return apperrors.ExitSuccess
}
