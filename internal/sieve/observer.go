package sieve

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// ProgressUpdate describes one completed segment.
type ProgressUpdate struct {
	// Segment is the index of the segment that just completed.
	Segment int
	// Completed is the number of segments finished so far, this one included.
	Completed int
	// Total is the number of segments in the run.
	Total int
	// Primes is the number of primes the segment produced.
	Primes int
	// Value is Completed/Total, in [0, 1].
	Value float64
}

// Percent returns the progress as a percentage in [0, 100].
func (u ProgressUpdate) Percent() float64 { return u.Value * 100 }

// ─────────────────────────────────────────────────────────────────────────────
// Observer Pattern Interfaces
// ─────────────────────────────────────────────────────────────────────────────

// ProgressObserver receives a notification each time a worker reports.
// Implementations must be safe for concurrent use: workers report from
// their own goroutines.
type ProgressObserver interface {
	Update(update ProgressUpdate)
}

// ProgressSubject fans progress updates out to registered observers.
//
// ProgressSubject is safe for concurrent use.
type ProgressSubject struct {
	observers []ProgressObserver
	mu        sync.RWMutex
}

// NewProgressSubject creates a subject with no observers.
func NewProgressSubject() *ProgressSubject {
	return &ProgressSubject{}
}

// Register adds an observer. Observers are notified in registration order.
// A nil observer is ignored.
func (s *ProgressSubject) Register(observer ProgressObserver) {
	if observer == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, observer)
}

// Unregister removes an observer. Unknown observers are ignored.
func (s *ProgressSubject) Unregister(observer ProgressObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, o := range s.observers {
		if o == observer {
			s.observers = append(s.observers[:i], s.observers[i+1:]...)
			return
		}
	}
}

// Update implements ProgressObserver so a subject can be handed to workers
// directly.
func (s *ProgressSubject) Update(update ProgressUpdate) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.observers {
		o.Update(update)
	}
}

// ObserverCount returns the number of registered observers.
func (s *ProgressSubject) ObserverCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.observers)
}

// ─────────────────────────────────────────────────────────────────────────────
// Channel Observer
// ─────────────────────────────────────────────────────────────────────────────

// ChannelObserver forwards updates to a channel without blocking. When the
// channel is full the update is dropped; the next one carries the newer
// count anyway.
type ChannelObserver struct {
	channel chan<- ProgressUpdate
}

// NewChannelObserver creates an observer that sends to ch. A nil channel
// discards every update.
func NewChannelObserver(ch chan<- ProgressUpdate) *ChannelObserver {
	return &ChannelObserver{channel: ch}
}

// Update implements ProgressObserver.
func (o *ChannelObserver) Update(update ProgressUpdate) {
	if o.channel == nil {
		return
	}
	select {
	case o.channel <- update:
	default:
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Logging Observer
// ─────────────────────────────────────────────────────────────────────────────

// LoggingObserver logs progress through zerolog, at most once per threshold
// step plus once at completion.
type LoggingObserver struct {
	logger    zerolog.Logger
	threshold float64
	lastLog   float64
	mu        sync.Mutex
}

// NewLoggingObserver creates a logging observer. A non-positive threshold
// defaults to 0.1 (every 10%).
func NewLoggingObserver(logger zerolog.Logger, threshold float64) *LoggingObserver {
	if threshold <= 0 {
		threshold = 0.1
	}
	return &LoggingObserver{logger: logger, threshold: threshold}
}

// Update implements ProgressObserver.
func (o *LoggingObserver) Update(update ProgressUpdate) {
	o.mu.Lock()
	defer o.mu.Unlock()

	shouldLog := update.Value >= 1.0 ||
		o.lastLog == 0 && update.Value > 0 ||
		update.Value-o.lastLog >= o.threshold
	if !shouldLog {
		return
	}
	o.logger.Debug().
		Int("segment", update.Segment).
		Int("completed", update.Completed).
		Int("total", update.Total).
		Int("primes", update.Primes).
		Str("percent", fmt.Sprintf("%.1f%%", update.Percent())).
		Msg("sieve progress")
	o.lastLog = update.Value
}

// ─────────────────────────────────────────────────────────────────────────────
// Metrics Observer (Prometheus)
// ─────────────────────────────────────────────────────────────────────────────

var (
	progressGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "primegen_sieve_progress",
		Help: "Fraction of segments completed in the current sieve run (0.0 to 1.0)",
	})
	primesEmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "primegen_sieve_primes_emitted_total",
		Help: "Primes appended to the sink by completed segments",
	})
	segmentsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "primegen_sieve_segments_completed_total",
		Help: "Segments that finished and flushed their batch",
	})
)

// MetricsObserver exports progress to Prometheus. Counters are not labelled
// by segment, so their cardinality does not grow with the thread count.
type MetricsObserver struct {
	progress prometheus.Gauge
	primes   prometheus.Counter
	segments prometheus.Counter
}

// NewMetricsObserver returns an observer bound to the process-wide metrics.
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{progress: progressGauge, primes: primesEmitted, segments: segmentsCompleted}
}

// Update implements ProgressObserver.
func (o *MetricsObserver) Update(update ProgressUpdate) {
	o.progress.Set(update.Value)
	o.primes.Add(float64(update.Primes))
	o.segments.Inc()
}

// Reset clears the progress gauge before a new run. Counters keep
// accumulating across runs.
func (o *MetricsObserver) Reset() {
	o.progress.Set(0)
}

// ─────────────────────────────────────────────────────────────────────────────
// No-Op Observer
// ─────────────────────────────────────────────────────────────────────────────

// NoOpObserver discards all updates.
type NoOpObserver struct{}

// Update implements ProgressObserver.
func (NoOpObserver) Update(ProgressUpdate) {}
