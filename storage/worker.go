package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/joshuapare/voxstore/internal/format"
	"github.com/joshuapare/voxstore/internal/logger"
	"github.com/joshuapare/voxstore/internal/metrics"
	"github.com/joshuapare/voxstore/region"
)

// ErrClosed is returned by requests made after Close.
var ErrClosed = errors.New("storage: worker closed")

// Op identifies the kind of request a Result answers.
type Op uint8

const (
	OpLoad Op = iota + 1
	OpSave
)

func (o Op) String() string {
	switch o {
	case OpLoad:
		return "load"
	case OpSave:
		return "save"
	}
	return fmt.Sprintf("op(%d)", uint8(o))
}

// Result reports the outcome of one request. Data holds the decompressed
// payload of a successful load.
type Result struct {
	Op   Op
	Pos  region.ChunkPos
	Data []byte
	Err  error
}

// Options configures a Worker. Zero fields take the defaults in parentheses.
type Options struct {
	// Dir holds the region files. Required.
	Dir string
	// MaxOpenRegions bounds the handle cache (64).
	MaxOpenRegions int
	// IdleTimeout closes handles unused for this long (60s).
	IdleTimeout time.Duration
	// SweepInterval is how often idle handles are looked for (IdleTimeout/4).
	SweepInterval time.Duration
	// QueueSize bounds pending requests (256).
	QueueSize int
	// ResultSize bounds undelivered results (256).
	ResultSize int
	// Compression is used for saves (zlib).
	Compression region.Compression
	// Logger defaults to logger.L.
	Logger *slog.Logger
}

const (
	DefaultMaxOpenRegions = 64
	DefaultIdleTimeout    = 60 * time.Second
	DefaultQueueSize      = 256
	DefaultResultSize     = 256
)

func (o Options) withDefaults() Options {
	if o.MaxOpenRegions <= 0 {
		o.MaxOpenRegions = DefaultMaxOpenRegions
	}
	if o.IdleTimeout <= 0 {
		o.IdleTimeout = DefaultIdleTimeout
	}
	if o.SweepInterval <= 0 {
		o.SweepInterval = max(o.IdleTimeout/4, time.Millisecond)
	}
	if o.QueueSize <= 0 {
		o.QueueSize = DefaultQueueSize
	}
	if o.ResultSize <= 0 {
		o.ResultSize = DefaultResultSize
	}
	if o.Compression == 0 {
		o.Compression = format.DefaultCompression
	}
	o.Logger = logger.Or(o.Logger)
	return o
}

type request struct {
	op   Op
	pos  region.ChunkPos
	data []byte
}

// Worker serializes chunk loads and saves onto one goroutine, which owns
// every open region file.
type Worker struct {
	opts  Options
	log   *slog.Logger
	cache *handleCache

	requests chan request
	results  chan Result

	// mu guards sends on requests against Close closing it.
	mu        sync.RWMutex
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// New starts a worker for the region files in opts.Dir, creating the
// directory if needed.
func New(opts Options) (*Worker, error) {
	if opts.Dir == "" {
		return nil, errors.New("storage: region directory required")
	}
	opts = opts.withDefaults()
	if !opts.Compression.Valid() {
		return nil, fmt.Errorf("storage: %w", region.ErrUnknownCompression)
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	cache, err := newHandleCache(opts.MaxOpenRegions, opts.Logger)
	if err != nil {
		return nil, err
	}

	w := &Worker{
		opts:     opts,
		log:      opts.Logger,
		cache:    cache,
		requests: make(chan request, opts.QueueSize),
		results:  make(chan Result, opts.ResultSize),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go w.run()
	w.log.Info("storage worker started", "dir", opts.Dir, "max_open_regions", opts.MaxOpenRegions)
	return w, nil
}

// Load queues a read of chunk (cx, cz). The payload arrives as a Result.
func (w *Worker) Load(ctx context.Context, cx, cz int32) error {
	return w.enqueue(ctx, request{op: OpLoad, pos: region.ChunkPos{X: cx, Z: cz}})
}

// Save queues a write of the uncompressed payload data as chunk (cx, cz).
// The worker takes ownership of data.
func (w *Worker) Save(ctx context.Context, cx, cz int32, data []byte) error {
	return w.enqueue(ctx, request{op: OpSave, pos: region.ChunkPos{X: cx, Z: cz}, data: data})
}

func (w *Worker) enqueue(ctx context.Context, req request) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	select {
	case <-w.quit:
		return ErrClosed
	default:
	}
	select {
	case w.requests <- req:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-w.quit:
		return ErrClosed
	}
}

// Poll returns the next result without blocking.
func (w *Worker) Poll() (Result, bool) {
	select {
	case r, ok := <-w.results:
		return r, ok
	default:
		return Result{}, false
	}
}

// Results returns the result channel. It is closed once the worker has
// stopped.
func (w *Worker) Results() <-chan Result { return w.results }

// Close stops accepting requests, serves those already queued, closes every
// region file and returns the joined close errors. Results that do not fit
// in the result channel while closing are dropped.
func (w *Worker) Close() error {
	w.closeOnce.Do(func() {
		close(w.quit)
		w.mu.Lock()
		close(w.requests)
		w.mu.Unlock()
		<-w.done
	})
	return w.closeErr
}

func (w *Worker) run() {
	defer close(w.done)
	defer close(w.results)

	ticker := time.NewTicker(w.opts.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case req, ok := <-w.requests:
			if !ok {
				w.closeErr = w.cache.closeAll()
				w.log.Info("storage worker stopped", "dir", w.opts.Dir)
				return
			}
			w.deliver(w.serve(req))
		case now := <-ticker.C:
			if n := w.cache.sweep(now, w.opts.IdleTimeout); n > 0 {
				w.log.Debug("idle regions closed", "count", n, "open", w.cache.size())
			}
		}
	}
}

func (w *Worker) serve(req request) Result {
	start := time.Now()
	res := Result{Op: req.op, Pos: req.pos}
	switch req.op {
	case OpLoad:
		res.Data, res.Err = w.load(req.pos)
		metrics.Load(resultLabel(res.Err), start)
	case OpSave:
		res.Err = w.save(req.pos, req.data)
		metrics.Save(resultLabel(res.Err), start)
	}
	return res
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.Is(err, region.ErrEmptyChunk):
		return metrics.ResultEmpty
	}
	return metrics.ResultError
}

func (w *Worker) load(pos region.ChunkPos) ([]byte, error) {
	f, err := w.region(pos.Region(), false)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, region.ErrEmptyChunk
	}
	if err != nil {
		return nil, err
	}
	return f.ReadChunk(pos.X, pos.Z)
}

func (w *Worker) save(pos region.ChunkPos, data []byte) error {
	f, err := w.region(pos.Region(), true)
	if err != nil {
		return err
	}
	return f.WriteChunk(pos.X, pos.Z, data, w.opts.Compression)
}

// region returns the cached handle of rp, opening the file if needed.
func (w *Worker) region(rp region.RegionPos, create bool) (*region.File, error) {
	now := time.Now()
	if f, ok := w.cache.get(rp, now); ok {
		return f, nil
	}
	open := region.Open
	if create {
		open = region.OpenOrCreate
	}
	f, err := open(w.opts.Dir, rp.X, rp.Z, region.WithLogger(w.log))
	if err != nil {
		return nil, err
	}
	w.cache.add(rp, f, now)
	return f, nil
}

// deliver hands r to the caller, blocking while the result channel is full
// unless the worker is closing.
func (w *Worker) deliver(r Result) {
	select {
	case w.results <- r:
		return
	default:
	}
	select {
	case w.results <- r:
	case <-w.quit:
		w.log.Warn("result dropped on close", "op", r.Op, "chunk", r.Pos, "err", r.Err)
	}
}
