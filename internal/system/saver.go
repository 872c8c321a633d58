package system

import (
	"context"
	"time"

	"github.com/l1jgo/bqworld/internal/config"
	"github.com/l1jgo/bqworld/internal/observe"
	"github.com/l1jgo/bqworld/internal/persist"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// CharacterStore loads and saves characters. persist.CharacterRepo
// implements it.
type CharacterStore interface {
	LoadCharacter(ctx context.Context, name, password string) (*persist.CharacterRecord, error)
	SaveCharacter(ctx context.Context, c persist.CharacterRecord) error
}

// LoadRequest asks for the character a session wants to play.
type LoadRequest struct {
	SessionID uint64
	Name      string
	Password  string
}

// LoadResult carries a finished load back to the game loop.
type LoadResult struct {
	SessionID uint64
	Name      string
	Record    *persist.CharacterRecord
	Err       error
}

// Saver runs store calls on worker goroutines so the game loop never waits
// on the database. Failed saves are logged and dropped.
type Saver struct {
	store   CharacterStore
	saves   chan persist.CharacterRecord
	loads   chan LoadRequest
	results chan LoadResult
	workers int
	timeout time.Duration
	metrics *observe.Metrics
	log     *zap.Logger
}

func NewSaver(store CharacterStore, cfg config.DatabaseConfig, metrics *observe.Metrics, log *zap.Logger) *Saver {
	workers := cfg.SaveWorkers
	if workers < 1 {
		workers = 1
	}
	size := cfg.SaveQueueSize
	if size < 1 {
		size = 64
	}
	timeout := cfg.SaveTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Saver{
		store:   store,
		saves:   make(chan persist.CharacterRecord, size),
		loads:   make(chan LoadRequest, size),
		results: make(chan LoadResult, size),
		workers: workers,
		timeout: timeout,
		metrics: metrics,
		log:     log,
	}
}

// Run serves requests until ctx is done, then drains queued saves.
func (s *Saver) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < s.workers; i++ {
		g.Go(func() error {
			s.work(gctx)
			return nil
		})
	}
	err := g.Wait()
	s.drain()
	return err
}

func (s *Saver) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case rec := <-s.saves:
			s.save(rec)
		case req := <-s.loads:
			s.load(ctx, req)
		}
	}
}

func (s *Saver) drain() {
	for {
		select {
		case rec := <-s.saves:
			s.save(rec)
		default:
			return
		}
	}
}

func (s *Saver) save(rec persist.CharacterRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.store.SaveCharacter(ctx, rec); err != nil {
		s.metrics.RecordSaveError()
		s.log.Error("save character failed", zap.String("name", rec.Name), zap.Error(err))
	}
}

func (s *Saver) load(ctx context.Context, req LoadRequest) {
	lctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	rec, err := s.store.LoadCharacter(lctx, req.Name, req.Password)
	res := LoadResult{SessionID: req.SessionID, Name: req.Name, Record: rec, Err: err}
	select {
	case s.results <- res:
	case <-ctx.Done():
	}
}

// Save queues rec. It reports false when the queue is full.
func (s *Saver) Save(rec persist.CharacterRecord) bool {
	select {
	case s.saves <- rec:
		return true
	default:
		s.metrics.RecordSaveError()
		s.log.Warn("save queue full, dropping save", zap.String("name", rec.Name))
		return false
	}
}

// Load queues req. The answer arrives on Results.
func (s *Saver) Load(req LoadRequest) bool {
	select {
	case s.loads <- req:
		return true
	default:
		return false
	}
}

func (s *Saver) Results() <-chan LoadResult {
	return s.results
}
