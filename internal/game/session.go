package game

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Kjarrigan/base-builder/internal/assets"
	"github.com/Kjarrigan/base-builder/internal/build"
	"github.com/Kjarrigan/base-builder/internal/eventbus"
	"github.com/Kjarrigan/base-builder/internal/logging"
	"github.com/Kjarrigan/base-builder/internal/render"
	"github.com/Kjarrigan/base-builder/internal/world"
	"github.com/Kjarrigan/base-builder/internal/world/block"
)

// Имена и оверлей слоя предпросмотра
const (
	StagingLayerName = "build_preview"
	PreviewOverlay   = "Build_Preview"
)

// DefaultFrameInterval задаёт период кадра игрового цикла (~60 FPS)
const DefaultFrameInterval = 16 * time.Millisecond

var (
	// ErrNotBuildable возвращается для категорий, которые нельзя строить
	ErrNotBuildable = errors.New("category is not buildable")
	// ErrStopped возвращается Do, если цикл сессии завершён
	ErrStopped = errors.New("session stopped")
)

// StagingAttributes содержит атрибуты отрисовки слоя предпросмотра
var StagingAttributes = world.DrawAttributes{Tint: "#8080ff", Alpha: 0.5}

// Rect описывает прямоугольник в пиксельных координатах, углы в любом порядке
type Rect struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Options содержит параметры сессии
type Options struct {
	Width, Height int
	TileSize      int

	Generate bool // Заполнить базовый слой шумом Перлина
	Seed     int64

	DrainInterval time.Duration
	FrameInterval time.Duration

	Assets  *assets.Index     // nil — стандартный тайлсет
	Bus     eventbus.EventBus // nil — без событий
	Metrics *Metrics          // nil — без метрик
	Logger  *logging.Logger   // nil — логгер компонента "game"
}

// Stats содержит счётчики сессии
type Stats struct {
	Frames     uint64 `json:"frames"`
	Enqueued   uint64 `json:"enqueued"`
	Committed  uint64 `json:"committed"`
	Superseded uint64 `json:"superseded"`
	QueueDepth int    `json:"queue_depth"`
}

// Session владеет стеком слоев, очередью строительства и индексом ассетов.
// Все изменения выполняются в одной горутине: либо вызывающей (до Run),
// либо в цикле Run через Do.
type Session struct {
	stack     *world.LayerStack
	base      *world.Layer
	staging   *world.Layer
	queue     *build.Queue
	scheduler *build.Scheduler
	index     *assets.Index
	bus       eventbus.EventBus
	metrics   *Metrics
	log       *logging.Logger

	frameInterval time.Duration
	actions       chan func(*Session)
	stopped       chan struct{}
	stats         Stats
}

// NewSession создаёт сессию. Индекс ассетов проверяется сразу: отсутствующий
// вариант — ошибка запуска, а не пустая клетка во время игры.
func NewSession(opts Options) (*Session, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("world size must be positive, got %dx%d", opts.Width, opts.Height)
	}
	index := opts.Assets
	if index == nil {
		index = assets.Default()
	}
	if err := index.Validate(); err != nil {
		return nil, fmt.Errorf("asset index: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.GetGameLogger()
	}
	frame := opts.FrameInterval
	if frame <= 0 {
		frame = DefaultFrameInterval
	}

	var gridOpts []world.GridOption
	if opts.TileSize > 0 {
		gridOpts = append(gridOpts, world.WithTileSize(opts.TileSize))
	}
	stack := world.NewLayerStack(opts.Width, opts.Height, block.Ground, gridOpts...)
	if opts.Generate {
		world.NewTerrainGenerator(opts.Seed).Generate(stack.Base().Grid)
	}
	staging := stack.AddLayer(StagingLayerName, block.Blank, StagingAttributes)

	queue := build.NewQueue()
	s := &Session{
		stack:         stack,
		base:          stack.Base(),
		staging:       staging,
		queue:         queue,
		scheduler:     build.NewScheduler(queue, stack.Base(), staging, opts.DrainInterval),
		index:         index,
		bus:           opts.Bus,
		metrics:       opts.Metrics,
		log:           logger,
		frameInterval: frame,
		actions:       make(chan func(*Session), 64),
		stopped:       make(chan struct{}),
	}

	s.log.Info("🧱 Session: мир %dx%d, тайл %dpx, интервал переноса %s",
		opts.Width, opts.Height, stack.Base().Grid.TileSize(), s.scheduler.Interval)
	return s, nil
}

// Stack возвращает стек слоев
func (s *Session) Stack() *world.LayerStack { return s.stack }

// Base возвращает базовый слой
func (s *Session) Base() *world.Layer { return s.base }

// Staging возвращает слой предпросмотра
func (s *Session) Staging() *world.Layer { return s.staging }

// Assets возвращает индекс ассетов
func (s *Session) Assets() *assets.Index { return s.index }

// Queue возвращает снимок ожидающих заданий
func (s *Session) Queue() []build.Job { return s.queue.Pending() }

// Stats возвращает счётчики сессии
func (s *Session) Stats() Stats {
	st := s.stats
	st.QueueDepth = s.queue.Len()
	return st
}

// Stage помечает клетки прямоугольника для строительства категорией category.
// Клетки предпросмотра меняются сразу, а в очередь ставится по заданию на клетку.
// Повторная разметка той же клетки добавляет ещё одно задание.
func (s *Session) Stage(r Rect, category block.Category) ([]build.Job, error) {
	if !category.Buildable() {
		return nil, fmt.Errorf("%w: %s", ErrNotBuildable, category)
	}

	tiles := s.staging.Grid.TilesInRectangle(r.X1, r.Y1, r.X2, r.Y2)
	jobs := make([]build.Job, 0, len(tiles))
	for _, t := range tiles {
		s.staging.Grid.ApplyAndPropagate(t, category)
		s.staging.Grid.AddOverlay(t, PreviewOverlay)

		job := s.queue.Enqueue(t.Position(), category)
		jobs = append(jobs, job)
		s.publish(EventJobEnqueued, newJobEvent(job, ""))
	}

	s.stats.Enqueued += uint64(len(jobs))
	if s.metrics != nil {
		s.metrics.enqueued.Add(float64(len(jobs)))
		s.metrics.queueDepth.Set(float64(s.queue.Len()))
	}
	if len(jobs) > 0 {
		s.log.Debug("staged %d %s tiles, queue=%d", len(jobs), category, s.queue.Len())
	}
	return jobs, nil
}

// Cancel сбрасывает клетки предпросмотра. Их задания остаются в очереди
// и при переносе завершаются как superseded.
func (s *Session) Cancel(r Rect) int {
	count := 0
	for _, t := range s.staging.Grid.TilesInRectangle(r.X1, r.Y1, r.X2, r.Y2) {
		if t.Category() == s.staging.Default && len(t.Overlays()) == 0 {
			continue
		}
		s.staging.Grid.ApplyAndPropagate(t, s.staging.Default)
		s.staging.Grid.ClearOverlays(t)
		count++
	}
	if count > 0 {
		s.publish(EventStagingCancelled, AreaEvent{Rect: r, Tiles: count})
		s.log.Debug("cancelled %d staged tiles", count)
	}
	return count
}

// Paint сразу меняет категорию клеток базового слоя, минуя очередь
func (s *Session) Paint(r Rect, category block.Category) (int, error) {
	if !category.Buildable() {
		return 0, fmt.Errorf("%w: %s", ErrNotBuildable, category)
	}
	tiles := s.base.Grid.TilesInRectangle(r.X1, r.Y1, r.X2, r.Y2)
	for _, t := range tiles {
		s.base.Grid.ApplyAndPropagate(t, category)
	}
	if len(tiles) > 0 {
		s.publish(EventTilesPainted, AreaEvent{Rect: r, Category: category.String(), Tiles: len(tiles)})
	}
	return len(tiles), nil
}

// Update выполняет один кадр: не больше одного переноса из очереди
func (s *Session) Update(now time.Time) (build.DrainResult, bool) {
	s.stats.Frames++

	start := time.Now()
	result, ok := s.scheduler.Update(now)
	if !ok {
		return result, false
	}

	if s.metrics != nil {
		s.metrics.drainDuration.Observe(time.Since(start).Seconds())
		s.metrics.queueDepth.Set(float64(s.queue.Len()))
	}

	switch result.Job.State {
	case build.JobCommitted:
		s.stats.Committed++
		if s.metrics != nil {
			s.metrics.committed.Inc()
		}
		var variant world.VariantKey
		if t, found := s.base.Grid.Tile(result.Job.Position); found {
			variant = t.VariantKey()
		}
		ev := newJobEvent(result.Job, variant)
		ev.Category = result.Committed.String()
		s.publish(EventJobCommitted, ev)
		s.log.Debug("committed %s at %s, queue=%d", result.Committed, result.Job.Position, s.queue.Len())
	case build.JobSuperseded:
		s.stats.Superseded++
		if s.metrics != nil {
			s.metrics.superseded.Inc()
		}
		s.publish(EventJobSuperseded, newJobEvent(result.Job, ""))
		s.log.Debug("superseded job %s at %s", result.Job.ID, result.Job.Position)
	}
	return result, true
}

// Frame собирает текущий кадр без побочных эффектов
func (s *Session) Frame() *render.Frame {
	return render.Compose(s.stack, s.index)
}

// Redraw перекомпоновывает кадр, только если слои менялись, и сбрасывает изменения.
// Вызывается владельцем цикла отрисовки; чтение через Frame изменения не трогает.
func (s *Session) Redraw() (*render.Frame, bool) {
	if !s.stack.HasChanges() {
		return nil, false
	}
	f := render.Compose(s.stack, s.index)
	s.stack.ClearChanges()
	return f, true
}

// Dirty сообщает, менялся ли какой-либо слой с последнего Redraw
func (s *Session) Dirty() bool {
	return s.stack.HasChanges()
}

// Run крутит игровой цикл до отмены ctx: кадры по тикеру и действия из Do
func (s *Session) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.frameInterval)
	defer ticker.Stop()
	defer close(s.stopped)

	s.log.Info("▶️ Игровой цикл запущен (кадр %s)", s.frameInterval)
	for {
		select {
		case <-ctx.Done():
			s.log.Info("⏹️ Игровой цикл остановлен: кадров %d, построено %d", s.stats.Frames, s.stats.Committed)
			return nil
		case fn := <-s.actions:
			fn(s)
		case now := <-ticker.C:
			s.Update(now)
		}
	}
}

// Do выполняет fn в горутине игрового цикла и ждёт завершения.
// Требует запущенного Run. Если ctx истёк раньше, чем цикл взялся за fn,
// действие не выполняется и возвращается ошибка ctx.
func (s *Session) Do(ctx context.Context, fn func(*Session)) error {
	done := make(chan struct{})
	// claimed решает гонку между циклом и истёкшим ctx: действие либо выполнено, либо отменено
	var claimed atomic.Bool
	wrapped := func(s *Session) {
		defer close(done)
		if !claimed.CompareAndSwap(false, true) {
			return
		}
		fn(s)
	}

	select {
	case s.actions <- wrapped:
	case <-s.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-done:
		return nil
	case <-s.stopped:
		// Действие могло быть принято до остановки цикла
		select {
		case <-done:
			return nil
		default:
			return ErrStopped
		}
	case <-ctx.Done():
		if claimed.CompareAndSwap(false, true) {
			return ctx.Err()
		}
		// Цикл уже начал выполнять fn, дожидаемся результата
		<-done
		return nil
	}
}
