package build

import (
	"time"

	"github.com/Kjarrigan/base-builder/internal/world"
)

// DefaultDrainInterval задаёт минимальную паузу между переносами
const DefaultDrainInterval = 50 * time.Millisecond

// Scheduler ограничивает темп очереди: не больше одного задания за интервал.
// Update вызывается игровым циклом каждый кадр; таймеров и горутин нет.
type Scheduler struct {
	Interval time.Duration

	queue     *Queue
	base      *world.Layer
	staging   *world.Layer
	lastDrain time.Time
}

// NewScheduler создаёт планировщик для пары слоев
func NewScheduler(queue *Queue, base, staging *world.Layer, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultDrainInterval
	}
	return &Scheduler{
		Interval: interval,
		queue:    queue,
		base:     base,
		staging:  staging,
	}
}

// Ready сообщает, прошёл ли интервал с последнего переноса
func (s *Scheduler) Ready(now time.Time) bool {
	return s.lastDrain.IsZero() || now.Sub(s.lastDrain) >= s.Interval
}

// Update выполняет не больше одного переноса, если интервал истёк
func (s *Scheduler) Update(now time.Time) (DrainResult, bool) {
	if s.queue.Len() == 0 || !s.Ready(now) {
		return DrainResult{}, false
	}

	result, ok := s.queue.DrainOne(s.base, s.staging)
	if ok {
		s.lastDrain = now
	}
	return result, ok
}

// LastDrain возвращает время последнего переноса (нулевое, если переносов не было)
func (s *Scheduler) LastDrain() time.Time {
	return s.lastDrain
}
