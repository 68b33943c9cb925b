package build

import (
	"time"

	"github.com/Kjarrigan/base-builder/internal/vec"
	"github.com/Kjarrigan/base-builder/internal/world"
	"github.com/Kjarrigan/base-builder/internal/world/block"
	"github.com/google/uuid"
)

// JobState описывает состояние задания строительства
type JobState uint8

const (
	JobPending    JobState = iota // В очереди, тайл ждёт в слое предпросмотра
	JobCommitted                  // Перенесён в базовый слой
	JobSuperseded                 // Снят с очереди без переноса: тайл предпросмотра уже сброшен
)

func (s JobState) String() string {
	switch s {
	case JobPending:
		return "pending"
	case JobCommitted:
		return "committed"
	case JobSuperseded:
		return "superseded"
	default:
		return "unknown"
	}
}

// MarshalText реализует encoding.TextMarshaler
func (s JobState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Job описывает запрос на перенос клетки из слоя предпросмотра в базовый слой
type Job struct {
	ID         uuid.UUID      `json:"id"`
	Position   vec.Vec2       `json:"position"`
	Category   block.Category `json:"category"` // Категория на момент постановки, только для информации
	EnqueuedAt time.Time      `json:"enqueued_at"`
	State      JobState       `json:"state"`
}

// DrainResult описывает результат снятия одного задания
type DrainResult struct {
	Job       Job
	Committed block.Category // Категория, записанная в базовый слой (если JobCommitted)
}

// Queue представляет FIFO очередь заданий строительства.
// Каждое задание снимается ровно один раз. Очередь не потокобезопасна.
type Queue struct {
	jobs []Job
	now  func() time.Time
}

// NewQueue создаёт пустую очередь
func NewQueue() *Queue {
	return &Queue{now: time.Now}
}

// Enqueue добавляет задание в конец очереди.
// Одна и та же клетка может стоять в очереди несколько раз.
func (q *Queue) Enqueue(pos vec.Vec2, category block.Category) Job {
	job := Job{
		ID:         uuid.New(),
		Position:   pos,
		Category:   category,
		EnqueuedAt: q.now(),
		State:      JobPending,
	}
	q.jobs = append(q.jobs, job)
	return job
}

// Len возвращает количество ожидающих заданий
func (q *Queue) Len() int {
	return len(q.jobs)
}

// Pending возвращает копию ожидающих заданий в порядке выполнения
func (q *Queue) Pending() []Job {
	out := make([]Job, len(q.jobs))
	copy(out, q.jobs)
	return out
}

func (q *Queue) pop() (Job, bool) {
	if len(q.jobs) == 0 {
		return Job{}, false
	}
	job := q.jobs[0]
	q.jobs[0] = Job{}
	q.jobs = q.jobs[1:]
	return job, true
}

// DrainOne снимает самое старое задание и переносит клетку в базовый слой.
//
// Категория читается из слоя предпросмотра в момент переноса (последняя запись побеждает).
// Если тайл предпросмотра уже сброшен в категорию слоя по умолчанию, задание
// завершается как JobSuperseded. Пустая очередь возвращает false.
func (q *Queue) DrainOne(base, staging *world.Layer) (DrainResult, bool) {
	job, ok := q.pop()
	if !ok {
		return DrainResult{}, false
	}

	pending, okStaging := staging.Grid.Tile(job.Position)
	target, okBase := base.Grid.Tile(job.Position)
	if !okStaging || !okBase || pending.Category() == staging.Default {
		job.State = JobSuperseded
		return DrainResult{Job: job}, true
	}

	category := pending.Category()
	base.Grid.ApplyAndPropagate(target, category)

	// Слой предпросмотра поддерживает собственные соединения независимо от базы
	staging.Grid.ApplyAndPropagate(pending, staging.Default)
	staging.Grid.ClearOverlays(pending)

	job.State = JobCommitted
	return DrainResult{Job: job, Committed: category}, true
}
