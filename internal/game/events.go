package game

import (
	"context"

	"github.com/Kjarrigan/base-builder/internal/build"
	"github.com/Kjarrigan/base-builder/internal/eventbus"
	"github.com/Kjarrigan/base-builder/internal/world"
)

// EventSource задаёт имя источника в конвертах шины
const EventSource = "game"

// Типы событий сессии
const (
	EventJobEnqueued      = "JobEnqueued"      // Задание поставлено в очередь
	EventJobCommitted     = "JobCommitted"     // Клетка перенесена в базовый слой
	EventJobSuperseded    = "JobSuperseded"    // Задание снято без переноса
	EventTilesPainted     = "TilesPainted"     // Прямое изменение базового слоя
	EventStagingCancelled = "StagingCancelled" // Сброс клеток предпросмотра
)

// Приоритет ниже 5: шина отбрасывает такие события при переполнении и не блокирует цикл
const eventPriority = 3

// JobEvent описывает полезную нагрузку событий очереди
type JobEvent struct {
	JobID    string           `json:"job_id"`
	X        int              `json:"x"`
	Y        int              `json:"y"`
	Category string           `json:"category"`
	State    string           `json:"state"`
	Variant  world.VariantKey `json:"variant,omitempty"` // Вариант базового тайла после переноса
}

// AreaEvent описывает полезную нагрузку событий над прямоугольником
type AreaEvent struct {
	Rect     Rect   `json:"rect"`
	Category string `json:"category,omitempty"`
	Tiles    int    `json:"tiles"`
}

func newJobEvent(job build.Job, variant world.VariantKey) JobEvent {
	return JobEvent{
		JobID:    job.ID.String(),
		X:        job.Position.X,
		Y:        job.Position.Y,
		Category: job.Category.String(),
		State:    job.State.String(),
		Variant:  variant,
	}
}

// publish отправляет событие в шину, если она подключена. Ошибки только логируются.
func (s *Session) publish(eventType string, payload any) {
	if s.bus == nil {
		return
	}
	ev, err := eventbus.NewEnvelope(EventSource, eventType, payload)
	if err != nil {
		s.log.Warn("event %s: %v", eventType, err)
		return
	}
	ev.Priority = eventPriority
	if err := s.bus.Publish(context.Background(), ev); err != nil {
		s.log.Warn("publish %s: %v", eventType, err)
	}
}
