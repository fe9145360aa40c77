// Package catalog holds the fixed set of pitch-deck artifact definitions.
// Every project owns exactly one artifact per definition; ids outside this
// list never exist.
package catalog

import "time"

// Artifact is one pitch-deck section. Title and Description come from the
// catalog and never change; Content and IsCompleted are per-project state.
type Artifact struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	IsCompleted bool      `json:"is_completed"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

var definitions = []Artifact{
	{ID: "idea", Title: "Идея (Проблема и Решение)", Description: "Описание проблемы и то, как технологии её решают."},
	{ID: "target_audience", Title: "Целевая Аудитория", Description: "Кто ваши основные пользователи и клиенты."},
	{ID: "hypotheses", Title: "Гипотезы и Кастдев", Description: "Результаты проверки предположений и интервью."},
	{ID: "market_analysis", Title: "Анализ Рынка (TAM/SAM/SOM)", Description: "Объем рынка и потенциал роста."},
	{ID: "competitors", Title: "Конкурентный Анализ", Description: "Кто ваши конкуренты и ваши преимущества."},
	{ID: "business_model", Title: "Бизнес-модель", Description: "Как проект будет зарабатывать деньги."},
	{ID: "financial_model", Title: "Финансовая Модель", Description: "Основные показатели и прогнозы."},
	{ID: "mvp", Title: "Прототип и MVP", Description: "Минимально жизнеспособный продукт."},
	{ID: "marketing", Title: "Маркетинговый План", Description: "Стратегия привлечения пользователей."},
	{ID: "roadmap", Title: "Дорожная карта", Description: "Этапы развития проекта во времени."},
	{ID: "team", Title: "Команда", Description: "Ключевые роли и компетенции."},
}

var validIDs = func() map[string]struct{} {
	m := make(map[string]struct{}, len(definitions))
	for _, d := range definitions {
		m[d.ID] = struct{}{}
	}
	return m
}()

// Size is the number of artifact slots in the catalog.
func Size() int { return len(definitions) }

// ValidID reports whether id names a known artifact slot.
func ValidID(id string) bool {
	_, ok := validIDs[id]
	return ok
}

// Defaults returns a fresh artifact set with empty content and every slot
// marked incomplete, in catalog order.
func Defaults() []Artifact {
	out := make([]Artifact, len(definitions))
	copy(out, definitions)
	return out
}

// Backfill shapes stored artifacts to the catalog: the result always has one
// entry per definition in catalog order, with slots missing from stored
// filled from defaults. Stored entries with unknown ids are ignored, so a
// project saved under an older catalog loads cleanly under a newer one.
func Backfill(stored []Artifact) []Artifact {
	byID := make(map[string]Artifact, len(stored))
	for _, a := range stored {
		byID[a.ID] = a
	}

	out := make([]Artifact, 0, len(definitions))
	for _, d := range definitions {
		if s, ok := byID[d.ID]; ok {
			d.Content = s.Content
			d.IsCompleted = s.IsCompleted
			d.UpdatedAt = s.UpdatedAt
		}
		out = append(out, d)
	}
	return out
}
