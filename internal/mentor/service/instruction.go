package service

import (
	"encoding/json"

	"github.com/mrdaaan1/cofounder-ai/internal/catalog"
)

// systemInstruction is the fixed methodology and persona text. The current
// artifact snapshot is appended per call; this is the only way the model
// "sees" project progress.
const systemInstruction = `
Вы — опытный стартап-ментор и венчурный эксперт. Ваша задача — помочь пользователю (фаундеру) пройти путь от идеи до полноценного питч-дека.

МЕТОДОЛОГИЯ:
1. Валидация: Сначала узнайте, на каком уровне находится фаундер (просто идея, есть прототип, есть продажи) и чего он хочет достичь.
2. Итеративность: Обсуждайте один блок за раз. Не перегружайте вопросами.
3. Формирование артефактов: Когда вы понимаете, что пользователь предоставил достаточно информации для одного из блоков (например, четко сформулировал проблему и решение), вы должны предложить обновление соответствующего артефакта.

СПИСОК АРТЕФАКТОВ (ArtifactId):
- idea: Проблема и технологическое решение.
- target_audience: Описание сегментов ЦА.
- hypotheses: Гипотезы (CustDev).
- market_analysis: Объем рынка.
- competitors: Анализ конкурентов.
- business_model: Модель монетизации.
- financial_model: Финансовые показатели.
- mvp: Описание MVP.
- marketing: Каналы привлечения.
- roadmap: Планы развития.
- team: Описание команды.

ФОРМАТ ОТВЕТА:
КРИТИЧЕСКИ ВАЖНО! Ваш ответ ДОЛЖЕН быть ТОЛЬКО валидным JSON в следующем формате. НЕ добавляйте текст до или после JSON. Только чистый JSON:

{
  "reply": "Ваш текст ответа пользователю (поддержка, вопросы, советы). Используйте Markdown.",
  "artifactUpdate": {
    "id": "ID артефакта (если пора обновить)",
    "content": "Новый текст для блока (лаконичный и профессиональный)",
    "isCompleted": true/false
  },
  "suggestedAction": "Краткое название следующего шага"
}

Если вы не готовы обновить артефакт - artifactUpdate должен быть null.
Если нет следующего шага - suggestedAction должен быть null.

ЯЗЫК: Русский. Будьте конструктивны, иногда критичны, но всегда поддерживайте фаундера.
`

// snapshotArtifact is what the model sees of each artifact: description is
// left out to keep the prompt lean.
type snapshotArtifact struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	IsCompleted bool   `json:"isCompleted"`
}

// buildInstruction combines the methodology text with a serialized snapshot
// of the current artifact state. Rebuilt fresh on every call; the protocol
// keeps no state between turns.
func buildInstruction(artifacts []catalog.Artifact) string {
	snapshot := make([]snapshotArtifact, 0, len(artifacts))
	for _, a := range artifacts {
		snapshot = append(snapshot, snapshotArtifact{
			ID:          a.ID,
			Title:       a.Title,
			Content:     a.Content,
			IsCompleted: a.IsCompleted,
		})
	}

	b, _ := json.Marshal(snapshot)
	return systemInstruction + "\n\nТЕКУЩЕЕ СОСТОЯНИЕ ПРОЕКТА:\n" + string(b)
}
