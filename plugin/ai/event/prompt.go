package event

import (
	"fmt"

	"github.com/hrygo/agenda/plugin/ai"
)

const systemPrompt = "Você extrai eventos de calendário em pt-BR. Responda APENAS com JSON válido."

const userPromptTemplate = `Extraia um evento de calendário.
Responda SOMENTE com JSON puro.
Campos: title, start, end, timezone, location, notes.
Formato start/end: YYYY-MM-DDTHH:mm:00%s
Se não houver duração, use 1 hora.
Use data_base_agora para termos relativos.

timezone: %s
tzOffset: %s
data_base_agora: %s
Texto: "%s"`

// buildPrompt returns the chat messages for one extraction. baseDate is
// already in canonical "YYYY-MM-DDTHH:mm:00±HH:MM" form.
func buildPrompt(normalizedText, baseDate, timezone, tzOffset string) []ai.Message {
	return []ai.Message{
		ai.SystemPrompt(systemPrompt),
		ai.UserMessage(fmt.Sprintf(userPromptTemplate, tzOffset, timezone, tzOffset, baseDate, normalizedText)),
	}
}
