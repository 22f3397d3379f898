package notify

import (
	"fmt"
	"primor/common"
	"primor/domain/event"
	"primor/domain/worker"
	"strings"

	"github.com/fundwit/go-commons/types"
)

// NormalizePhone keeps digits only and prefixes the country code when missing.
func NormalizePhone(raw, countryCode string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	phone := b.String()
	if phone == "" || strings.HasPrefix(phone, countryCode) {
		return phone
	}
	return countryCode + phone
}

func ConfirmationLink(baseURL string, eventID, workerID types.ID) string {
	return fmt.Sprintf("%s/confirmar/escala-%s-%s", strings.TrimRight(baseURL, "/"), eventID, workerID)
}

const messageTemplate = `Olá %s! 👋

Você foi escalado para um evento:

📅 *Data:* %s
⏰ *Horário:* %s
📍 *Local:* %s
🎉 *Evento:* %s (%s)
💰 *Valor:* %s

Por favor, confirme sua presença:

✅ *Confirmar:* %s

_Primor Garçons_`

func FormatMessage(w *worker.Worker, e *event.Event, a *event.Assignment, baseURL string) string {
	return fmt.Sprintf(messageTemplate,
		w.Name,
		e.FormatDate(),
		e.FormatSchedule(),
		e.Venue,
		e.Name, e.Category,
		common.FormatMoney(a.Amount),
		ConfirmationLink(baseURL, e.ID, w.ID))
}
