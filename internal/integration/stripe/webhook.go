package stripe

import (
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/clublaunch/payments-service/internal/domain"
)

// VerifyEvent проверяет подпись вебхука и десериализует событие.
// Несовпадение версии API не считается ошибкой: payload разбирается
// по устойчивым полям, а не по полной схеме версии.
func VerifyEvent(payload []byte, sigHeader, secret string) (stripe.Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return stripe.Event{}, domain.NewSignatureError("stripe", err)
	}

	return event, nil
}
