// Package webhook delivers signed JSON webhooks and verifies inbound ones.
//
// Sender.Send posts a payload and retries it through the retry package:
// network failures, timeouts, 5xx and 408/425/429 responses are retried with
// backoff, while other 4xx responses stop at once with ErrPermanentFailure.
// A CircuitBreaker shared per destination refuses deliveries after repeated
// failures and probes the endpoint again once its recovery timeout passes.
//
//	sender := webhook.NewSender()
//	err := sender.Send(ctx, callbackURL, event,
//	    webhook.WithSignature(secret),
//	    webhook.WithCircuitBreaker(breaker),
//	    webhook.WithOnDelivery(func(r webhook.DeliveryResult) { ... }),
//	)
//
// Payloads are signed with HMAC-SHA256 over "{unix timestamp}.{body}" and the
// result travels in the X-Webhook-Signature, X-Webhook-Timestamp and
// X-Webhook-ID headers. VerifyRequest checks those headers on an inbound
// request and returns the verified body.
package webhook
