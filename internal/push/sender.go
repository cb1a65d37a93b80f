package push

import (
	"context"
	"encoding/json"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/jobboard/internal/logger"
	"github.com/jobboard/internal/repository"
)

// Sender delivers Web Push notifications directly over VAPID.
// Subscriptions live in Postgres; endpoints that the push service reports
// gone (404/410) are pruned on the fly. A Sender with nil options is a no-op.
type Sender struct {
	repo  *repository.PushRepository
	vapid *webpush.Options
}

func NewSender(repo *repository.PushRepository, keys *VAPIDKeys) *Sender {
	s := &Sender{repo: repo}
	if keys != nil && keys.PublicKey != "" && keys.PrivateKey != "" {
		s.vapid = &webpush.Options{
			Subscriber:      "jobboard-api",
			VAPIDPublicKey:  keys.PublicKey,
			VAPIDPrivateKey: keys.PrivateKey,
			TTL:             30,
		}
	}
	return s
}

// Notify sends a notification to every endpoint the user has registered.
// Errors are logged, never returned: push is best effort.
func (s *Sender) Notify(ctx context.Context, userID, title, body string, data map[string]string) {
	if s.vapid == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	subs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		logger.Errorf("push notify list user=%s: %v", userID, err)
		return
	}
	if len(subs) == 0 {
		return
	}

	payload, _ := json.Marshal(map[string]any{"title": title, "body": body, "data": data})
	for i := range subs {
		sub := &subs[i]
		wpSub := &webpush.Subscription{
			Endpoint: sub.Endpoint,
			Keys:     webpush.Keys{P256dh: sub.P256dh, Auth: sub.Auth},
		}
		resp, err := webpush.SendNotificationWithContext(ctx, payload, wpSub, s.vapid)
		if err != nil {
			logger.Errorf("push send %s: %v", truncEndpoint(sub.Endpoint), err)
			continue
		}
		resp.Body.Close()
		if resp.StatusCode == 410 || resp.StatusCode == 404 {
			if err := s.repo.DeleteByEndpoint(ctx, sub.Endpoint); err != nil {
				logger.Errorf("push prune %s: %v", truncEndpoint(sub.Endpoint), err)
			}
		}
	}
}

func truncEndpoint(e string) string {
	if len(e) > 50 {
		return e[:50]
	}
	return e
}
