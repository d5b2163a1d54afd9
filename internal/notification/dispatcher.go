package notification

import (
	"context"
	"log"
	"time"

	"go.uber.org/fx"
)

// EmailDispatcher periodically delivers the queued email fan-out for
// published notifications. It only clears the pending flag; it never touches
// the publication lifecycle.
type EmailDispatcher struct {
	service *NotificationService
}

func NewEmailDispatcher(service *NotificationService) *EmailDispatcher {
	return &EmailDispatcher{service: service}
}

// Start runs the background goroutine checking for pending emails.
func (d *EmailDispatcher) Start(lc fx.Lifecycle) {
	interval := time.Minute
	ticker := time.NewTicker(interval)
	done := make(chan bool)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Printf("Starting notification email dispatcher (checking every %v)...", interval)
			go func() {
				dispatchCtx := context.Background()
				for {
					select {
					case <-ticker.C:
						d.service.SendPendingEmails(dispatchCtx)
					case <-done:
						return
					}
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Println("Stopping notification email dispatcher...")
			ticker.Stop()
			done <- true
			return nil
		},
	})
}
