// Package notification pushes check-in alerts to subscribed front-desk
// browsers over web push.
package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"

	"visitor-management-backend/internal/model"
	"visitor-management-backend/internal/store"
)

// NotificationSender defines the interface for sending a web push
// notification. Tests substitute a mock.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is the real implementation backed by the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool fans check-in announcements out to every subscription.
type WorkerPool struct {
	size    int
	jobs    chan string
	store   store.Store
	webpush *webpush.Options
	sender  NotificationSender
}

// NewWorkerPool creates a pool of size workers fed by a buffered channel.
func NewWorkerPool(size int, s store.Store, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan string, size),
		store:   s,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// SetSender overrides the push transport, for tests.
func (wp *WorkerPool) SetSender(sender NotificationSender) {
	wp.sender = sender
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("notification worker %d started", id)
	for {
		select {
		case visitorID := <-wp.jobs:
			wp.announceCheckIn(ctx, visitorID)
		case <-ctx.Done():
			log.Printf("notification worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues a check-in announcement for the given visitor.
func (wp *WorkerPool) Dispatch(visitorID string) {
	wp.jobs <- visitorID
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan string {
	return wp.jobs
}

// announceCheckIn loads the visitor and sends the alert to every
// subscription.
func (wp *WorkerPool) announceCheckIn(ctx context.Context, visitorID string) {
	var subscriptions []model.PushSubscription
	if err := wp.store.DB().WithContext(ctx).Find(&subscriptions).Error; err != nil {
		log.Printf("error fetching subscriptions for visitor %s: %v", visitorID, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	label := visitorID
	visitors, err := wp.store.LoadVisitors(ctx)
	if err != nil {
		log.Printf("error loading visitors for notification: %v", err)
	} else {
		for _, v := range visitors {
			if v.ID == visitorID {
				label = v.Name
				break
			}
		}
	}

	message := fmt.Sprintf("Visitor %s has checked in.", label)
	log.Printf("sending %d notifications for visitor %s", len(subscriptions), visitorID)
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, []byte(message))
	}
}

// sendNotification sends a single web push notification, pruning
// subscriptions the push service reports as gone.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		log.Printf("subscription for endpoint %s is expired, deleting", sub.Endpoint)
		if err := wp.store.DB().WithContext(ctx).Delete(&sub).Error; err != nil {
			log.Printf("failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
