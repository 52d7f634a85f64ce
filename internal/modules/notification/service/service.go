package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/hsik0225/dropthecode/internal/model"
	"github.com/hsik0225/dropthecode/internal/modules/notification/repository"
)

// ChannelFor names the redis pub/sub channel carrying one member's
// notifications.
func ChannelFor(memberID uuid.UUID) string {
	return fmt.Sprintf("user_notifications:%s", memberID)
}

type NotificationService interface {
	NotifyReviewEvent(ctx context.Context, recipientID, reviewID uuid.UUID, message string)
	GetNotifications(ctx context.Context, memberID uuid.UUID, limit, offset int) ([]model.Notification, error)
	MarkAsRead(ctx context.Context, memberID, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, memberID uuid.UUID) error
	UnreadCount(ctx context.Context, memberID uuid.UUID) (int64, error)
}

type notificationService struct {
	repo        repository.NotificationRepository
	redisClient *redis.Client
}

func NewNotificationService(repo repository.NotificationRepository, redisClient *redis.Client) NotificationService {
	return &notificationService{repo: repo, redisClient: redisClient}
}

// NotifyReviewEvent stores the notification and fans it out over redis for
// connected websocket clients. Failures are logged, never propagated: a
// missed notification must not fail the review transition that caused it.
func (s *notificationService) NotifyReviewEvent(ctx context.Context, recipientID, reviewID uuid.UUID, message string) {
	notification := &model.Notification{
		MemberID: recipientID,
		ReviewID: reviewID,
		Message:  message,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		log.Printf("failed to store notification for member %s: %v", recipientID, err)
		return
	}

	if s.redisClient == nil {
		return
	}

	payload, err := json.Marshal(notification)
	if err != nil {
		return
	}
	if err := s.redisClient.Publish(ctx, ChannelFor(recipientID), payload).Err(); err != nil {
		log.Printf("failed to publish notification for member %s: %v", recipientID, err)
	}
}

func (s *notificationService) GetNotifications(ctx context.Context, memberID uuid.UUID, limit, offset int) ([]model.Notification, error) {
	return s.repo.FindByMember(ctx, memberID, limit, offset)
}

func (s *notificationService) MarkAsRead(ctx context.Context, memberID, id uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, memberID, id)
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, memberID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, memberID)
}

func (s *notificationService) UnreadCount(ctx context.Context, memberID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, memberID)
}
