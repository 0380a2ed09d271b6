package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"storefront-backend/internal/config"
	cartModel "storefront-backend/internal/domains/cart/model"
	couponModel "storefront-backend/internal/domains/coupon/model"
	"storefront-backend/internal/shared"
	"storefront-backend/pkg/logger"
)

// Scheduler registers the recurring maintenance jobs with asynq.
type Scheduler struct {
	scheduler *asynq.Scheduler
}

func NewScheduler(redisConfig config.RedisConfig) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{
			Addr:     redisConfig.Host,
			Password: redisConfig.Password,
			DB:       redisConfig.DB,
		},
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{scheduler: scheduler}
}

func (s *Scheduler) RegisterCleanupJobs() error {
	if err := s.registerAbandonExpiredCartsJob(); err != nil {
		return err
	}

	if err := s.registerDeactivateEndedCouponsJob(); err != nil {
		return err
	}

	return nil
}

// Guest carts carry a 30 day expiry; a daily sweep at a low traffic hour is
// enough to keep the active set honest.
func (s *Scheduler) registerAbandonExpiredCartsJob() error {
	payload, err := json.Marshal(cartModel.AbandonExpiredPayload{})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeAbandonExpiredCarts, payload)

	_, err = s.scheduler.Register(
		"0 3 * * *", // Daily at 3 AM
		task,
		asynq.Queue(shared.QueueCart),
		asynq.MaxRetry(2),
		asynq.Timeout(10*time.Minute),
	)
	if err != nil {
		logger.Error("Failed to register AbandonExpiredCarts job", err)
		return err
	}

	logger.Info("Registered AbandonExpiredCarts: daily at 3 AM", map[string]interface{}{})
	return nil
}

// Coupon windows close at arbitrary times; an hourly sweep keeps the admin
// listing in step with what the validator already enforces.
func (s *Scheduler) registerDeactivateEndedCouponsJob() error {
	payload, err := json.Marshal(couponModel.DeactivateEndedPayload{})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeDeactivateEndedCoupon, payload)

	_, err = s.scheduler.Register(
		"0 * * * *", // Hourly at minute 0
		task,
		asynq.Queue(shared.QueueCoupon),
		asynq.MaxRetry(2),
		asynq.Timeout(5*time.Minute),
	)
	if err != nil {
		logger.Error("Failed to register DeactivateEndedCoupons job", err)
		return err
	}

	logger.Info("Registered DeactivateEndedCoupons: hourly", map[string]interface{}{})
	return nil
}

// Start runs the scheduler loop. It blocks until Shutdown is called.
func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
