package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/taskboard-api/utils/cache"
	"github.com/sahilchouksey/taskboard-api/utils/response"
	"go.uber.org/zap"
)

const attemptWindow = 15 * time.Minute

// BruteForceProtection locks out client IPs after repeated failed logins
type BruteForceProtection struct {
	store cache.Store
	log   *zap.Logger
}

// NewBruteForceProtection creates a new brute force protection instance
func NewBruteForceProtection(store cache.Store, log *zap.Logger) *BruteForceProtection {
	return &BruteForceProtection{
		store: store,
		log:   log,
	}
}

func attemptKey(ip string) string { return fmt.Sprintf("brute_force:attempts:%s", ip) }
func lockKey(ip string) string    { return fmt.Sprintf("brute_force:lock:%s", ip) }

// CheckLockout middleware rejects requests from locked IPs with 429
func (b *BruteForceProtection) CheckLockout() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		key := lockKey(c.IP())

		locked, err := b.store.Exists(ctx, key)
		if err != nil {
			// Cache outages never block logins
			b.log.Warn("Brute force check unavailable", zap.Error(err))
			return c.Next()
		}

		if locked {
			ttl, _ := b.store.TTL(ctx, key)
			retryAfter := int(ttl.Seconds())
			if retryAfter <= 0 {
				retryAfter = 60
			}

			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))
			return response.TooManyRequests(c, fmt.Sprintf("Too many failed attempts. Try again in %d seconds.", retryAfter))
		}

		return c.Next()
	}
}

// RecordFailedAttempt records a failed login attempt and applies progressive lockouts
func (b *BruteForceProtection) RecordFailedAttempt(ctx context.Context, ip string) {
	attempts, err := b.store.IncrementWithin(ctx, attemptKey(ip), attemptWindow)
	if err != nil {
		b.log.Warn("Failed to record login attempt", zap.String("ip", ip), zap.Error(err))
		return
	}

	lockDuration := LockoutDuration(attempts)
	if lockDuration == 0 {
		return
	}

	if err := b.store.Set(ctx, lockKey(ip), "locked", lockDuration); err != nil {
		b.log.Warn("Failed to apply lockout", zap.String("ip", ip), zap.Error(err))
		return
	}
	b.log.Info("Login lockout applied",
		zap.String("ip", ip),
		zap.Int64("attempts", attempts),
		zap.Duration("duration", lockDuration),
	)
}

// RecordSuccessfulAttempt clears failed attempts on successful login
func (b *BruteForceProtection) RecordSuccessfulAttempt(ctx context.Context, ip string) {
	_ = b.store.Delete(ctx, attemptKey(ip), lockKey(ip))
}

// LockoutDuration maps a failed attempt count to a lockout period
func LockoutDuration(attempts int64) time.Duration {
	switch {
	case attempts >= 25:
		return 24 * time.Hour
	case attempts >= 10:
		return time.Hour
	case attempts >= 5:
		return 2 * time.Minute
	default:
		return 0
	}
}
