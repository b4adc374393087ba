package notify

import (
	"context"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// Cooldown forwards at most one alert per table per period. A failed delivery
// does not start the period, so the next evaluation retries.
type Cooldown struct {
	next   Notifier
	period time.Duration
	now    func() time.Time

	mu sync.Mutex
	// until maps a table to the end of its window. The cache TTL only evicts
	// finished windows; suppression compares the stored end against now, so
	// the window follows the injected clock rather than the cache's own.
	until *ttlcache.Cache[string, time.Time]
}

// NewCooldown wraps next. A non-positive period disables suppression.
func NewCooldown(next Notifier, period time.Duration) *Cooldown {
	return &Cooldown{
		next:   next,
		period: period,
		now:    time.Now,
		until: ttlcache.New[string, time.Time](
			ttlcache.WithTTL[string, time.Time](period),
			ttlcache.WithDisableTouchOnHit[string, time.Time](),
		),
	}
}

func (c *Cooldown) Notify(ctx context.Context, a Alert) error {
	if c.period <= 0 {
		return c.next.Notify(ctx, a)
	}
	now := c.now()
	c.mu.Lock()
	if item := c.until.Get(a.Table); item != nil && now.Before(item.Value()) {
		c.mu.Unlock()
		return ErrSuppressed
	}
	c.until.Set(a.Table, now.Add(c.period), ttlcache.DefaultTTL)
	c.mu.Unlock()

	if err := c.next.Notify(ctx, a); err != nil {
		c.mu.Lock()
		c.until.Delete(a.Table)
		c.mu.Unlock()
		return err
	}
	return nil
}

// Reset forgets the cooldown of table.
func (c *Cooldown) Reset(table string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.until.Delete(table)
}
