package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/obadakatsha-ayatgroup/domecare-app/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ErrSlotHeld is returned when another request is booking the same doctor day.
var ErrSlotHeld = errors.New("time slot is being booked")

// releaseHoldScript deletes the hold only if it still carries our token,
// so an expired hold re-acquired by another request is left alone.
var releaseHoldScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

// cacheDayScript stores the day only while the doctor's generation still
// matches the one read before the free slots were computed.
var cacheDayScript = redis.NewScript(`
	local gen = redis.call('GET', KEYS[1]) or '0'
	if gen ~= ARGV[1] then
		return 0
	end
	redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
	return 1
`)

const (
	RedisSlotHoldKeyPrefix = "slots:hold:"
	RedisSlotDayKeyPrefix  = "slots:day:"
	RedisSlotGenKeyPrefix  = "slots:gen:"

	// generations outlive any cached day
	slotGenTTL = 24 * time.Hour

	slotDateLayout = "2006-01-02"

	// Interval for cleaning up stale mutexes
	mutexCleanupInterval = 10 * time.Minute

	// How long a mutex must be unused before cleanup
	mutexStaleThreshold = 10 * time.Minute
)

// SlotCoordinator guards slot bookings and caches daily availability.
type SlotCoordinator interface {
	Hold(ctx context.Context, doctorID uuid.UUID, date time.Time) (func(), error)
	CachedDay(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]entity.TimeSlot, bool, error)
	Generation(ctx context.Context, doctorID uuid.UUID) (int64, error)
	CacheDay(ctx context.Context, doctorID uuid.UUID, date time.Time, generation int64, slots []entity.TimeSlot) error
	Invalidate(ctx context.Context, doctorID uuid.UUID, date time.Time) error
	InvalidateDoctor(ctx context.Context, doctorID uuid.UUID) error
}

var _ SlotCoordinator = (*SlotGuard)(nil)

// SlotGuard serializes bookings of the same doctor and day and caches each
// day's free slots.
//
// A hold is taken in two steps: a per-day mutex inside this process, then
// a Redis SET NX PX key shared by every instance. Both are released by the
// returned func. Slots within a day may start anywhere, so holds never
// narrow to a single start time.
//
// Every invalidation bumps a per-doctor generation. A cached day is only
// written while the generation read before computing it is unchanged.
type SlotGuard struct {
	redisClient redis.UniversalClient
	log         *logrus.Logger
	holdTTL     time.Duration
	cacheTTL    time.Duration
	newToken    func() string

	slotMu sync.Map // map[string]*mutexWithTimestamp

	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

// mutexWithTimestamp tracks mutex usage for cleanup
type mutexWithTimestamp struct {
	mu       sync.Mutex
	lastUsed atomic.Int64 // Unix timestamp
}

// NewSlotGuard starts the mutex cleanup goroutine. Call Stop during shutdown.
func NewSlotGuard(redisClient redis.UniversalClient, log *logrus.Logger, holdTTL, cacheTTL time.Duration) *SlotGuard {
	g := &SlotGuard{
		redisClient: redisClient,
		log:         log,
		holdTTL:     holdTTL,
		cacheTTL:    cacheTTL,
		newToken:    uuid.NewString,
		stopChan:    make(chan struct{}),
	}

	g.wg.Add(1)
	go g.cleanupMutexMapLoop()

	return g
}

// Stop is safe to call multiple times.
func (g *SlotGuard) Stop() {
	if g.stopped.CompareAndSwap(false, true) {
		close(g.stopChan)
		g.wg.Wait()
		g.log.Info("SlotGuard stopped")
	}
}

func holdKey(doctorID uuid.UUID, date time.Time) string {
	return fmt.Sprintf("%s%s:%s", RedisSlotHoldKeyPrefix, doctorID, date.Format(slotDateLayout))
}

func genKey(doctorID uuid.UUID) string {
	return RedisSlotGenKeyPrefix + doctorID.String()
}

func dayKey(doctorID uuid.UUID, date time.Time) string {
	return fmt.Sprintf("%s%s:%s", RedisSlotDayKeyPrefix, doctorID, date.Format(slotDateLayout))
}

// Hold reserves the doctor's day for the duration of a booking attempt.
func (g *SlotGuard) Hold(ctx context.Context, doctorID uuid.UUID, date time.Time) (func(), error) {
	key := holdKey(doctorID, date)

	mt := g.getSlotMutex(key)
	if !mt.mu.TryLock() {
		return nil, ErrSlotHeld
	}

	token := g.newToken()
	ok, err := g.redisClient.SetNX(ctx, key, token, g.holdTTL).Result()
	if err != nil {
		mt.mu.Unlock()
		g.log.Warnf("Failed to acquire slot hold %s: %+v", key, err)
		return nil, fmt.Errorf("acquire slot hold: %w", err)
	}
	if !ok {
		mt.mu.Unlock()
		return nil, ErrSlotHeld
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			defer mt.mu.Unlock()
			// the booking ctx may already be cancelled
			releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := releaseHoldScript.Run(releaseCtx, g.redisClient, []string{key}, token).Err(); err != nil {
				g.log.Warnf("Failed to release slot hold %s: %+v", key, err)
			}
		})
	}
	return release, nil
}

// CachedDay returns the cached free slots of the doctor on date.
func (g *SlotGuard) CachedDay(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]entity.TimeSlot, bool, error) {
	raw, err := g.redisClient.Get(ctx, dayKey(doctorID, date)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read cached slots: %w", err)
	}

	var slots []entity.TimeSlot
	if err := json.Unmarshal(raw, &slots); err != nil {
		g.log.Warnf("Discarding corrupt slot cache for doctor %s: %+v", doctorID, err)
		return nil, false, nil
	}
	return slots, true, nil
}

// Generation returns the doctor's cache generation. Read it before loading
// the bookings that a later CacheDay will store.
func (g *SlotGuard) Generation(ctx context.Context, doctorID uuid.UUID) (int64, error) {
	gen, err := g.redisClient.Get(ctx, genKey(doctorID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("read slot generation: %w", err)
	}
	return gen, nil
}

// CacheDay stores the free slots unless an invalidation happened after
// generation was read.
func (g *SlotGuard) CacheDay(ctx context.Context, doctorID uuid.UUID, date time.Time, generation int64, slots []entity.TimeSlot) error {
	if slots == nil {
		slots = []entity.TimeSlot{}
	}
	raw, err := json.Marshal(slots)
	if err != nil {
		return err
	}

	keys := []string{genKey(doctorID), dayKey(doctorID, date)}
	stored, err := cacheDayScript.Run(ctx, g.redisClient, keys,
		strconv.FormatInt(generation, 10), string(raw), g.cacheTTL.Milliseconds()).Int64()
	if err != nil {
		return fmt.Errorf("cache slots: %w", err)
	}
	if stored == 0 {
		g.log.Debugf("Skipped stale slot cache for doctor %s on %s", doctorID, date.Format(slotDateLayout))
	}
	return nil
}

// Invalidate drops the cached day after a booking or a status change.
func (g *SlotGuard) Invalidate(ctx context.Context, doctorID uuid.UUID, date time.Time) error {
	if err := g.bumpGeneration(ctx, doctorID); err != nil {
		return err
	}
	if err := g.redisClient.Del(ctx, dayKey(doctorID, date)).Err(); err != nil {
		g.log.Warnf("Failed to invalidate slot cache for doctor %s: %+v", doctorID, err)
		return fmt.Errorf("invalidate slots: %w", err)
	}
	return nil
}

// InvalidateDoctor drops every cached day of the doctor after a schedule change.
func (g *SlotGuard) InvalidateDoctor(ctx context.Context, doctorID uuid.UUID) error {
	if err := g.bumpGeneration(ctx, doctorID); err != nil {
		return err
	}
	pattern := fmt.Sprintf("%s%s:*", RedisSlotDayKeyPrefix, doctorID)
	if err := deleteByPattern(ctx, g.redisClient, pattern); err != nil {
		g.log.Warnf("Failed to invalidate slot cache for doctor %s: %+v", doctorID, err)
		return fmt.Errorf("invalidate doctor slots: %w", err)
	}
	return nil
}

func (g *SlotGuard) bumpGeneration(ctx context.Context, doctorID uuid.UUID) error {
	key := genKey(doctorID)
	if err := g.redisClient.Incr(ctx, key).Err(); err != nil {
		g.log.Warnf("Failed to bump slot generation for doctor %s: %+v", doctorID, err)
		return fmt.Errorf("bump slot generation: %w", err)
	}
	if err := g.redisClient.Expire(ctx, key, slotGenTTL).Err(); err != nil {
		g.log.Warnf("Failed to set slot generation expiry for doctor %s: %+v", doctorID, err)
	}
	return nil
}

// getSlotMutex returns mutex for a specific day key
func (g *SlotGuard) getSlotMutex(key string) *mutexWithTimestamp {
	mt, _ := g.slotMu.LoadOrStore(key, &mutexWithTimestamp{})
	result := mt.(*mutexWithTimestamp)
	result.lastUsed.Store(time.Now().Unix())
	return result
}

func (g *SlotGuard) cleanupMutexMapLoop() {
	defer g.wg.Done()

	ticker := time.NewTicker(mutexCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-g.stopChan:
			g.log.Debug("Slot mutex cleanup goroutine stopping")
			return
		case <-ticker.C:
			g.cleanupStaleMutexes()
		}
	}
}

// cleanupStaleMutexes removes unused mutexes. lastUsed is checked while
// holding the lock so a concurrent Hold cannot slip in between.
func (g *SlotGuard) cleanupStaleMutexes() {
	cutoffTime := time.Now().Add(-mutexStaleThreshold).Unix()
	var cleaned int

	g.slotMu.Range(func(key, value any) bool {
		mt, ok := value.(*mutexWithTimestamp)
		if !ok {
			return true
		}
		if mt.mu.TryLock() {
			if mt.lastUsed.Load() < cutoffTime {
				g.slotMu.Delete(key)
				cleaned++
			}
			mt.mu.Unlock()
		}
		return true
	})

	if cleaned > 0 {
		g.log.Debugf("Cleaned up %d stale slot mutexes", cleaned)
	}
}
