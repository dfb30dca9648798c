package snapshot

import (
	"encoding/json"
	"time"

	"sjsage522/contestharvester/internal/crawler"
	"sjsage522/contestharvester/logger"
	apperrors "sjsage522/contestharvester/pkg/errors"
	"sjsage522/contestharvester/services/cache"
	"sjsage522/contestharvester/services/publisher"

	"github.com/google/uuid"
)

// lockTTL bounds how long a crashed harvest can keep a source locked
const lockTTL = 30 * time.Minute

// HarvestEvent is published after every saved snapshot
type HarvestEvent struct {
	ID            string `json:"id"`
	Source        string `json:"source"`
	LastHarvested string `json:"last_harvested"`
	Count         int    `json:"count"`
}

// Refresher ties a source's store to its harvester. It is the surface the
// display layer and the CLI use; neither touches the snapshot file directly.
type Refresher struct {
	store     *Store
	harvester crawler.Harvester
	session   *Session
	publisher publisher.Publisher
	lock      cache.Locker
	log       *logger.Logger
}

// NewRefresher creates a refresher. pub may be nil.
func NewRefresher(store *Store, harvester crawler.Harvester, session *Session, pub publisher.Publisher) *Refresher {
	if session == nil {
		session = NewSession()
	}
	return &Refresher{
		store:     store,
		harvester: harvester,
		session:   session,
		publisher: pub,
		log:       logger.ForSource(store.Source()),
	}
}

// WithLock makes TriggerRefresh hold lock for the source while it harvests
func (r *Refresher) WithLock(lock cache.Locker) *Refresher {
	r.lock = lock
	return r
}

func lockKey(source string) string {
	return "harvest:" + source
}

// Source returns the source key
func (r *Refresher) Source() string {
	return r.store.Source()
}

// Store returns the underlying store
func (r *Refresher) Store() *Store {
	return r.store
}

// LoadSnapshot returns the stored records and their harvest stamp. ok is
// false when the stamp is missing or unusable.
func (r *Refresher) LoadSnapshot() (records []crawler.ListingRecord, lastHarvested string, ok bool) {
	snap := r.store.Load()
	if !snap.Harvested() {
		return snap.Records, "", false
	}
	return snap.Records, snap.LastHarvested, true
}

// IsStale reports whether the stored snapshot is not from today
func (r *Refresher) IsStale() bool {
	return IsStale(r.store.Load(), r.store.now())
}

// TriggerRefresh harvests unconditionally and replaces the snapshot. On
// failure the previous snapshot is left as it was. When another holder has
// the source's lock nothing is harvested and the error wraps
// ErrHarvestInProgress.
func (r *Refresher) TriggerRefresh() (Snapshot, error) {
	if r.lock != nil {
		key := lockKey(r.Source())
		held, err := r.lock.Acquire(key, uuid.NewString(), lockTTL)
		switch {
		case err != nil:
			r.log.Warn().Err(err).Msg("Harvest lock unavailable, harvesting without it")
		case !held:
			r.log.Info().Msg("Harvest already in progress elsewhere")
			return Snapshot{}, apperrors.NewLocked(r.Source())
		default:
			defer func() {
				if err := r.lock.Release(key); err != nil {
					r.log.Warn().Err(err).Msg("Failed to release harvest lock")
				}
			}()
		}
	}

	records, err := r.harvester.Harvest()
	if err != nil {
		return Snapshot{}, err
	}

	snap, err := r.store.Save(records)
	if err != nil {
		return Snapshot{}, err
	}

	r.publish(snap)
	return snap, nil
}

// RefreshIfStale harvests when the snapshot is not from today, at most once
// per source and day within the session. It returns the current snapshot and
// whether a harvest ran. On error the returned snapshot is the previous one.
func (r *Refresher) RefreshIfStale() (Snapshot, bool, error) {
	now := r.store.now()
	day := now.Format(DateLayout)
	current := r.store.Load()

	if r.session.Attempted(r.Source(), day) {
		return current, false, nil
	}
	r.session.MarkAttempted(r.Source(), day)

	if !IsStale(current, now) {
		r.log.Debug().Str("last_scraped", current.LastHarvested).Msg("Snapshot is fresh")
		return current, false, nil
	}

	r.log.Info().Str("last_scraped", current.LastHarvested).Msg("Snapshot is stale, harvesting")
	snap, err := r.TriggerRefresh()
	if err != nil {
		return current, false, err
	}
	return snap, true, nil
}

func (r *Refresher) publish(snap Snapshot) {
	if r.publisher == nil {
		return
	}

	event := HarvestEvent{
		ID:            uuid.NewString(),
		Source:        r.Source(),
		LastHarvested: snap.LastHarvested,
		Count:         len(snap.Records),
	}
	data, err := json.Marshal(event)
	if err == nil {
		err = r.publisher.Publish(r.Source(), data)
	}
	if err != nil {
		r.log.Warn().Err(apperrors.NewPublisher(r.Source(), "failed to publish harvest event", err)).Msg("Publish failed")
	}
}
