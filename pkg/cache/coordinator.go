package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Coordinator registers read scopes and invalidates them after mutations.
type Coordinator struct {
	store  Store
	ttl    time.Duration
	logger *logrus.Entry
}

func NewCoordinator(store Store, ttl time.Duration, logger *logrus.Logger) *Coordinator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Coordinator{
		store:  store,
		ttl:    ttl,
		logger: logger.WithField("component", "cache"),
	}
}

// Register records that the caller's read depends on keys.
func (c *Coordinator) Register(ctx context.Context, keys ...Key) error {
	for _, key := range keys {
		if !key.valid() {
			return fmt.Errorf("cache: invalid key %q", key.Tag())
		}
		if _, err := c.store.Generation(ctx, key.Tag()); err != nil {
			return errors.Wrapf(err, "cache: register %s", key.Tag())
		}
		recordRegister(key.Scope)
	}
	return nil
}

// Invalidate bumps every key concurrently. The first store failure is returned
// after all bumps have been attempted.
func (c *Coordinator) Invalidate(ctx context.Context, keys ...Key) error {
	if shouldSkipInvalidation(ctx) {
		return nil
	}
	for _, key := range keys {
		if !key.valid() {
			return fmt.Errorf("cache: invalid key %q", key.Tag())
		}
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, key := range keys {
		g.Go(func() error {
			gen, err := c.store.Bump(gctx, key.Tag())
			if err != nil {
				return errors.Wrapf(err, "cache: invalidate %s", key.Tag())
			}
			recordInvalidate(key.Scope)
			c.logger.WithContext(ctx).WithFields(logrus.Fields{
				"tag":        key.Tag(),
				"generation": gen,
			}).Debug("cache scope invalidated")
			return nil
		})
	}
	return g.Wait()
}

func (c *Coordinator) entryKey(ctx context.Context, keys []Key, entry Entry) (string, error) {
	var b strings.Builder
	b.WriteString(entry.key())
	for _, key := range keys {
		gen, err := c.store.Generation(ctx, key.Tag())
		if err != nil {
			return "", errors.Wrapf(err, "cache: generation %s", key.Tag())
		}
		b.WriteString("|")
		b.WriteString(key.Tag())
		b.WriteString("@")
		b.WriteString(strconv.FormatInt(gen, 10))
	}
	return b.String(), nil
}

// Load decodes entry for the current generations of keys.
func (c *Coordinator) Load(ctx context.Context, keys []Key, entry Entry, dest any) (bool, error) {
	entryKey, err := c.entryKey(ctx, keys, entry)
	if err != nil {
		return false, err
	}
	raw, ok, err := c.store.Get(ctx, entryKey)
	if err != nil {
		return false, errors.Wrap(err, "cache: load")
	}
	recordLookup(entry.Name, ok)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, errors.Wrap(err, "cache: decode")
	}
	return true, nil
}

// Save caches value as entry for the current generations of keys.
func (c *Coordinator) Save(ctx context.Context, keys []Key, entry Entry, value any) error {
	entryKey, err := c.entryKey(ctx, keys, entry)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, "cache: encode")
	}
	return c.store.Set(ctx, entryKey, raw, c.ttl)
}
