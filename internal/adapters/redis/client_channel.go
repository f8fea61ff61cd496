// Package redis provides Redis-based adapters for the portal.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/naidizakupku/portal/internal/ports"
)

var _ ports.CredentialChannel = (*ClientChannel)(nil)

// ClientChannel is the client-only credential channel of one device.
// Each slot is a plain string key: <prefix>cred:<device>:<slot>.
type ClientChannel struct {
	client     redis.UniversalClient
	prefix     string
	device     string
	defaultTTL time.Duration
}

// ClientChannelFactory hands out per-device channels sharing one client.
type ClientChannelFactory struct {
	client     redis.UniversalClient
	prefix     string
	defaultTTL time.Duration
}

// NewClientChannelFactory creates a factory. prefix namespaces every key
// (e.g. "portal:"); defaultTTL applies when Set is called with ttl <= 0.
func NewClientChannelFactory(client redis.UniversalClient, prefix string, defaultTTL time.Duration) *ClientChannelFactory {
	return &ClientChannelFactory{client: client, prefix: prefix, defaultTTL: defaultTTL}
}

// For returns the channel of deviceID.
func (f *ClientChannelFactory) For(deviceID string) *ClientChannel {
	return &ClientChannel{
		client:     f.client,
		prefix:     f.prefix,
		device:     deviceID,
		defaultTTL: f.defaultTTL,
	}
}

// Device returns the device the channel is bound to.
func (c *ClientChannel) Device() string { return c.device }

func (c *ClientChannel) key(slot ports.Slot) string {
	return c.prefix + "cred:" + c.device + ":" + string(slot)
}

func (c *ClientChannel) Get(ctx context.Context, slot ports.Slot) (string, bool, error) {
	if c.device == "" {
		return "", false, nil
	}

	v, err := c.client.Get(ctx, c.key(slot)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return v, true, nil
}

func (c *ClientChannel) Set(ctx context.Context, slot ports.Slot, value string, ttl time.Duration) error {
	if c.device == "" {
		return errors.New("device id cannot be empty")
	}
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	if err := c.client.Set(ctx, c.key(slot), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *ClientChannel) Delete(ctx context.Context, slot ports.Slot) error {
	if c.device == "" {
		return nil // Nothing to delete
	}
	if err := c.client.Del(ctx, c.key(slot)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
