// Package kvstore is the durable key-value storage behind session and dashboard state.
// Values are opaque strings; callers own their encoding.
package kvstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("kvstore: key not found")

// Store is the durable key-value contract.
//
// Delete never fails on a missing key. When several keys are given, backends that can
// delete them atomically do so.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}
