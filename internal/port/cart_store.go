package port

import "context"

type CartStore interface {
	// Get returns the serialized cart stored under key; found is false if nothing is stored
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// Set overwrites the value stored under key
	Set(ctx context.Context, key string, value string) error
}
