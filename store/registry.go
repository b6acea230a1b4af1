// Package store is a registry of bookmark store backends.
// Each backend package registers a Factory under its type name in an init function,
// so a program selects backends by importing them
// and picks one at runtime from configuration.
package store

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/tdjsnelling/babel/bookmark"
)

// Factory creates a store from its configuration.
type Factory func(context.Context, map[string]interface{}) (bookmark.Store, error)

var registry = make(map[string]Factory)

// Register makes a backend available to Create.
func Register(key string, f Factory) {
	registry[key] = f
}

// Create makes a store of the registered type key.
func Create(ctx context.Context, key string, conf map[string]interface{}) (bookmark.Store, error) {
	f, ok := registry[key]
	if !ok {
		return nil, fmt.Errorf("key %s not found in registry", key)
	}
	return f(ctx, conf)
}

// FromConfig creates a store from a configuration object with a "type" key.
func FromConfig(ctx context.Context, conf map[string]interface{}) (bookmark.Store, error) {
	typ, ok := conf["type"].(string)
	if !ok {
		return nil, errors.New(`missing "type" parameter`)
	}
	return Create(ctx, typ, conf)
}

// Nested creates the store described by conf[key],
// for backends that wrap another store.
func Nested(ctx context.Context, conf map[string]interface{}, key string) (bookmark.Store, error) {
	nested, ok := conf[key].(map[string]interface{})
	if !ok {
		return nil, errors.Errorf("missing %q parameter", key)
	}
	s, err := FromConfig(ctx, nested)
	return s, errors.Wrapf(err, "creating %s store", key)
}

// Int reads an integer parameter,
// which may arrive as an int, a float64 (plain JSON decoding),
// or a json.Number (decoding with UseNumber).
func Int(conf map[string]interface{}, key string) (int, bool) {
	switch v := conf[key].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	case interface{ Int64() (int64, error) }:
		n, err := v.Int64()
		return int(n), err == nil
	}
	return 0, false
}

// Close releases s if it holds resources such as a database connection.
// Stores without a Close method need no cleanup.
func Close(s bookmark.Store) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
