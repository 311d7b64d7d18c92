package storage

import (
	"context"
	"errors"
)

// Sink stores artifacts under slash-separated keys.
type Sink interface {
	// Put creates or replaces the object at key.
	Put(ctx context.Context, key string, data []byte, contentType string) error

	// Delete removes key and everything below it. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
}

var _ Sink = Multi{}

// Multi writes to every sink in order and stops at the first failure.
type Multi []Sink

func (m Multi) Put(ctx context.Context, key string, data []byte, contentType string) error {
	for _, s := range m {
		if err := s.Put(ctx, key, data, contentType); err != nil {
			return err
		}
	}

	return nil
}

func (m Multi) Delete(ctx context.Context, key string) error {
	var errs []error

	for _, s := range m {
		if err := s.Delete(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
