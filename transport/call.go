package transport

import (
	"context"
	"encoding/json"
	"fmt"
)

// Converter converts raw JSON-RPC result into T
type Converter[T any] func(raw json.RawMessage) (T, error)

// JSONConverter decodes result with encoding/json
func JSONConverter[T any]() Converter[T] {
	return func(raw json.RawMessage) (result T, err error) {
		err = json.Unmarshal(raw, &result)

		return result, err
	}
}

type CallResult[T any] struct {
	Result T
	Err    error
}

// HttpCall is a deferred JSON-RPC request. Nothing is sent until Execute or ExecuteAsync is invoked.
type HttpCall[T any] struct {
	provider  Provider
	method    string
	params    any
	converter Converter[T]
	err       error
}

func NewHttpCall[T any](provider Provider, method string, params any, converter Converter[T]) *HttpCall[T] {
	return &HttpCall[T]{
		provider:  provider,
		method:    method,
		params:    params,
		converter: converter,
	}
}

// NewFailedCall returns call which fails with err on execution. Used when request params are invalid.
func NewFailedCall[T any](err error) *HttpCall[T] {
	return &HttpCall[T]{
		err: err,
	}
}

func (c *HttpCall[T]) Method() string {
	return c.method
}

func (c *HttpCall[T]) Params() any {
	return c.params
}

// Execute sends the request and converts the result
func (c *HttpCall[T]) Execute(ctx context.Context) (result T, err error) {
	if c.err != nil {
		return result, c.err
	}

	raw, err := c.provider.Request(ctx, c.method, c.params)
	if err != nil {
		return result, err
	}

	result, err = c.converter(raw)
	if err != nil {
		return result, fmt.Errorf("%w: %s: %w", ErrInvalidResponse, c.method, err)
	}

	return result, nil
}

// ExecuteAsync executes the call on a new goroutine. The returned channel receives exactly one value.
func (c *HttpCall[T]) ExecuteAsync(ctx context.Context) <-chan CallResult[T] {
	ch := make(chan CallResult[T], 1)

	go func() {
		defer close(ch)

		result, err := c.Execute(ctx)

		ch <- CallResult[T]{Result: result, Err: err}
	}()

	return ch
}
