// internal/jsonlutil/jsonlutil.go
package jsonlutil

import (
	"bufio"
	"encoding/json"
	"io"
	"sync"
)

// Reuse a 64 KiB buffered writer across JSONL writers to avoid per-writer mallocs.
var bwPool = sync.Pool{
	New: func() any {
		return bufio.NewWriterSize(io.Discard, 64<<10)
	},
}

func withWriter(out io.Writer, isBroken func(error) bool, body func(*json.Encoder) error) error {
	bw := bwPool.Get().(*bufio.Writer)
	bw.Reset(out)
	defer func() {
		bw.Reset(io.Discard)
		bwPool.Put(bw)
	}()

	if err := body(json.NewEncoder(bw)); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil && !isBroken(err) {
		return err
	}
	return nil
}

// Copy encodes every value received on in as one JSON line of its wire type.
//   - conv: domain value -> wire (pkg/api) value
//   - isBroken: recognizer for broken/closed pipe errors to suppress them
func Copy[T, W any](out io.Writer, in <-chan T, conv func(T) W, isBroken func(error) bool) error {
	return withWriter(out, isBroken, func(enc *json.Encoder) error {
		for v := range in {
			if err := enc.Encode(conv(v)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Write is Copy for an in-memory slice.
func Write[T, W any](out io.Writer, list []T, conv func(T) W, isBroken func(error) bool) error {
	return withWriter(out, isBroken, func(enc *json.Encoder) error {
		for _, v := range list {
			if err := enc.Encode(conv(v)); err != nil {
				return err
			}
		}
		return nil
	})
}
