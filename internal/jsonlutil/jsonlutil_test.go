package jsonlutil

import (
	"bytes"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wire struct {
	V string `json:"v"`
}

func conv(i int) wire { return wire{V: strconv.Itoa(i)} }

func never(error) bool { return false }

func TestCopy(t *testing.T) {
	in := make(chan int, 3)
	in <- 1
	in <- 2
	close(in)

	var buf bytes.Buffer
	require.NoError(t, Copy(&buf, in, conv, never))
	assert.Equal(t, "{\"v\":\"1\"}\n{\"v\":\"2\"}\n", buf.String())
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, []int{7}, conv, never))
	assert.Equal(t, "{\"v\":\"7\"}\n", buf.String())
}

type failWriter struct{ err error }

func (f failWriter) Write([]byte) (int, error) { return 0, f.err }

func TestFlushErrors(t *testing.T) {
	boom := errors.New("boom")
	err := Write(failWriter{boom}, []int{1}, conv, never)
	assert.ErrorIs(t, err, boom)

	err = Write(failWriter{boom}, []int{1}, conv, func(e error) bool { return errors.Is(e, boom) })
	assert.NoError(t, err)
}
