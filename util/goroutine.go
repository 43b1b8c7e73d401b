package util

import (
	"bytes"
	"runtime"
	"strconv"
)

var goroutinePrefix = []byte("goroutine ")

// CurrentGoroutineID parses the ID of the calling goroutine from its stack header, or returns 0 if it can't
//
// For log provenance only. Don't use it as a key for goroutine-local storage.
func CurrentGoroutineID() int64 {
	var buf [64]byte
	header := buf[:runtime.Stack(buf[:], false)]
	header = bytes.TrimPrefix(header, goroutinePrefix)
	end := bytes.IndexByte(header, ' ')
	if end <= 0 {
		return 0
	}
	id, err := strconv.ParseInt(string(header[:end]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
