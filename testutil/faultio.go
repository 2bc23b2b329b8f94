// Package testutil provides helpers for tests that feed input to the
// sgtree driver.
package testutil

import (
	"bytes"
	"io"

	"github.com/cockroachdb/errors"
)

var (
	ErrTemporary = errors.New("Temporary Error")
	ErrPermanent = errors.New("Permanent Error")
)

// FaultReader is a buffer that provides an io.Reader interface,
// crudely simulating a flaky input stream. It is *not* thread safe.
type FaultReader struct {
	limit    int
	errAfter int
	errEvery int
	count    int
	buff     bytes.Buffer
}

// NewFaultReader returns a FaultReader that will serve s. Argument
// "limit" controls the maximum amount of bytes that can be read with
// a single Read call. Argument "errAfter" is the number of Read calls
// after which all subsequent Read calls fail with
// ErrPermanent. Argument "errEvery" causes every "errEvery"-th Read
// call to fail with ErrTemporary. Zero disables the respective
// behavior.
func NewFaultReader(s string, limit, errAfter, errEvery int) *FaultReader {
	f := &FaultReader{limit: limit, errAfter: errAfter, errEvery: errEvery}
	f.buff.WriteString(s)
	return f
}

// Reads returns the number of Read calls made so far.
func (f *FaultReader) Reads() int {
	return f.count
}

func (f *FaultReader) Read(p []byte) (n int, err error) {
	f.count++
	if f.errAfter != 0 && f.count > f.errAfter {
		return 0, ErrPermanent
	}
	if f.errEvery != 0 && f.count%f.errEvery == 0 {
		return 0, ErrTemporary
	}
	if f.buff.Len() == 0 {
		return 0, io.EOF
	}
	if f.limit != 0 && len(p) > f.limit {
		p = p[:f.limit]
	}
	return f.buff.Read(p)
}
