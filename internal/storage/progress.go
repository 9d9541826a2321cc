package storage

import "sync/atomic"

// progressReader adapts a byte-count callback to the io.Reader hook minio-go
// reads from as parts are sent. Read never consumes data; it only counts.
type progressReader struct {
	transferred atomic.Int64
	fn          func(int64)
}

func newProgressReader(fn func(int64)) *progressReader {
	return &progressReader{fn: fn}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n := p.transferred.Add(int64(len(b)))
	p.fn(n)
	return len(b), nil
}
