package capture

import (
	"bufio"
	"bytes"
	"io"

	"github.com/meshcap/meshcap/internal/mesh"
)

// Source yields decoded packet records one at a time. Next returns
// io.EOF when the source is exhausted.
type Source interface {
	Next() (*mesh.Packet, error)
	Close() error
}

// NDJSONSource reads newline-delimited packet JSON from a stream, one
// record per line. Blank lines are skipped. This is how packets arrive
// from a device gateway pipe or stdin.
type NDJSONSource struct {
	scanner *bufio.Scanner
	closer  io.Closer
}

// NewNDJSONSource wraps a stream of newline-delimited packet JSON.
// Lines up to 1 MiB are accepted.
func NewNDJSONSource(r io.Reader) *NDJSONSource {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	src := &NDJSONSource{scanner: sc}
	if c, ok := r.(io.Closer); ok {
		src.closer = c
	}
	return src
}

// Next returns the next packet record, or io.EOF at end of stream.
func (s *NDJSONSource) Next() (*mesh.Packet, error) {
	for s.scanner.Scan() {
		line := bytes.TrimSpace(s.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		return mesh.ParsePacket(line)
	}
	if err := s.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// Close closes the underlying stream when it is closable.
func (s *NDJSONSource) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
