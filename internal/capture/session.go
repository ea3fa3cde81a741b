package capture

import (
	"context"
	"fmt"
	"io"

	"github.com/meshcap/meshcap/internal/capfile"
	"github.com/meshcap/meshcap/internal/format"
	"github.com/meshcap/meshcap/internal/mesh"
	"github.com/meshcap/meshcap/internal/pkg/filter"
)

// Session runs the per-packet capture pipeline: learn identities,
// filter, persist, format, print. The filter predicate is compiled
// once before the session starts; evaluation is pure and never errors.
type Session struct {
	Match     filter.Predicate
	Writer    *capfile.Writer // optional; matching packets are persisted
	Book      *mesh.NodeBook  // optional; learns from NODEINFO packets
	Formatter *format.Formatter
	Out       io.Writer
	Count     int // stop after this many matching packets; 0 means unlimited

	matched int
}

// Run consumes the source until it is exhausted, the count limit is
// reached, or the context is canceled. It returns the number of
// matching packets.
func (s *Session) Run(ctx context.Context, src Source) (int, error) {
	for {
		select {
		case <-ctx.Done():
			return s.matched, ctx.Err()
		default:
		}

		pkt, err := src.Next()
		if err == io.EOF {
			return s.matched, nil
		}
		if err != nil {
			return s.matched, err
		}

		if s.Book != nil {
			s.Book.LearnPacket(pkt)
		}
		if s.Match != nil && !s.Match(pkt) {
			continue
		}
		if s.Writer != nil {
			if err := s.Writer.Write(pkt); err != nil {
				return s.matched, fmt.Errorf("write capture record: %w", err)
			}
		}
		fmt.Fprintln(s.Out, s.Formatter.Line(pkt))

		s.matched++
		if s.Count > 0 && s.matched >= s.Count {
			return s.matched, nil
		}
	}
}
