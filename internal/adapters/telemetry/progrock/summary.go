package progrock

import (
	"fmt"
	"sync"

	"github.com/vito/progrock"
)

var _ progrock.Writer = (*Summary)(nil)

// Summary is a progrock.Writer that keeps the latest state of every vertex.
type Summary struct {
	mu       sync.Mutex
	order    []string
	vertexes map[string]*progrock.Vertex
	complete bool
}

// NewSummary creates an empty Summary.
func NewSummary() *Summary {
	return &Summary{vertexes: make(map[string]*progrock.Vertex)}
}

// WriteStatus implements progrock.Writer.
func (s *Summary) WriteStatus(update *progrock.StatusUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, v := range update.Vertexes {
		if _, ok := s.vertexes[v.Id]; !ok {
			s.order = append(s.order, v.Id)
		}
		s.vertexes[v.Id] = v
	}
	for _, g := range update.Groups {
		if g.Id == progrock.RootID && g.Completed != nil {
			s.complete = true
		}
	}
	return nil
}

// Close implements progrock.Writer.
func (s *Summary) Close() error {
	return nil
}

// Complete reports whether the recording's root group was marked complete.
func (s *Summary) Complete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.complete
}

// Counts tallies the recorded vertices by outcome.
func (s *Summary) Counts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()

	var c Counts
	for _, id := range s.order {
		v := s.vertexes[id]
		switch {
		case v.Cached:
			c.UpToDate++
		case v.Error != nil:
			c.Failed++
		case v.Completed != nil:
			c.Built++
		default:
			c.Running++
		}
	}
	return c
}

// Counts is the number of step visits per outcome.
type Counts struct {
	Built    int
	UpToDate int
	Failed   int
	Running  int
}

// Total returns the number of recorded visits.
func (c Counts) Total() int {
	return c.Built + c.UpToDate + c.Failed + c.Running
}

func (c Counts) String() string {
	return fmt.Sprintf("%d built, %d up to date, %d failed", c.Built, c.UpToDate, c.Failed)
}
