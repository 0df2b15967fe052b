// Package status reports the state of the target index for the admin panel.
package status

import "context"

// Overview is the admin-facing snapshot of the target index. Err carries the
// connectivity problem, if any; the caller renders it as a banner, never as
// a server failure.
type Overview struct {
	Index  string
	Exists bool
	Count  int64
	Err    error
}

// Service reads the index status.
type Service struct {
	es    IndexInspector
	index string
}

// New creates a status service.
func New(es IndexInspector, index string) *Service {
	return &Service{es: es, index: index}
}

// Overview checks whether the target index exists and how many documents it
// holds. Connectivity failures degrade to an Overview with Err set.
func (s *Service) Overview(ctx context.Context) Overview {
	exists, err := s.es.IndexExists(ctx, s.index)
	if err != nil {
		return Overview{Index: s.index, Err: err}
	}
	if !exists {
		return Overview{Index: s.index}
	}

	count, err := s.es.Count(ctx, s.index)
	if err != nil {
		return Overview{Index: s.index, Exists: true, Err: err}
	}
	return Overview{Index: s.index, Exists: true, Count: count}
}
