// Package session owns the live survey: it serializes mutations, restores
// state on start and persists the sequence after every change.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/gradetool/internal/storage"
	"github.com/woozymasta/gradetool/internal/survey"
)

// BlobStore keeps opaque blobs under string keys. Load reports a missing key
// with storage.ErrNotFound; Delete of a missing key is not an error.
type BlobStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// Recorder receives mutation outcomes and the resulting survey shape.
type Recorder interface {
	RecordMutation(op string, err error)
	SetSurvey(sightings int, stats survey.Stats)
}

// Session is the single writer of a survey. It is safe for concurrent use.
type Session struct {
	mu      sync.Mutex
	current survey.Survey

	blobs    BlobStore
	key      string
	recorder Recorder
}

// Open restores the survey stored under key. Missing or unreadable data
// yields an empty survey. recorder may be nil.
func Open(ctx context.Context, blobs BlobStore, key string, recorder Recorder) (*Session, error) {
	s := &Session{blobs: blobs, key: key, recorder: recorder}

	data, err := blobs.Load(ctx, key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		log.Debug().Str("key", key).Msg("No stored survey, starting empty")
	case err != nil:
		return nil, fmt.Errorf("load survey %q: %w", key, err)
	default:
		s.current = restore(key, data)
	}

	if s.recorder != nil {
		s.recorder.SetSurvey(s.current.Len(), s.current.Stats())
	}

	log.Info().
		Str("key", key).
		Int("sightings", s.current.Len()).
		Msg("Survey session opened")

	return s, nil
}

func restore(key string, data []byte) survey.Survey {
	sightings, err := survey.Unmarshal(data)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Stored survey is unreadable, starting empty")
		return survey.Survey{}
	}
	restored, err := survey.New(sightings)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Stored survey is invalid, starting empty")
		return survey.Survey{}
	}
	return restored
}

// Apply mutates the survey, persists the new sequence and returns its
// statistics. The change only becomes visible once it has been saved.
func (s *Session) Apply(ctx context.Context, op survey.Operation) (survey.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, stats, err := survey.Mutate(s.current, op)
	if err == nil {
		err = s.persist(ctx, next)
	}
	if s.recorder != nil {
		s.recorder.RecordMutation(op.Name(), err)
	}
	if err != nil {
		log.Debug().Err(err).Str("op", op.Name()).Msg("Survey mutation rejected")
		return s.current.Stats(), err
	}

	s.current = next
	if s.recorder != nil {
		s.recorder.SetSurvey(next.Len(), stats)
	}

	log.Debug().
		Str("op", op.Name()).
		Int("sightings", next.Len()).
		Float64("path_distance_m", stats.PathDistance).
		Bool("converged", stats.Target != nil).
		Msg("Survey updated")

	return stats, nil
}

// persist stores the sequence of next. An empty survey leaves no blob behind,
// which restores the same way.
func (s *Session) persist(ctx context.Context, next survey.Survey) error {
	if next.Len() == 0 {
		if err := s.blobs.Delete(ctx, s.key); err != nil {
			return fmt.Errorf("delete survey %q: %w", s.key, err)
		}
		return nil
	}

	data, err := survey.Marshal(next.Sightings())
	if err != nil {
		return fmt.Errorf("encode survey: %w", err)
	}
	if err := s.blobs.Save(ctx, s.key, data); err != nil {
		return fmt.Errorf("save survey %q: %w", s.key, err)
	}
	return nil
}

// Snapshot returns the current survey. The value is immutable and stays
// valid after later mutations.
func (s *Session) Snapshot() survey.Survey {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}
