package voxel

import (
	"context"
	"errors"
	"sync"
)

// SetBlock writes one block to the store and rebuilds only the chunk
// containing it.
func (s *Schematic) SetBlock(ctx context.Context, pos BlockPos, palette int) error {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return ErrDisposed
	}
	s.mu.Unlock()

	s.store.SetBlock(pos, palette)
	return s.RebuildChunk(ctx, ChunkCoordOf(pos, s.store.ChunkSize()))
}

// SetBlocks applies a batch of edits in two phases. First every edit is
// written to the store with no mesh work, collapsing edits to the distinct
// set of affected chunk coordinates. Then each affected chunk is rebuilt
// concurrently. The write phase finished first, so every rebuild reads
// fully consistent chunk state, and the coordinates are disjoint. N edits
// inside one chunk cost exactly one rebuild.
//
// SetBlocks returns after every rebuild resolves; individual rebuild
// errors are joined into the returned error.
func (s *Schematic) SetBlocks(ctx context.Context, edits []BlockEdit) error {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return ErrDisposed
	}
	s.mu.Unlock()

	if len(edits) == 0 {
		return nil
	}

	chunkSize := s.store.ChunkSize()
	affected := make(map[ChunkCoord]struct{})
	for _, e := range edits {
		s.store.SetBlock(e.Pos, e.Palette)
		affected[ChunkCoordOf(e.Pos, chunkSize)] = struct{}{}
	}

	Logger().Debug("batch edit", "edits", len(edits), "chunks", len(affected))

	var (
		wg    sync.WaitGroup
		errMu sync.Mutex
		errs  []error
	)
	for coord := range affected {
		wg.Add(1)
		go func(c ChunkCoord) {
			defer wg.Done()
			if err := s.RebuildChunk(ctx, c); err != nil {
				errMu.Lock()
				errs = append(errs, err)
				errMu.Unlock()
			}
		}(coord)
	}
	wg.Wait()
	return errors.Join(errs...)
}
