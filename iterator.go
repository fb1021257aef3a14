package voxel

// ChunkIterator yields chunk block data in a fixed deterministic order.
// Delivery order must be stable across runs so builds are reproducible.
//
// Next returning a *DataError means the stream is corrupt; the session
// aborts. A nil chunk with nil error signals exhaustion.
type ChunkIterator interface {
	// TotalChunks returns the number of chunks the iterator will yield.
	TotalChunks() int

	// HasNext reports whether another chunk remains.
	HasNext() bool

	// Next returns the next chunk, or nil when exhausted.
	Next() (*ChunkData, error)
}

// storeIterator drains a BlockStore chunk by chunk, bottom-up by vertical
// layer. The coordinate list is snapshotted at creation so concurrent edits
// do not disturb an in-flight build's delivery order.
type storeIterator struct {
	store  BlockStore
	coords []ChunkCoord
	next   int
}

// newStoreIterator snapshots the store's chunk set for one build pass.
func newStoreIterator(store BlockStore) *storeIterator {
	return &storeIterator{
		store:  store,
		coords: store.Chunks(),
	}
}

func (it *storeIterator) TotalChunks() int { return len(it.coords) }

func (it *storeIterator) HasNext() bool { return it.next < len(it.coords) }

func (it *storeIterator) Next() (*ChunkData, error) {
	if !it.HasNext() {
		return nil, nil
	}
	coord := it.coords[it.next]
	it.next++
	return &ChunkData{
		Coord:  coord,
		Blocks: it.store.ChunkBlocks(coord),
	}, nil
}
