package voxel

import (
	"errors"
	"testing"
)

func TestMeshReleaseIdempotent(t *testing.T) {
	rel := &countingReleaser{}
	m := &Mesh{}
	m.Attach(rel)

	if m.Released() {
		t.Fatal("fresh mesh reports released")
	}
	if err := m.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if !m.Released() {
		t.Fatal("mesh not marked released")
	}
	if err := m.Release(); err != nil {
		t.Fatalf("second Release failed: %v", err)
	}
	if rel.calls != 1 {
		t.Errorf("releaser called %d times, want 1", rel.calls)
	}
}

func TestMeshReleaseError(t *testing.T) {
	m := &Mesh{}
	m.Attach(&countingReleaser{err: errors.New("boom")})
	second := &countingReleaser{}
	m.Attach(second)

	err := m.Release()
	var resErr *ResourceError
	if !errors.As(err, &resErr) {
		t.Fatalf("err = %v, want *ResourceError", err)
	}
	// Remaining releasers still run after a failure.
	if second.calls != 1 {
		t.Errorf("second releaser called %d times, want 1", second.calls)
	}
}

func TestMeshLateAttach(t *testing.T) {
	m := &Mesh{}
	if err := m.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	rel := &countingReleaser{}
	m.Attach(rel)
	if rel.calls != 1 {
		t.Errorf("late attachment released %d times, want immediate release", rel.calls)
	}
}

func TestMeshAttachNil(t *testing.T) {
	m := &Mesh{}
	m.Attach(nil)
	if err := m.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
}

func TestNeeds32BitIndices(t *testing.T) {
	small := &Mesh{Positions: make([]int16, 65535*3)}
	if small.Needs32BitIndices() {
		t.Error("65535 vertices should fit 16-bit indices")
	}
	large := &Mesh{Positions: make([]int16, 65536*3)}
	if !large.Needs32BitIndices() {
		t.Error("65536 vertices need 32-bit indices")
	}
}
