package generation

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeHandle struct{ cancelled int }

func (f *fakeHandle) Cancel() { f.cancelled++ }

func TestRegistryLifecycle(t *testing.T) {
	r := NewRegistry()
	h := &fakeHandle{}

	assert.False(t, r.IsGenerating("2024-01-10"))
	r.Register("2024-01-10", h)
	assert.True(t, r.IsGenerating("2024-01-10"))
	assert.False(t, r.IsGenerating("2024-01-11"))

	assert.True(t, r.Cancel("2024-01-10"))
	assert.Equal(t, 1, h.cancelled)
	assert.False(t, r.IsGenerating("2024-01-10"))
	assert.False(t, r.Cancel("2024-01-10"))
	assert.Equal(t, 1, h.cancelled)
}

func TestRegisterOverwritesWithoutCancelling(t *testing.T) {
	r := NewRegistry()
	first, second := &fakeHandle{}, &fakeHandle{}

	r.Register("d", first)
	r.Register("d", second)
	assert.Zero(t, first.cancelled)

	r.Cancel("d")
	assert.Zero(t, first.cancelled)
	assert.Equal(t, 1, second.cancelled)
}

func TestUnregister(t *testing.T) {
	r := NewRegistry()
	old, current := &fakeHandle{}, &fakeHandle{}

	r.Register("d", current)
	r.UnregisterIf("d", old)
	assert.True(t, r.IsGenerating("d"))

	r.UnregisterIf("d", current)
	assert.False(t, r.IsGenerating("d"))

	r.Register("d", current)
	r.Unregister("d")
	assert.False(t, r.IsGenerating("d"))
	assert.Zero(t, current.cancelled)
}

func TestKeys(t *testing.T) {
	r := NewRegistry()
	r.Register("b", &fakeHandle{})
	r.Register("a", &fakeHandle{})
	keys := r.Keys()
	sort.Strings(keys)
	assert.Equal(t, []string{"a", "b"}, keys)
}
