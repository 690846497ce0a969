package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBaseAggregateRoot_StoredVersion(t *testing.T) {
	t.Run("new aggregate has unsaved changes", func(t *testing.T) {
		a := NewBaseAggregateRoot()
		assert.Equal(t, 0, a.StoredVersion())
		assert.True(t, a.HasChanges())

		a.MarkStored()
		assert.Equal(t, 1, a.StoredVersion())
		assert.False(t, a.HasChanges())
	})

	t.Run("restored aggregate keeps its row version across mutations", func(t *testing.T) {
		a := RestoreAggregateRoot(NewBaseEntity(), 4)
		assert.False(t, a.HasChanges())

		a.Touch()
		a.Touch()
		assert.Equal(t, 6, a.Version)
		assert.Equal(t, 4, a.StoredVersion())
		assert.True(t, a.HasChanges())
	})
}
