package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelection_Lifecycle(t *testing.T) {
	var sel Selection
	assert.False(t, sel.Active())
	assert.True(t, sel.IsEmpty())

	sel.Enter("id1")
	assert.True(t, sel.Active())
	assert.Equal(t, []string{"id1"}, sel.IDs())

	sel.Toggle("id2")
	sel.Toggle("id1")
	assert.Equal(t, []string{"id2"}, sel.IDs())
	assert.True(t, sel.Active())

	sel.Cancel()
	assert.False(t, sel.Active())
	assert.True(t, sel.IsEmpty())
	assert.Empty(t, sel.IDs())
}

func TestSelection_EnterResetsToOne(t *testing.T) {
	var sel Selection
	sel.Enter("a")
	sel.Toggle("b")
	sel.Toggle("c")
	assert.Equal(t, 3, sel.Len())

	sel.Enter("d")
	assert.Equal(t, []string{"d"}, sel.IDs())
}

func TestSelection_ToggleKeepsMode(t *testing.T) {
	var sel Selection
	sel.Toggle("x")
	assert.False(t, sel.Active(), "toggle alone does not enter selection mode")
	assert.True(t, sel.Contains("x"))

	sel.Enter("x")
	sel.Toggle("x")
	assert.True(t, sel.Active(), "emptying the set leaves the mode on")
	assert.True(t, sel.IsEmpty())
}
