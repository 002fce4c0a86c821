package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassUpdate_Fields(t *testing.T) {
	assert.True(t, ClassUpdate{}.Empty())
	assert.Empty(t, ClassUpdate{}.Fields())

	price := 75.0
	name := "Yoga"
	u := ClassUpdate{Price: &price, ClassName: &name}
	assert.False(t, u.Empty())
	assert.Equal(t, map[string]any{"price": 75.0, "className": "Yoga"}, u.Fields())
}
