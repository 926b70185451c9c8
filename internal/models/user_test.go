package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanAfford(t *testing.T) {
	user := User{Points: 100}

	assert.True(t, user.CanAfford(100))
	assert.True(t, user.CanAfford(50))
	assert.True(t, user.CanAfford(0))

	assert.False(t, user.CanAfford(101))

	// Отрицательная стоимость не считается допустимой
	assert.False(t, user.CanAfford(-10))

	broke := User{Points: 0}
	assert.True(t, broke.CanAfford(0))
	assert.False(t, broke.CanAfford(1))
}
