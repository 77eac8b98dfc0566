package controllers

import (
	"go-healthlab/models"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompletionRate(t *testing.T) {
	// No orders must not divide by zero
	assert.Equal(t, 0.0, CompletionRate(0, 0))
	assert.Equal(t, 0.0, CompletionRate(0, 10))
	assert.Equal(t, 100.0, CompletionRate(10, 10))
	assert.Equal(t, 50.0, CompletionRate(5, 10))
	assert.Equal(t, 33.3, CompletionRate(1, 3))
	assert.Equal(t, 66.7, CompletionRate(2, 3))
}

func TestCountsFromStatus(t *testing.T) {
	completed, total := countsFromStatus([]statusCount{
		{Status: models.StatusCompleted, Count: 4},
		{Status: models.StatusPending, Count: 3},
		{Status: models.StatusCancelled, Count: 2},
		{Status: models.StatusInProgress, Count: 1},
	})
	assert.Equal(t, int64(4), completed)
	assert.Equal(t, int64(10), total)

	completed, total = countsFromStatus(nil)
	assert.Equal(t, int64(0), completed)
	assert.Equal(t, int64(0), total)
}
