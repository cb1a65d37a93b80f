package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidApplicationStatus(t *testing.T) {
	for _, s := range []ApplicationStatus{
		ApplicationStatusPending,
		ApplicationStatusReviewed,
		ApplicationStatusInterviewed,
		ApplicationStatusRejected,
	} {
		assert.True(t, ValidApplicationStatus(s), string(s))
	}
	assert.False(t, ValidApplicationStatus("accepted"))
	assert.False(t, ValidApplicationStatus(""))
	assert.False(t, ValidApplicationStatus("Pending"))
}
