package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCallDuration(t *testing.T) {
	cases := []struct {
		seconds int
		want    string
	}{
		{0, "0:00"},
		{5, "0:05"},
		{59, "0:59"},
		{60, "1:00"},
		{65, "1:05"},
		{600, "10:00"},
		{3725, "62:05"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatCallDuration(tc.seconds), "seconds=%d", tc.seconds)
	}
}
