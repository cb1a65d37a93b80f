package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	named := ProfilePublic{FullName: "Ada Lovelace", Email: "ada@example.com"}
	assert.Equal(t, "Ada Lovelace", named.DisplayName())

	unnamed := ProfilePublic{Email: "ada@example.com"}
	assert.Equal(t, "ada@example.com", unnamed.DisplayName())
}
