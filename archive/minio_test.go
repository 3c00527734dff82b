package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMinIOArchiver(t *testing.T) {
	a, err := NewMinIOArchiver("localhost:9000", "key", "secret", "click-archive", false)
	require.NoError(t, err)
	assert.Equal(t, "click-archive", a.bucket)

	_, err = NewMinIOArchiver("localhost:9000", "key", "secret", "", false)
	require.Error(t, err)
}
