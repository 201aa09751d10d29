package s3

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectKey(t *testing.T) {
	a := ObjectKey("l1", "Bike.JPG")
	b := ObjectKey("l1", "Bike.JPG")

	assert.True(t, strings.HasPrefix(a, "listings/l1/"))
	assert.True(t, strings.HasSuffix(a, ".jpg"))
	assert.NotEqual(t, a, b)
	assert.False(t, strings.Contains(ObjectKey("l1", "noext"), "."))
}
