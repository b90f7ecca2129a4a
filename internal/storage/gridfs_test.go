package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseRef(t *testing.T) {
	id := primitive.NewObjectID()

	got, ok := parseRef(RefPrefix + id.Hex())
	assert.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = parseRef("https://cdn.example/photo.png")
	assert.False(t, ok)

	_, ok = parseRef(RefPrefix + "zz")
	assert.False(t, ok)
}
