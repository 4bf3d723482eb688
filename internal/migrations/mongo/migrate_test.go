package mongo

import (
	"testing"

	"courtbook/internal/lock"
	"courtbook/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestDefinitions_CoverEveryCollection(t *testing.T) {
	defs := Definitions()

	for _, name := range repository.Collections {
		def, ok := defs[name]
		require.True(t, ok, name)
		require.NotNil(t, def.Validator, name)

		schema, ok := def.Validator["$jsonSchema"].(bson.M)
		require.True(t, ok, name)
		assert.Equal(t, "object", schema["bsonType"], name)
		assert.NotEmpty(t, schema["required"], name)
	}

	locks, ok := defs[lock.CollectionName]
	require.True(t, ok)
	require.Len(t, locks.Indexes, 1)
	require.NotNil(t, locks.Indexes[0].Options.ExpireAfterSeconds)
	assert.Equal(t, int32(0), *locks.Indexes[0].Options.ExpireAfterSeconds)
}

func TestUsersIndexes_UniqueEmail(t *testing.T) {
	var found bool
	for _, idx := range UsersIndexes {
		keys := idx.Keys.(bson.D)
		if len(keys) == 1 && keys[0].Key == "email" {
			found = true
			require.NotNil(t, idx.Options.Unique)
			assert.True(t, *idx.Options.Unique)
		}
	}
	assert.True(t, found)
}
