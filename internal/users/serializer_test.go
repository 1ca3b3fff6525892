package users

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeKeyOrderAndValues(t *testing.T) {
	data, err := json.Marshal(Serialize(&User{ID: 1, Name: "Alice", Age: 28}))
	require.NoError(t, err)
	assert.Equal(t, `{"id":1,"name":"Alice","age":28}`, string(data))
}

func TestSerializeManyPreservesOrder(t *testing.T) {
	got := SerializeMany([]*User{
		{ID: 3, Name: "C", Age: 3},
		{ID: 1, Name: "A", Age: 1},
	})
	require.Len(t, got, 2)
	assert.Equal(t, int64(3), got[0].ID)
	assert.Equal(t, int64(1), got[1].ID)
}

func TestSerializeManyEmptyEncodesAsArray(t *testing.T) {
	data, err := json.Marshal(SerializeMany(nil))
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))
}
