package opt

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOption(t *testing.T) {
	some := Some("alice")
	v, ok := some.Get()
	assert.True(t, ok)
	assert.Equal(t, "alice", v)
	assert.True(t, some.IsSome())
	assert.False(t, some.IsNone())
	assert.Equal(t, "alice", some.OrElse("bob"))
	assert.Equal(t, "alice", some.OrZero())
	assert.Equal(t, "Some(alice)", some.String())

	var none Option[string]
	assert.Equal(t, None[string](), none)
	_, ok = none.Get()
	assert.False(t, ok)
	assert.True(t, none.IsNone())
	assert.Equal(t, "bob", none.OrElse("bob"))
	assert.Empty(t, none.OrZero())
	assert.Nil(t, none.Ptr())
	assert.Equal(t, "None", none.String())
}

func TestPtr(t *testing.T) {
	n := 3
	o := FromPtr(&n)
	assert.Equal(t, Some(3), o)
	p := o.Ptr()
	require.NotNil(t, p)
	*p = 4
	assert.Equal(t, 3, o.OrZero())
	assert.Equal(t, None[int](), FromPtr[int](nil))
}

func TestJSON(t *testing.T) {
	type person struct {
		Name Option[string] `json:"name"`
		Age  Option[uint32] `json:"age"`
	}
	out, err := json.Marshal(person{Name: Some("alice")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"alice","age":null}`, string(out))

	var p person
	require.NoError(t, json.Unmarshal([]byte(`{"name":null,"age":30}`), &p))
	assert.Equal(t, None[string](), p.Name)
	assert.Equal(t, Some(uint32(30)), p.Age)

	require.NoError(t, json.Unmarshal([]byte(`{"name":"bob"}`), &p))
	assert.Equal(t, Some("bob"), p.Name)
	assert.Equal(t, Some(uint32(30)), p.Age)

	assert.Error(t, json.Unmarshal([]byte(`{"age":"old"}`), &p))
}
