package cartstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, s := range []string{
		`[]`,
		`[{"id":42,"title":"Tênis de Caminhada Leve Confortável","price":179.9,"imageUrl":"https://example.com/42.jpg","amount":1}]`,
		`[{"id":3,"title":"a \"quoted\" title","price":0.1,"imageUrl":"","amount":12},{"id":1,"title":"","price":100,"imageUrl":"x","amount":1}]`,
		`[{"id":7,"title":"Nike & Adidas <Pro>","price":299.9,"imageUrl":"https://cdn.example.com/a.jpg?w=1&h=2","amount":1}]`,
		"[{\"id\":8,\"title\":\"line\u2028break\u2029\",\"price\":1,\"imageUrl\":\"\",\"amount\":1}]",
		`[{"id":9,"title":"a\\u2028b \\\\","price":1,"imageUrl":"","amount":1}]`,
	} {
		c, err := Decode(s)
		require.NoError(t, err, s)

		got, err := Encode(c)
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}

func TestEncode_PreservesOrder(t *testing.T) {
	c, err := NewCart(
		CartLine{ProductID: 9, Title: "z", Price: 1.5, Amount: 2},
		CartLine{ProductID: 1, Title: "a", Price: 2, Amount: 1},
	)
	require.NoError(t, err)

	s, err := Encode(c)
	require.NoError(t, err)
	assert.Equal(t,
		`[{"id":9,"title":"z","price":1.5,"imageUrl":"","amount":2},{"id":1,"title":"a","price":2,"imageUrl":"","amount":1}]`,
		s)

	back, err := Decode(s)
	require.NoError(t, err)
	assert.True(t, c.Equal(back))
}

func TestEncode_EmptyCart(t *testing.T) {
	s, err := Encode(Cart{})
	require.NoError(t, err)
	assert.Equal(t, "[]", s)
}

func TestDecode_Malformed(t *testing.T) {
	for _, s := range []string{
		``,
		`null`,
		`{}`,
		`not json`,
		`[{"id":1,"amount":1},{"id":1,"amount":1}]`,
		`[{"id":1,"amount":-2}]`,
		`[{"id":"1","amount":1}]`,
	} {
		_, err := Decode(s)
		assert.Error(t, err, s)
	}
}

func TestDecode_EscapedBackslashIsNotALineSeparator(t *testing.T) {
	c, err := Decode(`[{"id":9,"title":"a\\u2028b","price":1,"imageUrl":"","amount":1}]`)
	require.NoError(t, err)

	line, ok := c.Line(9)
	require.True(t, ok)
	assert.Equal(t, `a\u2028b`, line.Title)
}
