package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/pkg/errors"
)

func TestParseOrder(t *testing.T) {
	tests := []struct {
		input string
		want  Order
	}{
		{"inorder", InOrder},
		{"In-Order", InOrder},
		{"", InOrder},
		{"pre_order", PreOrder},
		{"post", PostOrder},
		{"level-order", LevelOrder},
		{"BFS", LevelOrder},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseOrder(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseOrder("zigzag")
	assert.True(t, errors.Is(err, ErrInvalidOrder))
}

func TestOrder_StringRoundTrip(t *testing.T) {
	for _, o := range Orders() {
		got, err := ParseOrder(o.String())
		require.NoError(t, err)
		assert.Equal(t, o, got)
	}
}

func TestOrder_YAML(t *testing.T) {
	var v struct {
		Order Order `yaml:"order"`
	}

	require.NoError(t, yaml.Unmarshal([]byte("order: post-order\n"), &v))
	assert.Equal(t, PostOrder, v.Order)

	assert.Error(t, yaml.Unmarshal([]byte("order: sideways\n"), &v))
}

func TestCompareFuncs(t *testing.T) {
	asc := Ordered[int]()
	assert.Equal(t, -1, asc(1, 2))
	assert.Equal(t, 0, asc(2, 2))
	assert.Equal(t, 1, asc(3, 2))

	desc := Reverse(asc)
	assert.Equal(t, 1, desc(1, 2))
	assert.Equal(t, -1, desc(3, 2))

	byLen := ByComparable[lengthString]()
	assert.Equal(t, -1, byLen("zz", "aaa"))
}

type lengthString string

func (s lengthString) Compare(other lengthString) int {
	switch {
	case len(s) < len(other):
		return -1
	case len(s) > len(other):
		return 1
	}
	return 0
}
