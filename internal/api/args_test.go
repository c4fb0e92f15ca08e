package api

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	svcErr "github.com/oggyb/swipematch/internal/errors"
)

func TestArgsID(t *testing.T) {
	a := Args{
		"str":      "42",
		"float":    float64(7),
		"int":      3,
		"number":   json.Number("9"),
		"fraction": 1.5,
		"zero":     "0",
		"negative": float64(-2),
		"word":     "abc",
		"bool":     true,
		"null":     nil,
	}

	for key, want := range map[string]uint64{"str": 42, "float": 7, "int": 3, "number": 9} {
		got, err := a.ID(key)
		require.NoError(t, err, key)
		assert.Equal(t, want, got, key)
	}
	for _, key := range []string{"fraction", "zero", "negative", "word", "bool", "null", "missing"} {
		_, err := a.ID(key)
		assert.ErrorIs(t, err, svcErr.ErrInvalidOperation, key)
	}

	id, err := a.OptionalID("missing")
	require.NoError(t, err)
	assert.Zero(t, id)
	_, err = a.OptionalID("word")
	assert.ErrorIs(t, err, svcErr.ErrInvalidOperation)
}

func TestArgsIntStringDate(t *testing.T) {
	a := Args{"limit": float64(10), "bad": 2.5, "name": "x", "num": 5, "day": "1995-06-15", "notDay": "15/06/1995"}

	n, err := a.Int("limit", 25)
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	n, err = a.Int("missing", 25)
	require.NoError(t, err)
	assert.Equal(t, 25, n)
	_, err = a.Int("bad", 0)
	assert.ErrorIs(t, err, svcErr.ErrInvalidOperation)

	s, err := a.String("name")
	require.NoError(t, err)
	assert.Equal(t, "x", s)
	_, err = a.String("num")
	assert.ErrorIs(t, err, svcErr.ErrInvalidOperation)
	_, err = a.String("missing")
	assert.ErrorIs(t, err, svcErr.ErrInvalidOperation)

	d, err := a.OptionalDate("day")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, time.Date(1995, time.June, 15, 0, 0, 0, 0, time.UTC), *d)
	_, err = a.OptionalDate("notDay")
	assert.ErrorIs(t, err, svcErr.ErrInvalidOperation)
	opt, err := a.OptionalDate("missing")
	require.NoError(t, err)
	assert.Nil(t, opt)
}
