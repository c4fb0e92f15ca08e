package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/swipematch/internal/config"
)

func TestDialector(t *testing.T) {
	cfg := &config.Config{}

	cfg.DB.Driver = "mysql"
	d, err := Dialector(cfg)
	require.NoError(t, err)
	assert.Equal(t, "mysql", d.Name())

	cfg.DB.Driver = "postgres"
	d, err = Dialector(cfg)
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	cfg.DB.Driver = "oracle"
	_, err = Dialector(cfg)
	assert.Error(t, err)
}
