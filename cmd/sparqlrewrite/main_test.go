package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigEmptyPathYieldsZeroValue(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)
}

func TestLoadConfigParsesYAML(t *testing.T) {
	path := writeFixture(t, "datasetFile: facts.json\nsqlitePath: schema.db\noracleCacheSize: 1024\n")

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "facts.json", cfg.DatasetFile)
	assert.Equal(t, "schema.db", cfg.SQLitePath)
	assert.Equal(t, int64(1024), cfg.OracleCacheSize)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
