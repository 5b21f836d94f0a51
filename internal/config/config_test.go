package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlguard/sqlguard/pkg/sqlcontext"
)

func writeYAML(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "sqlguard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadAppliesDefaultsWithNoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.True(t, cfg.Enabled)
	assert.Equal(t, "prod", cfg.ActiveStrategy)
	assert.Equal(t, "BLOCK", cfg.ViolationStrategy)
	assert.True(t, cfg.Dedup.Enabled)
	assert.Equal(t, "memory", cfg.Dedup.Backend)
	assert.Equal(t, 1000, cfg.Dedup.CacheSize)
	assert.True(t, cfg.Checkers.NoWhereClause.Enabled)
	assert.Equal(t, "CRITICAL", cfg.Checkers.NoWhereClause.RiskLevel)
	assert.Equal(t, "LOW", cfg.Checkers.MissingOrderBy.RiskLevel)
}

func TestLoadOverridesFromYAML(t *testing.T) {
	path := writeYAML(t, `
active_strategy: dev
violation_strategy: WARN
deduplication:
  cache_size: 500
checkers:
  dummy_condition:
    enabled: true
    risk_level: HIGH
    patterns:
      - "1=1"
      - "true"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.ActiveStrategy)
	assert.Equal(t, "WARN", cfg.ViolationStrategy)
	assert.Equal(t, 500, cfg.Dedup.CacheSize)
	assert.Equal(t, []string{"1=1", "true"}, cfg.Checkers.DummyCondition.Patterns)
}

func TestLoadRejectsUnknownActiveStrategy(t *testing.T) {
	path := writeYAML(t, "active_strategy: staging\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsRedisBackendWithoutAddr(t *testing.T) {
	path := writeYAML(t, `
deduplication:
  enabled: true
  backend: redis
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deduplication.redis.addr")
}

func TestToCheckersConfigResolvesRiskLevelsAndFields(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	checkersCfg, err := cfg.ToCheckersConfig()
	require.NoError(t, err)

	assert.True(t, checkersCfg.NoWhereClause.Enabled)
	assert.Equal(t, sqlcontext.RiskCritical, checkersCfg.NoWhereClause.RiskLevel)
	assert.Equal(t, sqlcontext.RiskLow, checkersCfg.MissingOrderBy.RiskLevel)
}

func TestLoadRejectsUnknownRiskLevel(t *testing.T) {
	path := writeYAML(t, `
checkers:
  sql_comment:
    enabled: true
    risk_level: EXTREME
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestToCheckersConfigRejectsUnknownRiskLevel(t *testing.T) {
	var badCfg Config
	badCfg.Checkers.SqlComment.Enabled = true
	badCfg.Checkers.SqlComment.RiskLevel = "EXTREME"

	_, convertErr := badCfg.ToCheckersConfig()
	require.Error(t, convertErr)
}

func TestToValidatorConfigWiresStrategyAndCheckers(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	vcfg, err := cfg.ToValidatorConfig()
	require.NoError(t, err)

	assert.True(t, vcfg.Enabled)
	assert.Equal(t, sqlcontext.StrategyBlock, vcfg.Strategy)
	assert.True(t, vcfg.Checkers.NoWhereClause.Enabled)
}

func TestBuildDedupCacheReturnsNilWhenDisabled(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	cfg.Dedup.Enabled = false

	cache, err := cfg.BuildDedupCache(nil, nil)
	require.NoError(t, err)
	assert.Nil(t, cache)
}

func TestBuildDedupCacheDefaultsToMemoryBackend(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	cache, err := cfg.BuildDedupCache(nil, nil)
	require.NoError(t, err)
	require.NotNil(t, cache)
}
