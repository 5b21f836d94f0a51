// Package config loads SqlGuard's host configuration through viper,
// covering the root/dedup/per-checker shape of §6 ("Configuration shape
// (recognized options)") plus the ambient sections (logging, the HTTP
// API server, the datasource/dialect resolver) that a deployable SqlGuard
// needs beyond the validation core itself.
package config

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	structvalidator "github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/sqlguard/sqlguard/pkg/checkers"
	"github.com/sqlguard/sqlguard/pkg/dedup"
	"github.com/sqlguard/sqlguard/pkg/sqlcontext"
	"github.com/sqlguard/sqlguard/pkg/validator"
)

var structValidate = structvalidator.New()

// Config is the root configuration object (§6 "root:
// {enabled, activeStrategy, violationStrategy}" plus the dedup and
// per-checker sections, plus the ambient sections the core's §6 shape is
// silent about).
type Config struct {
	Enabled           bool   `mapstructure:"enabled"`
	ActiveStrategy    string `mapstructure:"active_strategy" validate:"oneof=dev test prod"`
	ViolationStrategy string `mapstructure:"violation_strategy" validate:"oneof=BLOCK WARN LOG"`

	Dedup      DedupConfig      `mapstructure:"deduplication"`
	Checkers   CheckersConfig   `mapstructure:"checkers"`
	Server     ServerConfig     `mapstructure:"server"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Datasource DatasourceConfig `mapstructure:"datasource"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// DedupConfig is §6's `deduplication: {enabled, cacheSize, ttlMs}`,
// extended with a backend selector so a host can share dedup state
// across instances via Redis instead of the default in-process LRU.
type DedupConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Backend   string `mapstructure:"backend" validate:"omitempty,oneof=memory redis"`
	CacheSize int    `mapstructure:"cache_size" validate:"omitempty,gt=0"`
	TTLMs     int    `mapstructure:"ttl_ms" validate:"gte=0"`
	Redis     RedisConfig `mapstructure:"redis"`
}

// RedisConfig mirrors pkg/dedup.RedisConfig's shape for mapstructure
// binding; BuildDedupCache converts it to the pkg/dedup type.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// ServerConfig configures the HTTP validation API (internal/httpapi).
type ServerConfig struct {
	Port         int           `mapstructure:"port" validate:"gt=0,lte=65535"`
	Host         string        `mapstructure:"host" validate:"required"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	RateLimitRPS float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst int         `mapstructure:"rate_limit_burst"`
}

// LoggingConfig mirrors internal/logging.Config for mapstructure binding.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// DatasourceConfig resolves the dialect strategy (§4.8) for a deployed
// SqlGuard instance from the connected database's own driver/DSN, rather
// than requiring the host to name a dialect explicitly.
type DatasourceConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// MetricsConfig configures the Prometheus exposition endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// CheckersConfig mirrors pkg/checkers.Config with mapstructure tags,
// mapping 1:1 onto §6's per-checker configuration shape.
type CheckersConfig struct {
	NoWhereClause  RiskConfig `mapstructure:"no_where_clause"`
	DummyCondition struct {
		RiskConfig     `mapstructure:",squash"`
		Patterns       []string `mapstructure:"patterns"`
		CustomPatterns []string `mapstructure:"custom_patterns"`
	} `mapstructure:"dummy_condition"`
	BlacklistField struct {
		RiskConfig `mapstructure:",squash"`
		Fields     []string `mapstructure:"fields"`
	} `mapstructure:"blacklist_fields"`
	WhitelistField struct {
		RiskConfig              `mapstructure:",squash"`
		Fields                  []string            `mapstructure:"fields"`
		ByTable                 map[string][]string `mapstructure:"by_table"`
		EnforceForUnknownTables bool                `mapstructure:"enforce_for_unknown_tables"`
	} `mapstructure:"whitelist_fields"`
	MultiStatement    RiskConfig `mapstructure:"multi_statement"`
	SetOperation      struct {
		RiskConfig        `mapstructure:",squash"`
		AllowedOperations []string `mapstructure:"allowed_operations"`
	} `mapstructure:"set_operation"`
	DdlOperation      RiskConfig `mapstructure:"ddl_operation"`
	CallStatement     RiskConfig `mapstructure:"call_statement"`
	MetadataStatement RiskConfig `mapstructure:"metadata_statement"`
	SetStatement      RiskConfig `mapstructure:"set_statement"`
	DeniedTable       struct {
		RiskConfig   `mapstructure:",squash"`
		DeniedTables []string `mapstructure:"denied_tables"`
	} `mapstructure:"denied_table"`
	ReadOnlyTable struct {
		RiskConfig     `mapstructure:",squash"`
		ReadonlyTables []string `mapstructure:"readonly_tables"`
	} `mapstructure:"read_only_table"`
	IntoOutfile       RiskConfig `mapstructure:"into_outfile"`
	DangerousFunction struct {
		RiskConfig      `mapstructure:",squash"`
		DeniedFunctions []string `mapstructure:"denied_functions"`
	} `mapstructure:"dangerous_function"`
	SqlComment        RiskConfig `mapstructure:"sql_comment"`
	LogicalPagination RiskConfig `mapstructure:"logical_pagination"`
	NoConditionPagination RiskConfig `mapstructure:"no_condition_pagination"`
	DeepPagination    struct {
		RiskConfig `mapstructure:",squash"`
		MaxOffset  int `mapstructure:"max_offset" validate:"omitempty,gt=0"`
	} `mapstructure:"deep_pagination"`
	LargePageSize struct {
		RiskConfig  `mapstructure:",squash"`
		MaxPageSize int `mapstructure:"max_page_size" validate:"omitempty,gt=0"`
	} `mapstructure:"large_page_size"`
	MissingOrderBy RiskConfig `mapstructure:"missing_order_by"`
	NoPagination   struct {
		RiskConfig           `mapstructure:",squash"`
		WhitelistMapperIDs   []string `mapstructure:"whitelist_mapper_ids"`
		WhitelistTables      []string `mapstructure:"whitelist_tables"`
		UniqueKeyFields      []string `mapstructure:"unique_key_fields"`
		EnforceForAllQueries bool     `mapstructure:"enforce_for_all_queries"`
		BlacklistFields      []string `mapstructure:"blacklist_fields"`
	} `mapstructure:"no_pagination"`
}

// RiskConfig is the `{enabled, riskLevel}` pair every checker section
// carries (§6 "per-checker: {enabled: bool, riskLevel: ...}").
type RiskConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	RiskLevel string `mapstructure:"risk_level" validate:"omitempty,oneof=CRITICAL HIGH MEDIUM LOW INFO"`
}

func (r RiskConfig) toCheckerConfig() (sqlcontext.CheckerConfig, error) {
	if !r.Enabled {
		return sqlcontext.CheckerConfig{Enabled: false}, nil
	}
	if r.RiskLevel == "" {
		return sqlcontext.CheckerConfig{Enabled: true, RiskLevel: sqlcontext.RiskMedium}, nil
	}
	level, ok := sqlcontext.ParseRiskLevel(r.RiskLevel)
	if !ok {
		return sqlcontext.CheckerConfig{}, fmt.Errorf("unrecognized risk level %q", r.RiskLevel)
	}
	return sqlcontext.CheckerConfig{Enabled: true, RiskLevel: level}, nil
}

// Load reads configuration from defaults, path (YAML), and environment
// variables (SQLGUARD_-prefixed, nested keys joined with underscores), in
// that ascending priority, then validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SQLGUARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("sqlguard: reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("sqlguard: unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("enabled", true)
	v.SetDefault("active_strategy", "prod")
	v.SetDefault("violation_strategy", "BLOCK")

	v.SetDefault("deduplication.enabled", true)
	v.SetDefault("deduplication.backend", "memory")
	v.SetDefault("deduplication.cache_size", 1000)
	v.SetDefault("deduplication.ttl_ms", 100)

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.rate_limit_rps", 50.0)
	v.SetDefault("server.rate_limit_burst", 100)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	for _, section := range []string{
		"checkers.no_where_clause", "checkers.dummy_condition", "checkers.blacklist_fields",
		"checkers.whitelist_fields", "checkers.multi_statement", "checkers.set_operation",
		"checkers.ddl_operation", "checkers.call_statement", "checkers.metadata_statement",
		"checkers.set_statement", "checkers.denied_table", "checkers.read_only_table",
		"checkers.into_outfile", "checkers.dangerous_function", "checkers.sql_comment",
		"checkers.logical_pagination", "checkers.no_condition_pagination",
		"checkers.deep_pagination", "checkers.large_page_size", "checkers.missing_order_by",
		"checkers.no_pagination",
	} {
		v.SetDefault(section+".enabled", true)
		v.SetDefault(section+".risk_level", "MEDIUM")
	}
	v.SetDefault("checkers.no_where_clause.risk_level", "CRITICAL")
	v.SetDefault("checkers.multi_statement.risk_level", "CRITICAL")
	v.SetDefault("checkers.ddl_operation.risk_level", "CRITICAL")
	v.SetDefault("checkers.denied_table.risk_level", "CRITICAL")
	v.SetDefault("checkers.read_only_table.risk_level", "CRITICAL")
	v.SetDefault("checkers.into_outfile.risk_level", "CRITICAL")
	v.SetDefault("checkers.no_condition_pagination.risk_level", "CRITICAL")
	v.SetDefault("checkers.logical_pagination.risk_level", "CRITICAL")
	v.SetDefault("checkers.no_pagination.risk_level", "CRITICAL")
	v.SetDefault("checkers.missing_order_by.risk_level", "LOW")
}

// Validate enforces the rules of §6 ("Validation of configuration:
// activeStrategy must be in the enumerated set; numeric fields must be
// positive where stated") via struct tags, returning the same
// validator.ConfigurationError the core raises at startup (§7
// "ConfigurationError: raised at startup by config validation only").
func (c *Config) Validate() error {
	if err := structValidate.Struct(c); err != nil {
		return &validator.ConfigurationError{Reason: err.Error()}
	}
	if c.Dedup.Enabled && c.Dedup.Backend == "redis" && c.Dedup.Redis.Addr == "" {
		return &validator.ConfigurationError{Field: "deduplication.redis.addr", Reason: "required when deduplication.backend=redis"}
	}
	return nil
}

// ToCheckersConfig builds pkg/checkers.Config from the loaded
// configuration, resolving each section's risk-level string into a
// sqlcontext.RiskLevel.
func (c *Config) ToCheckersConfig() (checkers.Config, error) {
	var out checkers.Config
	var err error

	if out.NoWhereClause.CheckerConfig, err = c.Checkers.NoWhereClause.toCheckerConfig(); err != nil {
		return out, fmt.Errorf("checkers.no_where_clause: %w", err)
	}
	if out.DummyCondition.CheckerConfig, err = c.Checkers.DummyCondition.toCheckerConfig(); err != nil {
		return out, fmt.Errorf("checkers.dummy_condition: %w", err)
	}
	out.DummyCondition.Patterns = c.Checkers.DummyCondition.Patterns
	out.DummyCondition.CustomPatterns = c.Checkers.DummyCondition.CustomPatterns

	if out.BlacklistField.CheckerConfig, err = c.Checkers.BlacklistField.toCheckerConfig(); err != nil {
		return out, fmt.Errorf("checkers.blacklist_fields: %w", err)
	}
	out.BlacklistField.Fields = c.Checkers.BlacklistField.Fields

	if out.WhitelistField.CheckerConfig, err = c.Checkers.WhitelistField.toCheckerConfig(); err != nil {
		return out, fmt.Errorf("checkers.whitelist_fields: %w", err)
	}
	out.WhitelistField.Fields = c.Checkers.WhitelistField.Fields
	out.WhitelistField.ByTable = c.Checkers.WhitelistField.ByTable
	out.WhitelistField.EnforceForUnknownTables = c.Checkers.WhitelistField.EnforceForUnknownTables

	if out.MultiStatement.CheckerConfig, err = c.Checkers.MultiStatement.toCheckerConfig(); err != nil {
		return out, fmt.Errorf("checkers.multi_statement: %w", err)
	}

	if out.SetOperation.CheckerConfig, err = c.Checkers.SetOperation.toCheckerConfig(); err != nil {
		return out, fmt.Errorf("checkers.set_operation: %w", err)
	}
	out.SetOperation.AllowedOperations = c.Checkers.SetOperation.AllowedOperations

	if out.DdlOperation.CheckerConfig, err = c.Checkers.DdlOperation.toCheckerConfig(); err != nil {
		return out, fmt.Errorf("checkers.ddl_operation: %w", err)
	}
	if out.CallStatement.CheckerConfig, err = c.Checkers.CallStatement.toCheckerConfig(); err != nil {
		return out, fmt.Errorf("checkers.call_statement: %w", err)
	}
	if out.MetadataStatement.CheckerConfig, err = c.Checkers.MetadataStatement.toCheckerConfig(); err != nil {
		return out, fmt.Errorf("checkers.metadata_statement: %w", err)
	}
	if out.SetStatement.CheckerConfig, err = c.Checkers.SetStatement.toCheckerConfig(); err != nil {
		return out, fmt.Errorf("checkers.set_statement: %w", err)
	}

	if out.DeniedTable.CheckerConfig, err = c.Checkers.DeniedTable.toCheckerConfig(); err != nil {
		return out, fmt.Errorf("checkers.denied_table: %w", err)
	}
	out.DeniedTable.DeniedTables = c.Checkers.DeniedTable.DeniedTables

	if out.ReadOnlyTable.CheckerConfig, err = c.Checkers.ReadOnlyTable.toCheckerConfig(); err != nil {
		return out, fmt.Errorf("checkers.read_only_table: %w", err)
	}
	out.ReadOnlyTable.ReadonlyTables = c.Checkers.ReadOnlyTable.ReadonlyTables

	if out.IntoOutfile.CheckerConfig, err = c.Checkers.IntoOutfile.toCheckerConfig(); err != nil {
		return out, fmt.Errorf("checkers.into_outfile: %w", err)
	}

	if out.DangerousFunction.CheckerConfig, err = c.Checkers.DangerousFunction.toCheckerConfig(); err != nil {
		return out, fmt.Errorf("checkers.dangerous_function: %w", err)
	}
	out.DangerousFunction.DeniedFunctions = c.Checkers.DangerousFunction.DeniedFunctions

	if out.SqlComment.CheckerConfig, err = c.Checkers.SqlComment.toCheckerConfig(); err != nil {
		return out, fmt.Errorf("checkers.sql_comment: %w", err)
	}
	if out.LogicalPagination.CheckerConfig, err = c.Checkers.LogicalPagination.toCheckerConfig(); err != nil {
		return out, fmt.Errorf("checkers.logical_pagination: %w", err)
	}
	if out.NoConditionPagination.CheckerConfig, err = c.Checkers.NoConditionPagination.toCheckerConfig(); err != nil {
		return out, fmt.Errorf("checkers.no_condition_pagination: %w", err)
	}

	if out.DeepPagination.CheckerConfig, err = c.Checkers.DeepPagination.toCheckerConfig(); err != nil {
		return out, fmt.Errorf("checkers.deep_pagination: %w", err)
	}
	out.DeepPagination.MaxOffset = c.Checkers.DeepPagination.MaxOffset

	if out.LargePageSize.CheckerConfig, err = c.Checkers.LargePageSize.toCheckerConfig(); err != nil {
		return out, fmt.Errorf("checkers.large_page_size: %w", err)
	}
	out.LargePageSize.MaxPageSize = c.Checkers.LargePageSize.MaxPageSize

	if out.MissingOrderBy.CheckerConfig, err = c.Checkers.MissingOrderBy.toCheckerConfig(); err != nil {
		return out, fmt.Errorf("checkers.missing_order_by: %w", err)
	}

	if out.NoPagination.CheckerConfig, err = c.Checkers.NoPagination.toCheckerConfig(); err != nil {
		return out, fmt.Errorf("checkers.no_pagination: %w", err)
	}
	out.NoPagination.WhitelistMapperIDs = c.Checkers.NoPagination.WhitelistMapperIDs
	out.NoPagination.WhitelistTables = c.Checkers.NoPagination.WhitelistTables
	out.NoPagination.UniqueKeyFields = c.Checkers.NoPagination.UniqueKeyFields
	out.NoPagination.EnforceForAllQueries = c.Checkers.NoPagination.EnforceForAllQueries
	out.NoPagination.BlacklistFields = c.Checkers.NoPagination.BlacklistFields

	return out, nil
}

// ViolationStrategyValue parses ViolationStrategy into its typed form.
func (c *Config) ViolationStrategyValue() sqlcontext.ViolationStrategy {
	return sqlcontext.ViolationStrategy(c.ViolationStrategy)
}

// BuildDedupCache constructs the dedup.Cache backend named by
// Dedup.Backend (§4.2's "alternate implementation for multi-instance
// deployments sharing dedup state" is the Redis branch; the default is
// the in-process LRU).
func (c *Config) BuildDedupCache(ctx context.Context, logger *slog.Logger) (dedup.Cache, error) {
	if !c.Dedup.Enabled {
		return nil, nil
	}
	dcfg := dedup.Config{
		MaxEntries: c.Dedup.CacheSize,
		TTL:        time.Duration(c.Dedup.TTLMs) * time.Millisecond,
	}
	switch c.Dedup.Backend {
	case "redis":
		rcfg := dedup.RedisConfig{
			Addr:     c.Dedup.Redis.Addr,
			Password: c.Dedup.Redis.Password,
			DB:       c.Dedup.Redis.DB,
			PoolSize: c.Dedup.Redis.PoolSize,
		}
		return dedup.NewRedisCache(ctx, dcfg, rcfg, logger)
	default:
		return dedup.NewLRUCache(dcfg), nil
	}
}

// ToValidatorConfig builds pkg/validator.Config from the loaded
// configuration.
func (c *Config) ToValidatorConfig() (validator.Config, error) {
	checkersCfg, err := c.ToCheckersConfig()
	if err != nil {
		return validator.Config{}, err
	}
	return validator.Config{
		Enabled:  c.Enabled,
		Strategy: c.ViolationStrategyValue(),
		Checkers: checkersCfg,
	}, nil
}
