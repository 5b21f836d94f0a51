package checkers

// Config aggregates every checker's typed config into one value so a
// host can build the full default registry from one configuration
// object (§6 "Configs are constructed from external config files by the
// host and passed to checker constructors").
type Config struct {
	NoWhereClause        NoWhereClauseConfig
	DummyCondition       DummyConditionConfig
	BlacklistField       BlacklistFieldConfig
	WhitelistField       WhitelistFieldConfig
	MultiStatement       MultiStatementConfig
	SetOperation         SetOperationConfig
	DdlOperation         DdlOperationConfig
	CallStatement        CallStatementConfig
	MetadataStatement    MetadataStatementConfig
	SetStatement         SetStatementConfig
	DeniedTable          DeniedTableConfig
	ReadOnlyTable        ReadOnlyTableConfig
	IntoOutfile          IntoOutfileConfig
	DangerousFunction    DangerousFunctionConfig
	SqlComment           SqlCommentConfig
	LogicalPagination    LogicalPaginationConfig
	NoConditionPagination NoConditionPaginationConfig
	DeepPagination       DeepPaginationConfig
	LargePageSize        LargePageSizeConfig
	MissingOrderBy       MissingOrderByConfig
	NoPagination         NoPaginationConfig
}

// DefaultRegistrationOrder builds the full checker set in the order
// they are registered at startup (§4.4 rule 3: "registration order" is
// the deterministic tie-break once risk level is equal; the orchestrator
// re-sorts by risk level while preserving this order as the stable
// tie-break, and additionally enforces rules 1 and 2 regardless of
// risk). The list is intentionally literal rather than built by
// reflection, per §9 "Configuration as explicit struct, not keyword
// args": every checker the system knows about is named here once.
func DefaultRegistrationOrder(cfg Config) []Checker {
	return []Checker{
		NewNoWhereClauseChecker(cfg.NoWhereClause),
		NewDummyConditionChecker(cfg.DummyCondition),
		NewBlacklistFieldChecker(cfg.BlacklistField),
		NewWhitelistFieldChecker(cfg.WhitelistField),
		NewMultiStatementChecker(cfg.MultiStatement),
		NewSetOperationChecker(cfg.SetOperation),
		NewDdlOperationChecker(cfg.DdlOperation),
		NewCallStatementChecker(cfg.CallStatement),
		NewMetadataStatementChecker(cfg.MetadataStatement),
		NewSetStatementChecker(cfg.SetStatement),
		NewDeniedTableChecker(cfg.DeniedTable),
		NewReadOnlyTableChecker(cfg.ReadOnlyTable),
		NewIntoOutfileChecker(cfg.IntoOutfile),
		NewDangerousFunctionChecker(cfg.DangerousFunction),
		NewSqlCommentChecker(cfg.SqlComment),
		NewNoConditionPaginationChecker(cfg.NoConditionPagination),
		NewLogicalPaginationChecker(cfg.LogicalPagination),
		NewDeepPaginationChecker(cfg.DeepPagination),
		NewLargePageSizeChecker(cfg.LargePageSize),
		NewMissingOrderByChecker(cfg.MissingOrderBy),
		NewNoPaginationChecker(cfg.NoPagination),
	}
}
