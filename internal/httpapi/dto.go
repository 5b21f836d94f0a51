package httpapi

import (
	"github.com/sqlguard/sqlguard/pkg/sqlcontext"
)

// ValidateRequest is the POST /v1/validate JSON body: a wire-level
// SqlContext, built with sqlcontext.NewBuilder once decoded (§6
// "Validator API").
type ValidateRequest struct {
	SQL        string         `json:"sql"`
	Params     map[string]any `json:"params,omitempty"`
	MapperID   string         `json:"mapper_id"`
	SqlType    string         `json:"sql_type,omitempty"`
	Datasource string         `json:"datasource,omitempty"`
	Lenient    bool           `json:"lenient,omitempty"`
	RowBounds  *RowBoundsDTO  `json:"row_bounds,omitempty"`
	PageParam  *PageParamDTO  `json:"page_param,omitempty"`
}

type RowBoundsDTO struct {
	Offset     int  `json:"offset"`
	Limit      int  `json:"limit"`
	IsInfinite bool `json:"is_infinite,omitempty"`
}

type PageParamDTO struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

func (req ValidateRequest) toSqlContext() (*sqlcontext.SqlContext, error) {
	b := sqlcontext.NewBuilder().
		SQL(req.SQL).
		MapperID(req.MapperID).
		Params(req.Params)

	if req.SqlType != "" {
		b.SqlType(sqlcontext.SqlType(req.SqlType))
	}
	if req.Datasource != "" {
		b.Datasource(req.Datasource)
	}
	if req.Lenient {
		b.ParseMode(sqlcontext.ParseLenient)
	}

	var hints sqlcontext.ExecutionHints
	if req.RowBounds != nil {
		hints.RowBounds = &sqlcontext.RowBounds{
			Offset:     req.RowBounds.Offset,
			Limit:      req.RowBounds.Limit,
			IsInfinite: req.RowBounds.IsInfinite,
		}
	}
	if req.PageParam != nil {
		hints.PageParam = &sqlcontext.PageParam{Page: req.PageParam.Page, PageSize: req.PageParam.PageSize}
	}
	b.ExecutionHints(hints)

	return b.Build()
}

// ViolationDTO is the JSON form of sqlcontext.ViolationInfo.
type ViolationDTO struct {
	Kind       string         `json:"kind"`
	RiskLevel  string         `json:"risk_level"`
	Message    string         `json:"message"`
	Suggestion string         `json:"suggestion,omitempty"`
	Location   *LocationDTO   `json:"location,omitempty"`
	Diagnostics map[string]any `json:"diagnostics,omitempty"`
}

type LocationDTO struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// ValidateResponse is the POST /v1/validate JSON response body.
type ValidateResponse struct {
	Passed     bool           `json:"passed"`
	Violations []ViolationDTO `json:"violations"`
	RequestID  string         `json:"request_id,omitempty"`
}

func toViolationDTOs(vs []sqlcontext.ViolationInfo) []ViolationDTO {
	out := make([]ViolationDTO, 0, len(vs))
	for _, v := range vs {
		dto := ViolationDTO{
			Kind:        v.Kind,
			RiskLevel:   v.RiskLevel.String(),
			Message:     v.Message,
			Suggestion:  v.Suggestion,
			Diagnostics: v.Diagnostics,
		}
		if v.Location != nil {
			dto.Location = &LocationDTO{Line: v.Location.Line, Column: v.Location.Column}
		}
		out = append(out, dto)
	}
	return out
}

func toValidateResponse(result *sqlcontext.ValidationResult, requestID string) ValidateResponse {
	return ValidateResponse{
		Passed:     result.Passed(),
		Violations: toViolationDTOs(result.Violations),
		RequestID:  requestID,
	}
}
