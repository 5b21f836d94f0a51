package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sqlguard/sqlguard/internal/httpapi/apierrors"
	"github.com/sqlguard/sqlguard/pkg/validator"
)

// ValidateHandler serves POST /v1/validate
//
// @Summary Validate a SQL statement
// @Description Runs one SqlContext through the configured checker pipeline and returns the aggregate result
// @Tags Validate
// @Accept json
// @Produce json
// @Param request body ValidateRequest true "statement to validate"
// @Success 200 {object} ValidateResponse "passed, or WARN/LOG strategy with violations"
// @Failure 400 {object} apierrors.ErrorResponse "malformed request"
// @Failure 409 {object} ValidateResponse "BLOCK strategy rejected the statement"
// @Failure 429 {object} apierrors.ErrorResponse "rate limit exceeded"
// @Router /v1/validate [post]
func (s *Server) ValidateHandler(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFrom(r.Context())

	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.Write(w, apierrors.New(apierrors.CodeValidationError, "malformed JSON body").WithRequestID(requestID))
		return
	}

	sc, err := req.toSqlContext()
	if err != nil {
		apierrors.Write(w, apierrors.New(apierrors.CodeValidationError, err.Error()).WithRequestID(requestID))
		return
	}

	result, err := s.validator.Validate(r.Context(), sc)

	var safety *validator.SqlSafetyViolation
	if errors.As(err, &safety) {
		writeJSON(w, http.StatusConflict, toValidateResponse(result, requestID))
		return
	}
	if err != nil {
		s.logger.Error("validate failed", "error", err, "request_id", requestID, "mapper_id", req.MapperID)
		apierrors.Write(w, apierrors.New(apierrors.CodeInternalError, "validation failed").WithRequestID(requestID))
		return
	}

	writeJSON(w, http.StatusOK, toValidateResponse(result, requestID))
}

// HealthHandler serves GET /healthz
//
// @Summary Liveness check
// @Description Always returns 200 once the server has started accepting connections
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /healthz [get]
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
