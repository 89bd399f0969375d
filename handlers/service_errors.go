package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/tuitshoxrux/copilot/services"
	"github.com/tuitshoxrux/copilot/utils"
)

// HandleServiceError maps domain errors to HTTP responses
func HandleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	switch {
	case services.IsValidationError(err):
		utils.WriteBadRequest(w, err.Error())

	case services.IsNotFoundError(err):
		// No stored passage cleared the threshold. Point the operator at
		// ingestion rather than returning a bare 404.
		utils.WriteNotFound(w, "no relevant documents found; make sure the ingestion job has been run")

	case services.IsEmbeddingError(err), services.IsGenerationError(err):
		// Upstream model provider failures are mapped to 502 Bad Gateway
		logger.Error("provider error", zap.Error(err))
		utils.WriteBadGateway(w, "upstream model provider failed")

	case services.IsRetrievalError(err):
		logger.Error("vector store error", zap.Error(err))
		utils.WriteInternalServerError(w, "An internal error occurred")

	case services.IsInternalError(err):
		// Log internal errors but return generic message
		logger.Error("internal server error", zap.Error(err))
		utils.WriteInternalServerError(w, "An internal error occurred")

	default:
		logger.Error("unhandled error type",
			zap.Error(err),
			zap.String("error_type", string(services.GetErrorType(err))))
		utils.WriteInternalServerError(w, "An unexpected error occurred")
	}
}

// HandleValidationError handles validation errors from request parsing
func HandleValidationError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if utils.IsValidationError(err) {
		fields := utils.GetValidationFields(err)
		details := make(map[string]interface{})
		for k, v := range fields {
			details[k] = v
		}
		utils.WriteErrorWithDetails(w, http.StatusBadRequest, "bad_request", "Validation failed", details)
		return
	}

	utils.WriteBadRequest(w, err.Error())
}
