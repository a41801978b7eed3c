package adaptor

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"tour-marketplace/internal/domain"
	"tour-marketplace/pkg/utils"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type errorDetail struct {
	Kind   domain.Kind `json:"kind"`
	Fields []string    `json:"fields,omitempty"`
}

// handleServiceError maps a classified core error to its HTTP status.
// Anything unclassified is an infrastructure failure and is logged at Error.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	var de *domain.Error
	if !errors.As(err, &de) {
		log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
		return
	}

	detail := errorDetail{Kind: de.Kind, Fields: de.Fields}
	message := de.Message
	if message == "" {
		message = de.Error()
	}

	switch de.Kind {
	case domain.KindValidation, domain.KindInvalidTicketType, domain.KindEmptyBooking:
		log.Warn(operation+" validation failed", zap.Error(err))
		utils.ResponseBadRequest(w, message, detail)

	case domain.KindInvalidPrice, domain.KindMalformedVariation, domain.KindInvalidAvailability,
		domain.KindDateOutOfRange, domain.KindTourUnavailable:
		log.Warn(operation+" rejected", zap.Error(err))
		utils.ResponseUnprocessable(w, message, detail)

	case domain.KindCapacityExceeded, domain.KindNegativeCapacity, domain.KindInvalidTransition:
		log.Warn(operation+" failed - conflict", zap.Error(err))
		utils.ResponseConflict(w, message, detail)

	case domain.KindNotFound:
		log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, message)

	default:
		log.Error("Failed to "+operation, zap.Error(err), zap.String("kind", string(de.Kind)))
		utils.ResponseInternalError(w, "Internal server error")
	}
}

// decodeJSON reads the request body into dst. An empty body is accepted
// when optional is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, optional bool) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
	if err == nil || (optional && errors.Is(err, io.EOF)) {
		return true
	}
	utils.ResponseBadRequest(w, "Invalid request body", nil)
	return false
}

func requireActor(w http.ResponseWriter, r *http.Request) (utils.Actor, bool) {
	actor, ok := utils.GetActorFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Actor identity required")
	}
	return actor, ok
}
