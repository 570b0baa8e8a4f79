package apiserver

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"github.com/witnessdag/witnessd/domain/consensus/database"
	"github.com/witnessdag/witnessd/domain/consensus/ruleerrors"
)

type handlerError struct {
	Code    int    `json:"errorCode"`
	Message string `json:"errorMessage"`
}

func (hErr *handlerError) Error() string {
	return hErr.Message
}

func newHandlerError(code int, message string) *handlerError {
	return &handlerError{Code: code, Message: message}
}

// toHandlerError hides internal errors from the client and logs them
func toHandlerError(err error) *handlerError {
	var hErr *handlerError
	if errors.As(err, &hErr) {
		return hErr
	}
	if database.IsNotFoundError(err) || errors.Is(err, ruleerrors.ErrUnknownBall) {
		return newHandlerError(http.StatusNotFound, err.Error())
	}
	if ruleerrors.IsStructuralError(err) || ruleerrors.IsResourceBoundExceeded(err) {
		return newHandlerError(http.StatusBadRequest, err.Error())
	}
	log.Errorf("Error handling an HTTP API request: %+v", err)
	return newHandlerError(http.StatusInternalServerError, "A server error occurred.")
}

func sendErr(w http.ResponseWriter, hErr *handlerError) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(hErr.Code)
	sendJSONResponse(w, hErr)
}

func sendJSONResponse(w http.ResponseWriter, response interface{}) {
	b, err := json.Marshal(response)
	if err != nil {
		panic(err)
	}
	_, err = w.Write(b)
	if err != nil {
		log.Warnf("Error writing an HTTP API response: %s", err)
	}
}
