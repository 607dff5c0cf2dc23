package response

import (
	"encoding/json"
	"net/http"
)

// Message is the body of every rejection and of plain acknowledgements.
type Message struct {
	Message string `json:"message"`
}

// JSON writes a success payload with the given status code.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// OK writes a plain acknowledgement message with status 200.
func OK(w http.ResponseWriter, message string) {
	JSON(w, http.StatusOK, Message{Message: message})
}

// Error writes a rejection with a human-readable message.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Message{Message: message})
}

func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}

func Forbidden(w http.ResponseWriter, message string) {
	Error(w, http.StatusForbidden, message)
}

func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, message)
}

func InternalError(w http.ResponseWriter, message string) {
	Error(w, http.StatusInternalServerError, message)
}
