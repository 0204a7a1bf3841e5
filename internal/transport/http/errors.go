package http

import (
	"encoding/json"
	"net/http"
)

const (
	codeMethodNotAllowed       = "method_not_allowed"
	codeNotFound               = "not_found"
	codeInvalidRequestBody     = "invalid_request_body"
	codeInvalidID              = "invalid_id"
	codeInvalidQuantity        = "invalid_quantity"
	codeInvalidAction          = "invalid_action"
	codeInvalidResult          = "invalid_result"
	codeInvalidStage           = "invalid_stage"
	codeLockerRequired         = "locker_required"
	codeActorRequired          = "actor_required"
	codeMismatchReasonRequired = "mismatch_reason_required"
	codeItemNotFound           = "item_not_found"
	codeItemNameRequired       = "item_name_required"
	codeItemAlreadyExists      = "item_already_exists"
	codeInsufficientQuantity   = "insufficient_quantity"
	codeStorageUnavailable     = "storage_unavailable"
	codeInvalidToken           = "invalid_token"
	codeForbidden              = "forbidden"
	codeInternalError          = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}
