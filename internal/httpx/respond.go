package httpx

import (
	"encoding/json"
	"net/http"
)

const (
	codeInvalidBody     = "invalid_request_body"
	codeInvalidStatus   = "invalid_status"
	codeOrderCancelled  = "order_cancelled"
	codeOrderNotFound   = "order_not_found"
	codeOrderExists     = "order_exists"
	codeUnknownStatus   = "unknown_order_status"
	codeProductNotFound = "product_not_found"
	codeInvalidProduct  = "invalid_product"
	codeUnauthorized    = "unauthorized"
	codeForbidden       = "forbidden"
	codeInternal        = "internal_error"
)

type errorResponse struct {
	Message       string `json:"message"`
	Code          string `json:"code"`
	CurrentStatus string `json:"currentStatus,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Message: msg, Code: code})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	return dec.Decode(v)
}
