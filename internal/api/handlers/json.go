package handlers

import (
	"bytes"
	"encoding/json"
)

// decodeJSON разбирает тело, уже прошедшее проверку контракта.
func decodeJSON(body []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
