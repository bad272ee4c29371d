// Пакет contract — OpenAPI контракт JSON API и проверка тел запросов по нему.
package contract

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var spec []byte

// ErrInvalidBody — тело запроса не соответствует контракту.
var ErrInvalidBody = errors.New("тело запроса не соответствует контракту")

// Validator проверяет тела запросов по схемам контракта.
type Validator struct {
	drive *openapi3.Schema
}

// NewValidator загружает и валидирует встроенный контракт.
func NewValidator(ctx context.Context) (*Validator, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(spec)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки OpenAPI контракта: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("некорректный OpenAPI контракт: %w", err)
	}

	ref, ok := doc.Components.Schemas["DriveSettings"]
	if !ok || ref.Value == nil {
		return nil, errors.New("в контракте нет схемы DriveSettings")
	}

	return &Validator{drive: ref.Value}, nil
}

// Spec возвращает исходный текст контракта.
func Spec() []byte {
	return spec
}

// ValidateDriveSettings проверяет тело PUT /api/user/drive.
// Ошибка оборачивает ErrInvalidBody, текст описывает первое нарушение.
func (v *Validator) ValidateDriveSettings(body []byte) error {
	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		return fmt.Errorf("%w: некорректный JSON: %v", ErrInvalidBody, err)
	}
	if err := v.drive.VisitJSON(value); err != nil {
		var schemaErr *openapi3.SchemaError
		if errors.As(err, &schemaErr) {
			return fmt.Errorf("%w: %s", ErrInvalidBody, schemaErr.Reason)
		}
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	return nil
}
