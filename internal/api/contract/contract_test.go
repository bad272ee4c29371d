package contract

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestValidateDriveSettings(t *testing.T) {
	v, err := NewValidator(context.Background())
	if err != nil {
		t.Fatalf("NewValidator() ошибка: %v", err)
	}

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"полное состояние", `{"enabled":true,"format":"flac","container":"zip","service":"google"}`, false},
		{"без service", `{"enabled":false,"format":"opus","container":"zip"}`, false},
		{"неизвестный формат", `{"enabled":true,"format":"mp3","container":"zip"}`, true},
		{"неизвестный контейнер", `{"enabled":true,"format":"flac","container":"rar"}`, true},
		{"неизвестный сервис", `{"enabled":true,"format":"flac","container":"zip","service":"dropbox"}`, true},
		{"enabled не bool", `{"enabled":"yes","format":"flac","container":"zip"}`, true},
		{"нет обязательного поля", `{"format":"flac","container":"zip"}`, true},
		{"лишнее поле", `{"enabled":true,"format":"flac","container":"zip","extra":1}`, true},
		{"не JSON", `enabled=true`, true},
		{"массив", `[]`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateDriveSettings([]byte(tt.body))
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidBody) {
					t.Errorf("ValidateDriveSettings() ошибка = %v, ожидали ErrInvalidBody", err)
				}
				return
			}
			if err != nil {
				t.Errorf("ValidateDriveSettings() неожиданная ошибка: %v", err)
			}
		})
	}
}

func TestSpecEmbedded(t *testing.T) {
	if !strings.Contains(string(Spec()), "/api/user/drive") {
		t.Error("встроенный контракт не содержит /api/user/drive")
	}
}
