package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// tokenEnv — переменная окружения с токеном сессии.
const tokenEnv = "YEECORD_TOKEN"

// Profile — настройки подключения из файла профиля.
type Profile struct {
	URL    string `yaml:"url"`
	Token  string `yaml:"token"`
	CACert string `yaml:"ca_cert"`
}

// defaultProfilePath возвращает ~/.config/yeecordctl.yaml.
func defaultProfilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("домашний каталог: %w", err)
	}
	return filepath.Join(home, ".config", "yeecordctl.yaml"), nil
}

// loadProfile читает профиль. Отсутствующий файл — пустой профиль.
func loadProfile(path string) (Profile, error) {
	var p Profile

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("чтение профиля %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("разбор профиля %s: %w", path, err)
	}
	return p, nil
}

// resolveProfile объединяет источники настроек.
// Приоритет: флаги, затем YEECORD_TOKEN (только токен), затем файл профиля.
func resolveProfile(opts *options) (Profile, error) {
	path := opts.profilePath
	if path == "" {
		var err error
		if path, err = defaultProfilePath(); err != nil {
			return Profile{}, err
		}
	}

	p, err := loadProfile(path)
	if err != nil {
		return Profile{}, err
	}

	if token := os.Getenv(tokenEnv); token != "" {
		p.Token = token
	}
	if opts.url != "" {
		p.URL = opts.url
	}
	if opts.token != "" {
		p.Token = opts.token
	}
	if opts.caCert != "" {
		p.CACert = opts.caCert
	}
	return p, nil
}
