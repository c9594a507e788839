package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/shaiso/Concert/internal/domain"
)

// Load читает environment.yaml и composition.yaml и возвращает
// проверенную конфигурацию.
func Load(envPath, compositionPath string) (domain.Config, error) {
	envData, err := os.ReadFile(envPath)
	if err != nil {
		return domain.Config{}, fmt.Errorf("read environment: %w", err)
	}
	compData, err := os.ReadFile(compositionPath)
	if err != nil {
		return domain.Config{}, fmt.Errorf("read composition: %w", err)
	}
	return Parse(envData, compData)
}

// Parse разбирает содержимое обоих файлов и проверяет результат.
func Parse(envData, compositionData []byte) (domain.Config, error) {
	var env domain.Environment
	if err := decode(envData, &env); err != nil {
		return domain.Config{}, fmt.Errorf("decode environment: %w", err)
	}

	var cfg domain.Config
	if err := decode(compositionData, &cfg); err != nil {
		return domain.Config{}, fmt.Errorf("decode composition: %w", err)
	}
	cfg.Environment = env

	if err := Validate(cfg); err != nil {
		return domain.Config{}, err
	}
	return cfg, nil
}

// decode раскрывает ${VAR} и разбирает YAML, отклоняя неизвестные поля.
func decode(data []byte, out any) error {
	expanded := os.ExpandEnv(string(data))

	dec := yaml.NewDecoder(bytes.NewBufferString(expanded))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyDocument
		}
		return err
	}
	return nil
}
