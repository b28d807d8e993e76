package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// EnvFileCandidates returns the environment files checked under root, highest precedence first.
func EnvFileCandidates(root string) []string {
	return []string{
		filepath.Join(root, "local", ".env"),
		filepath.Join(root, ".env"),
	}
}

// LoadEnvFiles reads every existing candidate file under root. A key keeps the
// value of the first file that defines it; later files only fill gaps.
func LoadEnvFiles(root string) (map[string]string, []string, error) {
	values := make(map[string]string)
	var used []string

	for _, candidate := range EnvFileCandidates(root) {
		if _, err := os.Stat(candidate); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, nil, fmt.Errorf("stat %s: %w", candidate, err)
		}

		parsed, err := godotenv.Read(candidate)
		if err != nil {
			return nil, nil, fmt.Errorf("parse %s: %w", candidate, err)
		}
		for key, value := range parsed {
			if _, set := values[key]; !set {
				values[key] = value
			}
		}
		used = append(used, candidate)
	}

	return values, used, nil
}
