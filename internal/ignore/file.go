package ignore

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Parse reads one pattern per line. Blank lines and lines starting with '#' are skipped.
func Parse(r io.Reader) ([]string, error) {
	var patterns []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return patterns, nil
}

// LoadFile reads the ignore file inside dir. A missing file yields no patterns.
func LoadFile(dir string) ([]string, error) {
	f, err := os.Open(filepath.Join(dir, FileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", FileName, err)
	}
	defer func() { _ = f.Close() }()

	patterns, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", FileName, err)
	}
	return patterns, nil
}

// ForDirectory returns the effective matcher for dir: the defaults followed by
// the patterns of dir's ignore file.
func ForDirectory(dir string) (*Matcher, error) {
	local, err := LoadFile(dir)
	if err != nil {
		return nil, err
	}
	return New(append(Defaults(), local...)), nil
}
