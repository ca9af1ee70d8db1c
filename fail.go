package main

import (
	"fmt"
	"os"
	"path/filepath"
)

// Fail records why a beatmap was rejected in <dir>/<cat>/<name>.
func Fail(dir, cat, name, reason string) error {
	fmt.Printf("fail: %s, %s\n", cat, name)
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Join(dir, cat), 0o777); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, cat, name), []byte(reason), 0o644)
}
