// Package main removes build and test artefacts.
package main

import (
	"fmt"
	"os"
	"path/filepath"
)

func main() {
	for _, dir := range []string{"bin", "dist"} {
		if err := os.RemoveAll(dir); err != nil {
			_, _ = fmt.Printf("❌ Failed to remove dir %s: %v\n", dir, err)
			continue
		}
		_, _ = fmt.Printf("✅ Removed dir %s\n", dir)
	}

	patterns := []string{".jsv.log", "coverage*", "*.out", "*.test", "*.coverprofile"}
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			_, _ = fmt.Printf("❌ Failed to glob pattern %s: %v\n", pattern, err)
			continue
		}
		for _, match := range matches {
			if rErr := os.Remove(match); rErr != nil {
				_, _ = fmt.Printf("❌ Failed to remove %s: %v\n", match, rErr)
			} else {
				_, _ = fmt.Printf("✅ Removed %s\n", match)
			}
		}
	}
}
