// Package main checks formatting with gofumpt and runs golangci-lint.
package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

var tools = map[string]string{
	"gofumpt":       "mvdan.cc/gofumpt@v0.7.0",
	"golangci-lint": "github.com/golangci/golangci-lint/v2/cmd/golangci-lint@v2.9.0",
}

func main() {
	ctx := context.Background()
	fix := len(os.Args) > 1 && os.Args[1] == "--fix"

	for name, pkg := range tools {
		if _, err := exec.LookPath(name); err != nil {
			fmt.Printf("%s not found. Install it with 'go install %s'\n", name, pkg)
			os.Exit(1)
		}
	}

	if fix {
		fmt.Println("Formatting with gofumpt...")
		run(ctx, nil, "gofumpt", "-l", "-w", ".")
	} else {
		fmt.Println("Checking formatting with gofumpt...")
		var out bytes.Buffer
		cmd := exec.CommandContext(ctx, "gofumpt", "-l", ".")
		cmd.Stdout = &out
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			fmt.Printf("❌ gofumpt failed: %v\n", err)
			os.Exit(1)
		}
		if files := strings.TrimSpace(out.String()); files != "" {
			fmt.Printf("❌ Files need formatting (run with --fix):\n%s\n", files)
			os.Exit(1)
		}
	}

	fmt.Println("Linting with golangci-lint...")
	run(ctx, nil, "golangci-lint", "run")
	// cmd/wasm only builds for js/wasm.
	run(ctx, []string{"GOOS=js", "GOARCH=wasm"}, "golangci-lint", "run", "./cmd/wasm/...")
}

func run(ctx context.Context, env []string, name string, args ...string) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), env...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		fmt.Printf("❌ %s failed: %v\n", name, err)
		os.Exit(1)
	}
}
