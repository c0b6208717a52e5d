// Package main builds the jsv binary and the js/wasm module into bin/.
package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

const versionVar = "github.com/antoniopresto/wasm-validator/internal/app.Version"

func main() {
	ctx := context.Background()

	if err := os.MkdirAll("bin", 0o755); err != nil {
		fmt.Printf("❌ Failed to create bin directory: %v\n", err)
		os.Exit(1)
	}

	version := gitVersion(ctx)
	fmt.Printf("Building %s...\n", version)

	binaryName := "jsv"
	if runtime.GOOS == "windows" {
		binaryName += ".exe"
	}
	cli := filepath.Join("bin", binaryName)
	ldflags := fmt.Sprintf("-X %s=%s", versionVar, version)
	if err := goBuild(ctx, nil, "-ldflags", ldflags, "-o", cli, "./cmd/jsv"); err != nil {
		fmt.Printf("❌ Build failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ Built %s\n", cli)

	wasm := filepath.Join("bin", "jsv.wasm")
	if err := goBuild(ctx, []string{"GOOS=js", "GOARCH=wasm"}, "-o", wasm, "./cmd/wasm"); err != nil {
		fmt.Printf("❌ WebAssembly build failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ Built %s\n", wasm)

	if err := copyWasmExec(filepath.Join("bin", "wasm_exec.js")); err != nil {
		fmt.Printf("⚠️  wasm_exec.js not copied: %v\n", err)
	}
}

func goBuild(ctx context.Context, env []string, args ...string) error {
	cmd := exec.CommandContext(ctx, "go", append([]string{"build"}, args...)...)
	cmd.Env = append(os.Environ(), env...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// gitVersion describes HEAD, or returns "dev" outside a git checkout.
func gitVersion(ctx context.Context) string {
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, "git", "describe", "--tags", "--always", "--dirty")
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "dev"
	}
	return strings.TrimSpace(out.String())
}

// copyWasmExec copies the JavaScript glue shipped with the Go toolchain.
func copyWasmExec(dst string) error {
	root := runtime.GOROOT()
	for _, p := range []string{
		filepath.Join(root, "lib", "wasm", "wasm_exec.js"),
		filepath.Join(root, "misc", "wasm", "wasm_exec.js"),
	} {
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		return os.WriteFile(dst, data, 0o644)
	}
	return fmt.Errorf("not found under %s", root)
}
