// Package main runs the tests and, with --coverage, checks coverage of the
// internal packages.
package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// minimum is the coverage every internal package must reach.
const minimum = 85.0

// exceptions lowers the bar for packages with paths that cannot be reached
// from tests.
var exceptions = map[string]float64{
	// listen and shutdown errors depend on the host
	"github.com/antoniopresto/wasm-validator/internal/server": 80.0,
}

func main() {
	ctx := context.Background()
	args, coverage := parseArgs(os.Args[1:])

	profile := "coverage.out"
	if coverage {
		args = append(args, "-race", "-coverprofile="+profile, "-coverpkg=./internal/...")
	}
	args = append(args, "./...")

	if _, err := exec.LookPath("gotestsum"); err == nil && !coverage {
		run(ctx, "gotestsum", append([]string{"--"}, args...)...)
	} else {
		run(ctx, "go", append([]string{"test"}, args...)...)
	}

	if coverage {
		checkCoverage(ctx, profile)
	}
}

func parseArgs(in []string) (args []string, coverage bool) {
	for _, a := range in {
		if a == "--coverage" {
			coverage = true
			continue
		}
		args = append(args, a)
	}
	return args, coverage
}

func run(ctx context.Context, name string, args ...string) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		fmt.Printf("❌ Command failed: %v\n", err)
		os.Exit(1)
	}
}

func checkCoverage(ctx context.Context, profile string) {
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, "go", "tool", "cover", "-func", profile)
	cmd.Stdout = &out
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		fmt.Printf("❌ Error running go tool cover: %v\n", err)
		os.Exit(1)
	}

	perPackage, total := packageCoverage(out.Bytes())
	var failures []string
	for pkg, pct := range perPackage {
		want := minimum
		if e, ok := exceptions[pkg]; ok {
			want = e
		}
		if pct < want {
			failures = append(failures, fmt.Sprintf("  %s: %.1f%% (want %.1f%%)", pkg, pct, want))
		}
	}

	if len(failures) > 0 {
		fmt.Println("❌ Coverage check failed:")
		for _, f := range failures {
			fmt.Println(f)
		}
		os.Exit(1)
	}
	fmt.Printf("✅ Coverage check passed\n📊 %s\n", total)
}

// packageCoverage averages the function coverage reported by 'go tool cover
// -func' per package. Lines for main packages are skipped.
func packageCoverage(output []byte) (map[string]float64, string) {
	sums := map[string]float64{}
	counts := map[string]int{}
	var total string

	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "total:") {
			total = line
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 || !strings.Contains(fields[0], "/internal/") {
			continue
		}

		file := fields[0][:strings.Index(fields[0], ":")]
		pkg := file[:strings.LastIndex(file, "/")]
		var pct float64
		if _, err := fmt.Sscanf(strings.TrimSuffix(fields[len(fields)-1], "%"), "%f", &pct); err != nil {
			continue
		}
		sums[pkg] += pct
		counts[pkg]++
	}

	out := make(map[string]float64, len(sums))
	for pkg, sum := range sums {
		out[pkg] = sum / float64(counts[pkg])
	}
	return out, total
}
