package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

// Demo builds the binary and renders a small example graph around the
// Transformer paper into output/demo.dot.
func Demo() error {
	mg.Deps(Build, Init)

	out := filepath.Join("output", "demo.dot")
	cmd := exec.Command(filepath.Join(binDir, binName), "build",
		"arXiv:1706.03762",
		"--size", "15",
		"--outfile", out,
		"--cache", filepath.Join("output", "demo.cache.db"),
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("citegraph build: %w", err)
	}
	fmt.Printf("Demo graph written to %s (render with: dot -Tpdf %s)\n", out, out)
	return nil
}
