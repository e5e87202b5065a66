// Command catalog-check validates a location catalog file before it is
// deployed through AUDITPORTAL_CATALOG_PATH.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"auditportal/internal/catalog"
	"auditportal/internal/resolve"
)

var exitFunc = os.Exit

func main() {
	code := cli(os.Args[1:], os.Stdout, os.Stderr)
	exitFunc(code)
}

func cli(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("catalog-check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var path string
	var verbose bool
	fs.StringVar(&path, "catalog", "", "path to catalog yaml (empty checks the built-in catalog)")
	fs.BoolVar(&verbose, "v", false, "print block and panchayat counts per district")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	c, err := run(path)
	if err != nil {
		fmt.Fprintf(stderr, "Catalog validation failed: %v\n", err)
		return 1
	}
	if verbose {
		for _, d := range c.Districts() {
			blocks := resolve.Blocks(c, d)
			n := 0
			for _, b := range blocks {
				n += len(resolve.Panchayats(c, d, b))
			}
			fmt.Fprintf(stdout, "%s: %d blocks, %d panchayats\n", d, len(blocks), n)
		}
	}
	fmt.Fprintln(stdout, "Catalog validation passed.")
	return 0
}

// validatePath rejects absolute and traversing paths so the check only reads
// files inside the working tree.
func validatePath(p string) (string, error) {
	if filepath.IsAbs(p) {
		return "", fmt.Errorf("absolute paths not allowed: %s", p)
	}
	clean := filepath.Clean(p)
	if strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("path traversal not allowed: %s", p)
	}
	return clean, nil
}

func run(path string) (*catalog.Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return catalog.Default()
	}
	safe, err := validatePath(path)
	if err != nil {
		return nil, err
	}
	c, err := catalog.LoadFile(safe)
	if err != nil {
		return nil, err
	}
	if len(c.Panchayats) == 0 {
		return nil, fmt.Errorf("%s: no panchayats", safe)
	}
	return c, nil
}
