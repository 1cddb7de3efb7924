package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pkt.systems/mdhtml"
)

func main() {
	root := "testdata"
	if len(os.Args) > 1 {
		root = os.Args[1]
	}
	paths, err := filepath.Glob(filepath.Join(root, "*.md"))
	if err != nil {
		fatalf("glob %s: %v", root, err)
	}
	if len(paths) == 0 {
		fatalf("no markdown files found under %s", root)
	}
	for _, path := range paths {
		src, err := os.ReadFile(path)
		if err != nil {
			fatalf("read %s: %v", path, err)
		}
		if err := mdhtml.ValidateInput(src); err != nil {
			fatalf("%s: %v", path, err)
		}
		out, _, err := mdhtml.Convert(string(src))
		if err != nil {
			fatalf("convert %s: %v", path, err)
		}
		goldenPath := strings.TrimSuffix(path, ".md") + ".html"
		if err := os.WriteFile(goldenPath, []byte(out), 0o644); err != nil {
			fatalf("write %s: %v", goldenPath, err)
		}
		fmt.Fprintf(os.Stdout, "wrote %s\n", goldenPath)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
