package main

import (
	"path/filepath"
	"strings"
)

// reorder moves flags in front of positional arguments, so that
// "urdftool tree arm.urdf -from base" works like the documented form.
// Every flag of urdftool except the booleans takes one value.
func reorder(args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		if !strings.HasPrefix(a, "-") || a == "-" {
			positional = append(positional, a)
			continue
		}
		flags = append(flags, a)
		if isBoolFlag(a) || strings.Contains(a, "=") {
			continue
		}
		if i+1 < len(args) {
			flags = append(flags, args[i+1])
			i++
		}
	}
	return append(flags, positional...)
}

func isBoolFlag(a string) bool {
	name := strings.TrimLeft(a, "-")
	return name == "movable" || name == "h" || name == "help"
}

// matchName matches a glob pattern against a link name.
func matchName(pattern, name string) (bool, error) {
	return filepath.Match(pattern, name)
}
