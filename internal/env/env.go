package env

import (
	"os"
	"strings"
)

// Tool names looked up on PATH unless overridden.
const (
	CMake = "cmake"
	Ninja = "ninja"
)

// Tool returns the program to run for name. RUNME_<NAME> overrides the default,
// e.g. RUNME_CMAKE=/opt/cmake/bin/cmake.
func Tool(name string) string {
	if v := os.Getenv(OverrideVar(name)); v != "" {
		return v
	}
	return name
}

// OverrideVar returns the environment variable consulted by Tool.
func OverrideVar(name string) string {
	return "RUNME_" + strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(name))
}
