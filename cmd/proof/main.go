// --- START OF FINAL REVISED FILE cmd/proof/main.go ---
package main

// Build-time variables 'version', 'commit' and 'date' live in root.go and are
// populated via -ldflags.

// main is the entry point for the proof CLI.
func main() {
	Execute()
}

// --- END OF FINAL REVISED FILE cmd/proof/main.go ---
