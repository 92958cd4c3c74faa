// Package cli wires together the Cobra command tree for the canon binary.
//
// It defines the root command and all subcommands (review pr, review local,
// agents, standards, models, mcp, config, version), binds flags, reads
// configuration, runs the analysis pipeline, and returns deterministic exit
// codes for CI gating.
package cli
