// Package cli implements the command-line interface of the satops tools.
//
// Each tool is a single Cobra command without subcommands: print-schedule,
// print-speedpasses, email-speedpasses and import-attendees. A command loads the
// configuration, applies its flags on top, validates everything it needs before
// touching the network, and then runs its pipeline. Setup problems abort with exit
// code 1. Failures of single attendees or schedule days are collected, summarized
// and written to an error log, and never stop the run.
package cli
