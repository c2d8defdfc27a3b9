// Package main is the entry point for the seasondiag CLI tool, which splits a
// batter's season into Early/Mid/Late windows and diagnoses how ten Statcast
// metrics moved across them.
package main

import "github.com/pable/go-season-diag/cmd"

func main() {
	cmd.Execute()
}
