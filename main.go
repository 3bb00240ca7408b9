// Package main is the entry point for the conda-store CLI.
package main

import "conda.store/pkg/condastore/cmd"

func main() {
	cmd.Execute()
}
