package main

import (
	"fmt"
	"log"
	"os"
)

func main() {
	log.SetFlags(0)
	rootCmd.AddCommand(evalCmd, treeCmd, replCmd, sampleCmd)

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error:"), err)
		os.Exit(1)
	}
}
