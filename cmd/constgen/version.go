package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

//go:generate go run . generate

// Version is the release version of the tool.
const Version = "0.4.0"

//constgen:string versionString = "constgen ", Version

// versionCmd prints the version
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the constgen version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(versionString)
	},
}
