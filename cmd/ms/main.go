package main

import (
	"os"

	"github.com/ZEGIFTED/MS.MonitorOps/pkg/utils"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout).Execute(); err != nil {
		utils.Logger.Printf("❌ %v", err)
		utils.CloseLogger()
		os.Exit(1)
	}
}
