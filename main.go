package main

import (
	"os"

	"indeed-scraper/cmd"
	"indeed-scraper/utils"
)

func main() {
	if err := cmd.Execute(); err != nil {
		utils.Error("%v", err)
		os.Exit(1)
	}
}
