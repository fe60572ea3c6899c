package main

import (
	"os"

	"github.com/repofit/repofit-backend/repofitservice"
)

func main() {
	if err := repofitservice.Run(); err != nil {
		os.Exit(1)
	}
}
