package main

import (
	"os"

	"hanriver.app/readfeed/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
