package main

import (
	"fmt"
	"os"

	"chessview/ui"
)

func main() {
	if err := ui.RunChessView(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
