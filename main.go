package main

import (
	"log"

	"github.com/breadfinder/breadfinder/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
