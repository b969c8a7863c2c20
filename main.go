package main

import (
	"log"

	"eventbook/cmd"

	_ "eventbook/migrations"
)

func main() {
	if err := cmd.Start(); err != nil {
		log.Fatal(err)
	}
}
