package main

import (
	"log"

	"github.com/anujp125/Drishya/cmd/internal/app"
)

func main() {
	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
}
