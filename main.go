package main

import (
	"github.com/joho/godotenv"

	"github.com/jonandersen/schwab/cmd"
)

func main() {
	// A missing .env file is fine; the environment is used as is.
	_ = godotenv.Load()
	cmd.Execute()
}
