package main

import (
	"startiq/cmd/handlers"
	"startiq/internal/logger"
)

func main() {
	logger.Init()
	handlers.Execute()
}
