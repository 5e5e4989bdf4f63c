package main

import (
	"axinsight/cmd/handlers"
	"axinsight/internal/logger"
)

func main() {
	logger.Init() // Initialize the logger
	handlers.Execute()
}
