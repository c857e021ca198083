package main

import (
	"resellcorner/internal/alerts"
	"resellcorner/internal/catalog"
	"resellcorner/internal/notification"
	"resellcorner/pkg/config"
	"resellcorner/pkg/logger"

	"github.com/sirupsen/logrus"
)

func main() {
	logger.Init()

	if err := config.Load(); err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	go catalog.Start()
	go alerts.Start()
	go notification.Start()

	logrus.Info("Application started")

	select {}
}
