// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/mpu6500_telemetry/internal/app"
	"github.com/relabs-tech/mpu6500_telemetry/internal/config"
)

func main() {
	configPath := flag.String("config", "./mpu6500_config.txt", "path to configuration file")
	sim := flag.Bool("sim", false, "use the simulated MPU6500 instead of hardware")
	flag.Parse()

	log.Println("starting MPU6500 producer (IMU → MQTT)")

	// Load configuration
	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunIMUProducer(*sim); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
