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
	configPath := flag.String("config", "mpu6500_config.txt", "path to configuration file")
	useSim := flag.Bool("sim", false, "use simulated IMU instead of hardware")
	flag.Parse()

	log.Println("starting MPU6500 web server (MQTT subscriber)")

	// Load configuration
	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunWeb(*useSim); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
