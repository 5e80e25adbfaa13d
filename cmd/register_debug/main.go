// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"

	"github.com/relabs-tech/mpu6500_telemetry/internal/app"
	"github.com/relabs-tech/mpu6500_telemetry/internal/config"
	"github.com/relabs-tech/mpu6500_telemetry/internal/sensors"
)

func main() {
	configPath := flag.String("config", "mpu6500_config.txt", "path to configuration file")
	sim := flag.Bool("sim", false, "use the simulated MPU6500 instead of hardware")
	flag.Parse()

	log.Println("starting MPU6500 register debug tool (standalone)")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	log.Println("Initializing IMU manager...")
	imuManager := sensors.GetIMUManager()
	var err error
	if *sim {
		err = imuManager.InitSim()
	} else {
		err = imuManager.Init()
	}
	if err != nil {
		log.Printf("Warning: IMU initialization had issues: %v", err)
		log.Println("Continuing anyway - registers may still be reachable")
	}

	if imuManager.IsAvailable() {
		log.Println("MPU6500 available")
	} else {
		log.Println("Warning: MPU6500 not available")
	}

	http.HandleFunc("/ws", app.HandleRegisterDebugWS)

	// API endpoint for live IMU data
	http.HandleFunc("/api/imu", app.HandleIMUData)

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "web/register_debug.html")
	})

	port := config.Get().RegisterDebugPort
	if port == 0 {
		port = 8081
	}
	addr := fmt.Sprintf(":%d", port)
	log.Printf("Register debug tool listening on %s", addr)
	log.Printf("Open http://localhost%s in your browser", addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
