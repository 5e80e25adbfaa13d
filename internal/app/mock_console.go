// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package app

import (
	"fmt"
	"log"
	"time"

	"github.com/relabs-tech/mpu6500_telemetry/internal/config"
	"github.com/relabs-tech/mpu6500_telemetry/internal/sensors"
)

func RunMockConsole() error {
	imuManager := sensors.GetIMUManager()
	if err := imuManager.InitSim(); err != nil {
		return err
	}
	log.Println("mock console: simulated MPU6500 initialized")

	cfg := config.Get()
	ticker := time.NewTicker(time.Duration(cfg.IMUSampleInterval) * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		r, err := imuManager.Read()
		if err != nil {
			return err
		}

		fmt.Printf(
			"AX=%7.3fg AY=%7.3fg AZ=%7.3fg  GX=%8.2f GY=%8.2f GZ=%8.2f °/s  T=%5.1f°C\n",
			r.Ax, r.Ay, r.Az,
			r.Gx, r.Gy, r.Gz,
			r.TempC,
		)
	}
	return nil
}
