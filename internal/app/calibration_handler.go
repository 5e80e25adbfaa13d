// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package app

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/relabs-tech/mpu6500_telemetry/internal/config"
	"github.com/relabs-tech/mpu6500_telemetry/internal/sensors"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// CalibrationSession holds the state of an active calibration
type CalibrationSession struct {
	Conn         *websocket.Conn
	mu           sync.Mutex
	currentPhase string
	samples      uint32
	results      CalibrationResult
}

// CalibrationResult matches the structure from cmd/calibration/main.go
type CalibrationResult struct {
	Version   int       `json:"version"`
	Timestamp time.Time `json:"timestamp"`

	// Hardware offsets, in raw sensor counts
	AccelBiasX int16 `json:"accel_bias_x"`
	AccelBiasY int16 `json:"accel_bias_y"`
	AccelBiasZ int16 `json:"accel_bias_z"`
	GyroBiasX  int16 `json:"gyro_bias_x"`
	GyroBiasY  int16 `json:"gyro_bias_y"`
	GyroBiasZ  int16 `json:"gyro_bias_z"`

	// Noise estimate from the pre-check phase
	AccelStdDev float64 `json:"accel_stddev"`
	GyroStdDev  float64 `json:"gyro_stddev"`
	Confidence  float64 `json:"confidence"`

	TotalSamples int `json:"total_samples"`
}

// WebSocket message types
type WSMessage struct {
	Action  string `json:"action"` // init, next, cancel
	Samples uint32 `json:"samples,omitempty"`
}

type WSResponse struct {
	Type     string                 `json:"type"` // phase, progress, stats, complete, error
	Phase    string                 `json:"phase,omitempty"`
	Progress float64                `json:"progress,omitempty"`
	Stats    map[string]interface{} `json:"stats,omitempty"`
	Results  interface{}            `json:"results,omitempty"`
	Message  string                 `json:"message,omitempty"`
}

// HandleCalibrationWS handles the WebSocket connection for calibration
func HandleCalibrationWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("calibration: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	session := &CalibrationSession{
		Conn:    conn,
		samples: config.Get().CalibrationSamples,
		results: CalibrationResult{
			Version:   1,
			Timestamp: time.Now(),
		},
	}

	// Main message loop
	for {
		var msg WSMessage
		err := conn.ReadJSON(&msg)
		if err != nil {
			log.Printf("calibration: websocket read error: %v", err)
			break
		}

		switch msg.Action {
		case "init":
			if msg.Samples > 0 {
				session.samples = msg.Samples
			}
			log.Printf("calibration: initialized, %d samples per phase", session.samples)

		case "next":
			session.mu.Lock()
			err := session.runNextStep()
			session.mu.Unlock()
			if err != nil {
				session.sendError(err.Error())
			}

		case "cancel":
			log.Printf("calibration: cancelled by user")
			return
		}
	}
}

func (s *CalibrationSession) runNextStep() error {
	// State machine for calibration phases
	switch s.currentPhase {
	case "":
		// Noise pre-check: device stays still, no offsets written yet
		s.currentPhase = "noise"
		return s.runNoiseStep()

	case "noise":
		// The device-level run: averages samples and stores the offsets
		s.currentPhase = "offsets"
		return s.runOffsetStep()

	case "offsets":
		return s.complete()
	}

	return nil
}

// runNoiseStep samples the IMU while the user holds it still and reports
// how noisy the raw counts are, so a shaky surface is caught before the
// offsets are burned in.
func (s *CalibrationSession) runNoiseStep() error {
	s.sendPhase("noise")

	mgr := sensors.GetIMUManager()
	if !mgr.IsAvailable() {
		return fmt.Errorf("IMU not available")
	}

	time.Sleep(1 * time.Second) // Give user time to place device

	const noiseSamples = 50
	accel := make([][3]float64, 0, noiseSamples)
	gyro := make([][3]float64, 0, noiseSamples)
	for i := 0; i < noiseSamples; i++ {
		reading, err := mgr.Read()
		if err != nil {
			return err
		}
		accel = append(accel, [3]float64{
			float64(reading.Raw.Ax),
			float64(reading.Raw.Ay),
			float64(reading.Raw.Az),
		})
		gyro = append(gyro, [3]float64{
			float64(reading.Raw.Gx),
			float64(reading.Raw.Gy),
			float64(reading.Raw.Gz),
		})
		s.sendProgress(float64(i) * 2)
		time.Sleep(20 * time.Millisecond)
	}

	s.results.AccelStdDev = (stddev(accel, 0) + stddev(accel, 1) + stddev(accel, 2)) / 3.0
	s.results.GyroStdDev = (stddev(gyro, 0) + stddev(gyro, 1) + stddev(gyro, 2)) / 3.0
	s.results.TotalSamples += noiseSamples

	// Calculate confidence
	s.results.Confidence = 100.0 / (1.0 + s.results.GyroStdDev/10.0)

	s.sendProgress(100)
	s.sendStats()
	s.sendActionReady()
	return nil
}

// runOffsetStep delegates to the driver's offset averaging. The driver
// blocks until every sample is taken, so progress is reported around the
// call rather than during it.
func (s *CalibrationSession) runOffsetStep() error {
	s.sendPhase("offsets")

	mgr := sensors.GetIMUManager()
	if !mgr.IsAvailable() {
		return fmt.Errorf("IMU not available")
	}

	time.Sleep(1 * time.Second)
	s.sendProgress(5)

	if err := mgr.Calibrate(s.samples); err != nil {
		return fmt.Errorf("calibration run failed: %w", err)
	}

	off := mgr.Offsets()
	s.results.AccelBiasX = off.AccelBias[0]
	s.results.AccelBiasY = off.AccelBias[1]
	s.results.AccelBiasZ = off.AccelBias[2]
	s.results.GyroBiasX = off.GyroBias[0]
	s.results.GyroBiasY = off.GyroBias[1]
	s.results.GyroBiasZ = off.GyroBias[2]
	s.results.TotalSamples += int(s.samples)

	s.sendProgress(100)
	s.sendStats()
	s.sendActionReady()
	return nil
}

func (s *CalibrationSession) complete() error {
	// Save results to file
	filename := fmt.Sprintf("mpu6500_%d_calibration.json", time.Now().Unix())

	dir := config.Get().CalibrationDir
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		dir = cwd
	}

	path := filepath.Join(dir, filename)

	data, err := json.MarshalIndent(s.results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal calibration results: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write calibration file: %w", err)
	}

	log.Printf("calibration: saved results to %s", path)

	// Send completion message
	s.Conn.WriteJSON(WSResponse{
		Type:    "complete",
		Results: map[string]interface{}{"filename": filename},
	})

	return nil
}

func (s *CalibrationSession) sendPhase(phase string) {
	s.Conn.WriteJSON(WSResponse{
		Type:  "phase",
		Phase: phase,
	})
}

func (s *CalibrationSession) sendProgress(progress float64) {
	s.Conn.WriteJSON(WSResponse{
		Type:     "progress",
		Progress: progress,
	})
}

func (s *CalibrationSession) sendStats() {
	stats := map[string]interface{}{
		"accel_stddev": s.results.AccelStdDev,
		"gyro_stddev":  s.results.GyroStdDev,
		"confidence":   s.results.Confidence,
		"samples":      s.results.TotalSamples,
	}
	s.Conn.WriteJSON(WSResponse{
		Type:  "stats",
		Stats: stats,
	})
}

func (s *CalibrationSession) sendActionReady() {
	s.Conn.WriteJSON(WSResponse{
		Type:    "action",
		Message: "ready",
	})
}

func (s *CalibrationSession) sendError(message string) {
	s.Conn.WriteJSON(WSResponse{
		Type:    "error",
		Message: message,
	})
}

// Helper functions for statistics
func mean(data [][3]float64, axis int) float64 {
	sum := 0.0
	for _, v := range data {
		sum += v[axis]
	}
	return sum / float64(len(data))
}

func stddev(data [][3]float64, axis int) float64 {
	if len(data) == 0 {
		return 0
	}
	m := mean(data, axis)
	variance := 0.0
	for _, v := range data {
		diff := v[axis] - m
		variance += diff * diff
	}
	variance /= float64(len(data))
	return math.Sqrt(variance)
}
