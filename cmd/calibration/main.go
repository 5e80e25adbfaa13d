// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


// ./cmd/calibration/main.go
//
// Guided offset calibration for the MPU6500.
//
// The device must rest flat and still, Z axis pointing up, while the driver
// averages raw samples into per-axis offsets. The Z accelerometer offset is
// taken relative to +1g so gravity survives the correction. A short stillness
// pre-check estimates sensor noise first and warns when the surface looks
// shaky.
//
// Output:
//
//	Writes a JSON file with the offsets, noise stats and a confidence score.
//
// Run:
//
//	go run ./cmd/calibration
//
// Notes / assumptions:
//   - Offsets are stored in RAW UNITS (counts) at the currently configured
//     ranges. Recalibrate after changing IMU_ACCEL_RANGE or IMU_GYRO_RANGE.
//   - The offsets live in driver memory, not in the sensor's hardware offset
//     registers, so they must be reloaded after every restart.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/relabs-tech/mpu6500_telemetry/internal/config"
	"github.com/relabs-tech/mpu6500_telemetry/internal/sensors"
)

const (
	// Stillness pre-check
	precheckSamples  = 100
	precheckInterval = 10 * time.Millisecond

	// Quality heuristics (in raw counts; tune as needed)
	stillStdGood = 30.0  // "good" standard deviation threshold for stillness
	stillStdBad  = 150.0 // above this confidence drops steeply

	confFloor = 0.05
)

// ---------- Data model (JSON output) ----------

type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type PhaseStats struct {
	Samples     int     `json:"samples"`
	DurationSec float64 `json:"duration_sec"`
	Mean        Vec3    `json:"mean"`
	StdDev      Vec3    `json:"stddev"`
}

type CalibrationResult struct {
	SchemaVersion int    `json:"schema_version"`
	CalibrationAt string `json:"calibration_at"` // RFC3339

	AccelRange byte `json:"accel_range"`
	GyroRange  byte `json:"gyro_range"`
	Samples    int  `json:"samples"`

	// Offsets in raw counts, as stored in the driver. Z accel is relative
	// to +1g at the configured range.
	AccelBias [3]int16 `json:"accel_bias"`
	GyroBias  [3]int16 `json:"gyro_bias"`

	// Stillness pre-check stats
	AccelStats PhaseStats `json:"accel_stats"`
	GyroStats  PhaseStats `json:"gyro_stats"`

	Confidence float64 `json:"confidence"`

	Notes []string `json:"notes,omitempty"`
}

// ---------- Main ----------

func main() {
	in := bufio.NewReader(os.Stdin)

	configPath := flag.String("config", "mpu6500_config.txt", "Path to configuration file")
	samplesFlag := flag.Int("samples", 0, "Averaging samples (0 = use CALIBRATION_SAMPLES from config)")
	sim := flag.Bool("sim", false, "Calibrate the simulated device instead of hardware")
	flag.Parse()

	fmt.Println("=== Guided MPU6500 Offset Calibration ===")
	fmt.Println("The device must lie flat and still, Z axis pointing up.")
	fmt.Println()

	if err := config.InitGlobal(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to load config from %s: %v\n", *configPath, err)
		os.Exit(1)
	}
	cfg := config.Get()

	samples := cfg.CalibrationSamples
	if *samplesFlag > 0 {
		samples = uint32(*samplesFlag)
	}

	mgr := sensors.GetIMUManager()
	var err error
	if *sim {
		err = mgr.InitSim()
	} else {
		err = mgr.Init()
	}
	if err != nil {
		fatal(fmt.Errorf("IMU init failed: %w", err))
	}
	if !mgr.IsAvailable() {
		fatal(fmt.Errorf("MPU6500 not available"))
	}

	res := CalibrationResult{
		SchemaVersion: 1,
		CalibrationAt: time.Now().Format(time.RFC3339),
		AccelRange:    cfg.IMUAccelRange,
		GyroRange:     cfg.IMUGyroRange,
		Samples:       int(samples),
	}

	// ---------------- Stillness pre-check ----------------
	fmt.Println("Step 1/2 — Stillness check")
	fmt.Println("Place the device on a stable, level surface and do not touch it.")
	waitEnter(in, "Press ENTER to start the stillness check...")

	accelStats, gyroStats, err := capturePrecheck(mgr)
	if err != nil {
		fatal(err)
	}
	res.AccelStats = accelStats
	res.GyroStats = gyroStats
	res.Confidence = stillnessConfidence(accelStats.StdDev, gyroStats.StdDev)

	fmt.Printf("Accel noise (counts): std X=%.1f Y=%.1f Z=%.1f\n",
		accelStats.StdDev.X, accelStats.StdDev.Y, accelStats.StdDev.Z)
	fmt.Printf("Gyro noise (counts):  std X=%.1f Y=%.1f Z=%.1f\n",
		gyroStats.StdDev.X, gyroStats.StdDev.Y, gyroStats.StdDev.Z)
	fmt.Printf("Stillness confidence: %.2f\n", res.Confidence)

	if res.Confidence < 0.5 {
		fmt.Println()
		fmt.Println("WARNING: The device looks like it is moving or vibrating.")
		fmt.Println("Offsets captured now will bake that motion in.")
		if !askYesNo(in, "Continue anyway? [y/N]: ") {
			fmt.Println("Aborted. No offsets were written.")
			os.Exit(0)
		}
		res.Notes = append(res.Notes, "stillness_warning_overridden")
	}

	// ---------------- Offset averaging ----------------
	fmt.Println()
	fmt.Println("Step 2/2 — Offset averaging")
	fmt.Printf("The driver will average %d samples per axis. Keep the device still.\n", samples)
	waitEnter(in, "Press ENTER to start...")

	start := time.Now()
	if err := mgr.Calibrate(samples); err != nil {
		fatal(fmt.Errorf("calibration run failed: %w", err))
	}
	elapsed := time.Since(start)

	off := mgr.Offsets()
	res.AccelBias = off.AccelBias
	res.GyroBias = off.GyroBias

	fmt.Printf("\nDone in %s.\n", elapsed.Round(time.Millisecond))
	fmt.Printf("Accel bias (counts): X=%d Y=%d Z=%d\n",
		off.AccelBias[0], off.AccelBias[1], off.AccelBias[2])
	fmt.Printf("Gyro bias (counts):  X=%d Y=%d Z=%d\n",
		off.GyroBias[0], off.GyroBias[1], off.GyroBias[2])

	// ---------------- Store ----------------
	path, err := writeResult(cfg.CalibrationDir, res)
	if err != nil {
		fatal(err)
	}

	fmt.Println("\nCalibration complete.")
	fmt.Printf("Saved to %s\n", path)
}

// ---------- Sampling ----------

func capturePrecheck(mgr *sensors.IMUManager) (PhaseStats, PhaseStats, error) {
	start := time.Now()

	accel := make([]Vec3, 0, precheckSamples)
	gyro := make([]Vec3, 0, precheckSamples)
	for i := 0; i < precheckSamples; i++ {
		r, err := mgr.Read()
		if err != nil {
			return PhaseStats{}, PhaseStats{}, err
		}
		accel = append(accel, Vec3{X: float64(r.Raw.Ax), Y: float64(r.Raw.Ay), Z: float64(r.Raw.Az)})
		gyro = append(gyro, Vec3{X: float64(r.Raw.Gx), Y: float64(r.Raw.Gy), Z: float64(r.Raw.Gz)})
		time.Sleep(precheckInterval)
	}

	dur := time.Since(start)
	return computeStats(accel, dur), computeStats(gyro, dur), nil
}

func computeStats(values []Vec3, dur time.Duration) PhaseStats {
	n := len(values)
	if n == 0 {
		return PhaseStats{Samples: 0, DurationSec: dur.Seconds()}
	}
	var sx, sy, sz float64
	for _, v := range values {
		sx += v.X
		sy += v.Y
		sz += v.Z
	}
	mean := Vec3{X: sx / float64(n), Y: sy / float64(n), Z: sz / float64(n)}

	var vx, vy, vz float64
	for _, v := range values {
		dx := v.X - mean.X
		dy := v.Y - mean.Y
		dz := v.Z - mean.Z
		vx += dx * dx
		vy += dy * dy
		vz += dz * dz
	}
	std := Vec3{
		X: math.Sqrt(vx / float64(n)),
		Y: math.Sqrt(vy / float64(n)),
		Z: math.Sqrt(vz / float64(n)),
	}

	return PhaseStats{
		Samples:     n,
		DurationSec: dur.Seconds(),
		Mean:        mean,
		StdDev:      std,
	}
}

// ---------- Confidence heuristics ----------

func stillnessConfidence(accelStd, gyroStd Vec3) float64 {
	// Gyro noise dominates the judgement; a still device has near-zero rates.
	s := (gyroStd.X + gyroStd.Y + gyroStd.Z) / 3
	s += (accelStd.X + accelStd.Y + accelStd.Z) / 6
	switch {
	case s <= stillStdGood:
		return 1.0
	case s >= stillStdBad:
		return confFloor
	default:
		t := (s - stillStdGood) / (stillStdBad - stillStdGood)
		return clamp01(1.0 - 0.95*t)
	}
}

// ---------- Output ----------

func writeResult(dir string, res CalibrationResult) (string, error) {
	ts := time.Now().Format("2006-01-02T15-04-05Z07-00")
	name := fmt.Sprintf("mpu6500_%s_calibration.json", ts)
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, name)

	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// ---------- Console helpers ----------

func waitEnter(in *bufio.Reader, prompt string) {
	fmt.Print(prompt)
	_, _ = in.ReadString('\n')
}

func askYesNo(in *bufio.Reader, prompt string) bool {
	fmt.Print(prompt)
	line, _ := in.ReadString('\n')
	switch line {
	case "y\n", "Y\n", "yes\n", "YES\n":
		return true
	}
	return false
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
	os.Exit(1)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
