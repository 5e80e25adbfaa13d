// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package mpu6500 drives the InvenSense MPU-6500 6-axis IMU (3-axis
// accelerometer, 3-axis gyroscope, temperature) over a register-addressed
// bus.
//
// The driver is fully synchronous and single-threaded: every operation is a
// blocking bus transaction and the first failure aborts the operation and is
// returned to the caller, without retries. Offsets and power state live on
// the MPU6500 instance with no internal locking; callers that share a device
// across goroutines must serialize access themselves (internal/sensors does
// this with a mutex).
package mpu6500

import (
	"fmt"
	"time"
)

// PowerState describes the chip's coarse power mode. It is tracked for
// observability only: register access during Reset or Sleeping returns
// undefined or stale data, and keeping the device Awake around reads is the
// caller's responsibility; the driver does not enforce the state machine.
type PowerState int

const (
	PowerReset PowerState = iota
	PowerAwake
	PowerSleeping
)

func (s PowerState) String() string {
	switch s {
	case PowerReset:
		return "reset"
	case PowerAwake:
		return "awake"
	case PowerSleeping:
		return "sleeping"
	default:
		return "unknown"
	}
}

// resetSettle is the minimum delay after a device reset before further
// register access is guaranteed valid.
const resetSettle = 100 * time.Millisecond

// RawSample holds one three-axis sample in raw counts, exactly as decoded
// from the chip's big-endian data registers.
type RawSample struct {
	X, Y, Z int16
}

// Sample holds one three-axis sample in physical units: g for the
// accelerometer, °/s for the gyroscope.
type Sample struct {
	X, Y, Z float64
}

// Offsets are the raw-domain biases subtracted from every scaled sample.
// Zero until Calibrate runs or SetOffsets applies a saved calibration.
type Offsets struct {
	AccelBias [3]int16 `json:"accel_bias"`
	GyroBias  [3]int16 `json:"gyro_bias"`
}

// MPU6500 is a single device instance.
type MPU6500 struct {
	tr         Transport
	accelRange AccelRange
	gyroRange  GyroRange
	offsets    Offsets
	state      PowerState

	// sleep is swapped out in tests so calibration doesn't block for real.
	sleep func(time.Duration)
}

// New returns a driver for a device behind tr with the given full-scale
// ranges. The ranges are not written to the chip until Init (or
// ConfigureAccel/ConfigureGyro) runs.
func New(tr Transport, accel AccelRange, gyro GyroRange) *MPU6500 {
	return &MPU6500{
		tr:         tr,
		accelRange: accel,
		gyroRange:  gyro,
		state:      PowerReset,
		sleep:      time.Sleep,
	}
}

// PowerState reports the last power mode the driver put the chip in.
func (m *MPU6500) PowerState() PowerState { return m.state }

// AccelRange reports the configured accelerometer full-scale range.
func (m *MPU6500) AccelRange() AccelRange { return m.accelRange }

// GyroRange reports the configured gyroscope full-scale range.
func (m *MPU6500) GyroRange() GyroRange { return m.gyroRange }

// Offsets returns the current calibration offsets.
func (m *MPU6500) Offsets() Offsets { return m.offsets }

// SetOffsets overwrites the calibration offsets, e.g. from a saved
// calibration file.
func (m *MPU6500) SetOffsets(o Offsets) { m.offsets = o }

// Reset writes the device-reset bit. The chip needs 100 ms to settle before
// any further register access is guaranteed valid; Init handles the delay,
// direct callers must wait themselves.
func (m *MPU6500) Reset() error {
	if err := m.tr.WriteRegister(RegPwrMgmt1, bitDeviceReset); err != nil {
		return fmt.Errorf("mpu6500: reset: %w", err)
	}
	m.state = PowerReset
	return nil
}

// ConfigureClock clears the sleep bit and selects the internal clock source.
// Must follow Reset plus the settle delay.
func (m *MPU6500) ConfigureClock() error {
	if err := m.tr.WriteRegister(RegPwrMgmt1, clockInternal); err != nil {
		return fmt.Errorf("mpu6500: configure clock: %w", err)
	}
	m.state = PowerAwake
	return nil
}

// ConfigureAccel writes the full-scale range and the fixed 20 Hz low-pass
// bandwidth in two sequential writes. The second write is skipped if the
// first fails.
func (m *MPU6500) ConfigureAccel() error {
	if err := m.tr.WriteRegister(RegAccelConfig, m.accelRange.ConfigByte()); err != nil {
		return fmt.Errorf("mpu6500: accel full-scale: %w", err)
	}
	if err := m.tr.WriteRegister(RegAccelConfig2, dlpf20Hz); err != nil {
		return fmt.Errorf("mpu6500: accel filter: %w", err)
	}
	return nil
}

// ConfigureGyro writes the full-scale range and the fixed 20 Hz low-pass
// bandwidth, mirroring ConfigureAccel.
func (m *MPU6500) ConfigureGyro() error {
	if err := m.tr.WriteRegister(RegGyroConfig, m.gyroRange.ConfigByte()); err != nil {
		return fmt.Errorf("mpu6500: gyro full-scale: %w", err)
	}
	if err := m.tr.WriteRegister(RegConfig, dlpf20Hz); err != nil {
		return fmt.Errorf("mpu6500: gyro filter: %w", err)
	}
	return nil
}

// updatePwrMgmt1 is the shared read-modify-write for single-bit toggles in
// PWR_MGMT_1. A read failure aborts before any write so stale data is never
// written back. The sequence is not atomic from the device's perspective;
// concurrent writers of the same register must be serialized externally.
func (m *MPU6500) updatePwrMgmt1(set, clear byte) (byte, error) {
	var buf [1]byte
	if err := m.tr.ReadRegister(RegPwrMgmt1, buf[:]); err != nil {
		return 0, err
	}
	value := (buf[0] | set) &^ clear
	if err := m.tr.WriteRegister(RegPwrMgmt1, value); err != nil {
		return 0, err
	}
	return value, nil
}

// EnableTemperatureSensor clears the TEMP_DIS bit.
func (m *MPU6500) EnableTemperatureSensor() error {
	if _, err := m.updatePwrMgmt1(0, bitTempDisable); err != nil {
		return fmt.Errorf("mpu6500: enable temperature sensor: %w", err)
	}
	return nil
}

// DisableTemperatureSensor sets the TEMP_DIS bit.
func (m *MPU6500) DisableTemperatureSensor() error {
	if _, err := m.updatePwrMgmt1(bitTempDisable, 0); err != nil {
		return fmt.Errorf("mpu6500: disable temperature sensor: %w", err)
	}
	return nil
}

// ConfigureInterruptPin establishes the fixed interrupt pin policy:
// active-low, open-drain, latched, cleared by any read.
func (m *MPU6500) ConfigureInterruptPin() error {
	if err := m.tr.WriteRegister(RegIntPinCfg, intPinConfig); err != nil {
		return fmt.Errorf("mpu6500: interrupt pin config: %w", err)
	}
	return nil
}

// EnableDataReadyInterrupt sets RAW_RDY_EN. The driver performs no interrupt
// handling itself; the pin only lets an external caller gate its polling.
func (m *MPU6500) EnableDataReadyInterrupt() error {
	if err := m.tr.WriteRegister(RegIntEnable, intDataReadyEnable); err != nil {
		return fmt.Errorf("mpu6500: enable data ready interrupt: %w", err)
	}
	return nil
}

// DisableDataReadyInterrupt clears RAW_RDY_EN.
func (m *MPU6500) DisableDataReadyInterrupt() error {
	if err := m.tr.WriteRegister(RegIntEnable, intDataReadyDisable); err != nil {
		return fmt.Errorf("mpu6500: disable data ready interrupt: %w", err)
	}
	return nil
}

// DisableGyroscope powers down all three gyro axes via PWR_MGMT_2.
func (m *MPU6500) DisableGyroscope() error {
	if err := m.tr.WriteRegister(RegPwrMgmt2, gyroDisableAll); err != nil {
		return fmt.Errorf("mpu6500: disable gyroscope: %w", err)
	}
	return nil
}

// Sleep puts the chip into sleep mode by setting the SLEEP bit, preserving
// all other PWR_MGMT_1 bits.
func (m *MPU6500) Sleep() error {
	if _, err := m.updatePwrMgmt1(bitSleep, 0); err != nil {
		return fmt.Errorf("mpu6500: sleep: %w", err)
	}
	m.state = PowerSleeping
	return nil
}

// WakeUp clears the SLEEP bit, preserving all other PWR_MGMT_1 bits.
func (m *MPU6500) WakeUp() error {
	if _, err := m.updatePwrMgmt1(0, bitSleep); err != nil {
		return fmt.Errorf("mpu6500: wake up: %w", err)
	}
	m.state = PowerAwake
	return nil
}

// ReadWhoAmI reads the WHO_AM_I register. The value is returned as-is and
// not compared against WhoAmIValue; identity checks are up to the caller.
func (m *MPU6500) ReadWhoAmI() (byte, error) {
	var buf [1]byte
	if err := m.tr.ReadRegister(RegWhoAmI, buf[:]); err != nil {
		return 0, fmt.Errorf("mpu6500: who am i: %w", err)
	}
	return buf[0], nil
}

// Init brings the chip from power-on or reset into the working
// configuration, in strict order: reset, 100 ms settle, clock select,
// accelerometer config, gyroscope config, temperature sensor enable,
// interrupt pin config. It short-circuits on the first failure and performs
// no rollback: after an error the device is left partially configured and
// the caller must run Init again from scratch.
func (m *MPU6500) Init() error {
	if err := m.Reset(); err != nil {
		return err
	}
	m.sleep(resetSettle)
	if err := m.ConfigureClock(); err != nil {
		return err
	}
	if err := m.ConfigureAccel(); err != nil {
		return err
	}
	if err := m.ConfigureGyro(); err != nil {
		return err
	}
	if err := m.EnableTemperatureSensor(); err != nil {
		return err
	}
	return m.ConfigureInterruptPin()
}

// decodeSample3 turns 6 big-endian bytes (high byte first) into three signed
// 16-bit words, fixed X,Y,Z order.
func decodeSample3(buf []byte) RawSample {
	return RawSample{
		X: int16(buf[0])<<8 | int16(buf[1]),
		Y: int16(buf[2])<<8 | int16(buf[3]),
		Z: int16(buf[4])<<8 | int16(buf[5]),
	}
}

func (m *MPU6500) readRaw(base byte, what string) (RawSample, error) {
	var buf [6]byte
	if err := m.tr.ReadRegister(base, buf[:]); err != nil {
		return RawSample{}, fmt.Errorf("mpu6500: read raw %s: %w", what, err)
	}
	return decodeSample3(buf[:]), nil
}

// ReadRawAccel burst-reads the six accelerometer data registers and decodes
// them. No bias or scaling is applied.
func (m *MPU6500) ReadRawAccel() (RawSample, error) {
	return m.readRaw(RegAccelXOutH, "accel")
}

// ReadRawGyro burst-reads the six gyroscope data registers and decodes them.
func (m *MPU6500) ReadRawGyro() (RawSample, error) {
	return m.readRaw(RegGyroXOutH, "gyro")
}

// ReadAccel returns the bias-corrected acceleration in g.
func (m *MPU6500) ReadAccel() (Sample, error) {
	raw, err := m.ReadRawAccel()
	if err != nil {
		return Sample{}, err
	}
	sens := m.accelRange.Sensitivity()
	return Sample{
		X: float64(raw.X-m.offsets.AccelBias[0]) / sens,
		Y: float64(raw.Y-m.offsets.AccelBias[1]) / sens,
		Z: float64(raw.Z-m.offsets.AccelBias[2]) / sens,
	}, nil
}

// ReadGyro returns the bias-corrected angular rate in °/s.
func (m *MPU6500) ReadGyro() (Sample, error) {
	raw, err := m.ReadRawGyro()
	if err != nil {
		return Sample{}, err
	}
	sens := m.gyroRange.Sensitivity()
	return Sample{
		X: float64(raw.X-m.offsets.GyroBias[0]) / sens,
		Y: float64(raw.Y-m.offsets.GyroBias[1]) / sens,
		Z: float64(raw.Z-m.offsets.GyroBias[2]) / sens,
	}, nil
}

// ReadRawTemp reads the two temperature registers as a big-endian signed
// 16-bit value. The raw value is returned unconverted; callers wanting
// degrees Celsius compute raw/333.87 + 21.
func (m *MPU6500) ReadRawTemp() (int16, error) {
	var buf [2]byte
	if err := m.tr.ReadRegister(RegTempOutH, buf[:]); err != nil {
		return 0, fmt.Errorf("mpu6500: read temperature: %w", err)
	}
	return int16(buf[0])<<8 | int16(buf[1]), nil
}
