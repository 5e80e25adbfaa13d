// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu6500

import (
	"errors"
	"time"
)

// ErrInvalidSampleCount is returned by Calibrate when samples is zero.
var ErrInvalidSampleCount = errors.New("mpu6500: calibration sample count must be > 0")

// settleDelay spaces calibration samples out in time so consecutive reads
// are not correlated.
const settleDelay = 5 * time.Millisecond

// Calibrate estimates per-axis raw-domain biases by averaging samples raw
// readings and stores them in the driver's offsets, replacing any previous
// calibration.
//
// The operator must hold the sensor stationary with the Z axis aligned with
// gravity for the whole run; this is not verified. The accelerometer Z
// accumulation subtracts the 1 g equivalent in raw counts each iteration so
// that a perfectly level, still sensor calibrates to zero bias.
//
// The device is woken first. Any read failure aborts the calibration and
// discards the partial accumulation; the stored offsets are untouched. The
// call blocks for roughly samples × (two burst reads + 5 ms) and offers no
// progress reporting or cancellation.
func (m *MPU6500) Calibrate(samples uint32) error {
	if samples == 0 {
		return ErrInvalidSampleCount
	}

	if err := m.WakeUp(); err != nil {
		return err
	}

	// 32-bit inputs would overflow a 32-bit accumulator past ~65k samples of
	// full-scale readings; int64 keeps any realistic run safe.
	var accelSum, gyroSum [3]int64
	oneG := int16(m.accelRange.Sensitivity())

	for i := uint32(0); i < samples; i++ {
		accel, err := m.ReadRawAccel()
		if err != nil {
			return err
		}
		gyro, err := m.ReadRawGyro()
		if err != nil {
			return err
		}

		accelSum[0] += int64(accel.X)
		accelSum[1] += int64(accel.Y)
		// Widen before subtracting: accel.Z - oneG wraps in int16 for
		// raw Z below -(32768 - oneG).
		accelSum[2] += int64(accel.Z) - int64(oneG)

		gyroSum[0] += int64(gyro.X)
		gyroSum[1] += int64(gyro.Y)
		gyroSum[2] += int64(gyro.Z)

		m.sleep(settleDelay)
	}

	// Truncating integer division, deliberately: averages must be bit-exact
	// reproducible across runs and platforms.
	n := int64(samples)
	for axis := 0; axis < 3; axis++ {
		m.offsets.AccelBias[axis] = int16(accelSum[axis] / n)
		m.offsets.GyroBias[axis] = int16(gyroSum[axis] / n)
	}
	return nil
}
