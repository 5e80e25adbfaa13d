// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu6500

import (
	"errors"
	"testing"
)

func TestCalibrateRejectsZeroSamples(t *testing.T) {
	tr := newMockTransport()
	m := newTestDevice(tr, AccelRange2G, GyroRange500DPS)

	err := m.Calibrate(0)
	if !errors.Is(err, ErrInvalidSampleCount) {
		t.Fatalf("error: got %v, want ErrInvalidSampleCount", err)
	}
	if len(tr.ops) != 0 {
		t.Errorf("expected zero bus transactions, got %+v", tr.ops)
	}
}

func TestCalibrateLevelSensorYieldsZeroBias(t *testing.T) {
	for _, n := range []uint32{1, 4, 100} {
		tr := newMockTransport()
		// Stationary, level: accel (0,0,16384) equals exactly 1 g at ±2g.
		tr.set16(RegAccelXOutH+4, 16384)
		m := newTestDevice(tr, AccelRange2G, GyroRange500DPS)

		if err := m.Calibrate(n); err != nil {
			t.Fatalf("Calibrate(%d): %v", n, err)
		}
		if got := m.Offsets(); got != (Offsets{}) {
			t.Errorf("Calibrate(%d): offsets = %+v, want all zero", n, got)
		}
	}
}

func TestCalibrateAveragesConstantBias(t *testing.T) {
	tr := newMockTransport()
	tr.set16(RegAccelXOutH, 120)
	tr.set16(RegAccelXOutH+2, -48)
	tr.set16(RegAccelXOutH+4, 16384+37)
	tr.set16(RegGyroXOutH, 15)
	tr.set16(RegGyroXOutH+2, -22)
	tr.set16(RegGyroXOutH+4, 9)
	m := newTestDevice(tr, AccelRange2G, GyroRange500DPS)

	if err := m.Calibrate(8); err != nil {
		t.Fatalf("Calibrate: %v", err)
	}
	want := Offsets{
		AccelBias: [3]int16{120, -48, 37},
		GyroBias:  [3]int16{15, -22, 9},
	}
	if got := m.Offsets(); got != want {
		t.Errorf("offsets = %+v, want %+v", got, want)
	}
}

func TestCalibrateTruncatesAverage(t *testing.T) {
	tr := newMockTransport()
	m := newTestDevice(tr, AccelRange2G, GyroRange500DPS)

	// Hand-fed sums: alternate gyro X between 3 and 4 over 2 samples.
	// Average 3.5 must truncate to 3, never round to 4.
	first := true
	alt := &alternatingTransport{inner: tr, watch: RegGyroXOutH, onRead: func() {
		if first {
			tr.set16(RegGyroXOutH, 3)
			first = false
		} else {
			tr.set16(RegGyroXOutH, 4)
		}
	}}
	m.tr = alt

	if err := m.Calibrate(2); err != nil {
		t.Fatalf("Calibrate: %v", err)
	}
	if got := m.Offsets().GyroBias[0]; got != 3 {
		t.Errorf("gyro x bias = %d, want 3 (truncating division)", got)
	}
}

// alternatingTransport lets a test mutate register contents right before
// each burst read of the watched register.
type alternatingTransport struct {
	inner  *mockTransport
	watch  byte
	onRead func()
}

func (a *alternatingTransport) WriteRegister(reg, value byte) error {
	return a.inner.WriteRegister(reg, value)
}

func (a *alternatingTransport) ReadRegister(reg byte, buf []byte) error {
	if reg == a.watch {
		a.onRead()
	}
	return a.inner.ReadRegister(reg, buf)
}

func TestCalibrateLargeNegativeZDoesNotWrap(t *testing.T) {
	tr := newMockTransport()
	m := newTestDevice(tr, AccelRange2G, GyroRange500DPS)

	// Sensor upside down and shaken: raw Z of -23616 puts the per-sample
	// gravity-corrected term at -40000, below int16 range. Averaged with a
	// level sample (16384, term 0) the Z bias must come out at -20000, not
	// a wrapped positive value.
	first := true
	alt := &alternatingTransport{inner: tr, watch: RegAccelXOutH, onRead: func() {
		if first {
			tr.set16(RegAccelXOutH+4, -23616)
			first = false
		} else {
			tr.set16(RegAccelXOutH+4, 16384)
		}
	}}
	m.tr = alt

	if err := m.Calibrate(2); err != nil {
		t.Fatalf("Calibrate: %v", err)
	}
	if got := m.Offsets().AccelBias[2]; got != -20000 {
		t.Errorf("accel z bias = %d, want -20000", got)
	}
}

func TestCalibrateAbortsOnReadFailure(t *testing.T) {
	tr := newMockTransport()
	tr.failReads[RegGyroXOutH] = true
	m := newTestDevice(tr, AccelRange2G, GyroRange500DPS)
	prior := Offsets{AccelBias: [3]int16{1, 2, 3}, GyroBias: [3]int16{4, 5, 6}}
	m.SetOffsets(prior)

	err := m.Calibrate(10)
	if !errors.Is(err, errBus) {
		t.Fatalf("error: got %v, want bus failure", err)
	}
	// Partial accumulation is discarded; stored offsets stay untouched.
	if got := m.Offsets(); got != prior {
		t.Errorf("offsets after aborted calibration = %+v, want %+v", got, prior)
	}
}

func TestCalibrateWakesDeviceFirst(t *testing.T) {
	tr := newMockTransport()
	tr.regs[RegPwrMgmt1] = 0x41 // sleeping, internal clock
	tr.set16(RegAccelXOutH+4, 16384)
	m := newTestDevice(tr, AccelRange2G, GyroRange500DPS)

	if err := m.Calibrate(1); err != nil {
		t.Fatalf("Calibrate: %v", err)
	}
	// First two ops are the wake-up read-modify-write of PWR_MGMT_1.
	if !(!tr.ops[0].write && tr.ops[0].reg == RegPwrMgmt1) {
		t.Fatalf("op 0: got %+v, want PWR_MGMT_1 read", tr.ops[0])
	}
	if !(tr.ops[1].write && tr.ops[1].reg == RegPwrMgmt1 && tr.ops[1].value == 0x01) {
		t.Fatalf("op 1: got %+v, want PWR_MGMT_1 write with sleep bit cleared", tr.ops[1])
	}
	if tr.regs[RegPwrMgmt1] != 0x01 {
		t.Errorf("PWR_MGMT_1 = 0x%02X, want 0x01 after wake", tr.regs[RegPwrMgmt1])
	}
}
