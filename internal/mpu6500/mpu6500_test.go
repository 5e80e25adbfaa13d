// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu6500

import (
	"errors"
	"math"
	"testing"
	"time"
)

// busOp records one transaction seen by the mock transport.
type busOp struct {
	write bool
	reg   byte
	value byte // writes only
	n     int  // reads only: burst length
}

var errBus = errors.New("bus failure")

// mockTransport is a scriptable register file that records every
// transaction and can be told to fail on a specific register write or read.
type mockTransport struct {
	regs       [128]byte
	ops        []busOp
	failWrites map[byte]bool
	failReads  map[byte]bool
}

func newMockTransport() *mockTransport {
	return &mockTransport{
		failWrites: map[byte]bool{},
		failReads:  map[byte]bool{},
	}
}

func (t *mockTransport) WriteRegister(reg, value byte) error {
	if t.failWrites[reg] {
		return errBus
	}
	t.ops = append(t.ops, busOp{write: true, reg: reg, value: value})
	t.regs[reg&0x7F] = value
	return nil
}

func (t *mockTransport) ReadRegister(reg byte, buf []byte) error {
	if t.failReads[reg] {
		return errBus
	}
	t.ops = append(t.ops, busOp{reg: reg, n: len(buf)})
	for i := range buf {
		buf[i] = t.regs[(reg+byte(i))&0x7F]
	}
	return nil
}

func (t *mockTransport) set16(reg byte, v int16) {
	t.regs[reg] = byte(uint16(v) >> 8)
	t.regs[reg+1] = byte(uint16(v))
}

// newTestDevice returns a driver whose sleeps are no-ops.
func newTestDevice(tr Transport, accel AccelRange, gyro GyroRange) *MPU6500 {
	m := New(tr, accel, gyro)
	m.sleep = func(time.Duration) {}
	return m
}

func TestInitWriteSequence(t *testing.T) {
	tr := newMockTransport()
	m := newTestDevice(tr, AccelRange4G, GyroRange500DPS)

	if err := m.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	want := []busOp{
		{write: true, reg: RegPwrMgmt1, value: 0x80},    // reset
		{write: true, reg: RegPwrMgmt1, value: 0x01},    // clock
		{write: true, reg: RegAccelConfig, value: 0x08}, // ±4g
		{write: true, reg: RegAccelConfig2, value: 0x04},
		{write: true, reg: RegGyroConfig, value: 0x08}, // ±500dps
		{write: true, reg: RegConfig, value: 0x04},
		{reg: RegPwrMgmt1, n: 1},                      // temp enable: read first
		{write: true, reg: RegPwrMgmt1, value: 0x01},  // TEMP_DIS already clear
		{write: true, reg: RegIntPinCfg, value: 0xB0}, // int pin policy
	}
	if len(tr.ops) != len(want) {
		t.Fatalf("got %d bus ops, want %d: %+v", len(tr.ops), len(want), tr.ops)
	}
	for i, op := range tr.ops {
		if op != want[i] {
			t.Errorf("op %d: got %+v, want %+v", i, op, want[i])
		}
	}

	if m.PowerState() != PowerAwake {
		t.Errorf("power state after Init: got %v, want %v", m.PowerState(), PowerAwake)
	}
}

func TestInitShortCircuitsOnAccelFilterFailure(t *testing.T) {
	tr := newMockTransport()
	tr.failWrites[RegAccelConfig2] = true
	m := newTestDevice(tr, AccelRange4G, GyroRange500DPS)

	err := m.Init()
	if !errors.Is(err, errBus) {
		t.Fatalf("Init error: got %v, want bus failure", err)
	}

	// Nothing after ACCEL_CONFIG may have been attempted.
	for _, op := range tr.ops {
		if op.write && (op.reg == RegGyroConfig || op.reg == RegConfig || op.reg == RegIntPinCfg) {
			t.Errorf("register 0x%02X written after short-circuit point", op.reg)
		}
	}
	last := tr.ops[len(tr.ops)-1]
	if !last.write || last.reg != RegAccelConfig {
		t.Errorf("last op: got %+v, want ACCEL_CONFIG write", last)
	}
}

func TestDecodeBigEndianSigned(t *testing.T) {
	tr := newMockTransport()
	copy(tr.regs[RegAccelXOutH:], []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06})
	m := newTestDevice(tr, AccelRange4G, GyroRange500DPS)

	raw, err := m.ReadRawAccel()
	if err != nil {
		t.Fatalf("ReadRawAccel: %v", err)
	}
	if raw != (RawSample{X: 0x0102, Y: 0x0304, Z: 0x0506}) {
		t.Errorf("decoded %+v, want {258 772 1286}", raw)
	}

	// Values >= 0x8000 must come out negative.
	copy(tr.regs[RegGyroXOutH:], []byte{0x80, 0x00, 0xFF, 0xFF, 0xFF, 0x38})
	rawG, err := m.ReadRawGyro()
	if err != nil {
		t.Fatalf("ReadRawGyro: %v", err)
	}
	if rawG != (RawSample{X: -32768, Y: -1, Z: -200}) {
		t.Errorf("decoded %+v, want {-32768 -1 -200}", rawG)
	}
}

func TestRawReadIsSingleBurst(t *testing.T) {
	tr := newMockTransport()
	m := newTestDevice(tr, AccelRange4G, GyroRange500DPS)

	if _, err := m.ReadRawAccel(); err != nil {
		t.Fatalf("ReadRawAccel: %v", err)
	}
	if len(tr.ops) != 1 || tr.ops[0].write || tr.ops[0].reg != RegAccelXOutH || tr.ops[0].n != 6 {
		t.Errorf("expected one 6-byte burst read at 0x3B, got %+v", tr.ops)
	}
}

func TestScaling(t *testing.T) {
	tr := newMockTransport()
	tr.set16(RegAccelXOutH, 8192)
	m := newTestDevice(tr, AccelRange4G, GyroRange500DPS)

	s, err := m.ReadAccel()
	if err != nil {
		t.Fatalf("ReadAccel: %v", err)
	}
	if s.X != 1.0 {
		t.Errorf("x = %v, want 1.0 (8192 counts at ±4g)", s.X)
	}
	if s.Y != 0 || s.Z != 0 {
		t.Errorf("y,z = %v,%v, want 0,0", s.Y, s.Z)
	}
}

func TestBiasSubtraction(t *testing.T) {
	tr := newMockTransport()
	tr.set16(RegAccelXOutH, 8192)
	m := newTestDevice(tr, AccelRange4G, GyroRange500DPS)
	m.SetOffsets(Offsets{AccelBias: [3]int16{100, 0, 0}})

	s, err := m.ReadAccel()
	if err != nil {
		t.Fatalf("ReadAccel: %v", err)
	}
	want := float64(8192-100) / 8192.0
	if math.Abs(s.X-want) > 1e-12 {
		t.Errorf("x = %v, want %v", s.X, want)
	}
}

func TestGyroScalingAndBias(t *testing.T) {
	tr := newMockTransport()
	tr.set16(RegGyroXOutH, 131)
	tr.set16(RegGyroXOutH+2, -655)
	m := newTestDevice(tr, AccelRange4G, GyroRange500DPS)
	m.SetOffsets(Offsets{GyroBias: [3]int16{0, -655, 0}})

	s, err := m.ReadGyro()
	if err != nil {
		t.Fatalf("ReadGyro: %v", err)
	}
	if math.Abs(s.X-131.0/65.5) > 1e-12 {
		t.Errorf("x = %v, want %v", s.X, 131.0/65.5)
	}
	if s.Y != 0 {
		t.Errorf("bias-corrected y = %v, want 0", s.Y)
	}
}

func TestReadRawTemp(t *testing.T) {
	tr := newMockTransport()
	tr.set16(RegTempOutH, -1234)
	m := newTestDevice(tr, AccelRange4G, GyroRange500DPS)

	temp, err := m.ReadRawTemp()
	if err != nil {
		t.Fatalf("ReadRawTemp: %v", err)
	}
	if temp != -1234 {
		t.Errorf("temp = %d, want -1234", temp)
	}
	if tr.ops[0].n != 2 || tr.ops[0].reg != RegTempOutH {
		t.Errorf("expected one 2-byte read at 0x41, got %+v", tr.ops)
	}
}

func TestSleepWakeRoundTrip(t *testing.T) {
	tr := newMockTransport()
	// Arbitrary pre-sleep state with several bits set, sleep bit clear.
	tr.regs[RegPwrMgmt1] = 0x2D
	m := newTestDevice(tr, AccelRange4G, GyroRange500DPS)

	if err := m.Sleep(); err != nil {
		t.Fatalf("Sleep: %v", err)
	}
	if tr.regs[RegPwrMgmt1] != 0x2D|0x40 {
		t.Errorf("after Sleep: 0x%02X, want 0x%02X", tr.regs[RegPwrMgmt1], 0x2D|0x40)
	}
	if m.PowerState() != PowerSleeping {
		t.Errorf("power state: got %v, want %v", m.PowerState(), PowerSleeping)
	}

	if err := m.WakeUp(); err != nil {
		t.Fatalf("WakeUp: %v", err)
	}
	// Every bit except SLEEP must round-trip unchanged.
	if tr.regs[RegPwrMgmt1] != 0x2D {
		t.Errorf("after WakeUp: 0x%02X, want 0x2D", tr.regs[RegPwrMgmt1])
	}
	if m.PowerState() != PowerAwake {
		t.Errorf("power state: got %v, want %v", m.PowerState(), PowerAwake)
	}
}

func TestTemperatureToggleAbortsOnReadFailure(t *testing.T) {
	tr := newMockTransport()
	tr.failReads[RegPwrMgmt1] = true
	m := newTestDevice(tr, AccelRange4G, GyroRange500DPS)

	if err := m.DisableTemperatureSensor(); !errors.Is(err, errBus) {
		t.Fatalf("error: got %v, want bus failure", err)
	}
	// The stale-value write must not have been attempted.
	if len(tr.ops) != 0 {
		t.Errorf("expected no recorded ops after failed read, got %+v", tr.ops)
	}
}

func TestDataReadyInterruptToggles(t *testing.T) {
	tr := newMockTransport()
	m := newTestDevice(tr, AccelRange4G, GyroRange500DPS)

	if err := m.EnableDataReadyInterrupt(); err != nil {
		t.Fatalf("enable: %v", err)
	}
	if err := m.DisableDataReadyInterrupt(); err != nil {
		t.Fatalf("disable: %v", err)
	}
	want := []busOp{
		{write: true, reg: RegIntEnable, value: 0x01},
		{write: true, reg: RegIntEnable, value: 0x00},
	}
	for i, op := range tr.ops {
		if op != want[i] {
			t.Errorf("op %d: got %+v, want %+v", i, op, want[i])
		}
	}
}

func TestDisableGyroscopePowersDownAllAxes(t *testing.T) {
	tr := newMockTransport()
	m := newTestDevice(tr, AccelRange4G, GyroRange500DPS)

	if err := m.DisableGyroscope(); err != nil {
		t.Fatalf("disable gyro: %v", err)
	}
	want := busOp{write: true, reg: RegPwrMgmt2, value: 0x07}
	if len(tr.ops) != 1 || tr.ops[0] != want {
		t.Errorf("ops = %+v, want [%+v]", tr.ops, want)
	}
}

func TestReadWhoAmIIsPermissive(t *testing.T) {
	tr := newMockTransport()
	tr.regs[RegWhoAmI] = 0x55 // not an MPU6500
	m := newTestDevice(tr, AccelRange4G, GyroRange500DPS)

	v, err := m.ReadWhoAmI()
	if err != nil {
		t.Fatalf("ReadWhoAmI: %v", err)
	}
	if v != 0x55 {
		t.Errorf("who am i = 0x%02X, want 0x55 passed through unvalidated", v)
	}
}

func TestScaleTableConsistency(t *testing.T) {
	accel := []struct {
		r    AccelRange
		cfg  byte
		sens float64
	}{
		{AccelRange2G, 0x00, 16384},
		{AccelRange4G, 0x08, 8192},
		{AccelRange8G, 0x10, 4096},
		{AccelRange16G, 0x18, 2048},
	}
	for _, tc := range accel {
		if tc.r.ConfigByte() != tc.cfg || tc.r.Sensitivity() != tc.sens {
			t.Errorf("accel range %d: got (0x%02X, %v), want (0x%02X, %v)",
				tc.r, tc.r.ConfigByte(), tc.r.Sensitivity(), tc.cfg, tc.sens)
		}
	}
	gyro := []struct {
		r    GyroRange
		cfg  byte
		sens float64
	}{
		{GyroRange250DPS, 0x00, 131.0},
		{GyroRange500DPS, 0x08, 65.5},
		{GyroRange1000DPS, 0x10, 32.8},
		{GyroRange2000DPS, 0x18, 16.4},
	}
	for _, tc := range gyro {
		if tc.r.ConfigByte() != tc.cfg || tc.r.Sensitivity() != tc.sens {
			t.Errorf("gyro range %d: got (0x%02X, %v), want (0x%02X, %v)",
				tc.r, tc.r.ConfigByte(), tc.r.Sensitivity(), tc.cfg, tc.sens)
		}
	}
}

func TestSimTransportBootsAndInits(t *testing.T) {
	m := newTestDevice(NewSimTransport(), AccelRange4G, GyroRange500DPS)
	if err := m.Init(); err != nil {
		t.Fatalf("Init against sim: %v", err)
	}
	v, err := m.ReadWhoAmI()
	if err != nil {
		t.Fatalf("ReadWhoAmI: %v", err)
	}
	if v != WhoAmIValue {
		t.Errorf("sim who am i = 0x%02X, want 0x%02X", v, WhoAmIValue)
	}
	s, err := m.ReadAccel()
	if err != nil {
		t.Fatalf("ReadAccel: %v", err)
	}
	// Sim holds Z near 1 g at ±4g.
	if s.Z < 0.9 || s.Z > 1.1 {
		t.Errorf("sim z accel = %v, want ≈1 g", s.Z)
	}
}
