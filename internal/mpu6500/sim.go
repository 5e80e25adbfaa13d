// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu6500

import (
	"math"
	"time"
)

// SimTransport is an in-memory Transport over a fake MPU6500: a 128-byte
// register file with power-on defaults, plus synthesized sensor data so the
// full driver and app stack can run without hardware. Reads of the sensor
// data registers return a smoothly varying motion signal derived from wall
// clock time, the way the old mock pose source did.
type SimTransport struct {
	regs  [128]byte
	start time.Time
}

// NewSimTransport returns a simulated device in its power-on state.
func NewSimTransport() *SimTransport {
	s := &SimTransport{start: time.Now()}
	s.powerOn()
	return s
}

func (s *SimTransport) powerOn() {
	for i := range s.regs {
		s.regs[i] = 0
	}
	s.regs[RegPwrMgmt1] = 0x01 // chip default
	s.regs[RegWhoAmI] = WhoAmIValue
}

func (s *SimTransport) WriteRegister(reg, value byte) error {
	if reg == RegPwrMgmt1 && value&bitDeviceReset != 0 {
		s.powerOn()
		return nil
	}
	s.regs[reg&0x7F] = value
	return nil
}

func (s *SimTransport) ReadRegister(reg byte, buf []byte) error {
	s.refreshSensorData()
	for i := range buf {
		buf[i] = s.regs[(reg+byte(i))&0x7F]
	}
	return nil
}

// refreshSensorData writes the current synthetic sample into the data
// registers, big-endian, so burst reads decode like the real chip.
func (s *SimTransport) refreshSensorData() {
	t := time.Since(s.start).Seconds()

	// Gentle rocking around level, Z near 1 g at the ±4g default scale.
	ax := int16(800 * math.Sin(t))
	ay := int16(600 * math.Cos(t*0.7))
	az := int16(8192 + 120*math.Sin(t*1.3))

	gx := int16(400 * math.Cos(t*0.9))
	gy := int16(300 * math.Sin(t*1.1))
	gz := int16(200 * math.Sin(t*0.5))

	// Raw temperature for roughly 26 °C: (26-21) * 333.87.
	temp := int16(1669)

	s.put16(RegAccelXOutH, ax)
	s.put16(RegAccelXOutH+2, ay)
	s.put16(RegAccelXOutH+4, az)
	s.put16(RegTempOutH, temp)
	s.put16(RegGyroXOutH, gx)
	s.put16(RegGyroXOutH+2, gy)
	s.put16(RegGyroXOutH+4, gz)
}

func (s *SimTransport) put16(reg byte, v int16) {
	s.regs[reg] = byte(uint16(v) >> 8)
	s.regs[reg+1] = byte(uint16(v))
}
