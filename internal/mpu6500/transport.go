// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu6500

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
)

// Transport moves bytes between the driver and the chip's 8-bit register
// file. Implementations must use the 8-bit memory-address convention: every
// transaction starts with the register address byte.
type Transport interface {
	// WriteRegister writes one byte to the register at reg.
	WriteRegister(reg, value byte) error
	// ReadRegister reads len(buf) consecutive registers starting at reg in a
	// single burst transaction.
	ReadRegister(reg byte, buf []byte) error
}

// I2CTransport is the production Transport over a periph.io I2C bus.
type I2CTransport struct {
	dev i2c.Dev
}

// NewI2CTransport wraps an open I2C bus. useAltAddr selects 0x68 (AD0 low)
// instead of the default 0x69.
func NewI2CTransport(bus i2c.Bus, useAltAddr bool) *I2CTransport {
	addr := DefaultAddr
	if useAltAddr {
		addr = AlternateAddr
	}
	return &I2CTransport{dev: i2c.Dev{Bus: bus, Addr: addr}}
}

func (t *I2CTransport) WriteRegister(reg, value byte) error {
	if err := t.dev.Tx([]byte{reg, value}, nil); err != nil {
		return fmt.Errorf("i2c write reg 0x%02X: %w", reg, err)
	}
	return nil
}

func (t *I2CTransport) ReadRegister(reg byte, buf []byte) error {
	if err := t.dev.Tx([]byte{reg}, buf); err != nil {
		return fmt.Errorf("i2c read reg 0x%02X (%d bytes): %w", reg, len(buf), err)
	}
	return nil
}
