// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu6500

// MPU6500 register addresses. These are the wire contract with the chip and
// must match the InvenSense MPU-6500 register map exactly.
const (
	RegSelfTestXGyro  byte = 0x00
	RegSelfTestYGyro  byte = 0x01
	RegSelfTestZGyro  byte = 0x02
	RegSelfTestXAccel byte = 0x0D
	RegSelfTestYAccel byte = 0x0E
	RegSelfTestZAccel byte = 0x0F
	RegXGOffsetH      byte = 0x13
	RegXGOffsetL      byte = 0x14
	RegYGOffsetH      byte = 0x15
	RegYGOffsetL      byte = 0x16
	RegZGOffsetH      byte = 0x17
	RegZGOffsetL      byte = 0x18
	RegSampleRateDiv  byte = 0x19
	RegConfig         byte = 0x1A
	RegGyroConfig     byte = 0x1B
	RegAccelConfig    byte = 0x1C
	RegAccelConfig2   byte = 0x1D
	RegLPAccelODR     byte = 0x1E
	RegWOMThreshold   byte = 0x1F
	RegFIFOEnable     byte = 0x23
	RegI2CMstCtrl     byte = 0x24
	RegIntPinCfg      byte = 0x37
	RegIntEnable      byte = 0x38
	RegIntStatus      byte = 0x3A
	RegAccelXOutH     byte = 0x3B
	RegTempOutH       byte = 0x41
	RegGyroXOutH      byte = 0x43
	RegSignalPathRst  byte = 0x68
	RegUserCtrl       byte = 0x6A
	RegPwrMgmt1       byte = 0x6B
	RegPwrMgmt2       byte = 0x6C
	RegFIFOCountH     byte = 0x72
	RegFIFOCountL     byte = 0x73
	RegFIFORW         byte = 0x74
	RegWhoAmI         byte = 0x75
	RegXAOffsetH      byte = 0x77
	RegXAOffsetL      byte = 0x78
	RegYAOffsetH      byte = 0x7A
	RegYAOffsetL      byte = 0x7B
	RegZAOffsetH      byte = 0x7D
	RegZAOffsetL      byte = 0x7E
)

// Fixed bit patterns written by the controller.
const (
	bitDeviceReset byte = 0x80 // PWR_MGMT_1 H_RESET[7]
	bitSleep       byte = 0x40 // PWR_MGMT_1 SLEEP[6]
	bitTempDisable byte = 0x10 // PWR_MGMT_1 TEMP_DIS[4]

	clockInternal byte = 0x01 // PWR_MGMT_1 CLKSEL[2:0] = 001, sleep cleared

	// ACTL[7] | OPEN[6] | LATCH_INT_EN[5] | INT_ANYRD_2CLEAR[4]:
	// active low, open drain, latched, cleared by any read.
	intPinConfig byte = 0xB0

	intDataReadyEnable  byte = 0x01 // INT_ENABLE RAW_RDY_EN[0]
	intDataReadyDisable byte = 0x00

	// DLPF_CFG / A_DLPFCFG = 100: 20 Hz bandwidth on the 1 kHz sample path.
	dlpf20Hz byte = 0x04

	// PWR_MGMT_2 DISABLE_XG|DISABLE_YG|DISABLE_ZG.
	gyroDisableAll byte = 0x07
)

// I2C device addresses. AD0 strapped high selects 0x69, low selects 0x68.
const (
	DefaultAddr   uint16 = 0x69
	AlternateAddr uint16 = 0x68
)

// WhoAmIValue is the expected WHO_AM_I response for an MPU6500. The driver
// does not validate it; callers that want identity assurance check it
// themselves.
const WhoAmIValue byte = 0x70

// AccelRange selects the accelerometer full-scale range.
// 0=±2g, 1=±4g, 2=±8g, 3=±16g.
type AccelRange byte

const (
	AccelRange2G AccelRange = iota
	AccelRange4G
	AccelRange8G
	AccelRange16G
)

// GyroRange selects the gyroscope full-scale range.
// 0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s.
type GyroRange byte

const (
	GyroRange250DPS GyroRange = iota
	GyroRange500DPS
	GyroRange1000DPS
	GyroRange2000DPS
)

// scaleEntry ties a full-scale config-register value to its sensitivity
// divisor. Keeping both in one table is what guarantees the register the
// chip sees and the divisor the pipeline uses can never drift apart.
type scaleEntry struct {
	config      byte    // FS_SEL bits [4:3], ready to write
	sensitivity float64 // LSB per physical unit
}

var accelScales = [4]scaleEntry{
	AccelRange2G:  {config: 0x00, sensitivity: 16384.0},
	AccelRange4G:  {config: 0x08, sensitivity: 8192.0},
	AccelRange8G:  {config: 0x10, sensitivity: 4096.0},
	AccelRange16G: {config: 0x18, sensitivity: 2048.0},
}

var gyroScales = [4]scaleEntry{
	GyroRange250DPS:  {config: 0x00, sensitivity: 131.0},
	GyroRange500DPS:  {config: 0x08, sensitivity: 65.5},
	GyroRange1000DPS: {config: 0x10, sensitivity: 32.8},
	GyroRange2000DPS: {config: 0x18, sensitivity: 16.4},
}

// ConfigByte returns the ACCEL_CONFIG value for the range.
func (r AccelRange) ConfigByte() byte { return accelScales[r&0x03].config }

// Sensitivity returns the divisor in LSB/g for the range.
func (r AccelRange) Sensitivity() float64 { return accelScales[r&0x03].sensitivity }

// ConfigByte returns the GYRO_CONFIG value for the range.
func (r GyroRange) ConfigByte() byte { return gyroScales[r&0x03].config }

// Sensitivity returns the divisor in LSB/(°/s) for the range.
func (r GyroRange) Sensitivity() float64 { return gyroScales[r&0x03].sensitivity }
