// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu6500

// BitField describes one field inside a register for the debug tooling.
type BitField struct {
	Bits        string `json:"bits"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Values      string `json:"values,omitempty"`
}

// RegisterInfo is display metadata for one register. It exists for the
// register-debug tool; the driver itself only uses the typed constants in
// registers.go.
type RegisterInfo struct {
	Address     string     `json:"address"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Access      string     `json:"access"`
	Default     string     `json:"default,omitempty"`
	BitFields   []BitField `json:"bit_fields,omitempty"`
}

// RegisterMap returns metadata for the MPU6500 registers the tooling cares
// about: names, access types and bit field definitions.
func RegisterMap() []RegisterInfo {
	return []RegisterInfo{
		// Self-test and offset trim
		{Address: "0x00", Name: "SELF_TEST_X_GYRO", Description: "Gyro X self-test output", Access: "RW"},
		{Address: "0x01", Name: "SELF_TEST_Y_GYRO", Description: "Gyro Y self-test output", Access: "RW"},
		{Address: "0x02", Name: "SELF_TEST_Z_GYRO", Description: "Gyro Z self-test output", Access: "RW"},
		{Address: "0x0D", Name: "SELF_TEST_X_ACCEL", Description: "Accel X self-test output", Access: "RW"},
		{Address: "0x0E", Name: "SELF_TEST_Y_ACCEL", Description: "Accel Y self-test output", Access: "RW"},
		{Address: "0x0F", Name: "SELF_TEST_Z_ACCEL", Description: "Accel Z self-test output", Access: "RW"},
		{Address: "0x13", Name: "XG_OFFSET_H", Description: "Gyro X offset high byte", Access: "RW"},
		{Address: "0x14", Name: "XG_OFFSET_L", Description: "Gyro X offset low byte", Access: "RW"},
		{Address: "0x15", Name: "YG_OFFSET_H", Description: "Gyro Y offset high byte", Access: "RW"},
		{Address: "0x16", Name: "YG_OFFSET_L", Description: "Gyro Y offset low byte", Access: "RW"},
		{Address: "0x17", Name: "ZG_OFFSET_H", Description: "Gyro Z offset high byte", Access: "RW"},
		{Address: "0x18", Name: "ZG_OFFSET_L", Description: "Gyro Z offset low byte", Access: "RW"},

		// Configuration
		{Address: "0x19", Name: "SMPLRT_DIV", Description: "Sample Rate Divider", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7:0", Name: "SMPLRT_DIV", Description: "Sample Rate = Internal_Sample_Rate / (1 + SMPLRT_DIV)", Values: "0-255"},
			}},
		{Address: "0x1A", Name: "CONFIG", Description: "Configuration (gyro/temp DLPF)", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "6", Name: "FIFO_MODE", Description: "FIFO mode", Values: "0=Overwrite, 1=Block new data"},
				{Bits: "5:3", Name: "EXT_SYNC_SET", Description: "External FSYNC pin sampling", Values: "0=Disabled"},
				{Bits: "2:0", Name: "DLPF_CFG", Description: "Digital Low Pass Filter", Values: "0=250Hz, 1=184Hz, 2=92Hz, 3=41Hz, 4=20Hz, 5=10Hz, 6=5Hz, 7=3600Hz"},
			}},
		{Address: "0x1B", Name: "GYRO_CONFIG", Description: "Gyroscope Configuration", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7", Name: "XGYRO_Cten", Description: "X Gyro self-test", Values: "0=Disabled, 1=Enabled"},
				{Bits: "6", Name: "YGYRO_Cten", Description: "Y Gyro self-test", Values: "0=Disabled, 1=Enabled"},
				{Bits: "5", Name: "ZGYRO_Cten", Description: "Z Gyro self-test", Values: "0=Disabled, 1=Enabled"},
				{Bits: "4:3", Name: "GYRO_FS_SEL", Description: "Gyro Full Scale Range", Values: "0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s"},
				{Bits: "1:0", Name: "Fchoice_b", Description: "Gyro DLPF bypass", Values: "0=DLPF enabled"},
			}},
		{Address: "0x1C", Name: "ACCEL_CONFIG", Description: "Accelerometer Configuration", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7", Name: "ax_st_en", Description: "X Accel self-test", Values: "0=Disabled, 1=Enabled"},
				{Bits: "6", Name: "ay_st_en", Description: "Y Accel self-test", Values: "0=Disabled, 1=Enabled"},
				{Bits: "5", Name: "az_st_en", Description: "Z Accel self-test", Values: "0=Disabled, 1=Enabled"},
				{Bits: "4:3", Name: "ACCEL_FS_SEL", Description: "Accel Full Scale Range", Values: "0=±2g, 1=±4g, 2=±8g, 3=±16g"},
			}},
		{Address: "0x1D", Name: "ACCEL_CONFIG_2", Description: "Accelerometer Configuration 2", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "3", Name: "accel_fchoice_b", Description: "Accel DLPF bypass", Values: "0=DLPF enabled, 1=Bypass"},
				{Bits: "2:0", Name: "A_DLPFCFG", Description: "Accel DLPF Config", Values: "0=460Hz, 1=184Hz, 2=92Hz, 3=41Hz, 4=20Hz, 5=10Hz, 6=5Hz, 7=460Hz"},
			}},
		{Address: "0x1E", Name: "LP_ACCEL_ODR", Description: "Low Power Accelerometer ODR Control", Access: "RW", Default: "0x00"},
		{Address: "0x1F", Name: "WOM_THR", Description: "Wake-on-Motion Threshold", Access: "RW", Default: "0x00"},
		{Address: "0x23", Name: "FIFO_EN", Description: "FIFO Enable", Access: "RW", Default: "0x00"},
		{Address: "0x24", Name: "I2C_MST_CTRL", Description: "I2C Master Control", Access: "RW", Default: "0x00"},

		// Interrupts
		{Address: "0x37", Name: "INT_PIN_CFG", Description: "INT Pin / Bypass Enable Configuration", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7", Name: "ACTL", Description: "INT pin active low", Values: "0=Active high, 1=Active low"},
				{Bits: "6", Name: "OPEN", Description: "INT pin open drain", Values: "0=Push-pull, 1=Open drain"},
				{Bits: "5", Name: "LATCH_INT_EN", Description: "Latch INT pin", Values: "0=50us pulse, 1=Latch until cleared"},
				{Bits: "4", Name: "INT_ANYRD_2CLEAR", Description: "Clear INT on any read", Values: "0=Status read only, 1=Any read"},
				{Bits: "3", Name: "ACTL_FSYNC", Description: "FSYNC pin active low", Values: "0=Active high, 1=Active low"},
				{Bits: "2", Name: "FSYNC_INT_MODE_EN", Description: "Enable FSYNC as interrupt", Values: "0=Disabled, 1=Enabled"},
				{Bits: "1", Name: "BYPASS_EN", Description: "I2C bypass enable", Values: "0=Disabled, 1=Enabled"},
			}},
		{Address: "0x38", Name: "INT_ENABLE", Description: "Interrupt Enable", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "6", Name: "WOM_EN", Description: "Wake on Motion interrupt", Values: "0=Disabled, 1=Enabled"},
				{Bits: "4", Name: "FIFO_OVERFLOW_EN", Description: "FIFO overflow interrupt", Values: "0=Disabled, 1=Enabled"},
				{Bits: "3", Name: "FSYNC_INT_EN", Description: "FSYNC interrupt", Values: "0=Disabled, 1=Enabled"},
				{Bits: "0", Name: "RAW_RDY_EN", Description: "Raw data ready interrupt", Values: "0=Disabled, 1=Enabled"},
			}},
		{Address: "0x3A", Name: "INT_STATUS", Description: "Interrupt Status", Access: "R", Default: "0x00",
			BitFields: []BitField{
				{Bits: "6", Name: "WOM_INT", Description: "Wake on Motion interrupt status"},
				{Bits: "4", Name: "FIFO_OVERFLOW_INT", Description: "FIFO overflow interrupt status"},
				{Bits: "0", Name: "RAW_DATA_RDY_INT", Description: "Raw data ready interrupt status"},
			}},

		// Sensor data (read-only, big-endian, high byte first)
		{Address: "0x3B", Name: "ACCEL_XOUT_H", Description: "Accelerometer X-Axis High Byte", Access: "R"},
		{Address: "0x3C", Name: "ACCEL_XOUT_L", Description: "Accelerometer X-Axis Low Byte", Access: "R"},
		{Address: "0x3D", Name: "ACCEL_YOUT_H", Description: "Accelerometer Y-Axis High Byte", Access: "R"},
		{Address: "0x3E", Name: "ACCEL_YOUT_L", Description: "Accelerometer Y-Axis Low Byte", Access: "R"},
		{Address: "0x3F", Name: "ACCEL_ZOUT_H", Description: "Accelerometer Z-Axis High Byte", Access: "R"},
		{Address: "0x40", Name: "ACCEL_ZOUT_L", Description: "Accelerometer Z-Axis Low Byte", Access: "R"},
		{Address: "0x41", Name: "TEMP_OUT_H", Description: "Temperature High Byte", Access: "R"},
		{Address: "0x42", Name: "TEMP_OUT_L", Description: "Temperature Low Byte", Access: "R"},
		{Address: "0x43", Name: "GYRO_XOUT_H", Description: "Gyroscope X-Axis High Byte", Access: "R"},
		{Address: "0x44", Name: "GYRO_XOUT_L", Description: "Gyroscope X-Axis Low Byte", Access: "R"},
		{Address: "0x45", Name: "GYRO_YOUT_H", Description: "Gyroscope Y-Axis High Byte", Access: "R"},
		{Address: "0x46", Name: "GYRO_YOUT_L", Description: "Gyroscope Y-Axis Low Byte", Access: "R"},
		{Address: "0x47", Name: "GYRO_ZOUT_H", Description: "Gyroscope Z-Axis High Byte", Access: "R"},
		{Address: "0x48", Name: "GYRO_ZOUT_L", Description: "Gyroscope Z-Axis Low Byte", Access: "R"},

		// Power and control
		{Address: "0x68", Name: "SIGNAL_PATH_RESET", Description: "Signal Path Reset", Access: "RW", Default: "0x00"},
		{Address: "0x6A", Name: "USER_CTRL", Description: "User Control", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "6", Name: "FIFO_EN", Description: "Enable FIFO", Values: "0=Disabled, 1=Enabled"},
				{Bits: "5", Name: "I2C_MST_EN", Description: "Enable I2C Master", Values: "0=Disabled, 1=Enabled"},
				{Bits: "4", Name: "I2C_IF_DIS", Description: "Disable I2C Slave", Values: "0=Enabled, 1=Disabled"},
				{Bits: "2", Name: "FIFO_RST", Description: "Reset FIFO", Values: "1=Reset"},
				{Bits: "1", Name: "I2C_MST_RST", Description: "Reset I2C Master", Values: "1=Reset"},
				{Bits: "0", Name: "SIG_COND_RST", Description: "Reset signal paths", Values: "1=Reset"},
			}},
		{Address: "0x6B", Name: "PWR_MGMT_1", Description: "Power Management 1", Access: "RW", Default: "0x01",
			BitFields: []BitField{
				{Bits: "7", Name: "H_RESET", Description: "Device reset", Values: "1=Reset device"},
				{Bits: "6", Name: "SLEEP", Description: "Sleep mode", Values: "0=Disabled, 1=Sleep"},
				{Bits: "5", Name: "CYCLE", Description: "Cycle mode", Values: "0=Disabled, 1=Cycle"},
				{Bits: "4", Name: "TEMP_DIS", Description: "Temperature sensor", Values: "0=Enabled, 1=Disabled"},
				{Bits: "2:0", Name: "CLKSEL", Description: "Clock source", Values: "0=Internal 20MHz, 1=Auto select best"},
			}},
		{Address: "0x6C", Name: "PWR_MGMT_2", Description: "Power Management 2", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "5", Name: "DISABLE_XA", Description: "Disable X accelerometer", Values: "0=Enabled, 1=Disabled"},
				{Bits: "4", Name: "DISABLE_YA", Description: "Disable Y accelerometer", Values: "0=Enabled, 1=Disabled"},
				{Bits: "3", Name: "DISABLE_ZA", Description: "Disable Z accelerometer", Values: "0=Enabled, 1=Disabled"},
				{Bits: "2", Name: "DISABLE_XG", Description: "Disable X gyro", Values: "0=Enabled, 1=Disabled"},
				{Bits: "1", Name: "DISABLE_YG", Description: "Disable Y gyro", Values: "0=Enabled, 1=Disabled"},
				{Bits: "0", Name: "DISABLE_ZG", Description: "Disable Z gyro", Values: "0=Enabled, 1=Disabled"},
			}},
		{Address: "0x72", Name: "FIFO_COUNTH", Description: "FIFO Count High Byte", Access: "R"},
		{Address: "0x73", Name: "FIFO_COUNTL", Description: "FIFO Count Low Byte", Access: "R"},
		{Address: "0x74", Name: "FIFO_R_W", Description: "FIFO Read Write", Access: "RW"},

		// Identification
		{Address: "0x75", Name: "WHO_AM_I", Description: "Device ID (should be 0x70)", Access: "R", Default: "0x70"},

		// Accelerometer offset trim
		{Address: "0x77", Name: "XA_OFFSET_H", Description: "Accelerometer X-Axis Offset High Byte", Access: "RW"},
		{Address: "0x78", Name: "XA_OFFSET_L", Description: "Accelerometer X-Axis Offset Low Byte", Access: "RW"},
		{Address: "0x7A", Name: "YA_OFFSET_H", Description: "Accelerometer Y-Axis Offset High Byte", Access: "RW"},
		{Address: "0x7B", Name: "YA_OFFSET_L", Description: "Accelerometer Y-Axis Offset Low Byte", Access: "RW"},
		{Address: "0x7D", Name: "ZA_OFFSET_H", Description: "Accelerometer Z-Axis Offset High Byte", Access: "RW"},
		{Address: "0x7E", Name: "ZA_OFFSET_L", Description: "Accelerometer Z-Axis Offset Low Byte", Access: "RW"},
	}
}
