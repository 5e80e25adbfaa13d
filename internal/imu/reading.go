package imu

// Raw is a single raw IMU sample in counts, straight off the chip.
type Raw struct {
	Ax int16 `json:"ax"` // accel
	Ay int16 `json:"ay"`
	Az int16 `json:"az"`

	Gx int16 `json:"gx"` // gyro
	Gy int16 `json:"gy"`
	Gz int16 `json:"gz"`

	Temp int16 `json:"temp"` // raw temperature word
}

// Reading is one complete sample: raw counts plus the bias-corrected,
// scaled values in physical units.
type Reading struct {
	Source string `json:"source"` // bus name, or "sim"
	Time   string `json:"time"`   // RFC3339

	Raw Raw `json:"raw"`

	Ax float64 `json:"ax_g"` // g
	Ay float64 `json:"ay_g"`
	Az float64 `json:"az_g"`

	Gx float64 `json:"gx_dps"` // °/s
	Gy float64 `json:"gy_dps"`
	Gz float64 `json:"gz_dps"`

	TempC float64 `json:"temp_c"`
}

// CelsiusFromRaw converts the MPU6500 raw temperature word to °C
// (datasheet: temp/333.87 + 21).
func CelsiusFromRaw(raw int16) float64 {
	return float64(raw)/333.87 + 21.0
}
