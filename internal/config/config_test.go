package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const validConfig = `# test config
MQTT_BROKER = tcp://localhost:1883
MQTT_CLIENT_ID_PRODUCER = mpu6500-producer

TOPIC_IMU = mpu6500/imu
TOPIC_IMU_RAW = mpu6500/imu/raw
TOPIC_TEMP = mpu6500/temp

IMU_I2C_BUS = 1
IMU_USE_ALT_ADDRESS = false
IMU_ACCEL_RANGE = 2
IMU_GYRO_RANGE = 3

CALIBRATION_SAMPLES = 500
CALIBRATION_DIR = ./calibration

IMU_SAMPLE_INTERVAL = 100
CONSOLE_LOG_INTERVAL = 1000
WEB_SERVER_PORT = 8080
DISPLAY_UPDATE_INTERVAL = 250
`

func TestLoadValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.MQTTBroker != "tcp://localhost:1883" {
		t.Errorf("MQTTBroker = %q", cfg.MQTTBroker)
	}
	if cfg.TopicIMU != "mpu6500/imu" {
		t.Errorf("TopicIMU = %q", cfg.TopicIMU)
	}
	if cfg.IMUI2CBus != "1" {
		t.Errorf("IMUI2CBus = %q", cfg.IMUI2CBus)
	}
	if cfg.IMUUseAltAddress {
		t.Error("IMUUseAltAddress = true, want false")
	}
	if cfg.IMUAccelRange != 2 || cfg.IMUGyroRange != 3 {
		t.Errorf("ranges = %d,%d, want 2,3", cfg.IMUAccelRange, cfg.IMUGyroRange)
	}
	if cfg.CalibrationSamples != 500 {
		t.Errorf("CalibrationSamples = %d", cfg.CalibrationSamples)
	}
}

func TestLoadDefaultsRangesWhenAbsent(t *testing.T) {
	stripped := strings.Replace(validConfig, "IMU_ACCEL_RANGE = 2\n", "", 1)
	stripped = strings.Replace(stripped, "IMU_GYRO_RANGE = 3\n", "", 1)
	cfg, err := Load(writeConfig(t, stripped))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	// ±4g and ±500°/s, not the selector zero values.
	if cfg.IMUAccelRange != 1 {
		t.Errorf("IMUAccelRange = %d, want 1", cfg.IMUAccelRange)
	}
	if cfg.IMUGyroRange != 1 {
		t.Errorf("IMUGyroRange = %d, want 1", cfg.IMUGyroRange)
	}
}

func TestLoadRejectsOutOfRangeSelector(t *testing.T) {
	bad := strings.Replace(validConfig, "IMU_ACCEL_RANGE = 2", "IMU_ACCEL_RANGE = 4", 1)
	if _, err := Load(writeConfig(t, bad)); err == nil {
		t.Fatal("expected error for IMU_ACCEL_RANGE = 4")
	}
}

func TestLoadRejectsZeroCalibrationSamples(t *testing.T) {
	bad := strings.Replace(validConfig, "CALIBRATION_SAMPLES = 500", "CALIBRATION_SAMPLES = 0", 1)
	if _, err := Load(writeConfig(t, bad)); err == nil {
		t.Fatal("expected error for CALIBRATION_SAMPLES = 0")
	}
}

func TestLoadRejectsUnknownKey(t *testing.T) {
	bad := validConfig + "NOT_A_KEY = 1\n"
	if _, err := Load(writeConfig(t, bad)); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestLoadRejectsDisplayAddressKey(t *testing.T) {
	// The ssd1306 driver fixes the display address internally, so the
	// config must not pretend it is tunable.
	bad := validConfig + "DISPLAY_I2C_ADDR = 0x3C\n"
	if _, err := Load(writeConfig(t, bad)); err == nil {
		t.Fatal("expected error for DISPLAY_I2C_ADDR")
	}
}

func TestLoadRequiresBroker(t *testing.T) {
	bad := strings.Replace(validConfig, "MQTT_BROKER = tcp://localhost:1883", "", 1)
	if _, err := Load(writeConfig(t, bad)); err == nil {
		t.Fatal("expected error for missing MQTT_BROKER")
	}
}
