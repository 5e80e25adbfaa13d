package app

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/relabs-tech/mpu6500_telemetry/internal/config"
	"github.com/relabs-tech/mpu6500_telemetry/internal/sensors"
)

// TestCalibrationSessionOverWebsocket drives a full calibration session
// against the simulated device, the way the web server runs it. The server
// process owns the IMU manager, so a session must reach "complete" without
// ever reporting the device as unavailable.
func TestCalibrationSessionOverWebsocket(t *testing.T) {
	if testing.Short() {
		t.Skip("session takes several seconds")
	}

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.txt")
	cfgText := "MQTT_BROKER = tcp://localhost:1883\n" +
		"TOPIC_IMU = mpu6500/imu\n" +
		"IMU_SAMPLE_INTERVAL = 100\n" +
		"CONSOLE_LOG_INTERVAL = 1000\n" +
		"CALIBRATION_SAMPLES = 3\n" +
		"CALIBRATION_DIR = " + dir + "\n"
	if err := os.WriteFile(cfgPath, []byte(cfgText), 0644); err != nil {
		t.Fatal(err)
	}
	if err := config.InitGlobal(cfgPath); err != nil {
		t.Fatalf("InitGlobal: %v", err)
	}

	if err := sensors.GetIMUManager().InitSim(); err != nil {
		t.Fatalf("InitSim: %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(HandleCalibrationWS))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(30 * time.Second))

	if err := conn.WriteJSON(WSMessage{Action: "init", Samples: 3}); err != nil {
		t.Fatalf("init: %v", err)
	}

	// Each "next" advances the state machine one phase; read until the
	// phase reports ready (or the session completes).
	phases := make(map[string]bool)
	var completed bool
	for step := 0; step < 3 && !completed; step++ {
		if err := conn.WriteJSON(WSMessage{Action: "next"}); err != nil {
			t.Fatalf("next: %v", err)
		}
		for {
			var resp WSResponse
			if err := conn.ReadJSON(&resp); err != nil {
				t.Fatalf("read: %v", err)
			}
			if resp.Type == "error" {
				t.Fatalf("session error: %s", resp.Message)
			}
			if resp.Type == "phase" {
				phases[resp.Phase] = true
			}
			if resp.Type == "action" {
				break
			}
			if resp.Type == "complete" {
				completed = true
				break
			}
		}
	}

	if !phases["noise"] || !phases["offsets"] {
		t.Errorf("phases seen = %v, want noise and offsets", phases)
	}
	if !completed {
		t.Fatal("session never completed")
	}

	matches, err := filepath.Glob(filepath.Join(dir, "mpu6500_*_calibration.json"))
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 {
		t.Errorf("calibration files written = %d, want 1", len(matches))
	}
}
