package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/relabs-tech/mpu6500_telemetry/internal/config"
	"github.com/relabs-tech/mpu6500_telemetry/internal/imu"
	"github.com/relabs-tech/mpu6500_telemetry/internal/sensors"
)

// RunWeb serves the telemetry dashboard. Live readings come over MQTT, but
// calibration sessions talk to the device directly, so the web server owns
// the IMU manager too. With useSim set it runs against the simulated device.
func RunWeb(useSim bool) error {
	var (
		mu          sync.RWMutex
		lastReading imu.Reading
		haveReading bool
	)

	cfg := config.Get()

	imuManager := sensors.GetIMUManager()
	var initErr error
	if useSim {
		initErr = imuManager.InitSim()
	} else {
		initErr = imuManager.Init()
	}
	if initErr != nil {
		// The dashboard still works from MQTT data; only /ws/calibration
		// sessions will be refused.
		log.Printf("warning: IMU unavailable, calibration disabled: %v", initErr)
	}

	// 1) Connect to MQTT broker on the Pi
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDWeb)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("connected to MQTT broker at %s", cfg.MQTTBroker)

	// 2) Subscribe to the IMU topic and update lastReading on each message
	token := client.Subscribe(cfg.TopicIMU, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var r imu.Reading
		if err := json.Unmarshal(msg.Payload(), &r); err != nil {
			log.Printf("MQTT payload unmarshal error: %v", err)
			return
		}
		mu.Lock()
		lastReading = r
		haveReading = true
		mu.Unlock()
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("subscribed to MQTT topic %s", cfg.TopicIMU)

	// 3) JSON API endpoint: latest reading
	http.HandleFunc("/api/imu", func(w http.ResponseWriter, r *http.Request) {
		mu.RLock()
		defer mu.RUnlock()

		if !haveReading {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(lastReading); err != nil {
			log.Printf("json encode error: %v", err)
		}
	})

	// 4) Calibration sessions over websocket
	http.HandleFunc("/ws/calibration", HandleCalibrationWS)

	// 5) Static files from ./web as the root
	fs := http.FileServer(http.Dir("web"))
	http.Handle("/", fs)

	port := cfg.WebServerPort
	if port == 0 {
		port = 8080
	}
	addr := fmt.Sprintf(":%d", port)
	log.Printf("web server listening on %s", addr)
	return http.ListenAndServe(addr, nil)
}
