package app

import (
	"encoding/json"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/relabs-tech/mpu6500_telemetry/internal/config"
	"github.com/relabs-tech/mpu6500_telemetry/internal/sensors"
)

// RunIMUProducer samples the MPU6500 on a fixed interval and publishes each
// reading as JSON over MQTT. With useSim set it runs against the simulated
// device instead of hardware.
func RunIMUProducer(useSim bool) error {
	log.Println("starting MPU6500 producer (IMU → MQTT)")

	cfg := config.Get()

	imuManager := sensors.GetIMUManager()
	var err error
	if useSim {
		err = imuManager.InitSim()
	} else {
		err = imuManager.Init()
	}
	if err != nil {
		log.Fatalf("failed to initialize IMU manager: %v", err)
		return err
	}

	// --- connect to MQTT ---
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDProducer)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("MQTT connect error: %v", token.Error())
		return token.Error()
	}
	defer client.Disconnect(250)

	log.Println("connected to MQTT, starting publish loop")

	logEvery := time.Duration(cfg.ConsoleLogInterval) * time.Millisecond
	lastLog := time.Time{}

	ticker := time.NewTicker(time.Duration(cfg.IMUSampleInterval) * time.Millisecond)
	defer ticker.Stop()

	for t := range ticker.C {
		reading, err := imuManager.Read()
		if err != nil {
			log.Printf("error reading IMU: %v", err)
			continue
		}

		payload, err := json.Marshal(reading)
		if err != nil {
			log.Printf("json marshal error (reading): %v", err)
			continue
		}
		if token := client.Publish(cfg.TopicIMU, 0, true, payload); token.Wait() && token.Error() != nil {
			log.Printf("MQTT publish error (%s): %v", cfg.TopicIMU, token.Error())
			continue
		}

		if cfg.TopicIMURaw != "" {
			if rawPayload, err := json.Marshal(reading.Raw); err != nil {
				log.Printf("json marshal error (raw): %v", err)
			} else {
				client.Publish(cfg.TopicIMURaw, 0, true, rawPayload)
			}
		}

		if cfg.TopicTemp != "" {
			tempMsg := struct {
				Raw   int16   `json:"raw"`
				TempC float64 `json:"temp_c"`
				Time  string  `json:"time"`
			}{
				Raw:   reading.Raw.Temp,
				TempC: reading.TempC,
				Time:  reading.Time,
			}
			if tempPayload, err := json.Marshal(tempMsg); err != nil {
				log.Printf("json marshal error (temp): %v", err)
			} else {
				client.Publish(cfg.TopicTemp, 0, true, tempPayload)
			}
		}

		if t.Sub(lastLog) >= logEvery {
			lastLog = t
			log.Printf("%s tick: accel x=%.3fg y=%.3fg z=%.3fg | gyro x=%.1f y=%.1f z=%.1f °/s | temp %.1f°C",
				t.Format(time.RFC3339),
				reading.Ax, reading.Ay, reading.Az,
				reading.Gx, reading.Gy, reading.Gz,
				reading.TempC,
			)
		}
	}
	return nil
}
