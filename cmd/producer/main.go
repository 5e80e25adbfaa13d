package main

import (
	"encoding/json"
	"flag"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/relabs-tech/mpu6500_telemetry/internal/config"
	"github.com/relabs-tech/mpu6500_telemetry/internal/sensors"
)

func main() {
	configPath := flag.String("config", "mpu6500_config.txt", "path to configuration file")
	flag.Parse()

	log.Println("starting MPU6500 MQTT producer (simulated device)")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Get()

	// 1) Connect to MQTT broker on the Pi
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDProducer + "-sim")

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("MQTT connect error: %v", token.Error())
	}
	defer client.Disconnect(250)

	imuManager := sensors.GetIMUManager()
	if err := imuManager.InitSim(); err != nil {
		log.Fatalf("failed to initialize simulated IMU: %v", err)
	}

	ticker := time.NewTicker(time.Duration(cfg.IMUSampleInterval) * time.Millisecond)
	defer ticker.Stop()

	for t := range ticker.C {
		reading, err := imuManager.Read()
		if err != nil {
			log.Printf("error from simulated IMU: %v", err)
			continue
		}

		payload, err := json.Marshal(reading)
		if err != nil {
			log.Printf("json marshal error: %v", err)
			continue
		}

		token := client.Publish(cfg.TopicIMU, 0, true, payload)
		token.Wait()

		log.Printf("%s published reading: ax=%.3f ay=%.3f az=%.3f", t.Format(time.RFC3339), reading.Ax, reading.Ay, reading.Az)
	}
}
