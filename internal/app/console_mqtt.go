package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/mpu6500_telemetry/internal/config"
	"github.com/relabs-tech/mpu6500_telemetry/internal/imu"
)

func RunConsoleMQTT() error {
	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	// Subscribe to scaled readings
	imuToken := client.Subscribe(cfg.TopicIMU, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var r imu.Reading
		if err := json.Unmarshal(msg.Payload(), &r); err != nil {
			log.Printf("console: reading unmarshal error: %v", err)
			return
		}

		fmt.Printf(
			"[IMU ]  ax=%7.3fg ay=%7.3fg az=%7.3fg  gx=%8.2f gy=%8.2f gz=%8.2f °/s\n",
			r.Ax, r.Ay, r.Az, r.Gx, r.Gy, r.Gz,
		)
	})
	imuToken.Wait()
	if imuToken.Error() != nil {
		return imuToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicIMU)

	// Subscribe to raw counts
	if cfg.TopicIMURaw != "" {
		rawToken := client.Subscribe(cfg.TopicIMURaw, 0, func(_ mqtt.Client, msg mqtt.Message) {
			var s imu.Raw
			if err := json.Unmarshal(msg.Payload(), &s); err != nil {
				log.Printf("console: raw unmarshal error: %v", err)
				return
			}

			fmt.Printf(
				"[RAW ]  ax=%6d ay=%6d az=%6d  gx=%6d gy=%6d gz=%6d\n",
				s.Ax, s.Ay, s.Az, s.Gx, s.Gy, s.Gz,
			)
		})
		rawToken.Wait()
		if rawToken.Error() != nil {
			return rawToken.Error()
		}
		log.Printf("console: subscribed to %s", cfg.TopicIMURaw)
	}

	// Subscribe to temperature
	if cfg.TopicTemp != "" {
		tempToken := client.Subscribe(cfg.TopicTemp, 0, func(_ mqtt.Client, msg mqtt.Message) {
			var t struct {
				Raw   int16   `json:"raw"`
				TempC float64 `json:"temp_c"`
				Time  string  `json:"time"`
			}
			if err := json.Unmarshal(msg.Payload(), &t); err != nil {
				log.Printf("console: temp unmarshal error: %v", err)
				return
			}

			fmt.Printf("[TEMP]  %6.2f°C (raw=%d)\n", t.TempC, t.Raw)
		})
		tempToken.Wait()
		if tempToken.Error() != nil {
			return tempToken.Error()
		}
		log.Printf("console: subscribed to %s", cfg.TopicTemp)
	}

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
