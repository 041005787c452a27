package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
)

// SensorReading is the payload published by pod-mounted cleanliness sensors.
type SensorReading struct {
	PodID       uint `json:"pod_id"`
	Cleanliness *int `json:"cleanliness"`
}

// SensorBridge subscribes to the sensor topic and feeds readings through the
// mutation engine, so sensor-driven updates share the store and notification
// path with everything else.
type SensorBridge struct {
	engine *MutationEngine
	client mqtt.Client
	topic  string
}

func NewSensorBridge(brokerURL, topic string, engine *MutationEngine) *SensorBridge {
	b := &SensorBridge{engine: engine, topic: topic}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID("podtracker-" + time.Now().Format("20060102150405"))
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetDefaultPublishHandler(func(client mqtt.Client, message mqtt.Message) {
		b.handleMessage(message.Payload())
	})
	opts.OnConnect = func(client mqtt.Client) {
		token := client.Subscribe(b.topic, 0, nil)
		token.Wait()
		if token.Error() != nil {
			log.WithError(token.Error()).Error("mqtt subscribe failed")
			return
		}
		log.WithField("topic", b.topic).Info("sensor bridge subscribed")
	}
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		log.WithError(err).Warn("mqtt connection lost")
	}

	b.client = mqtt.NewClient(opts)
	return b
}

func (b *SensorBridge) Start() error {
	token := b.client.Connect()
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return nil
}

func (b *SensorBridge) Stop() {
	b.client.Disconnect(250)
}

func (b *SensorBridge) handleMessage(payload []byte) {
	sensorMessages.Inc()

	var reading SensorReading
	if err := json.Unmarshal(payload, &reading); err != nil {
		sensorRejected.Inc()
		log.WithError(err).Warn("invalid sensor payload")
		return
	}
	if reading.PodID == 0 || reading.Cleanliness == nil {
		sensorRejected.Inc()
		log.Warn("sensor payload missing pod_id or cleanliness")
		return
	}
	// Sensors are not trusted the way operators are: out-of-range readings
	// are rejected rather than written unclamped.
	if *reading.Cleanliness < 0 || *reading.Cleanliness > 100 {
		sensorRejected.Inc()
		log.WithField("cleanliness", *reading.Cleanliness).Warn("sensor reading out of range")
		return
	}

	if _, err := b.engine.SetCleanliness(context.Background(), reading.PodID, *reading.Cleanliness); err != nil {
		log.WithError(err).WithField("pod_id", reading.PodID).Warn("sensor update failed")
	}
}
