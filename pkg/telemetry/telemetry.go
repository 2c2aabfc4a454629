// Package telemetry publishes analysis events to an MQTT broker.
// Publishing is best-effort: a broker outage never delays or aborts a
// measurement.
package telemetry

import (
	"encoding/json"
	"time"

	"github.com/cenkalti/backoff/v4"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/agrolab/soilanalyzer/pkg/config"
)

// AnalysisEvent is published after every recommendation cycle.
type AnalysisEvent struct {
	Crop       string    `json:"crop"`
	Moisture   int       `json:"moisture"`
	N          float32   `json:"n"`
	P          float32   `json:"p"`
	K          float32   `json:"k"`
	Water      float32   `json:"water"`
	Fertilizer float32   `json:"fertilizer"`
	Kind       string    `json:"kind"`
	Timestamp  time.Time `json:"timestamp"`
}

// PredictionEvent is published after every crop prediction cycle.
type PredictionEvent struct {
	Crop      string    `json:"crop"`
	Moisture  int       `json:"moisture"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher emits measurement events.
type Publisher interface {
	PublishAnalysis(ev AnalysisEvent)
	PublishPrediction(ev PredictionEvent)
	Close()
}

var _ Publisher = (*MQTT)(nil)
var _ Publisher = Noop{}

// MQTT publishes events to a broker. Connection is established in the
// background with exponential backoff so startup never blocks on the
// network.
type MQTT struct {
	client mqtt.Client
	topic  string
	logger *zap.SugaredLogger
}

// NewMQTT creates a publisher for the configured broker and starts
// connecting in the background.
func NewMQTT(cfg config.TelemetryConfig, logger *zap.SugaredLogger) *MQTT {
	logger = logger.Named("telemetry")

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(false)

	p := &MQTT{
		client: mqtt.NewClient(opts),
		topic:  cfg.Topic,
		logger: logger,
	}

	go p.connect(cfg.Broker)

	return p
}

func (p *MQTT) connect(broker string) {
	err := backoff.Retry(func() error {
		token := p.client.Connect()
		token.Wait()
		return token.Error()
	}, backoff.NewExponentialBackOff())

	if err != nil {
		p.logger.Warnw("Giving up on broker connection", "broker", broker, "error", err)
		return
	}
	p.logger.Infow("Connected to broker", "broker", broker)
}

// PublishAnalysis publishes a recommendation event.
func (p *MQTT) PublishAnalysis(ev AnalysisEvent) {
	p.publish("analysis", ev)
}

// PublishPrediction publishes a crop prediction event.
func (p *MQTT) PublishPrediction(ev PredictionEvent) {
	p.publish("prediction", ev)
}

func (p *MQTT) publish(kind string, ev any) {
	if !p.client.IsConnected() {
		p.logger.Debugw("Not connected, dropping event", "kind", kind)
		return
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		p.logger.Warnw("Failed to encode event", "kind", kind, "error", err)
		return
	}

	token := p.client.Publish(p.topic+"/"+kind, 0, false, payload)
	// Fire and forget; surface failures in the log only.
	go func() {
		token.Wait()
		if err := token.Error(); err != nil {
			p.logger.Warnw("Failed to publish event", "kind", kind, "error", err)
		}
	}()
}

// Close disconnects from the broker.
func (p *MQTT) Close() {
	p.client.Disconnect(250)
}

// Noop is the publisher used when telemetry is disabled.
type Noop struct{}

func (Noop) PublishAnalysis(AnalysisEvent)     {}
func (Noop) PublishPrediction(PredictionEvent) {}
func (Noop) Close()                            {}
