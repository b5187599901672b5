// Package mqtt bridges the beacon sighting topic onto the tracker. The
// broker publishes one JSON message per sighting; connection setup and retry
// policy are the client library's problem, not the core's.
package mqtt

import (
	"log"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"latchkey/internal/tracker"
)

const connectRetryInterval = 5 * time.Second

// Ingestor subscribes to the sighting topic and enqueues each decoded
// sighting on the tracker's coordination loop.
type Ingestor struct {
	client paho.Client
	topic  string
	trk    *tracker.Tracker
}

// New creates an Ingestor for the given broker URL (e.g. tcp://localhost:1883)
// and topic filter (e.g. ble/#).
func New(broker, clientID, topic string, trk *tracker.Tracker) *Ingestor {
	ing := &Ingestor{topic: topic, trk: trk}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(connectRetryInterval)

	// Resubscribe on every (re)connect; subscriptions don't survive a broker
	// session reset.
	opts.SetOnConnectHandler(func(c paho.Client) {
		if tok := c.Subscribe(ing.topic, 0, ing.onMessage); tok.Wait() && tok.Error() != nil {
			log.Printf("mqtt subscribe %s: %v", ing.topic, tok.Error())
		}
	})
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		log.Printf("mqtt connection lost: %v", err)
	})

	ing.client = paho.NewClient(opts)
	return ing
}

// Start begins connecting in the background. With connect-retry enabled the
// client keeps trying until the broker appears, so Start never blocks on an
// absent broker.
func (i *Ingestor) Start() {
	i.client.Connect()
}

// Stop disconnects from the broker.
func (i *Ingestor) Stop() {
	i.client.Disconnect(250)
}

func (i *Ingestor) onMessage(_ paho.Client, msg paho.Message) {
	s, err := ParseSighting(msg.Payload())
	if err != nil {
		log.Printf("mqtt: bad sighting on %s: %v", msg.Topic(), err)
		return
	}
	// Hand off to the coordination loop; the broker callback must not block
	// on store I/O.
	i.trk.EnqueueSighting(s)
}
