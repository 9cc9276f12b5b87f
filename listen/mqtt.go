package listen

import (
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"vfdd/inbox"
)

// MQTTSource subscribes to a broker topic and treats each message
// payload exactly like a UDP datagram: sanitize, then latest-wins into
// the inbox. Reconnection is handled by the MQTT library.
type MQTTSource struct {
	broker string
	port   int
	topic  string
	client mqtt.Client
	in     *ingestor
}

func NewMQTT(broker string, port int, topic string, store *inbox.Store, onIngest, onReject func(origin string)) *MQTTSource {
	return &MQTTSource{
		broker: broker,
		port:   port,
		topic:  topic,
		in:     newIngestor(store, onIngest, onReject),
	}
}

// Connect establishes the broker connection and subscribes. The first
// dial is synchronous so a misconfigured broker is reported to the
// caller; later drops auto-reconnect.
func (m *MQTTSource) Connect() error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", m.broker, m.port))
	opts.SetClientID(fmt.Sprintf("vfdd-%d", time.Now().Unix()))
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetConnectTimeout(10 * time.Second)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(time.Minute)
	opts.SetOnConnectHandler(m.onConnect)
	opts.SetConnectionLostHandler(m.onConnectionLost)

	m.client = mqtt.NewClient(opts)
	token := m.client.Connect()
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt: connect to %s:%d: %w", m.broker, m.port, token.Error())
	}
	return nil
}

func (m *MQTTSource) onConnect(client mqtt.Client) {
	token := client.Subscribe(m.topic, 0, m.messageHandler)
	if token.Wait() && token.Error() != nil {
		log.Printf("mqtt: subscribe %s failed: %v", m.topic, token.Error())
		return
	}
	log.Printf("mqtt: subscribed to %s", m.topic)
}

func (m *MQTTSource) onConnectionLost(_ mqtt.Client, err error) {
	log.Printf("mqtt: connection lost: %v (reconnecting)", err)
}

func (m *MQTTSource) messageHandler(_ mqtt.Client, msg mqtt.Message) {
	m.in.ingest(msg.Payload(), OriginMQTT, msg.Topic())
}

// IsConnected reports the broker connection state.
func (m *MQTTSource) IsConnected() bool {
	return m.client != nil && m.client.IsConnected()
}

// Stop unsubscribes and disconnects.
func (m *MQTTSource) Stop() {
	if m.client != nil && m.client.IsConnected() {
		m.client.Unsubscribe(m.topic)
		m.client.Disconnect(250)
	}
}
