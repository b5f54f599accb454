// Package mqtt connects the inventory service to an MQTT broker.
//
// The service publishes every registry outcome and low-battery alerts, and
// accepts power commands for individual devices. All topics live under a
// configurable prefix (see Topics).
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Publishing with QoS guarantees
//   - Subscriptions restored after reconnect
//   - A retained status topic with a Last Will for crash detection
//
// # Security Considerations
//
//   - Enable TLS (mqtt.broker.tls) outside a trusted network
//   - Anyone allowed to publish to {prefix}/command/# can power devices on
//     and off; restrict it with broker ACLs
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	topics := client.Topics()
//	err = client.PublishJSON(topics.LowBattery("SW-1"), payload)
package mqtt
