// Package mqtt provides MQTT client connectivity for the window exporter.
//
// This package manages:
//   - Building the broker URL from protocol, host, port and path
//   - Connection with paho's auto-reconnect and connect retry
//   - Topic subscriptions with panic-safe handlers
//   - Connection state callbacks for re-subscribing after reconnect
//
// # Transports
//
// The protocol selects the paho transport:
//
//	mqtt, tcp         plain TCP
//	mqtts, ssl, tls   TCP with TLS 1.2+
//	ws, wss           websockets; the configured path is used here
//
// # Usage
//
//	client, err := mqtt.New(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	client.SetOnConnect(func() {
//	    _ = client.Subscribe("zigbee2mqtt/ikkuna/olohuone", 0, handle)
//	})
//	if err := client.Connect(ctx); err != nil {
//	    return err
//	}
//	defer client.Close()
package mqtt
