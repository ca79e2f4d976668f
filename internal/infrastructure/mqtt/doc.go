// Package mqtt provides MQTT broker connectivity for influx-relay.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Topic subscriptions with wildcard support
//   - Automatic re-subscription after reconnect
//   - Connection health monitoring
//
// The relay is a pure consumer: it subscribes to topics carrying metric
// samples and never publishes. Message handlers run in goroutines spawned
// by the paho library and are wrapped with panic recovery so a bad
// payload cannot take the relay down.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.Subscribe("metrics/#", 1,
//	    func(topic string, payload []byte) error {
//	        return relay.Handle(topic, payload)
//	    })
package mqtt
