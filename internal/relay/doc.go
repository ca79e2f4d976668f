// Package relay bridges MQTT metric samples into InfluxDB.
//
// The relay subscribes to configured MQTT topics, decodes each JSON
// sample into a data point and hands it to the asynchronous write path,
// where pool workers batch and deliver it. Delivery is fire-and-forget:
// a sample accepted by a worker queue may still fail at the server, and
// those failures surface only through the pool error callback.
//
// Samples are JSON objects:
//
//	{
//	  "database":    "metrics",            // optional, defaults to configured database
//	  "measurement": "cpu",                // required
//	  "tags":        {"host": "web-01"},   // optional
//	  "fields":      {"usage": 42.5},      // required, at least one field
//	  "timestamp":   1700000000000000000   // optional, nanoseconds since epoch
//	}
//
// Malformed samples are counted and dropped; they never stall the
// subscription.
package relay
