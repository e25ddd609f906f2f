// Package sensor subscribes to contact-sensor topics and mirrors each
// sensor's latest state into the gauge store.
//
// A message such as
//
//	zigbee2mqtt/ikkuna/olohuone  {"contact": true, "battery": 97}
//
// sets window_status{sensor="zigbee2mqtt/ikkuna/olohuone"} to 1. Any value of
// contact other than boolean true (false, missing, "true", 1) sets it to 0.
//
// Subscriptions are issued on every (re)connect. A failed subscription is
// logged and left alone; the other topics are still attempted. Payloads that
// are not valid JSON and messages on topics outside the registry are logged
// and dropped. Valid JSON without a contact field, including a bare number,
// string or array, sets the gauge to 0.
package sensor
