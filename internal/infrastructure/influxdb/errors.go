package influxdb

import "errors"

// Write failures are asynchronous and reach the SetOnError callback
// instead of these.
var (
	ErrDisabled         = errors.New("influxdb: disabled in configuration")
	ErrConnectionFailed = errors.New("influxdb: connection failed")
	ErrNotConnected     = errors.New("influxdb: not connected")
)
