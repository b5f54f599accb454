package mqtt

import "errors"

// Errors returned by Client. Failures from paho are wrapped in the
// matching sentinel, so callers only need errors.Is.
var (
	ErrNotConnected     = errors.New("mqtt: not connected")
	ErrConnectionFailed = errors.New("mqtt: connection failed")

	// ErrInvalidTopic covers empty topics and wildcards in a publish topic.
	ErrInvalidTopic = errors.New("mqtt: invalid topic")
	ErrInvalidQoS   = errors.New("mqtt: qos must be 0, 1 or 2")

	ErrPublishFailed   = errors.New("mqtt: publish failed")
	ErrSubscribeFailed = errors.New("mqtt: subscribe failed")
)
