package amqp

import "time"

type ReadingMessage struct {
	Sensor     string    `json:"sensor"`
	ContentTag string    `json:"contentTag"`
	Value      int8      `json:"value"`
	Unit       string    `json:"unit"`
	Address    string    `json:"address"`
	Timestamp  time.Time `json:"timestamp"`
}
