package events

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/sirupsen/logrus"
)

const (
	OrderCreatedTopic         = "order.created"
	OrderClosedTopic          = "order.closed"
	AppointmentScheduledTopic = "appointment.scheduled"
	StyleSubmittedTopic       = "style.submitted"
)

type OrderEvent struct {
	OrderID      string    `json:"order_id"`
	CustomerID   string    `json:"customer_id"`
	CustomerName string    `json:"customer"`
	Status       string    `json:"status"`
	EventTime    time.Time `json:"event_time"`
}

// AppointmentEvent announces a newly scheduled fitting or collection date.
type AppointmentEvent struct {
	OrderID   string    `json:"order_id"`
	Kind      string    `json:"kind"`
	Date      time.Time `json:"date"`
	EventTime time.Time `json:"event_time"`
}

type StyleEvent struct {
	OrderID   string    `json:"order_id"`
	TailorID  string    `json:"tailor_id"`
	ImageURL  string    `json:"image_url"`
	EventTime time.Time `json:"event_time"`
}

type KafkaProducer struct {
	producer sarama.SyncProducer
	logger   *logrus.Logger
}

func NewKafkaProducer(brokers string, logger *logrus.Logger) (*KafkaProducer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Version = sarama.V2_6_0_0

	producer, err := sarama.NewSyncProducer(strings.Split(brokers, ","), config)
	if err != nil {
		return nil, err
	}

	return &KafkaProducer{
		producer: producer,
		logger:   logger,
	}, nil
}

func (p *KafkaProducer) PublishOrderCreated(event OrderEvent) error {
	event.EventTime = time.Now()
	return p.publish(OrderCreatedTopic, event.OrderID, event)
}

func (p *KafkaProducer) PublishOrderClosed(event OrderEvent) error {
	event.EventTime = time.Now()
	return p.publish(OrderClosedTopic, event.OrderID, event)
}

func (p *KafkaProducer) PublishAppointmentScheduled(event AppointmentEvent) error {
	event.EventTime = time.Now()
	return p.publish(AppointmentScheduledTopic, event.OrderID, event)
}

func (p *KafkaProducer) PublishStyleSubmitted(event StyleEvent) error {
	event.EventTime = time.Now()
	return p.publish(StyleSubmittedTopic, event.OrderID, event)
}

func (p *KafkaProducer) publish(topic, key string, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(data),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.logger.WithError(err).Error("Failed to send message to Kafka")
		return err
	}

	p.logger.WithFields(logrus.Fields{
		"topic":     topic,
		"partition": partition,
		"offset":    offset,
		"order_id":  key,
	}).Info("Event published to Kafka")

	return nil
}

func (p *KafkaProducer) Close() error {
	return p.producer.Close()
}
