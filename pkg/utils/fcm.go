package utils

import (
	"context"
	"fmt"

	"firebase.google.com/go/messaging"
	"github.com/rs/zerolog"
)

// Notifier tells the medical store that a new prescription was written.
type Notifier interface {
	PrescriptionRecorded(ctx context.Context, n PrescriptionNotice) error
}

// PrescriptionNotice is the payload pushed to pharmacy devices.
type PrescriptionNotice struct {
	PatientID    string
	PatientName  string
	Prescription string
	Existing     bool
}

// messageSender is the part of *messaging.Client the notifier uses.
type messageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMNotifier mengirim notifikasi ke topic FCM apotek
type FCMNotifier struct {
	client messageSender
	topic  string
	logger zerolog.Logger
}

func NewFCMNotifier(client *messaging.Client, topic string, logger zerolog.Logger) *FCMNotifier {
	return newFCMNotifier(client, topic, logger)
}

func newFCMNotifier(client messageSender, topic string, logger zerolog.Logger) *FCMNotifier {
	return &FCMNotifier{client: client, topic: topic, logger: logger.With().Str("component", "fcm").Logger()}
}

func (n *FCMNotifier) PrescriptionRecorded(ctx context.Context, notice PrescriptionNotice) error {
	title := "Resep baru"
	if notice.Existing {
		title = "Resep kunjungan ulang"
	}

	message := &messaging.Message{
		Topic: n.topic,
		Notification: &messaging.Notification{
			Title: title,
			Body:  fmt.Sprintf("%s: %s", notice.PatientName, notice.Prescription),
		},
		Data: map[string]string{
			"patient_id": notice.PatientID,
		},
	}

	id, err := n.client.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("send fcm message: %w", err)
	}

	n.logger.Debug().Str("message_id", id).Str("topic", n.topic).Msg("notifikasi terkirim")
	return nil
}

// NopNotifier dipakai kalau FCM tidak dikonfigurasi
type NopNotifier struct{}

func (NopNotifier) PrescriptionRecorded(context.Context, PrescriptionNotice) error { return nil }
