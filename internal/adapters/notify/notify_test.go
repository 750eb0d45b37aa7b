package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/convention/internal/domain/model"
	"github.com/okian/convention/pkg/logger"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestKafkaNotifier(t *testing.T) {
	Convey("Given a kafka notifier over a fake writer", t, func() {
		w := &fakeWriter{}
		k := newKafkaNotifier(w, "convention.notifications")
		n := model.Notification{
			ID:        "n-1",
			Kind:      model.NotifyRegistrationVerified,
			Subject:   "reg-1",
			Email:     "ada@example.com",
			Data:      map[string]string{"uid": "004217"},
			CreatedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		}

		Convey("When a notification is sent", func() {
			So(k.Notify(context.Background(), n), ShouldBeNil)

			Convey("Then one JSON message keyed by subject is written", func() {
				So(len(w.msgs), ShouldEqual, 1)
				So(string(w.msgs[0].Key), ShouldEqual, "reg-1")
				So(string(w.msgs[0].Headers[0].Value), ShouldEqual, model.NotifyRegistrationVerified)

				var decoded model.Notification
				So(json.Unmarshal(w.msgs[0].Value, &decoded), ShouldBeNil)
				So(decoded.Data["uid"], ShouldEqual, "004217")
			})
		})

		Convey("When the broker rejects the write", func() {
			w.err = errors.New("leader not available")
			err := k.Notify(context.Background(), n)

			Convey("Then the error names the topic", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "convention.notifications")
			})
		})

		Convey("When closed", func() {
			So(k.Close(), ShouldBeNil)
			So(w.closed, ShouldBeTrue)
		})
	})
}

func TestLogNotifier(t *testing.T) {
	Convey("Given a log notifier", t, func() {
		var buf bytes.Buffer
		So(logger.InitWith(&buf, logger.FormatJSON), ShouldBeNil)
		n := NewLogNotifier(nil)

		Convey("When a notification is logged", func() {
			err := n.Notify(context.Background(), model.Notification{
				ID: "n-2", Kind: model.NotifyPitchSubmitted, Subject: "pitch-1",
				Data: map[string]string{"uid": "004217"},
			})

			Convey("Then the record carries kind and data", func() {
				So(err, ShouldBeNil)
				So(buf.String(), ShouldContainSubstring, `"kind":"pitch.submitted"`)
				So(buf.String(), ShouldContainSubstring, `"uid":"004217"`)
				So(n.Close(), ShouldBeNil)
			})
		})
	})
}
