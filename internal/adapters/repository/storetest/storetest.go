// Package storetest holds the behaviour every repository.Store must share.
// Backends call Run from their own tests.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/okian/convention/internal/adapters/repository"
	"github.com/okian/convention/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// Opener returns a fresh, empty store.
type Opener func(t *testing.T) repository.Store

// NewRegistration builds a pending registration with a unique key.
func NewRegistration(name, institution string, createdAt time.Time) model.Registration {
	return model.Registration{
		ID:            uuid.NewString(),
		CreatedAt:     createdAt.UTC().Truncate(time.Microsecond),
		FullName:      name,
		Gender:        model.GenderFemale,
		Email:         "delegate@example.com",
		Phone:         "08030000000",
		Department:    "Computer Science",
		Institution:   institution,
		Zone:          model.ZoneEnugu,
		SkillChoice:   model.SkillGraphicDesign,
		TShirtSize:    model.SizeM,
		TotalAmount:   13_000,
		PaymentStatus: model.PaymentPending,
		ReceiptURL:    "receipts/" + uuid.NewString() + ".pdf",
		TransactionID: model.ManualUploadTransaction,
		DuplicateKey:  name + "|" + institution,
	}
}

// Run exercises open against the store contract.
func Run(t *testing.T, open Opener) { //nolint:funlen // one scenario per contract clause
	ctx := context.Background()
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	Convey("Given an empty store", t, func() {
		s := open(t)
		Reset(func() { _ = s.Close() })

		Convey("When a registration is inserted", func() {
			r := NewRegistration("Ada Obi", "UNN", base)
			So(s.InsertRegistration(ctx, r), ShouldBeNil)

			Convey("Then it can be read by id and duplicate key", func() {
				got, err := s.RegistrationByID(ctx, r.ID)
				So(err, ShouldBeNil)
				So(got.FullName, ShouldEqual, "Ada Obi")
				So(got.PaymentStatus, ShouldEqual, model.PaymentPending)
				So(got.TransactionID, ShouldEqual, model.ManualUploadTransaction)
				So(got.TotalAmount, ShouldEqual, 13_000)
				So(got.CreatedAt.Equal(r.CreatedAt), ShouldBeTrue)

				byKey, err := s.RegistrationByDuplicateKey(ctx, r.DuplicateKey)
				So(err, ShouldBeNil)
				So(byKey.ID, ShouldEqual, r.ID)
			})

			Convey("Then a second row with the same duplicate key is rejected", func() {
				dup := NewRegistration("Ada Obi", "UNN", base.Add(time.Minute))
				err := s.InsertRegistration(ctx, dup)
				So(errors.Is(err, repository.ErrDuplicate), ShouldBeTrue)
			})

			Convey("Then pending rows are not found by the placeholder UID", func() {
				_, err := s.RegistrationByUID(ctx, model.ManualUploadTransaction)
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})

			Convey("Then confirming the payment issues a UID", func() {
				updated, err := s.SetPayment(ctx, r.ID, model.PaymentVerified, "004217")
				So(err, ShouldBeNil)
				So(updated.PaymentStatus, ShouldEqual, model.PaymentVerified)

				byUID, err := s.RegistrationByUID(ctx, "004217")
				So(err, ShouldBeNil)
				So(byUID.ID, ShouldEqual, r.ID)
			})
		})

		Convey("When two registrations share a transaction id", func() {
			a := NewRegistration("Ada Obi", "UNN", base)
			b := NewRegistration("Chidi Eze", "UNIZIK", base)
			So(s.InsertRegistration(ctx, a), ShouldBeNil)
			So(s.InsertRegistration(ctx, b), ShouldBeNil)
			_, err := s.SetPayment(ctx, a.ID, model.PaymentVerified, "123456")
			So(err, ShouldBeNil)

			_, err = s.SetPayment(ctx, b.ID, model.PaymentVerified, "123456")

			Convey("Then the second update is a duplicate", func() {
				So(errors.Is(err, repository.ErrDuplicate), ShouldBeTrue)
				still, _ := s.RegistrationByID(ctx, b.ID)
				So(still.PaymentStatus, ShouldEqual, model.PaymentPending)
			})
		})

		Convey("When issuing a UID", func() {
			r := NewRegistration("Ada Obi", "UNN", base)
			other := NewRegistration("Chidi Eze", "UNIZIK", base)
			So(s.InsertRegistration(ctx, r), ShouldBeNil)
			So(s.InsertRegistration(ctx, other), ShouldBeNil)

			first, issued, err := s.IssueUID(ctx, r.ID, "100001")
			So(err, ShouldBeNil)
			So(issued, ShouldBeTrue)
			So(first.PaymentStatus, ShouldEqual, model.PaymentVerified)
			So(first.TransactionID, ShouldEqual, "100001")

			Convey("Then a second issue keeps the first UID", func() {
				again, issued, err := s.IssueUID(ctx, r.ID, "100002")
				So(err, ShouldBeNil)
				So(issued, ShouldBeFalse)
				So(again.TransactionID, ShouldEqual, "100001")

				_, err = s.RegistrationByUID(ctx, "100002")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})

			Convey("Then the UID cannot be issued to another registration", func() {
				_, _, err := s.IssueUID(ctx, other.ID, "100001")
				So(errors.Is(err, repository.ErrDuplicate), ShouldBeTrue)
			})

			Convey("Then a rejected registration can be issued a new UID", func() {
				_, err := s.SetPayment(ctx, r.ID, model.PaymentRejected, model.ManualUploadTransaction)
				So(err, ShouldBeNil)
				reissued, issued, err := s.IssueUID(ctx, r.ID, "100003")
				So(err, ShouldBeNil)
				So(issued, ShouldBeTrue)
				So(reissued.TransactionID, ShouldEqual, "100003")
			})

			Convey("Then an unknown registration is not found", func() {
				_, _, err := s.IssueUID(ctx, uuid.NewString(), "100004")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When the id is not a UUID", func() {
			_, err := s.RegistrationByID(ctx, "abc")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)

			_, err = s.SetPayment(ctx, "abc", model.PaymentRejected, model.ManualUploadTransaction)
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)

			_, _, err = s.IssueUID(ctx, "abc", "100005")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("When updating an unknown registration", func() {
			_, err := s.SetPayment(ctx, uuid.NewString(), model.PaymentRejected, model.ManualUploadTransaction)

			Convey("Then it is not found", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When listing registrations", func() {
			for i := 0; i < 3; i++ {
				r := NewRegistration(fmt.Sprintf("Delegate %d", i), "UNN", base.Add(time.Duration(i)*time.Hour))
				So(s.InsertRegistration(ctx, r), ShouldBeNil)
				if i == 1 {
					_, err := s.SetPayment(ctx, r.ID, model.PaymentRejected, model.ManualUploadTransaction)
					So(err, ShouldBeNil)
				}
			}

			Convey("Then rows come newest first and filter by status", func() {
				all, err := s.ListRegistrations(ctx, "")
				So(err, ShouldBeNil)
				So(len(all), ShouldEqual, 3)
				So(all[0].FullName, ShouldEqual, "Delegate 2")
				So(all[2].FullName, ShouldEqual, "Delegate 0")

				rejected, err := s.ListRegistrations(ctx, model.PaymentRejected)
				So(err, ShouldBeNil)
				So(len(rejected), ShouldEqual, 1)
				So(rejected[0].FullName, ShouldEqual, "Delegate 1")

				n, err := s.CountRegistrations(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 3)
			})
		})

		Convey("When a pitch is inserted", func() {
			p := model.Pitch{
				ID:          uuid.NewString(),
				CreatedAt:   base,
				UID:         "004217",
				VideoURL:    "pitch_vault/004217/video.mp4",
				DocumentURL: "pitch_vault/004217/document.pdf",
			}
			So(s.InsertPitch(ctx, p), ShouldBeNil)

			Convey("Then it is found by UID and a second pitch is a duplicate", func() {
				got, err := s.PitchByUID(ctx, "004217")
				So(err, ShouldBeNil)
				So(got.VideoURL, ShouldEqual, p.VideoURL)

				again := p
				again.ID = uuid.NewString()
				So(errors.Is(s.InsertPitch(ctx, again), repository.ErrDuplicate), ShouldBeTrue)

				list, err := s.ListPitches(ctx)
				So(err, ShouldBeNil)
				So(len(list), ShouldEqual, 1)
				n, err := s.CountPitches(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 1)
			})

			Convey("Then an unknown UID has no pitch", func() {
				_, err := s.PitchByUID(ctx, "999999")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When the visitor counter is incremented concurrently", func() {
			start, err := s.Counter(ctx, repository.PageViewsCounter)
			So(err, ShouldBeNil)

			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, _ = s.IncrementCounter(ctx, repository.PageViewsCounter)
				}()
			}
			wg.Wait()

			Convey("Then no increment is lost", func() {
				n, err := s.Counter(ctx, repository.PageViewsCounter)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, start+20)
			})
		})

		Convey("When reading a counter that was never written", func() {
			n, err := s.Counter(ctx, "downloads")

			Convey("Then it is zero", func() {
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 0)
			})
		})
	})
}
