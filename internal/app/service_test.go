package service_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	service "github.com/okian/convention/internal/app"
	"github.com/okian/convention/internal/adapters/repository"
	"github.com/okian/convention/internal/adapters/storage"
	"github.com/okian/convention/internal/domain/model"
	"github.com/okian/convention/internal/domain/validation"
	"github.com/okian/convention/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

var fixedNow = time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu  sync.Mutex
	got []model.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, n)
	return nil
}

func (r *recordingNotifier) kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.got))
	for i, n := range r.got {
		out[i] = n.Kind
	}
	return out
}

// flakyBlobs fails uploads whose key contains failOn.
type flakyBlobs struct {
	storage.Storage
	failOn string
}

func (f *flakyBlobs) Put(ctx context.Context, bucket, key string, body io.Reader, opts storage.PutOptions) (storage.Object, error) {
	if f.failOn != "" && strings.Contains(key, f.failOn) {
		return storage.Object{}, errors.New("bucket unavailable")
	}
	return f.Storage.Put(ctx, bucket, key, body, opts)
}

// brokenStore fails the named operations.
type brokenStore struct {
	*repository.MemStore
	insert  error
	lookup  error
	counter error
	byID    error
	// delay slows RegistrationByID to widen races between callers.
	delay time.Duration
}

func (b *brokenStore) RegistrationByID(ctx context.Context, id string) (model.Registration, error) {
	if b.byID != nil {
		return model.Registration{}, b.byID
	}
	time.Sleep(b.delay)
	return b.MemStore.RegistrationByID(ctx, id)
}

func (b *brokenStore) InsertRegistration(ctx context.Context, r model.Registration) error {
	if b.insert != nil {
		return b.insert
	}
	return b.MemStore.InsertRegistration(ctx, r)
}

func (b *brokenStore) RegistrationByDuplicateKey(ctx context.Context, key string) (model.Registration, error) {
	if b.lookup != nil {
		return model.Registration{}, b.lookup
	}
	return b.MemStore.RegistrationByDuplicateKey(ctx, key)
}

func (b *brokenStore) IncrementCounter(ctx context.Context, name string) (int64, error) {
	if b.counter != nil {
		return 0, b.counter
	}
	return b.MemStore.IncrementCounter(ctx, name)
}

func form(name, institution string) model.RegistrationForm {
	return model.RegistrationForm{
		FullName:    name,
		Gender:      "Female",
		Email:       "ada@example.com",
		Phone:       "08030000000",
		Department:  "Computer Science",
		Institution: institution,
		Zone:        "Imo",
		Skill:       string(model.SkillPerfumeMaking),
		TShirtSize:  "M",
	}
}

func receipt() *model.Upload {
	return &model.Upload{Filename: "receipt.png", ContentType: "image/png", Size: 4, Body: strings.NewReader("png!")}
}

func pitchFiles(uid string) model.PitchSubmission {
	return model.PitchSubmission{
		UID:      uid,
		Agreed:   true,
		Video:    &model.Upload{Filename: "pitch.mp4", ContentType: "video/mp4", Size: 5, Body: strings.NewReader("video")},
		Document: &model.Upload{Filename: "deck.pdf", ContentType: "application/pdf", Size: 3, Body: strings.NewReader("pdf")},
	}
}

// uids returns a source that yields each value in turn.
func uids(values ...string) func() (string, error) {
	var mu sync.Mutex
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		if len(values) == 0 {
			return "", errors.New("no more uids")
		}
		v := values[0]
		if len(values) > 1 {
			values = values[1:]
		}
		return v, nil
	}
}

type fixture struct {
	svc      *service.Service
	store    *repository.MemStore
	blobs    *storage.Memory
	notifier *recordingNotifier
}

func newFixture(opts ...service.Option) fixture {
	f := fixture{
		store:    repository.NewMemStore(repository.WithClock(func() time.Time { return fixedNow })),
		blobs:    storage.NewMemory(),
		notifier: &recordingNotifier{},
	}
	base := []service.Option{
		service.WithNotifier(f.notifier),
		service.WithClock(func() time.Time { return fixedNow }),
		service.WithPublicBaseURL("https://naas.test"),
		service.WithUIDSource(uids("004217")),
		service.WithWorkerCount(1),
	}
	f.svc = service.New(f.store, f.blobs, append(base, opts...)...)
	return f
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		f := newFixture()
		ctx := context.Background()

		Convey("When it has not started", func() {
			st := f.svc.GetStats(ctx)
			So(st.Started, ShouldBeFalse)
			So(st.Workers, ShouldEqual, 0)
			So(f.svc.Stop(ctx), ShouldBeNil)
		})

		Convey("When started twice and stopped", func() {
			So(f.svc.Start(ctx), ShouldBeNil)
			So(f.svc.Start(ctx), ShouldBeNil)
			st := f.svc.GetStats(ctx)
			So(st.Started, ShouldBeTrue)
			So(st.Workers, ShouldEqual, 1)
			So(st.QueueCapacity, ShouldEqual, 1000)
			So(f.svc.Stop(ctx), ShouldBeNil)
			So(f.svc.GetStats(ctx).Started, ShouldBeFalse)
		})

		Convey("When the start context is cancelled before work arrives", func() {
			startCtx, cancel := context.WithCancel(ctx)
			So(f.svc.Start(startCtx), ShouldBeNil)
			cancel()

			_, err := f.svc.Register(ctx, form("Ada Obi", "UNN"), receipt())
			So(err, ShouldBeNil)

			stopCtx, stopCancel := context.WithTimeout(ctx, 2*time.Second)
			defer stopCancel()
			So(f.svc.Stop(stopCtx), ShouldBeNil)

			Convey("Then Stop still delivers the queued notification", func() {
				So(f.notifier.kinds(), ShouldResemble, []string{model.NotifyRegistrationSubmitted})
				st := f.svc.GetStats(ctx)
				So(st.QueueLength, ShouldEqual, 0)
			})
		})
	})
}

func TestService_Register(t *testing.T) {
	Convey("Given a started service", t, func() {
		f := newFixture(service.WithRegistrationFee(15_000))
		ctx := context.Background()
		So(f.svc.Start(ctx), ShouldBeNil)

		Convey("When a complete form is submitted", func() {
			reg, err := f.svc.Register(ctx, form("  Ada Obi ", "UNN"), receipt())
			So(err, ShouldBeNil)
			So(f.svc.Stop(ctx), ShouldBeNil)

			Convey("Then a pending registration with a stored receipt exists", func() {
				So(reg.ID, ShouldNotBeEmpty)
				So(reg.FullName, ShouldEqual, "Ada Obi")
				So(reg.PaymentStatus, ShouldEqual, model.PaymentPending)
				So(reg.TransactionID, ShouldEqual, model.ManualUploadTransaction)
				So(reg.TotalAmount, ShouldEqual, 15_000)
				So(reg.CreatedAt, ShouldEqual, fixedNow)
				So(reg.ReceiptURL, ShouldEqual, "https://naas.test/api/admin/files/receipts/"+reg.ID+".png")

				rc, obj, err := f.blobs.Open(ctx, storage.BucketReceipts, reg.ID+".png")
				So(err, ShouldBeNil)
				defer rc.Close()
				So(obj.Size, ShouldEqual, 4)

				stored, err := f.store.RegistrationByID(ctx, reg.ID)
				So(err, ShouldBeNil)
				So(stored.DuplicateKey, ShouldEqual, validation.DuplicateKey("Ada Obi", "UNN"))
			})

			Convey("And a submitted notification is delivered", func() {
				So(f.notifier.kinds(), ShouldResemble, []string{model.NotifyRegistrationSubmitted})
			})
		})

		Convey("When the same person registers again with different spacing and case", func() {
			_, err := f.svc.Register(ctx, form("Ada Obi", "UNN"), receipt())
			So(err, ShouldBeNil)
			_, err = f.svc.Register(ctx, form("ADA   obi", " unn"), receipt())

			Convey("Then it is rejected as a duplicate", func() {
				So(errors.Is(err, service.ErrDuplicateRegistration), ShouldBeTrue)
				So(service.Message(err), ShouldEqual, service.MsgDuplicateRegistration)
				So(f.blobs.Len(), ShouldEqual, 1)
			})
		})

		Convey("When required fields are missing", func() {
			_, err := f.svc.Register(ctx, form("", "UNN"), nil)

			Convey("Then nothing is uploaded", func() {
				So(errors.Is(err, validation.ErrInvalid), ShouldBeTrue)
				So(service.Message(err), ShouldEqual, validation.MsgRegistrationIncomplete)
				So(f.blobs.Len(), ShouldEqual, 0)
			})
		})

		Reset(func() { _ = f.svc.Stop(ctx) })
	})

	Convey("Given failing backends", t, func() {
		ctx := context.Background()

		Convey("When the receipt upload fails", func() {
			store := repository.NewMemStore()
			svc := service.New(store, &flakyBlobs{Storage: storage.NewMemory(), failOn: ".png"})
			_, err := svc.Register(ctx, form("Ada Obi", "UNN"), receipt())

			Convey("Then the step prefixed message is returned and nothing is stored", func() {
				So(errors.Is(err, service.ErrUpload), ShouldBeTrue)
				So(service.Message(err), ShouldEqual, "Receipt upload failed: bucket unavailable")
				n, _ := store.CountRegistrations(ctx)
				So(n, ShouldEqual, 0)
			})
		})

		Convey("When the insert fails", func() {
			blobs := storage.NewMemory()
			store := &brokenStore{MemStore: repository.NewMemStore(), insert: errors.New("connection reset")}
			svc := service.New(store, blobs)
			_, err := svc.Register(ctx, form("Ada Obi", "UNN"), receipt())

			Convey("Then the save message is returned and the receipt is removed", func() {
				So(errors.Is(err, service.ErrSave), ShouldBeTrue)
				So(service.Message(err), ShouldEqual, "Registration save failed: connection reset")
				So(blobs.Len(), ShouldEqual, 0)
			})
		})

		Convey("When the insert reports a unique violation", func() {
			store := &brokenStore{MemStore: repository.NewMemStore(), insert: repository.ErrDuplicate}
			svc := service.New(store, storage.NewMemory())
			_, err := svc.Register(ctx, form("Ada Obi", "UNN"), receipt())
			So(errors.Is(err, service.ErrDuplicateRegistration), ShouldBeTrue)
		})

		Convey("When the duplicate lookup fails", func() {
			store := &brokenStore{MemStore: repository.NewMemStore(), lookup: errors.New("timeout")}
			svc := service.New(store, storage.NewMemory())
			_, err := svc.Register(ctx, form("Ada Obi", "UNN"), receipt())

			Convey("Then the registration still goes through", func() {
				So(err, ShouldBeNil)
			})
		})
	})
}

func TestService_Payment(t *testing.T) {
	Convey("Given a pending registration", t, func() {
		ctx := context.Background()
		f := newFixture(service.WithUIDSource(uids("111111", "004217")))
		other := newRegistrationWithUID(ctx, f.store, "Other", "UNIZIK", "111111")
		So(other, ShouldNotBeEmpty)
		reg, err := f.svc.Register(ctx, form("Ada Obi", "UNN"), receipt())
		So(err, ShouldBeNil)

		Convey("When payment is confirmed and the first UID is taken", func() {
			confirmed, err := f.svc.ConfirmPayment(ctx, reg.ID)

			Convey("Then the next UID is issued", func() {
				So(err, ShouldBeNil)
				So(confirmed.PaymentStatus, ShouldEqual, model.PaymentVerified)
				So(confirmed.TransactionID, ShouldEqual, "004217")
			})

			Convey("And confirming again is a no-op", func() {
				again, err := f.svc.ConfirmPayment(ctx, reg.ID)
				So(err, ShouldBeNil)
				So(again.TransactionID, ShouldEqual, "004217")
			})

			Convey("And rejecting withdraws the UID", func() {
				rejected, err := f.svc.RejectPayment(ctx, reg.ID)
				So(err, ShouldBeNil)
				So(rejected.PaymentStatus, ShouldEqual, model.PaymentRejected)
				So(rejected.HasUID(), ShouldBeFalse)
				_, err = f.svc.VerifyDelegate(ctx, "004217")
				So(errors.Is(err, service.ErrUnknownUID), ShouldBeTrue)
			})
		})

		Convey("When every generated UID collides", func() {
			f2 := newFixture(service.WithUIDSource(uids("111111")))
			newRegistrationWithUID(ctx, f2.store, "Other", "UNIZIK", "111111")
			r2, err := f2.svc.Register(ctx, form("Ada Obi", "UNN"), receipt())
			So(err, ShouldBeNil)
			_, err = f2.svc.ConfirmPayment(ctx, r2.ID)
			So(err, ShouldEqual, service.ErrUIDExhausted)
		})

		Convey("When the id is not a UUID", func() {
			store := &brokenStore{MemStore: repository.NewMemStore(), byID: errors.New("invalid input syntax for type uuid")}
			svc := service.New(store, storage.NewMemory())
			_, err := svc.ConfirmPayment(ctx, "abc")
			So(err, ShouldEqual, service.ErrRegistrationNotFound)
			_, err = svc.RejectPayment(ctx, "abc")
			So(err, ShouldEqual, service.ErrRegistrationNotFound)
		})

		Convey("When the registration does not exist", func() {
			_, err := f.svc.ConfirmPayment(ctx, "missing")
			So(err, ShouldEqual, service.ErrRegistrationNotFound)
			_, err = f.svc.RejectPayment(ctx, "missing")
			So(err, ShouldEqual, service.ErrRegistrationNotFound)
		})

		Convey("When listing by status", func() {
			pending, err := f.svc.ListRegistrations(ctx, string(model.PaymentPending))
			So(err, ShouldBeNil)
			So(len(pending), ShouldEqual, 1)
			all, err := f.svc.ListRegistrations(ctx, "")
			So(err, ShouldBeNil)
			So(len(all), ShouldEqual, 2)
			_, err = f.svc.ListRegistrations(ctx, "paid")
			So(err, ShouldEqual, service.ErrInvalidStatus)
		})
	})
}

func TestService_ConcurrentConfirm(t *testing.T) {
	Convey("Given a pending registration behind a slow store", t, func() {
		ctx := context.Background()
		store := &brokenStore{MemStore: repository.NewMemStore(), delay: 10 * time.Millisecond}
		notifier := &recordingNotifier{}
		svc := service.New(store, storage.NewMemory(),
			service.WithNotifier(notifier),
			service.WithUIDSource(uids("100001", "100002")),
			service.WithWorkerCount(1),
		)
		So(svc.Start(ctx), ShouldBeNil)
		reg, err := svc.Register(ctx, form("Ada Obi", "UNN"), receipt())
		So(err, ShouldBeNil)

		Convey("When two admins confirm it at once", func() {
			var wg sync.WaitGroup
			results := make([]model.Registration, 2)
			errs := make([]error, 2)
			for i := range results {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					results[i], errs[i] = svc.ConfirmPayment(ctx, reg.ID)
				}(i)
			}
			wg.Wait()
			So(svc.Stop(ctx), ShouldBeNil)

			Convey("Then both see the single UID that was stored", func() {
				So(errs[0], ShouldBeNil)
				So(errs[1], ShouldBeNil)
				So(results[0].TransactionID, ShouldEqual, results[1].TransactionID)

				stored, err := store.RegistrationByID(ctx, reg.ID)
				So(err, ShouldBeNil)
				So(stored.TransactionID, ShouldEqual, results[0].TransactionID)
			})

			Convey("Then only one verified notification is sent", func() {
				So(notifier.kinds(), ShouldResemble, []string{
					model.NotifyRegistrationSubmitted,
					model.NotifyRegistrationVerified,
				})
			})
		})

		Reset(func() { _ = svc.Stop(ctx) })
	})
}

// newRegistrationWithUID stores a verified delegate directly.
func newRegistrationWithUID(ctx context.Context, store *repository.MemStore, name, inst, uid string) string {
	r := model.Registration{
		ID:            "seed-" + uid,
		CreatedAt:     fixedNow.Add(-time.Hour),
		FullName:      name,
		Email:         strings.ToLower(name) + "@example.com",
		Institution:   inst,
		PaymentStatus: model.PaymentPending,
		TransactionID: model.ManualUploadTransaction,
		DuplicateKey:  validation.DuplicateKey(name, inst),
	}
	if err := store.InsertRegistration(ctx, r); err != nil {
		panic(err)
	}
	if _, err := store.SetPayment(ctx, r.ID, model.PaymentVerified, uid); err != nil {
		panic(err)
	}
	return r.ID
}

func TestService_Pitch(t *testing.T) {
	Convey("Given a verified delegate", t, func() {
		ctx := context.Background()
		f := newFixture()
		So(f.svc.Start(ctx), ShouldBeNil)
		newRegistrationWithUID(ctx, f.store, "Chidi Eze", "FUTO", "004217")

		Convey("When verifying UIDs", func() {
			d, err := f.svc.VerifyDelegate(ctx, " 0042-17 ")
			So(err, ShouldBeNil)
			So(d.FullName, ShouldEqual, "Chidi Eze")
			So(d.UID, ShouldEqual, "004217")

			_, err = f.svc.VerifyDelegate(ctx, "12345")
			So(service.Message(err), ShouldEqual, validation.MsgInvalidUID)

			_, err = f.svc.VerifyDelegate(ctx, "999999")
			So(service.Message(err), ShouldEqual, service.MsgUnknownUID)
		})

		Convey("When a pending delegate tries to verify", func() {
			reg, err := f.svc.Register(ctx, form("Ada Obi", "UNN"), receipt())
			So(err, ShouldBeNil)
			_, err = f.store.SetPayment(ctx, reg.ID, model.PaymentPending, "555555")
			So(err, ShouldBeNil)
			_, err = f.svc.VerifyDelegate(ctx, "555555")
			So(errors.Is(err, service.ErrUnknownUID), ShouldBeTrue)
		})

		Convey("When the pitch is submitted", func() {
			p, err := f.svc.SubmitPitch(ctx, pitchFiles("004217"))
			So(err, ShouldBeNil)

			Convey("Then both files are stored under the UID", func() {
				So(p.UID, ShouldEqual, "004217")
				So(p.VideoURL, ShouldEqual, "https://naas.test/api/admin/files/pitch_vault/004217/video.mp4")
				So(p.DocumentURL, ShouldEqual, "https://naas.test/api/admin/files/pitch_vault/004217/document.pdf")
				So(f.blobs.Len(), ShouldEqual, 2)
			})

			Convey("And a second pitch is refused", func() {
				_, err := f.svc.SubmitPitch(ctx, pitchFiles("004217"))
				So(service.Message(err), ShouldEqual, service.MsgPitchExists)
				_, err = f.svc.VerifyDelegate(ctx, "004217")
				So(errors.Is(err, service.ErrPitchExists), ShouldBeTrue)
			})

			Convey("And the pitch is listed and downloadable", func() {
				pitches, err := f.svc.ListPitches(ctx)
				So(err, ShouldBeNil)
				So(len(pitches), ShouldEqual, 1)

				rc, obj, err := f.svc.OpenFile(ctx, storage.BucketPitches, "004217/video.mp4")
				So(err, ShouldBeNil)
				data, _ := io.ReadAll(rc)
				_ = rc.Close()
				So(string(data), ShouldEqual, "video")
				So(obj.ContentType, ShouldEqual, "video/mp4")

				_, _, err = f.svc.OpenFile(ctx, "secrets", "x")
				So(errors.Is(err, storage.ErrNotFound), ShouldBeTrue)
			})

			Convey("And a notification is delivered on stop", func() {
				So(f.svc.Stop(ctx), ShouldBeNil)
				So(f.notifier.kinds(), ShouldContain, model.NotifyPitchSubmitted)
			})
		})

		Convey("When the agreement is missing", func() {
			sub := pitchFiles("004217")
			sub.Agreed = false
			_, err := f.svc.SubmitPitch(ctx, sub)
			So(service.Message(err), ShouldEqual, validation.MsgAgreementRequired)
		})

		Convey("When a file is missing", func() {
			sub := pitchFiles("004217")
			sub.Document = nil
			_, err := f.svc.SubmitPitch(ctx, sub)
			So(service.Message(err), ShouldEqual, validation.MsgPitchFilesMissing)
		})

		Reset(func() { _ = f.svc.Stop(ctx) })
	})

	Convey("Given a video upload that fails", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()
		blobs := storage.NewMemory()
		svc := service.New(store, &flakyBlobs{Storage: blobs, failOn: "video"})
		newRegistrationWithUID(ctx, store, "Chidi Eze", "FUTO", "004217")

		_, err := svc.SubmitPitch(ctx, pitchFiles("004217"))

		Convey("Then the document is never uploaded", func() {
			So(service.Message(err), ShouldEqual, "Video Upload Failed: bucket unavailable")
			So(blobs.Len(), ShouldEqual, 0)
			n, _ := store.CountPitches(ctx)
			So(n, ShouldEqual, 0)
		})
	})

	Convey("Given a document upload that fails", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()
		svc := service.New(store, &flakyBlobs{Storage: storage.NewMemory(), failOn: "document"})
		newRegistrationWithUID(ctx, store, "Chidi Eze", "FUTO", "004217")

		_, err := svc.SubmitPitch(ctx, pitchFiles("004217"))
		So(service.Message(err), ShouldEqual, "Document Upload Failed: bucket unavailable")
	})
}

func TestService_Visits(t *testing.T) {
	Convey("Given a service", t, func() {
		ctx := context.Background()
		f := newFixture()

		Convey("When the same session visits twice", func() {
			counted, n, err := f.svc.TrackVisit(ctx, "session-a")
			So(err, ShouldBeNil)
			So(counted, ShouldBeTrue)
			So(n, ShouldEqual, 1)

			counted, n, err = f.svc.TrackVisit(ctx, "session-a")
			So(err, ShouldBeNil)
			So(counted, ShouldBeFalse)
			So(n, ShouldEqual, 1)

			counted, n, _ = f.svc.TrackVisit(ctx, "session-b")
			So(counted, ShouldBeTrue)
			So(n, ShouldEqual, 2)

			v, err := f.svc.VisitorCount(ctx)
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 2)
		})

		Convey("When the visit has no session", func() {
			counted, n, err := f.svc.TrackVisit(ctx, "")
			So(err, ShouldBeNil)
			So(counted, ShouldBeFalse)
			So(n, ShouldEqual, 0)
		})

		Convey("When the increment fails", func() {
			store := &brokenStore{MemStore: repository.NewMemStore(), counter: errors.New("read only")}
			svc := service.New(store, storage.NewMemory())
			_, _, err := svc.TrackVisit(ctx, "session-a")
			So(err, ShouldNotBeNil)

			Convey("Then the session can be counted later", func() {
				store.counter = nil
				counted, n, err := svc.TrackVisit(ctx, "session-a")
				So(err, ShouldBeNil)
				So(counted, ShouldBeTrue)
				So(n, ShouldEqual, 1)
			})
		})
	})
}

func TestService_Content(t *testing.T) {
	Convey("Given a service with a fixed clock", t, func() {
		start := fixedNow.Add(49*time.Hour + 3*time.Minute + 7*time.Second)
		f := newFixture(service.WithConventionStart(start))

		Convey("Then the countdown is measured from the clock", func() {
			r := f.svc.Countdown()
			So(r.Days, ShouldEqual, 2)
			So(r.Hours, ShouldEqual, 1)
			So(r.Minutes, ShouldEqual, 3)
			So(r.Seconds, ShouldEqual, 7)
			So(r.Started, ShouldBeFalse)
		})

		Convey("Then the default schedule has six placeholder days", func() {
			days := f.svc.Schedule()
			So(len(days), ShouldEqual, 6)
			So(days[0].Empty(), ShouldBeTrue)
			So(f.svc.Site().Title, ShouldEqual, "NAAS Quad-Zonal Convention 2026")
		})
	})

	Convey("Given unknown errors", t, func() {
		So(service.Message(nil), ShouldEqual, "")
		So(service.Message(errors.New("boom")), ShouldEqual, service.MsgUnexpected)
	})
}
