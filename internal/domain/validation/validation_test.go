package validation_test

import (
	"errors"
	"testing"

	"github.com/okian/convention/internal/domain/model"
	"github.com/okian/convention/internal/domain/validation"
	. "github.com/smartystreets/goconvey/convey"
)

func validForm() model.RegistrationForm {
	return model.RegistrationForm{
		FullName:    "Ada Obi",
		Gender:      "Female",
		Email:       "ada@example.com",
		Phone:       "08030000000",
		Department:  "Computer Science",
		Institution: "UNN",
		Zone:        "Enugu",
		Skill:       string(model.SkillPhotography),
		TShirtSize:  "XL",
	}
}

func receipt(name string, size int64) *model.Upload {
	return &model.Upload{Filename: name, ContentType: "application/pdf", Size: size}
}

func TestRegistration(t *testing.T) {
	Convey("Given a registration form", t, func() {
		Convey("When every field is valid", func() {
			err := validation.Registration(validForm(), receipt("receipt.PDF", 1024), 10<<20)

			Convey("Then it passes", func() {
				So(err, ShouldBeNil)
			})
		})

		Convey("When fields are missing and the receipt is absent", func() {
			f := validForm()
			f.Phone = ""
			f.Zone = ""
			err := validation.Registration(f, nil, 0)

			Convey("Then every problem is reported under the summary message", func() {
				So(errors.Is(err, validation.ErrInvalid), ShouldBeTrue)
				ve, ok := validation.AsError(err)
				So(ok, ShouldBeTrue)
				So(ve.Message, ShouldEqual, validation.MsgRegistrationIncomplete)
				So(ve.Fields, ShouldContainKey, "phone")
				So(ve.Fields, ShouldContainKey, "zone")
				So(ve.Fields, ShouldContainKey, "receipt")
				So(ve.Fields, ShouldNotContainKey, "healthConcerns")
			})
		})

		Convey("When the email and enumerations are wrong", func() {
			f := validForm()
			f.Email = "ada@example"
			f.Gender = "Other"
			f.Skill = "Juggling"
			f.TShirtSize = "XS"
			err := validation.Registration(f, receipt("r.png", 10), 0)

			Convey("Then each field is flagged", func() {
				ve, ok := validation.AsError(err)
				So(ok, ShouldBeTrue)
				So(ve.Fields, ShouldContainKey, "email")
				So(ve.Fields, ShouldContainKey, "gender")
				So(ve.Fields, ShouldContainKey, "skill")
				So(ve.Fields, ShouldContainKey, "tshirtSize")
			})
		})

		Convey("When the receipt has the wrong type or size", func() {
			wrongType := validation.Registration(validForm(), receipt("receipt.docx", 10), 0)
			tooBig := validation.Registration(validForm(), receipt("receipt.jpeg", 11), 10)

			Convey("Then the receipt field is flagged", func() {
				ve, _ := validation.AsError(wrongType)
				So(ve.Fields, ShouldContainKey, "receipt")
				ve, _ = validation.AsError(tooBig)
				So(ve.Fields, ShouldContainKey, "receipt")
			})
		})

		Convey("When the form is padded with whitespace", func() {
			f := validForm()
			f.FullName = "  Ada Obi \t"
			f.Institution = "   "
			trimmed := validation.TrimForm(f)

			Convey("Then trimming exposes blank required fields", func() {
				So(trimmed.FullName, ShouldEqual, "Ada Obi")
				ve, ok := validation.AsError(validation.Registration(trimmed, receipt("r.pdf", 1), 0))
				So(ok, ShouldBeTrue)
				So(ve.Fields, ShouldContainKey, "institution")
			})
		})
	})
}

func TestEmail(t *testing.T) {
	Convey("Given email addresses", t, func() {
		So(validation.ValidEmail("a@b.co"), ShouldBeTrue)
		So(validation.ValidEmail("first.last@uni.edu.ng"), ShouldBeTrue)
		So(validation.ValidEmail("a b@c.d"), ShouldBeFalse)
		So(validation.ValidEmail("a@b"), ShouldBeFalse)
		So(validation.ValidEmail("@b.c"), ShouldBeFalse)
	})
}

func TestUID(t *testing.T) {
	Convey("Given UID input", t, func() {
		Convey("When it contains non-digits or extra digits", func() {
			So(validation.SanitizeUID(" 12-34 56 "), ShouldEqual, "123456")
			So(validation.SanitizeUID("1234567"), ShouldEqual, "123456")
			So(validation.SanitizeUID("abc"), ShouldEqual, "")
		})

		Convey("When it has fewer than six digits", func() {
			_, err := validation.UID("12345")

			Convey("Then it is rejected with the UID message", func() {
				ve, ok := validation.AsError(err)
				So(ok, ShouldBeTrue)
				So(ve.Message, ShouldEqual, validation.MsgInvalidUID)
			})
		})

		Convey("When it has leading zeros", func() {
			uid, err := validation.UID("004217")

			Convey("Then they are kept", func() {
				So(err, ShouldBeNil)
				So(uid, ShouldEqual, "004217")
			})
		})

		Convey("When validating without sanitizing", func() {
			So(validation.ValidUID("12345a"), ShouldBeFalse)
			So(validation.ValidUID("١٢٣٤٥٦"), ShouldBeFalse)
		})
	})
}

func TestPitchFiles(t *testing.T) {
	Convey("Given pitch uploads", t, func() {
		video := &model.Upload{Filename: "pitch.mp4", ContentType: "video/mp4", Size: 1 << 20}
		doc := &model.Upload{Filename: "deck.pptx", ContentType: "application/octet-stream", Size: 1 << 10}

		Convey("When both are acceptable", func() {
			So(validation.PitchFiles(video, doc, validation.MaxVideoBytes), ShouldBeNil)
		})

		Convey("When one is missing", func() {
			ve, ok := validation.AsError(validation.PitchFiles(video, nil, validation.MaxVideoBytes))
			So(ok, ShouldBeTrue)
			So(ve.Message, ShouldEqual, validation.MsgPitchFilesMissing)
		})

		Convey("When the video only matches by MIME type", func() {
			v := &model.Upload{Filename: "pitch", ContentType: "video/quicktime; codecs=avc1", Size: 10}
			So(validation.Video(v, validation.MaxVideoBytes), ShouldBeNil)
		})

		Convey("When the video format is unknown", func() {
			v := &model.Upload{Filename: "pitch.mkv", ContentType: "video/x-matroska", Size: 10}
			ve, _ := validation.AsError(validation.Video(v, validation.MaxVideoBytes))
			So(ve.Message, ShouldEqual, validation.MsgVideoFormat)
		})

		Convey("When the video exceeds 50MB", func() {
			v := &model.Upload{Filename: "pitch.MOV", Size: validation.MaxVideoBytes + 1}
			ve, _ := validation.AsError(validation.Video(v, validation.MaxVideoBytes))
			So(ve.Message, ShouldEqual, "Video file is too large. Max size is 50MB.")
		})

		Convey("When the video limit is configured lower", func() {
			v := &model.Upload{Filename: "pitch.mp4", Size: 30 << 20}
			ve, _ := validation.AsError(validation.Video(v, 20<<20))

			Convey("Then the message names the configured limit", func() {
				So(ve.Message, ShouldEqual, "Video file is too large. Max size is 20MB.")
				So(ve.Fields["video"], ShouldEqual, ve.Message)
				So(validation.SizeLabel(1536<<10), ShouldEqual, "1.5MB")
			})
		})

		Convey("When the document format is unknown", func() {
			d := &model.Upload{Filename: "deck.key", ContentType: "application/x-iwork-keynote-sffkey"}
			ve, _ := validation.AsError(validation.Document(d))
			So(ve.Message, ShouldEqual, validation.MsgDocumentFormat)
		})

		Convey("When the guidelines were not accepted", func() {
			ve, ok := validation.AsError(validation.Agreement(false))
			So(ok, ShouldBeTrue)
			So(ve.Fields["agree"], ShouldEqual, validation.MsgAgreementRequired)
			So(validation.Agreement(true), ShouldBeNil)
		})

		Convey("When reading extensions", func() {
			So(validation.Extension("Receipt.JPEG"), ShouldEqual, "jpeg")
			So(validation.Extension("noext"), ShouldEqual, "")
			So(validation.VideoExtension(&model.Upload{Filename: "clip", ContentType: "video/quicktime"}), ShouldEqual, "mov")
			So(validation.VideoExtension(&model.Upload{Filename: "clip.AVI"}), ShouldEqual, "avi")
			So(validation.DocumentExtension(&model.Upload{Filename: "deck", ContentType: "application/pdf"}), ShouldEqual, "pdf")
		})
	})
}

func TestDuplicateKey(t *testing.T) {
	Convey("Given names that differ only in case, spacing or width", t, func() {
		a := validation.DuplicateKey("Ada  OBI", "University of Nigeria")
		b := validation.DuplicateKey(" ada obi ", "UNIVERSITY   of nigeria")
		c := validation.DuplicateKey("Ａｄａ Obi", "university of nigeria")

		Convey("Then they share one key", func() {
			So(a, ShouldEqual, b)
			So(a, ShouldEqual, c)
		})

		Convey("Then a different institution yields another key", func() {
			So(validation.DuplicateKey("Ada Obi", "UNIZIK"), ShouldNotEqual, a)
		})

		Convey("Then the separator keeps name and institution apart", func() {
			So(validation.DuplicateKey("Ada Obi U", "NN"), ShouldNotEqual, validation.DuplicateKey("Ada Obi", "U NN"))
		})
	})
}
