package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mentora-api/internal/dto"
	"github.com/noah-isme/mentora-api/internal/models"
)

type recordingStorage struct {
	names    []string
	payloads [][]byte
	err      error
}

func (s *recordingStorage) Upload(_ context.Context, name string, reader io.Reader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	payload, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	s.names = append(s.names, name)
	s.payloads = append(s.payloads, payload)
	return "https://cdn.test/mentora/" + name, nil
}

type recordingPublisher struct {
	events []dto.ReviewEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event dto.ReviewEvent) {
	p.events = append(p.events, event)
}

var pdfDocument = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

func newIntakeFixture(t *testing.T, storage DocumentStorage, maxBytes int64) (*reviewFixture, IntakeService, *recordingPublisher) {
	t.Helper()
	f := newReviewFixture(t)
	events := &recordingPublisher{}
	svc := NewIntakeService(f.companies, f.mentors, f.programs, storage, events, f.summary, nil, maxBytes, testLogger())
	return f, svc, events
}

func validMentorApplication() dto.MentorApplicationCreateRequest {
	return dto.MentorApplicationCreateRequest{
		FullName:   "Ayu Lestari",
		Email:      "Ayu@Uni.Test",
		University: "Universitas Gadjah Mada",
		Expertise:  "Machine Learning",
		Role:       "counsellor",
		Bio:        "<b>Five years</b> of tutoring",
	}
}

func TestIntakeServiceMentorApplicationWithCV(t *testing.T) {
	storage := &recordingStorage{}
	f, svc, events := newIntakeFixture(t, storage, 0)
	ctx := context.Background()

	resp, err := svc.SubmitMentorApplication(ctx, "55", validMentorApplication(), &dto.UploadedDocument{
		Filename: "Ayu CV (final).pdf",
		Size:     int64(len(pdfDocument)),
		Content:  bytes.NewReader(pdfDocument),
	})
	require.NoError(t, err)
	require.Equal(t, "pending", resp.Status)
	require.Equal(t, "mentor_application", resp.Kind)
	require.Equal(t, []string{"cv-ayu-cv--final.pdf"}, storage.names)
	require.Equal(t, pdfDocument, storage.payloads[0])

	stored, err := f.mentors.GetByID(ctx, resp.ID)
	require.NoError(t, err)
	require.Equal(t, models.ReviewStatusPending, stored.Status)
	require.Equal(t, "ayu@uni.test", stored.Email)
	require.Equal(t, "Five years of tutoring", stored.Bio)
	require.Equal(t, "55", stored.ApplicantID)
	require.Equal(t, "https://cdn.test/mentora/cv-ayu-cv--final.pdf", stored.CVURL)
	require.WithinDuration(t, time.Now(), stored.SubmittedAt, time.Minute)

	require.Len(t, events.events, 1)
	require.Equal(t, resp.ID, events.events[0].RecordID)
	require.Equal(t, "pending", events.events[0].Status)
}

func TestIntakeServiceRejectsUnsupportedDocuments(t *testing.T) {
	storage := &recordingStorage{}
	_, svc, _ := newIntakeFixture(t, storage, 64)
	ctx := context.Background()

	_, err := svc.SubmitMentorApplication(ctx, "", validMentorApplication(), &dto.UploadedDocument{
		Filename: "notes.txt",
		Size:     12,
		Content:  bytes.NewReader([]byte("plain notes\n")),
	})
	require.ErrorIs(t, err, ErrUnsupportedDocument)

	_, err = svc.SubmitMentorApplication(ctx, "", validMentorApplication(), &dto.UploadedDocument{
		Filename: "huge.pdf",
		Size:     65,
		Content:  bytes.NewReader(pdfDocument),
	})
	require.ErrorIs(t, err, ErrDocumentTooLarge)

	_, err = svc.SubmitMentorApplication(ctx, "", validMentorApplication(), &dto.UploadedDocument{
		Filename: "understated.pdf",
		Size:     10,
		Content:  bytes.NewReader(pdfDocument),
	})
	require.ErrorIs(t, err, ErrDocumentTooLarge, "size is enforced on the bytes read as well")
	require.Empty(t, storage.names)
}

func TestIntakeServiceDocumentWithoutStorage(t *testing.T) {
	_, svc, _ := newIntakeFixture(t, nil, 0)

	_, err := svc.SubmitCompanyRequest(context.Background(), "", dto.CompanyRequestCreateRequest{
		CompanyName:  "Acme Robotics",
		ContactName:  "Rina",
		ContactEmail: "rina@acme.test",
	}, &dto.UploadedDocument{Filename: "deed.pdf", Size: int64(len(pdfDocument)), Content: bytes.NewReader(pdfDocument)})
	require.ErrorIs(t, err, ErrDocumentUploadUnavailable)

	resp, err := svc.SubmitCompanyRequest(context.Background(), "", dto.CompanyRequestCreateRequest{
		CompanyName:  "Acme Robotics",
		ContactName:  "Rina",
		ContactEmail: "rina@acme.test",
	}, nil)
	require.NoError(t, err)
	require.Equal(t, "Acme Robotics", resp.Item.Title)
}

func TestIntakeServiceStorageFailure(t *testing.T) {
	storage := &recordingStorage{err: errors.New("cloud down")}
	_, svc, _ := newIntakeFixture(t, storage, 0)

	_, err := svc.SubmitMentorApplication(context.Background(), "", validMentorApplication(), &dto.UploadedDocument{
		Filename: "cv.pdf",
		Size:     int64(len(pdfDocument)),
		Content:  bytes.NewReader(pdfDocument),
	})
	require.ErrorContains(t, err, "cloud down")
}

func TestIntakeServiceProgramValidationAndTags(t *testing.T) {
	f, svc, _ := newIntakeFixture(t, nil, 0)
	ctx := context.Background()

	_, err := svc.SubmitProgram(ctx, "9", dto.ProgramCreateRequest{Title: "AI", University: "ITB"})
	require.Error(t, err)
	require.True(t, isValidationErr(err))

	resp, err := svc.SubmitProgram(ctx, "9", dto.ProgramCreateRequest{
		Title:        "Data Science Bootcamp",
		University:   "Institut Teknologi Bandung",
		Category:     "Technology",
		ContactEmail: "programs@itb.test",
		Tags:         []string{"Python", "python", " SQL "},
	})
	require.NoError(t, err)

	stored, err := f.programs.GetByID(ctx, resp.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"python", "sql"}, []string(stored.Tags))
	require.Equal(t, models.ReviewStatusPending, stored.Status)
}

func TestSeedServiceGuardsAndSeedsPending(t *testing.T) {
	f, intake, _ := newIntakeFixture(t, nil, 0)
	ctx := context.Background()
	req := dto.ReviewSeedRequest{
		MentorApplications: []dto.MentorApplicationCreateRequest{validMentorApplication()},
		Programs: []dto.ProgramCreateRequest{{
			Title: "Career Mentoring", University: "Universitas Airlangga", Category: "Career", ContactEmail: "career@unair.test",
		}},
	}

	_, err := NewSeedService(intake, false, "secret", testLogger()).SeedReviews(ctx, "secret", req)
	require.ErrorIs(t, err, ErrSeedDisabled)

	seed := NewSeedService(intake, true, "secret", testLogger())
	_, err = seed.SeedReviews(ctx, "wrong", req)
	require.ErrorIs(t, err, ErrSeedUnauthorized)

	result, err := seed.SeedReviews(ctx, " secret ", req)
	require.NoError(t, err)
	require.Equal(t, dto.ReviewSeedResponse{MentorApplications: 1, Programs: 1}, result)

	records, err := f.programs.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, models.ReviewStatusPending, records[0].Status)
}

func TestIntakeServiceStoresPlainTextThatSearchFinds(t *testing.T) {
	f, svc, _ := newIntakeFixture(t, nil, 0)
	ctx := context.Background()

	resp, err := svc.SubmitCompanyRequest(ctx, "", dto.CompanyRequestCreateRequest{
		CompanyName:  "AT&T <i>Labs</i>",
		ContactName:  "Shaun O'Neil",
		ContactEmail: "oneil@att.test",
	}, nil)
	require.NoError(t, err)
	require.Equal(t, "AT&T Labs", resp.Item.Title)

	stored, err := f.companies.GetByID(ctx, resp.ID)
	require.NoError(t, err)
	require.Equal(t, "AT&T Labs", stored.CompanyName)
	require.Equal(t, "Shaun O'Neil", stored.ContactName)

	for _, term := range []string{"AT&T", "o'neil"} {
		view, err := f.service.UpdateSession(ctx, reviewer, models.ReviewKindCompanyRequest, dto.ReviewSessionUpdate{
			Search: ptrString(term),
		})
		require.NoError(t, err)
		require.Equal(t, int64(1), view.Pagination.TotalItems, term)
		require.Equal(t, "AT&T Labs", view.Items[0].Title)
	}
}
