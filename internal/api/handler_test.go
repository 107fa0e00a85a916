package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"gradepulse/internal/attendance"
	"gradepulse/internal/config"
	"gradepulse/internal/fields"
	"gradepulse/internal/model"
	"gradepulse/internal/replies"
	"gradepulse/internal/roster"
	"gradepulse/internal/students"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const rosterCSV = "Student ID *,Full Name *,Father Contact,Mother Contact\n" +
	"S001,Aisha Khan,+971500000001,00971500000002\n" +
	"S002,,971500000003,\n"

type testServer struct {
	cfg      *config.Config
	router   *gin.Engine
	students *studentStore
	sessions *sessionStore
	archive  *memoryArchive
	notifier *countingNotifier
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.App.Name = "gradepulse"
	cfg.Import.DefaultAcademicYear = "2025-26"
	cfg.Import.DefaultBoard = "CBSE"
	cfg.Import.MaxUploadBytes = 1 << 20

	ts := &testServer{
		cfg:      cfg,
		students: newStudentStore(),
		sessions: &sessionStore{sessions: map[string]model.UploadSession{}},
		archive:  &memoryArchive{objects: map[string][]byte{}},
		notifier: &countingNotifier{},
	}
	fieldSvc := fields.NewService(newFieldRepo())
	sections := sectionStore{{ID: 7, AcademicYear: "2025-26", Board: "CBSE", Stream: "General", ClassName: "10th", SectionName: "A", Active: true}}

	handler := NewHandler(Deps{
		Config:     cfg,
		Importer:   roster.NewImporter(fieldSvc, ts.students),
		Committer:  roster.NewCommitter(ts.students, nil, ts.notifier, roster.CommitConfig{NotificationCap: 10, WelcomeMessage: "Welcome"}),
		Fields:     fieldSvc,
		Students:   students.NewService(ts.students, fieldSvc, nil, students.Defaults{AcademicYear: "2025-26", Board: "CBSE"}),
		Sections:   sections,
		Attendance: attendance.NewService(noRecords{}, ts.students, sections, ts.notifier, "GradePulse"),
		Alerts:     attendance.NewAlertService(ts.students, ts.notifier, "GradePulse", 10),
		Replies:    replies.NewService(ts.students, ts.notifier),
		Sessions:   ts.sessions,
		Archive:    ts.archive,
	})
	handler.now = func() time.Time { return time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC) }

	router, err := NewRouter(handler)
	require.NoError(t, err)
	ts.router = router
	return ts
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func uploadRequest(t *testing.T, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/imports", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode[map[string]any](t, w)["status"])
}

func TestUploadPreviewConfirm(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(uploadRequest(t, "roster.csv", rosterCSV))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	preview := decode[model.Preview](t, w)

	require.Len(t, preview.Rows, 2)
	assert.Equal(t, 1, preview.ValidCount)
	assert.NotEmpty(t, preview.UploadID)
	assert.Equal(t, "+971500000002", preview.Rows[0].MotherContact.String)
	assert.Contains(t, preview.Rows[1].Errors, "Full Name is required")

	session, ok := ts.sessions.sessions[preview.UploadID]
	require.True(t, ok)
	assert.Equal(t, "uploads/2025/03/12/"+preview.UploadID+".csv", session.StorageKey)
	assert.Equal(t, []byte(rosterCSV), ts.archive.objects[session.StorageKey])

	// Re-preview from the archive.
	w = ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/imports/"+preview.UploadID, nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	again := decode[model.Preview](t, w)
	assert.Equal(t, preview.UploadID, again.UploadID)
	assert.Len(t, again.Rows, 2)

	form := roster.EncodeSubmission(preview.Rows)
	form.Set("upload_id", preview.UploadID)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/imports/confirm", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = ts.do(req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Message string             `json:"message"`
		Result  model.CommitResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Result.Succeeded)
	assert.Equal(t, 1, body.Result.Skipped)
	assert.Equal(t, 2, body.Result.NotificationsSent)
	assert.Equal(t, "1 students saved, 1 invalid rows skipped. 2 WhatsApp messages sent.", body.Message)
	assert.Empty(t, ts.sessions.sessions)
	assert.Empty(t, ts.archive.objects)

	w = ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/students/S001", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Aisha Khan", decode[model.Student](t, w).FullName.String)

	w = ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/students?limit=10", nil))
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[model.StudentPage](t, w)
	assert.Equal(t, 1, page.Total)
	assert.Len(t, page.Students, 1)
}

func TestUploadErrors(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(uploadRequest(t, "roster.pdf", "x"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[map[string]string](t, w)["error"], "unsupported file format")

	w = ts.do(uploadRequest(t, "roster.csv", ""))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/imports", nil)
	w = ts.do(req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnreadableUploadIsBadRequest(t *testing.T) {
	ts := newTestServer(t)
	ts.cfg.Import.MaxUploadBytes = 4 << 20

	long := "Student ID,Full Name\nS1," + strings.Repeat("a", 1<<20+10) + "\n"
	w := ts.do(uploadRequest(t, "long.csv", long))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[map[string]string](t, w)["error"], "invalid file format")

	w = ts.do(uploadRequest(t, "broken.xlsx", "not a zip"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExpiredUploadSession(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/imports/missing", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "upload session expired", decode[map[string]string](t, w)["error"])
}

func TestConfirmWithoutRows(t *testing.T) {
	ts := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/imports/confirm", strings.NewReader("academic_year=2025-26"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	assert.Equal(t, http.StatusBadRequest, ts.do(req).Code)
}

func TestFieldRoutes(t *testing.T) {
	ts := newTestServer(t)
	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/fields", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		return ts.do(req)
	}

	w := post(`{"field_name":"House Colour","display_name":"House","field_type":"STRING"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = post(`{"field_name":"house","display_name":"House","field_type":"STRING"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	def := decode[model.FieldDefinition](t, w)
	assert.Equal(t, len(model.StudentFieldNames), def.SortOrder)

	w = post(`{"field_name":"house","display_name":"House","field_type":"STRING"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do(httptest.NewRequest(http.MethodPost, "/api/v1/fields/1/toggle", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[model.FieldDefinition](t, w).Active)

	w = ts.do(httptest.NewRequest(http.MethodDelete, "/api/v1/fields/999", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(httptest.NewRequest(http.MethodPut, "/api/v1/fields/abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDownloadTemplate(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/template.xlsx", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), roster.TemplateFilename)

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	header, err := f.GetCellValue(roster.TemplateSheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Student ID *", header)
}

func TestAttendanceRoutes(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/attendance",
		strings.NewReader(`{"class_section_id":3,"entries":[{"student_id":1,"status":"PRESENT"}]}`))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusNotFound, ts.do(req).Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/attendance",
		strings.NewReader(`{"class_section_id":7,"entries":[{"student_id":1,"status":"SLEEPING"}]}`))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusBadRequest, ts.do(req).Code)

	w := ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/attendance/class/7", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/class-sections", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "CBSE - General 10th (Section A)")
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestStudentRoutes(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(jsonRequest(http.MethodPost, "/api/v1/students",
		`{"student_id":"S010","full_name":"Ravi Menon","gender":"Male","student_class":"10th","father_contact":"971500000010","attendance_percent":72}`))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[model.Student](t, w)
	assert.Equal(t, "+971500000010", created.FatherContact.String)
	assert.Equal(t, 72.0, created.AttendancePercent.Float64)

	w = ts.do(jsonRequest(http.MethodPost, "/api/v1/students", `{"student_id":"S010","full_name":"Again","father_contact":"+971500000011"}`))
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do(jsonRequest(http.MethodPost, "/api/v1/students", `{"student_id":"S011"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[map[string]string](t, w)["error"], "Full Name is required")

	w = ts.do(jsonRequest(http.MethodPut, "/api/v1/students/S010", `{"full_name":"Ravi M.","division":"Science"}`))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Ravi M.", decode[model.Student](t, w).FullName.String)

	w = ts.do(jsonRequest(http.MethodPut, "/api/v1/students/S404", `{"full_name":"Nobody"}`))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/students?search=ravi&gender=male", nil))
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[model.StudentPage](t, w)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, 50, page.Limit)

	w = ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/students?limit=many", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/students/filters", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"10th"}, decode[model.StudentFilterOptions](t, w).Classes)

	w = ts.do(httptest.NewRequest(http.MethodDelete, "/api/v1/students/S010", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	w = ts.do(httptest.NewRequest(http.MethodDelete, "/api/v1/students/S010", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWhatsAppWebhook(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(jsonRequest(http.MethodPost, "/api/v1/students",
		`{"student_id":"S020","full_name":"Aisha Khan","father_contact":"+971500000001","mother_contact":"+971500000002"}`))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	reply := func(from, body string) *httptest.ResponseRecorder {
		form := url.Values{"From": {from}, "Body": {body}}
		req := httptest.NewRequest(http.MethodPost, "/webhook/whatsapp", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return ts.do(req)
	}

	w = reply("whatsapp:+971500000001", "3")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
	assert.Equal(t, "TAMIL", ts.students.byID["S020"].LanguagePreference.String)
	assert.Equal(t, []string{"+971500000001", "+971500000002"}, ts.notifier.sent)

	w = reply("whatsapp:+15550000000", "1")
	assert.Equal(t, "Student not found", w.Body.String())

	assert.Equal(t, http.StatusBadRequest, reply("", "1").Code)
}

func TestAttendanceAlertRoutes(t *testing.T) {
	ts := newTestServer(t)
	for _, body := range []string{
		`{"student_id":"S030","full_name":"Low One","father_contact":"+971500000030","attendance_percent":60}`,
		`{"student_id":"S031","full_name":"Mid One","father_contact":"+971500000031","attendance_percent":80}`,
	} {
		require.Equal(t, http.StatusCreated, ts.do(jsonRequest(http.MethodPost, "/api/v1/students", body)).Code)
	}

	w := ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/attendance/alerts", nil))
	require.Equal(t, http.StatusOK, w.Code)
	candidates := decode[model.AlertCandidates](t, w)
	assert.Equal(t, 1, candidates.LowCount)
	assert.Equal(t, 1, candidates.MediumCount)

	low := candidates.Low[0].ID
	w = ts.do(jsonRequest(http.MethodPost, "/api/v1/attendance/alerts/send",
		fmt.Sprintf(`{"student_ids":[%d],"alert_type":"critical"}`, low)))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1, decode[model.AlertResult](t, w).Sent)
	assert.Equal(t, []string{"+971500000030"}, ts.notifier.sent)

	w = ts.do(jsonRequest(http.MethodPost, "/api/v1/attendance/alerts/send", `{"student_ids":[],"alert_type":"critical"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
