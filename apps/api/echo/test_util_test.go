package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/tutorbase/backend/core"
	"github.com/tutorbase/backend/core/batch"
	"github.com/tutorbase/backend/core/class"
	"github.com/tutorbase/backend/core/student"
	"github.com/tutorbase/backend/core/user"
	emailsvc "github.com/tutorbase/backend/services/email"
	logsvc "github.com/tutorbase/backend/services/logger"
	dummydb "github.com/tutorbase/backend/storage/database/dummy"
)

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

type testApp struct {
	server      Server
	conf        *core.Config
	cache       *dummydb.Cache
	usrRepo     user.Repository
	batchRepo   batch.Repository
	studentRepo student.Repository
	classRepo   class.Repository
	usrSvc      *user.Service
}

func newTestConfig() *core.Config {
	return &core.Config{
		AppName:  "Tutorbase",
		Env:      "TEST",
		TestMode: true,
		Server: core.ServerConfig{
			JWTSecret:                 []byte("secret"),
			JWTRefreshSecret:          []byte("refresh-secret"),
			JWTExpirationDelta:        10 * time.Minute,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
		Redis: core.RedisConfig{CacheTTL: time.Minute},
	}
}

func setup(t *testing.T) *testApp {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	conf := newTestConfig()
	cache := dummydb.NewCache()
	mailSvc := emailsvc.NewConsoleServiceMock(conf)

	usrRepo := dummydb.NewUserRepository(db)
	batchRepo := dummydb.NewBatchRepository(db)
	studentRepo := dummydb.NewStudentRepository(db)
	classRepo := dummydb.NewClassRepository(db)

	usrSvc := user.NewService(usrRepo, mailSvc, conf)
	batchSvc := batch.NewService(batchRepo, usrRepo)
	studentSvc := student.NewService(studentRepo, batchRepo, cache, conf.Redis.CacheTTL)
	classSvc := class.NewService(classRepo, batchRepo, usrRepo)

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)

	logger := logsvc.NewStdLogger(log.New(io.Discard, "", 0))
	logger.Enable(false)

	server := NewServer(ServerDeps{
		Conf:           conf,
		Logger:         logger,
		UserSvc:        usrSvc,
		BatchSvc:       batchSvc,
		StudentSvc:     studentSvc,
		ClassSvc:       classSvc,
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	})

	return &testApp{
		server:      server,
		conf:        conf,
		cache:       cache,
		usrRepo:     usrRepo,
		batchRepo:   batchRepo,
		studentRepo: studentRepo,
		classRepo:   classRepo,
		usrSvc:      usrSvc,
	}
}

func (app *testApp) request(method, path, token string, data ...[]byte) *httptest.ResponseRecorder {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.server.ServeHTTP(rec, req)
	return rec
}

func (app *testApp) getToken(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := GenerateToken(GetUserClaims(usr, app.conf), app.conf)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func (app *testApp) createUser(t *testing.T, uname, email, pwd string, role user.Role, isActive bool) user.User {
	t.Helper()
	now := time.Now().UTC()
	usr := user.User{
		Username:  uname,
		Email:     email,
		Role:      role,
		FirstName: "Test",
		LastName:  "User",
		Phone:     "0123456789",
		IsActive:  isActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	usr, err := app.usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

func (app *testApp) createBatch(t *testing.T, name, subject, teacherID string) batch.Batch {
	t.Helper()
	now := time.Now().UTC()
	b, err := app.batchRepo.CreateBatch(context.Background(), batch.Batch{
		Name:      name,
		Subject:   subject,
		Grade:     "10",
		Timing:    "Mon 16:00",
		TeacherID: teacherID,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("createBatch() failed: %v", err)
	}
	return b
}

func (app *testApp) createStudent(t *testing.T, name, email string, batchIDs []string) student.Student {
	t.Helper()
	now := time.Now().UTC()
	s := student.Student{
		Name:           name,
		Email:          email,
		Grade:          "10",
		BatchIDs:       batchIDs,
		EnrollmentDate: now,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.SetPassword("secret123"); err != nil {
		t.Fatalf("createStudent() failed: %v", err)
	}
	s, err := app.studentRepo.CreateStudent(context.Background(), s)
	if err != nil {
		t.Fatalf("createStudent() failed: %v", err)
	}
	return s
}

func (app *testApp) createClass(t *testing.T, title, batchID, teacherID string, scheduled time.Time) class.Class {
	t.Helper()
	now := time.Now().UTC()
	c, err := app.classRepo.CreateClass(context.Background(), class.Class{
		Title:         title,
		BatchID:       batchID,
		TeacherID:     teacherID,
		Subject:       "Maths",
		ScheduledDate: scheduled,
		StartTime:     "16:00",
		EndTime:       "17:00",
		Duration:      60,
		Status:        class.StatusScheduled,
		Attendance:    []class.AttendanceEntry{},
		Materials:     []class.Material{},
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		t.Fatalf("createClass() failed: %v", err)
	}
	return c
}

func testCtx() context.Context { return context.Background() }

func marshallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func checkCode(t *testing.T, want int, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != want {
		t.Errorf("failed! code = %v; wantCode %v; body = %s", rec.Code, want, rec.Body.String())
	}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decodeBody() failed: %v; body = %s", err, rec.Body.String())
	}
}
