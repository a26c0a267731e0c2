package echoapi

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tutorbase/backend/core/class"
	"github.com/tutorbase/backend/core/user"
)

func Test_classApi_create(t *testing.T) {
	app := setup(t)
	admin := app.createUser(t, "admin", "admin@test.cd", "s3cr3t", user.RoleAdmin, true)
	teacher := app.createUser(t, "teacher", "teacher@test.cd", "s3cr3t", user.RoleTeacher, true)
	token := app.getToken(t, admin)

	b := app.createBatch(t, "Maths A", "Maths", teacher.ID)
	scheduled := time.Now().UTC().Add(24 * time.Hour).Format(time.RFC3339)

	body := func(batchID, teacherID string) []byte {
		return []byte(fmt.Sprintf(`{
			"title": "Algebra basics", "batchId": %q, "teacherId": %q, "subject": "Maths",
			"scheduledDate": %q, "startTime": "16:00", "endTime": "17:00", "duration": 60
		}`, batchID, teacherID, scheduled))
	}

	tests := []httpTest{
		{
			name:     "missing fields",
			body:     []byte(`{}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "unknown batch",
			body:     body("b3d9e82c-7d0f-4a34-9f0c-111111111111", teacher.ID),
			wantCode: http.StatusNotFound,
		},
		{
			name:     "unknown teacher",
			body:     body(b.ID, "b3d9e82c-7d0f-4a34-9f0c-111111111111"),
			wantCode: http.StatusNotFound,
		},
		{
			name:     "admin is not a teacher",
			body:     body(b.ID, admin.ID),
			wantCode: http.StatusNotFound,
		},
		{
			name:     "success",
			body:     body(b.ID, teacher.ID),
			wantCode: http.StatusCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.request(http.MethodPost, "/api/classes/create", token, tt.body)
			checkCode(t, tt.wantCode, rec)

			if tt.wantCode == http.StatusCreated {
				var got class.Class
				decodeBody(t, rec, &got)
				assert.Equal(t, class.StatusScheduled, got.Status)
				assert.Empty(t, got.Attendance)
				assert.Empty(t, got.Materials)
				assert.Nil(t, got.Homework)
			}
		})
	}
}

func Test_classApi_listings(t *testing.T) {
	app := setup(t)
	admin := app.createUser(t, "admin", "admin@test.cd", "s3cr3t", user.RoleAdmin, true)
	teacher1 := app.createUser(t, "teach1", "teach1@test.cd", "s3cr3t", user.RoleTeacher, true)
	teacher2 := app.createUser(t, "teach2", "teach2@test.cd", "s3cr3t", user.RoleTeacher, true)
	token := app.getToken(t, admin)

	b1 := app.createBatch(t, "Maths A", "Maths", teacher1.ID)
	b2 := app.createBatch(t, "Physics A", "Physics", teacher2.ID)

	now := time.Now().UTC()
	past := app.createClass(t, "Last week", b1.ID, teacher1.ID, now.Add(-7*24*time.Hour))
	soon := app.createClass(t, "Tomorrow", b1.ID, teacher1.ID, now.Add(24*time.Hour))
	later := app.createClass(t, "Next week", b2.ID, teacher2.ID, now.Add(7*24*time.Hour))

	t.Run("by batch", func(t *testing.T) {
		rec := app.request(http.MethodGet, "/api/classes/batch/"+b1.ID, token)
		checkCode(t, http.StatusOK, rec)

		var got []class.Class
		decodeBody(t, rec, &got)
		assert.Len(t, got, 2)
		// scheduled date ascending
		assert.Equal(t, past.ID, got[0].ID)
		assert.Equal(t, soon.ID, got[1].ID)
	})

	t.Run("by batch with date filter", func(t *testing.T) {
		startDate := now.Format("2006-01-02")
		rec := app.request(http.MethodGet, "/api/classes/batch/"+b1.ID+"?startDate="+startDate, token)
		checkCode(t, http.StatusOK, rec)

		var got []class.Class
		decodeBody(t, rec, &got)
		assert.Len(t, got, 1)
		assert.Equal(t, soon.ID, got[0].ID)
	})

	t.Run("by batch malformed date", func(t *testing.T) {
		rec := app.request(http.MethodGet, "/api/classes/batch/"+b1.ID+"?startDate=tomorrow", token)
		checkCode(t, http.StatusBadRequest, rec)
	})

	t.Run("by teacher as teacher", func(t *testing.T) {
		rec := app.request(http.MethodGet, "/api/classes/teacher/"+teacher2.ID, app.getToken(t, teacher2))
		checkCode(t, http.StatusOK, rec)

		var got []class.Class
		decodeBody(t, rec, &got)
		assert.Len(t, got, 1)
		assert.Equal(t, later.ID, got[0].ID)
	})

	t.Run("upcoming skips past classes", func(t *testing.T) {
		rec := app.request(http.MethodGet, "/api/classes/upcoming", token)
		checkCode(t, http.StatusOK, rec)

		var got []class.Class
		decodeBody(t, rec, &got)
		assert.Len(t, got, 2)
		assert.Equal(t, soon.ID, got[0].ID)
		assert.Equal(t, later.ID, got[1].ID)
	})

	t.Run("upcoming honors limit", func(t *testing.T) {
		rec := app.request(http.MethodGet, "/api/classes/upcoming?limit=1", token)
		checkCode(t, http.StatusOK, rec)

		var got []class.Class
		decodeBody(t, rec, &got)
		assert.Len(t, got, 1)
		assert.Equal(t, soon.ID, got[0].ID)
	})

	t.Run("retrieve", func(t *testing.T) {
		rec := app.request(http.MethodGet, "/api/classes/"+soon.ID, token)
		checkCode(t, http.StatusOK, rec)
	})

	t.Run("retrieve unknown", func(t *testing.T) {
		rec := app.request(http.MethodGet, "/api/classes/b3d9e82c-7d0f-4a34-9f0c-111111111111", token)
		checkCode(t, http.StatusNotFound, rec)
	})
}

func Test_classApi_update_and_softDelete(t *testing.T) {
	app := setup(t)
	admin := app.createUser(t, "admin", "admin@test.cd", "s3cr3t", user.RoleAdmin, true)
	teacher := app.createUser(t, "teacher", "teacher@test.cd", "s3cr3t", user.RoleTeacher, true)
	token := app.getToken(t, admin)

	b := app.createBatch(t, "Maths A", "Maths", teacher.ID)
	c := app.createClass(t, "Algebra", b.ID, teacher.ID, time.Now().UTC().Add(24*time.Hour))

	t.Run("field merge", func(t *testing.T) {
		rec := app.request(http.MethodPut, "/api/classes/"+c.ID, token, []byte(`{"title": "Algebra II", "status": "ongoing"}`))
		checkCode(t, http.StatusOK, rec)

		var got class.Class
		decodeBody(t, rec, &got)
		assert.Equal(t, "Algebra II", got.Title)
		assert.Equal(t, class.StatusOngoing, got.Status)
		assert.Equal(t, "16:00", got.StartTime) // unchanged
	})

	t.Run("invalid status", func(t *testing.T) {
		rec := app.request(http.MethodPut, "/api/classes/"+c.ID, token, []byte(`{"status": "paused"}`))
		checkCode(t, http.StatusBadRequest, rec)
	})

	t.Run("soft delete hides the class", func(t *testing.T) {
		rec := app.request(http.MethodDelete, "/api/classes/"+c.ID, token)
		checkCode(t, http.StatusOK, rec)

		rec = app.request(http.MethodGet, "/api/classes/"+c.ID, token)
		checkCode(t, http.StatusNotFound, rec)

		rec = app.request(http.MethodDelete, "/api/classes/"+c.ID, token)
		checkCode(t, http.StatusOK, rec) // idempotent on the flag, record still exists
	})
}

func Test_classApi_attendance(t *testing.T) {
	app := setup(t)
	admin := app.createUser(t, "admin", "admin@test.cd", "s3cr3t", user.RoleAdmin, true)
	teacher := app.createUser(t, "teacher", "teacher@test.cd", "s3cr3t", user.RoleTeacher, true)
	token := app.getToken(t, teacher)

	b := app.createBatch(t, "Maths A", "Maths", teacher.ID)
	s1 := app.createStudent(t, "Alice", "alice@test.cd", []string{b.ID})
	s2 := app.createStudent(t, "Bob", "bob@test.cd", []string{b.ID})
	c := app.createClass(t, "Algebra", b.ID, teacher.ID, time.Now().UTC().Add(24*time.Hour))

	marks := func(entries string) []byte {
		return []byte(`{"attendance": [` + entries + `]}`)
	}
	entry := func(studentID, status string) string {
		return fmt.Sprintf(`{"studentId": %q, "status": %q}`, studentID, status)
	}

	t.Run("empty roster", func(t *testing.T) {
		rec := app.request(http.MethodPost, "/api/classes/"+c.ID+"/attendance", token, marks(""))
		checkCode(t, http.StatusBadRequest, rec)
	})

	t.Run("invalid status fails the whole submission", func(t *testing.T) {
		rec := app.request(http.MethodPost, "/api/classes/"+c.ID+"/attendance", token,
			marks(entry(s1.ID, "present")+","+entry(s2.ID, "asleep")))
		checkCode(t, http.StatusBadRequest, rec)

		var got class.Class
		recGet := app.request(http.MethodGet, "/api/classes/"+c.ID, token)
		decodeBody(t, recGet, &got)
		assert.Empty(t, got.Attendance) // no partial write
	})

	t.Run("unknown class", func(t *testing.T) {
		rec := app.request(http.MethodPost, "/api/classes/b3d9e82c-7d0f-4a34-9f0c-111111111111/attendance", token,
			marks(entry(s1.ID, "present")))
		checkCode(t, http.StatusNotFound, rec)
	})

	t.Run("marks the roster", func(t *testing.T) {
		rec := app.request(http.MethodPost, "/api/classes/"+c.ID+"/attendance", token,
			marks(entry(s1.ID, "present")+","+entry(s2.ID, "absent")))
		checkCode(t, http.StatusOK, rec)

		var got class.Class
		decodeBody(t, rec, &got)
		assert.Len(t, got.Attendance, 2)
		assert.Equal(t, teacher.ID, got.Attendance[0].MarkedBy)
		assert.False(t, got.Attendance[0].MarkedAt.IsZero())
	})

	t.Run("resubmission replaces wholesale", func(t *testing.T) {
		rec := app.request(http.MethodPost, "/api/classes/"+c.ID+"/attendance", app.getToken(t, admin),
			marks(entry(s2.ID, "late")))
		checkCode(t, http.StatusOK, rec)

		var got class.Class
		decodeBody(t, rec, &got)
		assert.Len(t, got.Attendance, 1)
		assert.Equal(t, s2.ID, got.Attendance[0].StudentID)
		assert.Equal(t, class.AttendanceLate, got.Attendance[0].Status)
		assert.Equal(t, admin.ID, got.Attendance[0].MarkedBy)
	})
}

func Test_classApi_materials(t *testing.T) {
	app := setup(t)
	teacher := app.createUser(t, "teacher", "teacher@test.cd", "s3cr3t", user.RoleTeacher, true)
	token := app.getToken(t, teacher)

	b := app.createBatch(t, "Maths A", "Maths", teacher.ID)
	c := app.createClass(t, "Algebra", b.ID, teacher.ID, time.Now().UTC().Add(24*time.Hour))

	t.Run("empty list", func(t *testing.T) {
		rec := app.request(http.MethodPost, "/api/classes/"+c.ID+"/materials", token, []byte(`{"materials": []}`))
		checkCode(t, http.StatusBadRequest, rec)
	})

	t.Run("invalid type", func(t *testing.T) {
		rec := app.request(http.MethodPost, "/api/classes/"+c.ID+"/materials", token,
			[]byte(`{"materials": [{"title": "Notes", "type": "scroll", "url": "https://x.cd/notes"}]}`))
		checkCode(t, http.StatusBadRequest, rec)
	})

	t.Run("missing url", func(t *testing.T) {
		rec := app.request(http.MethodPost, "/api/classes/"+c.ID+"/materials", token,
			[]byte(`{"materials": [{"title": "Notes", "type": "document"}]}`))
		checkCode(t, http.StatusBadRequest, rec)
	})

	t.Run("appends across submissions", func(t *testing.T) {
		rec := app.request(http.MethodPost, "/api/classes/"+c.ID+"/materials", token,
			[]byte(`{"materials": [{"title": "Notes", "type": "document", "url": "https://x.cd/notes"}]}`))
		checkCode(t, http.StatusOK, rec)

		rec = app.request(http.MethodPost, "/api/classes/"+c.ID+"/materials", token,
			[]byte(`{"materials": [{"title": "Recap", "type": "video", "url": "https://x.cd/recap"}]}`))
		checkCode(t, http.StatusOK, rec)

		var got class.Class
		decodeBody(t, rec, &got)
		assert.Len(t, got.Materials, 2)
		assert.Equal(t, class.MaterialDocument, got.Materials[0].Type)
		assert.Equal(t, class.MaterialVideo, got.Materials[1].Type)
		assert.False(t, got.Materials[1].UploadedAt.IsZero())
	})
}

func Test_classApi_homework(t *testing.T) {
	app := setup(t)
	teacher := app.createUser(t, "teacher", "teacher@test.cd", "s3cr3t", user.RoleTeacher, true)
	token := app.getToken(t, teacher)

	b := app.createBatch(t, "Maths A", "Maths", teacher.ID)
	c := app.createClass(t, "Algebra", b.ID, teacher.ID, time.Now().UTC().Add(24*time.Hour))

	due := time.Now().UTC().Add(72 * time.Hour).Truncate(time.Second)

	t.Run("set", func(t *testing.T) {
		rec := app.request(http.MethodPut, "/api/classes/"+c.ID+"/homework", token,
			[]byte(`{"description": "Exercises 1-10", "dueDate": "`+due.Format(time.RFC3339)+`"}`))
		checkCode(t, http.StatusOK, rec)

		var got class.Class
		decodeBody(t, rec, &got)
		assert.NotNil(t, got.Homework)
		assert.Equal(t, "Exercises 1-10", got.Homework.Description)
		assert.True(t, due.Equal(got.Homework.DueDate))
	})

	t.Run("merge keeps absent fields", func(t *testing.T) {
		rec := app.request(http.MethodPut, "/api/classes/"+c.ID+"/homework", token,
			[]byte(`{"attachments": ["https://x.cd/sheet.pdf"]}`))
		checkCode(t, http.StatusOK, rec)

		var got class.Class
		decodeBody(t, rec, &got)
		assert.Equal(t, "Exercises 1-10", got.Homework.Description)
		assert.True(t, due.Equal(got.Homework.DueDate))
		assert.Equal(t, []string{"https://x.cd/sheet.pdf"}, got.Homework.Attachments)
	})

	t.Run("unknown class", func(t *testing.T) {
		rec := app.request(http.MethodPut, "/api/classes/b3d9e82c-7d0f-4a34-9f0c-111111111111/homework", token,
			[]byte(`{"description": "x"}`))
		checkCode(t, http.StatusNotFound, rec)
	})
}

func Test_classApi_stats(t *testing.T) {
	app := setup(t)
	teacher := app.createUser(t, "teacher", "teacher@test.cd", "s3cr3t", user.RoleTeacher, true)
	token := app.getToken(t, teacher)

	b := app.createBatch(t, "Maths A", "Maths", teacher.ID)
	s1 := app.createStudent(t, "Alice", "alice@test.cd", []string{b.ID})
	s2 := app.createStudent(t, "Bob", "bob@test.cd", []string{b.ID})
	s3 := app.createStudent(t, "Carol", "carol@test.cd", []string{b.ID})
	c := app.createClass(t, "Algebra", b.ID, teacher.ID, time.Now().UTC().Add(24*time.Hour))

	t.Run("empty class", func(t *testing.T) {
		rec := app.request(http.MethodGet, "/api/classes/"+c.ID+"/stats", token)
		checkCode(t, http.StatusOK, rec)

		var got class.Stats
		decodeBody(t, rec, &got)
		assert.Equal(t, 0, got.Attendance.Total)
		assert.Equal(t, float64(0), got.Attendance.AttendanceRate)
		assert.Equal(t, 0, got.Materials.Total)
		assert.Len(t, got.Materials.ByType, 4) // all types pre-seeded
		assert.False(t, got.HasHomework)
		assert.Nil(t, got.HomeworkDueDate)
	})

	marks := fmt.Sprintf(`{"attendance": [
		{"studentId": %q, "status": "present"},
		{"studentId": %q, "status": "late"},
		{"studentId": %q, "status": "absent"}
	]}`, s1.ID, s2.ID, s3.ID)
	rec := app.request(http.MethodPost, "/api/classes/"+c.ID+"/attendance", token, []byte(marks))
	checkCode(t, http.StatusOK, rec)

	rec = app.request(http.MethodPost, "/api/classes/"+c.ID+"/materials", token,
		[]byte(`{"materials": [
			{"title": "Notes", "type": "document", "url": "https://x.cd/notes"},
			{"title": "Recap", "type": "video", "url": "https://x.cd/recap"},
			{"title": "More notes", "type": "document", "url": "https://x.cd/more"}
		]}`))
	checkCode(t, http.StatusOK, rec)

	due := time.Now().UTC().Add(72 * time.Hour).Truncate(time.Second)
	rec = app.request(http.MethodPut, "/api/classes/"+c.ID+"/homework", token,
		[]byte(`{"description": "Exercises", "dueDate": "`+due.Format(time.RFC3339)+`"}`))
	checkCode(t, http.StatusOK, rec)

	t.Run("aggregates", func(t *testing.T) {
		rec := app.request(http.MethodGet, "/api/classes/"+c.ID+"/stats", token)
		checkCode(t, http.StatusOK, rec)

		var got class.Stats
		decodeBody(t, rec, &got)
		assert.Equal(t, c.ID, got.ClassInfo.ID)
		assert.Equal(t, 3, got.Attendance.Total)
		assert.Equal(t, 1, got.Attendance.Present)
		assert.Equal(t, 1, got.Attendance.Late)
		assert.Equal(t, 1, got.Attendance.Absent)
		assert.Equal(t, 0, got.Attendance.Excused)
		// (present + late) / total = 2/3
		assert.Equal(t, 66.67, got.Attendance.AttendanceRate)
		assert.Equal(t, 3, got.Materials.Total)
		assert.Equal(t, 2, got.Materials.ByType[class.MaterialDocument])
		assert.Equal(t, 1, got.Materials.ByType[class.MaterialVideo])
		assert.Equal(t, 0, got.Materials.ByType[class.MaterialLink])
		assert.True(t, got.HasHomework)
		if assert.NotNil(t, got.HomeworkDueDate) {
			assert.True(t, due.Equal(*got.HomeworkDueDate))
		}
	})
}
