package echoapi

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tutorbase/backend/core/student"
	"github.com/tutorbase/backend/core/user"
)

func Test_studentApi_create(t *testing.T) {
	app := setup(t)
	admin := app.createUser(t, "admin", "admin@test.cd", "s3cr3t", user.RoleAdmin, true)
	teacher := app.createUser(t, "teacher", "teacher@test.cd", "s3cr3t", user.RoleTeacher, true)
	token := app.getToken(t, admin)

	b := app.createBatch(t, "Maths A", "Maths", teacher.ID)

	body := func(batchIDs string) []byte {
		return []byte(fmt.Sprintf(
			`{"name": "Jane Doe", "email": "jane@test.cd", "password": "s3cr3t", "grade": "10", "batchIds": %s}`,
			batchIDs,
		))
	}

	tests := []httpTest{
		{
			name:     "missing batch ids",
			body:     body(`[]`),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "malformed batch id",
			body:     body(`["nope"]`),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "unknown batch id",
			body:     body(`["b3d9e82c-7d0f-4a34-9f0c-111111111111"]`),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "one valid one unknown",
			body:     body(`["` + b.ID + `", "b3d9e82c-7d0f-4a34-9f0c-111111111111"]`),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "success",
			body:     body(`["` + b.ID + `"]`),
			wantCode: http.StatusCreated,
		},
		{
			name:     "duplicate email",
			body:     body(`["` + b.ID + `"]`),
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.request(http.MethodPost, "/api/students/create", token, tt.body)
			checkCode(t, tt.wantCode, rec)

			if tt.wantCode == http.StatusCreated {
				var got student.Student
				decodeBody(t, rec, &got)
				assert.Equal(t, []string{b.ID}, got.BatchIDs)
				assert.False(t, got.EnrollmentDate.IsZero())
				assert.NotContains(t, rec.Body.String(), "passwordHash")
			}
		})
	}
}

func Test_studentApi_retrieve_readThrough(t *testing.T) {
	app := setup(t)
	admin := app.createUser(t, "admin", "admin@test.cd", "s3cr3t", user.RoleAdmin, true)
	teacher := app.createUser(t, "teacher", "teacher@test.cd", "s3cr3t", user.RoleTeacher, true)
	token := app.getToken(t, admin)

	b := app.createBatch(t, "Maths A", "Maths", teacher.ID)
	s := app.createStudent(t, "Jane Doe", "jane@test.cd", []string{b.ID})

	type resp struct {
		Student student.Student `json:"student"`
		Source  string          `json:"source"`
	}

	t.Run("malformed id", func(t *testing.T) {
		rec := app.request(http.MethodGet, "/api/students/nope", token)
		checkCode(t, http.StatusBadRequest, rec)
	})

	t.Run("unknown id", func(t *testing.T) {
		rec := app.request(http.MethodGet, "/api/students/b3d9e82c-7d0f-4a34-9f0c-111111111111", token)
		checkCode(t, http.StatusNotFound, rec)
	})

	t.Run("first hit comes from the store", func(t *testing.T) {
		rec := app.request(http.MethodGet, "/api/students/"+s.ID, token)
		checkCode(t, http.StatusOK, rec)

		var got resp
		decodeBody(t, rec, &got)
		assert.Equal(t, student.SourceStore, got.Source)
		assert.Equal(t, s.ID, got.Student.ID)
	})

	t.Run("second hit comes from the cache", func(t *testing.T) {
		rec := app.request(http.MethodGet, "/api/students/"+s.ID, token)
		checkCode(t, http.StatusOK, rec)

		var got resp
		decodeBody(t, rec, &got)
		assert.Equal(t, student.SourceCache, got.Source)
		assert.Equal(t, s.ID, got.Student.ID)
	})
}

func Test_studentApi_byBatch(t *testing.T) {
	app := setup(t)
	admin := app.createUser(t, "admin", "admin@test.cd", "s3cr3t", user.RoleAdmin, true)
	teacher := app.createUser(t, "teacher", "teacher@test.cd", "s3cr3t", user.RoleTeacher, true)
	token := app.getToken(t, admin)

	b := app.createBatch(t, "Maths A", "Maths", teacher.ID)
	other := app.createBatch(t, "Physics A", "Physics", teacher.ID)
	s1 := app.createStudent(t, "Alice", "alice@test.cd", []string{b.ID})
	s2 := app.createStudent(t, "Bob", "bob@test.cd", []string{b.ID, other.ID})
	app.createStudent(t, "Carol", "carol@test.cd", []string{other.ID})

	t.Run("unknown batch", func(t *testing.T) {
		rec := app.request(http.MethodGet, "/api/students/batch/b3d9e82c-7d0f-4a34-9f0c-111111111111", token)
		checkCode(t, http.StatusNotFound, rec)
	})

	t.Run("lists members with provenance", func(t *testing.T) {
		rec := app.request(http.MethodGet, "/api/students/batch/"+b.ID, token)
		checkCode(t, http.StatusOK, rec)

		var got batchStudentsResponse
		decodeBody(t, rec, &got)
		assert.Equal(t, b.ID, got.Batch.ID)
		assert.Equal(t, 2, got.Count)
		assert.Equal(t, student.SourceStore, got.Source)
		assert.Equal(t, []string{s1.ID, s2.ID}, []string{got.Students[0].ID, got.Students[1].ID})

		rec = app.request(http.MethodGet, "/api/students/batch/"+b.ID, token)
		checkCode(t, http.StatusOK, rec)
		decodeBody(t, rec, &got)
		assert.Equal(t, student.SourceCache, got.Source)
	})
}

func Test_studentApi_removeFromBatch(t *testing.T) {
	app := setup(t)
	admin := app.createUser(t, "admin", "admin@test.cd", "s3cr3t", user.RoleAdmin, true)
	teacher := app.createUser(t, "teacher", "teacher@test.cd", "s3cr3t", user.RoleTeacher, true)
	token := app.getToken(t, admin)

	b1 := app.createBatch(t, "Maths A", "Maths", teacher.ID)
	b2 := app.createBatch(t, "Physics A", "Physics", teacher.ID)
	s := app.createStudent(t, "Jane Doe", "jane@test.cd", []string{b1.ID, b2.ID})

	t.Run("not enrolled", func(t *testing.T) {
		lone := app.createStudent(t, "Solo", "solo@test.cd", []string{b2.ID})
		rec := app.request(http.MethodDelete, "/api/students/"+lone.ID+"/batch/"+b1.ID, token)
		checkCode(t, http.StatusBadRequest, rec)
	})

	t.Run("unknown student", func(t *testing.T) {
		rec := app.request(http.MethodDelete, "/api/students/b3d9e82c-7d0f-4a34-9f0c-111111111111/batch/"+b1.ID, token)
		checkCode(t, http.StatusNotFound, rec)
	})

	t.Run("drops membership and invalidates the cache", func(t *testing.T) {
		// warm the caches
		rec := app.request(http.MethodGet, "/api/students/"+s.ID, token)
		checkCode(t, http.StatusOK, rec)
		rec = app.request(http.MethodGet, "/api/students/batch/"+b1.ID, token)
		checkCode(t, http.StatusOK, rec)

		rec = app.request(http.MethodDelete, "/api/students/"+s.ID+"/batch/"+b1.ID, token)
		checkCode(t, http.StatusOK, rec)

		// stale entries were purged: lookups go back to the store
		var got struct {
			Student student.Student `json:"student"`
			Source  string          `json:"source"`
		}
		rec = app.request(http.MethodGet, "/api/students/"+s.ID, token)
		checkCode(t, http.StatusOK, rec)
		decodeBody(t, rec, &got)
		assert.Equal(t, student.SourceStore, got.Source)
		assert.Equal(t, []string{b2.ID}, got.Student.BatchIDs)

		var listing batchStudentsResponse
		rec = app.request(http.MethodGet, "/api/students/batch/"+b1.ID, token)
		checkCode(t, http.StatusOK, rec)
		decodeBody(t, rec, &listing)
		assert.Equal(t, student.SourceStore, listing.Source)
		assert.Equal(t, 0, listing.Count)
	})
}
