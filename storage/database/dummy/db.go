package dummydb

import (
	"sync"

	"github.com/tutorbase/backend/core/batch"
	"github.com/tutorbase/backend/core/class"
	"github.com/tutorbase/backend/core/student"
	"github.com/tutorbase/backend/core/user"
)

type (
	DB struct {
		user    *userTable
		batch   *batchTable
		student *studentTable
		class   *classTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	batchTable struct {
		sync.RWMutex
		table map[string]*batch.Batch
	}

	studentTable struct {
		sync.RWMutex
		table map[string]*student.Student
	}

	classTable struct {
		sync.RWMutex
		table map[string]*class.Class
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:    &userTable{table: make(map[string]*user.User)},
		batch:   &batchTable{table: make(map[string]*batch.Batch)},
		student: &studentTable{table: make(map[string]*student.Student)},
		class:   &classTable{table: make(map[string]*class.Class)},
	}
	return db, nil
}
