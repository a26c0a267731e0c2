package class

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tutorbase/backend/core"
)

// Status is the session lifecycle: scheduled -> ongoing -> completed, or
// cancelled.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusOngoing   Status = "ongoing"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusOngoing, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
	AttendanceExcused AttendanceStatus = "excused"
)

func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceExcused:
		return true
	}
	return false
}

type MaterialType string

const (
	MaterialDocument   MaterialType = "document"
	MaterialVideo      MaterialType = "video"
	MaterialLink       MaterialType = "link"
	MaterialAssignment MaterialType = "assignment"
)

func (t MaterialType) Valid() bool {
	switch t {
	case MaterialDocument, MaterialVideo, MaterialLink, MaterialAssignment:
		return true
	}
	return false
}

// AttendanceEntry is one roster line; the roster is replaced wholesale on
// every mark-attendance operation.
type AttendanceEntry struct {
	StudentID string           `json:"studentId"`
	Status    AttendanceStatus `json:"status"`
	MarkedBy  string           `json:"markedBy"`
	MarkedAt  time.Time        `json:"markedAt"`
	Notes     string           `json:"notes,omitempty"`
}

type Material struct {
	Title      string       `json:"title"`
	Type       MaterialType `json:"type"`
	URL        string       `json:"url"`
	UploadedAt time.Time    `json:"uploadedAt"`
}

type Homework struct {
	Description string    `json:"description"`
	DueDate     time.Time `json:"dueDate"`
	Attachments []string  `json:"attachments,omitempty"`
}

// Class is one concrete scheduled session under a batch. Soft-deleted via
// IsActive, never hard-deleted.
type Class struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	Description   string            `json:"description,omitempty"`
	BatchID       string            `json:"batchId"`
	TeacherID     string            `json:"teacherId"`
	Subject       string            `json:"subject,omitempty"`
	ScheduledDate time.Time         `json:"scheduledDate"`
	StartTime     string            `json:"startTime"`
	EndTime       string            `json:"endTime"`
	Duration      int               `json:"duration"` // minutes
	Venue         string            `json:"venue,omitempty"`
	MeetingLink   string            `json:"meetingLink,omitempty"`
	Topics        []string          `json:"topics,omitempty"`
	Status        Status            `json:"status"`
	Attendance    []AttendanceEntry `json:"attendance"`
	Materials     []Material        `json:"materials"`
	Homework      *Homework         `json:"homework,omitempty"`
	IsActive      bool              `json:"isActive"`
	CreatedAt     time.Time         `json:"createdAt"` // UTC
	UpdatedAt     time.Time         `json:"updatedAt"` // UTC
}

type NewClass struct {
	Title         string    `json:"title" validate:"required,max=100"`
	Description   string    `json:"description"`
	BatchID       string    `json:"batchId" validate:"required,uuid4"`
	TeacherID     string    `json:"teacherId" validate:"required,uuid4"`
	Subject       string    `json:"subject"`
	ScheduledDate time.Time `json:"scheduledDate" validate:"required"`
	StartTime     string    `json:"startTime" validate:"required"`
	EndTime       string    `json:"endTime" validate:"required"`
	Duration      int       `json:"duration" validate:"required,gt=0"`
	Venue         string    `json:"venue"`
	MeetingLink   string    `json:"meetingLink"`
	Topics        []string  `json:"topics"`
}

func (nc *NewClass) Validate(validate *validator.Validate) error {
	nc.Title = core.CleanString(nc.Title)
	nc.BatchID = core.CleanString(nc.BatchID)
	nc.TeacherID = core.CleanString(nc.TeacherID)
	return validate.Struct(nc)
}

// UpdateClass holds the mutable schedule/detail fields. The attendance
// roster, ids and creation stamp are not updatable through it.
type UpdateClass struct {
	Title         string     `json:"title" validate:"omitempty,max=100"`
	Description   *string    `json:"description"`
	Subject       string     `json:"subject"`
	ScheduledDate *time.Time `json:"scheduledDate"`
	StartTime     string     `json:"startTime"`
	EndTime       string     `json:"endTime"`
	Duration      int        `json:"duration" validate:"omitempty,gt=0"`
	Venue         *string    `json:"venue"`
	MeetingLink   *string    `json:"meetingLink"`
	Topics        []string   `json:"topics"`
	Status        Status     `json:"status" validate:"omitempty,oneof=scheduled ongoing completed cancelled"`
}

func (uc *UpdateClass) Validate(validate *validator.Validate) error {
	uc.Title = core.CleanString(uc.Title)
	return validate.Struct(uc)
}

// AttendanceMark is one submitted roster line.
type AttendanceMark struct {
	StudentID string           `json:"studentId" validate:"required,uuid4"`
	Status    AttendanceStatus `json:"status" validate:"required,oneof=present absent late excused"`
	Notes     string           `json:"notes"`
}

type NewMaterial struct {
	Title string       `json:"title" validate:"required"`
	Type  MaterialType `json:"type" validate:"required,oneof=document video link assignment"`
	URL   string       `json:"url" validate:"required"`
}

type UpdateHomework struct {
	Description string     `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
	Attachments []string   `json:"attachments"`
}

// QueryFilter applies AND on available fields; zero values are skipped.
type QueryFilter struct {
	BatchID   string    `query:"-"`
	TeacherID string    `query:"-"`
	Status    Status    `query:"status"`
	StartDate time.Time `query:"startDate"`
	EndDate   time.Time `query:"endDate"`
}

// Stats aggregates one class's attendance and materials.
type (
	AttendanceStats struct {
		Total          int     `json:"total"`
		Present        int     `json:"present"`
		Absent         int     `json:"absent"`
		Late           int     `json:"late"`
		Excused        int     `json:"excused"`
		AttendanceRate float64 `json:"attendanceRate"` // percent
	}

	MaterialStats struct {
		Total  int                  `json:"total"`
		ByType map[MaterialType]int `json:"byType"`
	}

	ClassInfo struct {
		ID            string    `json:"id"`
		Title         string    `json:"title"`
		ScheduledDate time.Time `json:"scheduledDate"`
		Status        Status    `json:"status"`
	}

	Stats struct {
		ClassInfo       ClassInfo       `json:"classInfo"`
		Attendance      AttendanceStats `json:"attendance"`
		Materials       MaterialStats   `json:"materials"`
		HasHomework     bool            `json:"hasHomework"`
		HomeworkDueDate *time.Time      `json:"homeworkDueDate,omitempty"`
	}
)
