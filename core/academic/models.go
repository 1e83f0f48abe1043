package academic

import (
	"fmt"
	"time"

	"github.com/uiaee/portal/core"
)

type Session struct {
	ID        int       `json:"id"`
	Name      string    `json:"session_name"` // e.g. 2024/2025
	IsCurrent bool      `json:"is_current"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

type Course struct {
	ID       int    `json:"-"`
	Code     string `json:"course_code"`
	Title    string `json:"course_title"`
	Unit     int    `json:"course_unit"`
	Level    int    `json:"level"`
	Semester int    `json:"semester"`
}

type Result struct {
	ID          int       `json:"id"`
	StudentID   int       `json:"student_id"`
	CourseCode  string    `json:"course_code"`
	CourseTitle string    `json:"course_title"`
	CourseUnit  int       `json:"course_unit"`
	Score       int       `json:"score"`
	Grade       string    `json:"grade"`
	GradePoint  float64   `json:"grade_point"`
	Semester    int       `json:"semester"`
	SessionID   int       `json:"session_id"`
	SessionName string    `json:"session_name"`
	UploadedBy  int       `json:"uploaded_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"` // UTC
}

// GroupKey is "{session}_S{semester}", or "Unknown_S{semester}" without a session.
func (r Result) GroupKey() string {
	name := r.SessionName
	if name == "" {
		name = "Unknown"
	}
	return fmt.Sprintf("%s_S%d", name, r.Semester)
}

// NewResult is one course result uploaded by an admin. Grade and points are derived, never sent.
type NewResult struct {
	MatricNumber string `json:"matric_number" validate:"required,matric"`
	CourseCode   string `json:"course_code" validate:"required,max=20"`
	CourseTitle  string `json:"course_title" validate:"required,max=200"`
	CourseUnit   int    `json:"course_unit" validate:"required,min=1,max=12"`
	Score        int    `json:"score" validate:"min=0,max=100"`
	Semester     int    `json:"semester" validate:"required,oneof=1 2"`
	SessionID    int    `json:"session_id" validate:"required"`
}

func (nr *NewResult) Validate() error {
	nr.MatricNumber = core.CleanString(nr.MatricNumber)
	nr.CourseCode = core.CleanString(nr.CourseCode)
	nr.CourseTitle = core.CleanString(nr.CourseTitle)
	return core.Validate.Struct(nr)
}

type DeleteResult struct {
	ResultID int `json:"result_id" validate:"required"`
}

func (dr DeleteResult) Validate() error { return core.Validate.Struct(dr) }

type NewSession struct {
	Name      string `json:"session_name" validate:"required,session"`
	IsCurrent bool   `json:"is_current"`
}

func (ns *NewSession) Validate() error {
	ns.Name = core.CleanString(ns.Name)
	return core.Validate.Struct(ns)
}

type ResultGroup struct {
	Key         string   `json:"key"`
	SessionName string   `json:"session_name"`
	Semester    int      `json:"semester"`
	Results     []Result `json:"results"`
	GPA         float64  `json:"gpa"`
	Units       int      `json:"units"`
}

type Transcript struct {
	Groups []ResultGroup `json:"groups"`
	CGPA   float64       `json:"cgpa"`
	Units  int           `json:"units"`
}

// NewTranscript groups results (already ordered) per session and semester, keeping their order.
func NewTranscript(results []Result) Transcript {
	t := Transcript{Groups: []ResultGroup{}}
	idx := make(map[string]int)
	for _, r := range results {
		key := r.GroupKey()
		i, ok := idx[key]
		if !ok {
			i = len(t.Groups)
			idx[key] = i
			t.Groups = append(t.Groups, ResultGroup{Key: key, SessionName: r.SessionName, Semester: r.Semester})
		}
		t.Groups[i].Results = append(t.Groups[i].Results, r)
	}
	for i := range t.Groups {
		t.Groups[i].GPA, t.Groups[i].Units = GPA(t.Groups[i].Results)
	}
	t.CGPA, t.Units = GPA(results)
	return t
}

// Dashboard is what a student sees; results stay hidden until a payment is approved.
type Dashboard struct {
	HasPayment     bool       `json:"has_payment"`
	Message        string     `json:"message,omitempty"`
	Sessions       []Session  `json:"sessions"`
	CurrentSession *Session   `json:"current_session"`
	Transcript     Transcript `json:"transcript"`
}
