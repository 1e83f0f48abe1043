package academic

import (
	"context"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/uiaee/portal/core"
	"github.com/uiaee/portal/core/student"
)

const (
	DefaultSessionName = "2024/2025"

	searchMinLen = 2
	searchLimit  = 20

	paymentRequiredMsg = "You must complete payment before accessing results."
)

var (
	// errors
	ErrSessionNotFound = core.NewNotFoundError("session not found")
	ErrResultNotFound  = core.NewNotFoundError("result not found")
	ErrSessionExists   = errors.New("this session already exists")
)

type (
	Repository interface {
		// ListSessions returns sessions by name, newest first.
		ListSessions(ctx context.Context) ([]Session, error)
		GetSession(ctx context.Context, id int) (Session, error)
		GetSessionByName(ctx context.Context, name string) (Session, error)
		// CreateSession makes s the only current session when s.IsCurrent is set.
		CreateSession(ctx context.Context, s Session) (Session, error)
		CreateCourse(ctx context.Context, c Course) (Course, error)
		CountCourses(ctx context.Context) (int, error)
		// SearchCourses matches code or title case-insensitively, ordered by code.
		SearchCourses(ctx context.Context, q string, limit int) ([]Course, error)
		CreateResult(ctx context.Context, r Result) (Result, error)
		GetResult(ctx context.Context, id int) (Result, error)
		DeleteResult(ctx context.Context, id int) error
		// StudentResults orders by session name desc, then semester and course code.
		StudentResults(ctx context.Context, studentID int) ([]Result, error)
		CountResults(ctx context.Context) (int, error)
	}

	StudentFinder interface {
		GetByMatric(ctx context.Context, matric string) (student.Student, error)
		GetByID(ctx context.Context, id int) (student.Student, error)
	}

	PaymentChecker interface {
		HasApprovedPayment(ctx context.Context, matric string) (bool, error)
	}

	Service struct {
		repo     Repository
		students StudentFinder
		payments PaymentChecker
		cache    core.Cache
		logger   core.Logger
	}
)

func NewService(
	repo Repository,
	students StudentFinder,
	payments PaymentChecker,
	cache core.Cache,
	logger core.Logger,
) *Service {
	return &Service{repo: repo, students: students, payments: payments, cache: cache, logger: logger}
}

func (svc *Service) Sessions(ctx context.Context) ([]Session, error) {
	return svc.repo.ListSessions(ctx)
}

// CurrentSession returns the session flagged current, if any.
func (svc *Service) CurrentSession(ctx context.Context) (*Session, error) {
	sessions, err := svc.repo.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	for _, s := range sessions {
		if s.IsCurrent {
			s := s
			return &s, nil
		}
	}
	return nil, nil
}

func (svc *Service) CreateSession(ctx context.Context, ns NewSession) (Session, error) {
	if _, err := svc.repo.GetSessionByName(ctx, ns.Name); err == nil {
		return Session{}, core.NewValidationError(
			ErrSessionExists, core.FieldError{Field: "session_name", Error: ErrSessionExists.Error()},
		)
	} else if !core.IsNotFound(err) {
		return Session{}, err
	}
	return svc.repo.CreateSession(ctx, Session{Name: ns.Name, IsCurrent: ns.IsCurrent, CreatedAt: nowFunc().UTC()})
}

// SearchCourses backs the result upload autocomplete. Queries shorter than 2 characters match nothing.
func (svc *Service) SearchCourses(ctx context.Context, q string) ([]Course, error) {
	q = core.CleanString(q, true /* lower */)
	if utf8.RuneCountInString(q) < searchMinLen {
		return []Course{}, nil
	}

	key := "courses:search:" + q
	if svc.cache != nil {
		if data, ok, err := svc.cache.Get(ctx, key); err != nil {
			svc.logger.Warn("reading course search from cache", err)
		} else if ok {
			var courses []Course
			if json.Unmarshal(data, &courses) == nil {
				return courses, nil
			}
		}
	}

	courses, err := svc.repo.SearchCourses(ctx, q, searchLimit)
	if err != nil {
		return nil, errors.Wrap(err, "searching courses")
	}
	if courses == nil {
		courses = []Course{}
	}

	if svc.cache != nil {
		if data, err := json.Marshal(courses); err == nil {
			if err = svc.cache.Set(ctx, key, data, core.Conf.Redis.CacheTTL); err != nil {
				svc.logger.Warn("caching course search", err)
			}
		}
	}
	return courses, nil
}

// UploadResult grades a score for the student's level and records it.
func (svc *Service) UploadResult(ctx context.Context, nr NewResult, uploadedBy int) (Result, error) {
	st, err := svc.students.GetByMatric(ctx, nr.MatricNumber)
	if err != nil {
		if core.IsNotFound(err) {
			return Result{}, core.NewValidationError(err, core.FieldError{Field: "matric_number", Error: "Student not found"})
		}
		return Result{}, err
	}
	sess, err := svc.repo.GetSession(ctx, nr.SessionID)
	if err != nil {
		if core.IsNotFound(err) {
			return Result{}, core.NewValidationError(err, core.FieldError{Field: "session_id", Error: err.Error()})
		}
		return Result{}, err
	}

	level := st.Level
	if level == 0 {
		level = LevelForSession(st.MatricNumber, sess.Name)
	}
	r := Result{
		StudentID:   st.ID,
		CourseCode:  strings.ToUpper(nr.CourseCode),
		CourseTitle: nr.CourseTitle,
		CourseUnit:  nr.CourseUnit,
		Score:       nr.Score,
		Grade:       LetterGrade(nr.Score),
		GradePoint:  GradePoints(nr.Score, level),
		Semester:    nr.Semester,
		SessionID:   sess.ID,
		SessionName: sess.Name,
		UploadedBy:  uploadedBy,
		CreatedAt:   nowFunc().UTC(),
	}
	return svc.repo.CreateResult(ctx, r)
}

func (svc *Service) DeleteResult(ctx context.Context, id int) error {
	if _, err := svc.repo.GetResult(ctx, id); err != nil {
		return err
	}
	return svc.repo.DeleteResult(ctx, id)
}

func (svc *Service) StudentResults(ctx context.Context, studentID int) (student.Student, []Result, error) {
	st, err := svc.students.GetByID(ctx, studentID)
	if err != nil {
		return student.Student{}, nil, err
	}
	results, err := svc.repo.StudentResults(ctx, studentID)
	if err != nil {
		return student.Student{}, nil, errors.Wrap(err, "querying results")
	}
	if results == nil {
		results = []Result{}
	}
	return st, results, nil
}

func (svc *Service) CountResults(ctx context.Context) (int, error) {
	return svc.repo.CountResults(ctx)
}

// Dashboard builds the student's results page. Without an approved payment only the reminder is returned.
func (svc *Service) Dashboard(ctx context.Context, st student.Student) (Dashboard, error) {
	paid, err := svc.payments.HasApprovedPayment(ctx, st.MatricNumber)
	if err != nil {
		svc.logger.Error("checking payment status", err, st.Person())
		paid = false
	}
	if !paid {
		return Dashboard{
			Message:    paymentRequiredMsg,
			Sessions:   []Session{},
			Transcript: Transcript{Groups: []ResultGroup{}},
		}, nil
	}

	sessions, err := svc.repo.ListSessions(ctx)
	if err != nil {
		return Dashboard{}, errors.Wrap(err, "querying sessions")
	}
	results, err := svc.repo.StudentResults(ctx, st.ID)
	if err != nil {
		return Dashboard{}, errors.Wrap(err, "querying results")
	}

	d := Dashboard{HasPayment: true, Sessions: sessions, Transcript: NewTranscript(results)}
	if d.Sessions == nil {
		d.Sessions = []Session{}
	}
	for _, s := range d.Sessions {
		if s.IsCurrent {
			s := s
			d.CurrentSession = &s
			break
		}
	}
	return d, nil
}

// Seed inserts the default session and the course list when missing.
func (svc *Service) Seed(ctx context.Context) error {
	if _, err := svc.repo.GetSessionByName(ctx, DefaultSessionName); core.IsNotFound(err) {
		if _, err = svc.repo.CreateSession(ctx, Session{
			Name: DefaultSessionName, IsCurrent: true, CreatedAt: nowFunc().UTC(),
		}); err != nil {
			return errors.Wrap(err, "creating default session")
		}
		svc.logger.Info("default session created", map[string]interface{}{"session": DefaultSessionName})
	} else if err != nil {
		return err
	}

	n, err := svc.repo.CountCourses(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	for _, c := range SeedCourses {
		if _, err = svc.repo.CreateCourse(ctx, c); err != nil {
			return errors.Wrapf(err, "creating course %s", c.Code)
		}
	}
	svc.logger.Info("courses seeded", map[string]interface{}{"count": len(SeedCourses)})
	return nil
}

var SeedCourses = []Course{
	{Code: "AGE 101", Title: "Introduction to Agricultural Engineering", Unit: 2, Level: 100, Semester: 1},
	{Code: "AGE 102", Title: "Engineering Drawing and Design", Unit: 3, Level: 100, Semester: 1},
	{Code: "AGE 103", Title: "Mathematics for Engineers I", Unit: 3, Level: 100, Semester: 1},
	{Code: "AGE 104", Title: "Physics for Engineers", Unit: 3, Level: 100, Semester: 1},
	{Code: "AGE 105", Title: "Chemistry for Engineers", Unit: 3, Level: 100, Semester: 1},
	{Code: "AGE 111", Title: "Workshop Technology", Unit: 2, Level: 100, Semester: 2},
	{Code: "AGE 112", Title: "Mathematics for Engineers II", Unit: 3, Level: 100, Semester: 2},
	{Code: "AGE 113", Title: "Engineering Mechanics", Unit: 3, Level: 100, Semester: 2},
	{Code: "AGE 201", Title: "Fluid Mechanics", Unit: 3, Level: 200, Semester: 1},
	{Code: "AGE 202", Title: "Strength of Materials", Unit: 3, Level: 200, Semester: 1},
	{Code: "AGE 203", Title: "Thermodynamics", Unit: 3, Level: 200, Semester: 1},
	{Code: "AGE 301", Title: "Farm Power and Machinery", Unit: 3, Level: 300, Semester: 1},
	{Code: "AGE 302", Title: "Soil and Water Engineering", Unit: 3, Level: 300, Semester: 1},
	{Code: "AGE 401", Title: "Agricultural Processing Engineering", Unit: 3, Level: 400, Semester: 1},
	{Code: "AGE 501", Title: "Project", Unit: 6, Level: 500, Semester: 1},
}
