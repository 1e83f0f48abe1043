package pgrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/uiaee/portal/core/academic"
)

type sessionRow struct {
	ID        int       `db:"id"`
	Name      string    `db:"session_name"`
	IsCurrent bool      `db:"is_current"`
	CreatedAt time.Time `db:"created_at"`
}

func (row sessionRow) session() academic.Session {
	return academic.Session{ID: row.ID, Name: row.Name, IsCurrent: row.IsCurrent, CreatedAt: row.CreatedAt.UTC()}
}

type courseRow struct {
	ID       int    `db:"id"`
	Code     string `db:"course_code"`
	Title    string `db:"course_title"`
	Unit     int    `db:"course_unit"`
	Level    int    `db:"level"`
	Semester int    `db:"semester"`
}

const resultColumns = `r.id, r.student_id, r.course_code, r.course_title, r.course_unit, r.score, r.grade,
	r.grade_point, r.semester, r.session_id, COALESCE(s.session_name, '') AS session_name, r.uploaded_by, r.created_at`

type resultRow struct {
	ID          int       `db:"id"`
	StudentID   int       `db:"student_id"`
	CourseCode  string    `db:"course_code"`
	CourseTitle string    `db:"course_title"`
	CourseUnit  int       `db:"course_unit"`
	Score       int       `db:"score"`
	Grade       string    `db:"grade"`
	GradePoint  float64   `db:"grade_point"`
	Semester    int       `db:"semester"`
	SessionID   null.Int  `db:"session_id"`
	SessionName string    `db:"session_name"`
	UploadedBy  null.Int  `db:"uploaded_by"`
	CreatedAt   time.Time `db:"created_at"`
}

func (row resultRow) result() academic.Result {
	return academic.Result{
		ID:          row.ID,
		StudentID:   row.StudentID,
		CourseCode:  row.CourseCode,
		CourseTitle: row.CourseTitle,
		CourseUnit:  row.CourseUnit,
		Score:       row.Score,
		Grade:       row.Grade,
		GradePoint:  row.GradePoint,
		Semester:    row.Semester,
		SessionID:   row.SessionID.Int,
		SessionName: row.SessionName,
		UploadedBy:  row.UploadedBy.Int,
		CreatedAt:   row.CreatedAt.UTC(),
	}
}

type academicRepository struct {
	db sqlx.ExtContext
}

func NewAcademicRepository(db sqlx.ExtContext) academic.Repository {
	return &academicRepository{db: db}
}

func (repo *academicRepository) ListSessions(ctx context.Context) ([]academic.Session, error) {
	var rows []sessionRow
	q := `SELECT id, session_name, is_current, created_at FROM sessions ORDER BY session_name DESC`
	if err := sqlx.SelectContext(ctx, repo.db, &rows, q); err != nil {
		return nil, errors.Wrap(err, "selecting sessions")
	}
	sessions := make([]academic.Session, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, row.session())
	}
	return sessions, nil
}

func (repo *academicRepository) getSessionBy(ctx context.Context, column string, value interface{}) (academic.Session, error) {
	var row sessionRow
	q := `SELECT id, session_name, is_current, created_at FROM sessions WHERE ` + column + ` = $1`
	if err := sqlx.GetContext(ctx, repo.db, &row, q, value); err != nil {
		return academic.Session{}, trapNoRowsErr(err, academic.ErrSessionNotFound, "selecting session")
	}
	return row.session(), nil
}

func (repo *academicRepository) GetSession(ctx context.Context, id int) (academic.Session, error) {
	return repo.getSessionBy(ctx, "id", id)
}

func (repo *academicRepository) GetSessionByName(ctx context.Context, name string) (academic.Session, error) {
	return repo.getSessionBy(ctx, "session_name", name)
}

func (repo *academicRepository) CreateSession(ctx context.Context, s academic.Session) (academic.Session, error) {
	// one statement, so clearing the previous current session and inserting commit together
	q := `WITH cleared AS (UPDATE sessions SET is_current = FALSE WHERE $2 AND is_current)
		INSERT INTO sessions (session_name, is_current, created_at) VALUES ($1, $2, $3) RETURNING id`
	if err := sqlx.GetContext(ctx, repo.db, &s.ID, q, s.Name, s.IsCurrent, s.CreatedAt.UTC()); err != nil {
		if _, ok := uniqueConstraint(err); ok {
			return academic.Session{}, academic.ErrSessionExists
		}
		return academic.Session{}, errors.Wrap(err, "inserting session")
	}
	return s, nil
}

func (repo *academicRepository) CreateCourse(ctx context.Context, c academic.Course) (academic.Course, error) {
	q := `INSERT INTO courses (course_code, course_title, course_unit, level, semester)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (course_code) DO UPDATE SET course_title = EXCLUDED.course_title RETURNING id`
	if err := sqlx.GetContext(ctx, repo.db, &c.ID, q, c.Code, c.Title, c.Unit, c.Level, c.Semester); err != nil {
		return academic.Course{}, errors.Wrapf(err, "inserting course %s", c.Code)
	}
	return c, nil
}

func (repo *academicRepository) CountCourses(ctx context.Context) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, repo.db, &n, `SELECT COUNT(*) FROM courses`)
	return n, errors.Wrap(err, "counting courses")
}

func (repo *academicRepository) SearchCourses(ctx context.Context, q string, limit int) ([]academic.Course, error) {
	var rows []courseRow
	query := `SELECT id, course_code, course_title, course_unit, level, semester FROM courses
		WHERE course_code ILIKE $1 OR course_title ILIKE $1 ORDER BY course_code LIMIT $2`
	if err := sqlx.SelectContext(ctx, repo.db, &rows, query, likePattern(q), limit); err != nil {
		return nil, errors.Wrap(err, "searching courses")
	}
	courses := make([]academic.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, academic.Course(row))
	}
	return courses, nil
}

func (repo *academicRepository) CreateResult(ctx context.Context, r academic.Result) (academic.Result, error) {
	q := `INSERT INTO results (student_id, course_code, course_title, course_unit, score, grade, grade_point,
		semester, session_id, uploaded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`
	err := sqlx.GetContext(ctx, repo.db, &r.ID, q,
		r.StudentID, r.CourseCode, r.CourseTitle, r.CourseUnit, r.Score, r.Grade, r.GradePoint, r.Semester,
		null.NewInt(r.SessionID, r.SessionID != 0), null.NewInt(r.UploadedBy, r.UploadedBy != 0), r.CreatedAt.UTC())
	if err != nil {
		return academic.Result{}, errors.Wrap(err, "inserting result")
	}
	return r, nil
}

func (repo *academicRepository) GetResult(ctx context.Context, id int) (academic.Result, error) {
	var row resultRow
	q := `SELECT ` + resultColumns + ` FROM results r LEFT JOIN sessions s ON s.id = r.session_id WHERE r.id = $1`
	if err := sqlx.GetContext(ctx, repo.db, &row, q, id); err != nil {
		return academic.Result{}, trapNoRowsErr(err, academic.ErrResultNotFound, "selecting result")
	}
	return row.result(), nil
}

func (repo *academicRepository) DeleteResult(ctx context.Context, id int) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM results WHERE id = $1`, id)
	return errors.Wrap(err, "deleting result")
}

func (repo *academicRepository) StudentResults(ctx context.Context, studentID int) ([]academic.Result, error) {
	var rows []resultRow
	q := `SELECT ` + resultColumns + ` FROM results r LEFT JOIN sessions s ON s.id = r.session_id
		WHERE r.student_id = $1 ORDER BY session_name DESC, r.semester, r.course_code`
	if err := sqlx.SelectContext(ctx, repo.db, &rows, q, studentID); err != nil {
		return nil, errors.Wrap(err, "selecting student results")
	}
	results := make([]academic.Result, 0, len(rows))
	for _, row := range rows {
		results = append(results, row.result())
	}
	return results, nil
}

func (repo *academicRepository) CountResults(ctx context.Context) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, repo.db, &n, `SELECT COUNT(*) FROM results`)
	return n, errors.Wrap(err, "counting results")
}
