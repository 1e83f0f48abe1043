package inmem

import (
	"context"
	"sort"
	"strings"

	"github.com/uiaee/portal/core/academic"
)

type academicRepository struct {
	db *academicTables
}

func NewAcademicRepository(db *DB) academic.Repository {
	return &academicRepository{db: db.academic}
}

func (repo *academicRepository) ListSessions(_ context.Context) ([]academic.Session, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	sessions := make([]academic.Session, 0, len(repo.db.sessions))
	for _, s := range repo.db.sessions {
		sessions = append(sessions, *s)
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].Name > sessions[j].Name })
	return sessions, nil
}

func (repo *academicRepository) GetSession(_ context.Context, id int) (academic.Session, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if s, ok := repo.db.sessions[id]; ok {
		return *s, nil
	}
	return academic.Session{}, academic.ErrSessionNotFound
}

func (repo *academicRepository) GetSessionByName(_ context.Context, name string) (academic.Session, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, s := range repo.db.sessions {
		if s.Name == name {
			return *s, nil
		}
	}
	return academic.Session{}, academic.ErrSessionNotFound
}

func (repo *academicRepository) CreateSession(_ context.Context, s academic.Session) (academic.Session, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, other := range repo.db.sessions {
		if other.Name == s.Name {
			return academic.Session{}, academic.ErrSessionExists
		}
	}
	if s.IsCurrent {
		for _, other := range repo.db.sessions {
			other.IsCurrent = false
		}
	}
	repo.db.sessionPK++
	s.ID = repo.db.sessionPK
	repo.db.sessions[s.ID] = &s
	return s, nil
}

func (repo *academicRepository) CreateCourse(_ context.Context, c academic.Course) (academic.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.coursePK++
	c.ID = repo.db.coursePK
	repo.db.courses[c.ID] = &c
	return c, nil
}

func (repo *academicRepository) CountCourses(_ context.Context) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return len(repo.db.courses), nil
}

func (repo *academicRepository) SearchCourses(_ context.Context, q string, limit int) ([]academic.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	q = strings.ToLower(q)
	courses := make([]academic.Course, 0)
	for _, c := range repo.db.courses {
		if strings.Contains(strings.ToLower(c.Code), q) || strings.Contains(strings.ToLower(c.Title), q) {
			courses = append(courses, *c)
		}
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].Code < courses[j].Code })
	if len(courses) > limit {
		courses = courses[:limit]
	}
	return courses, nil
}

func (repo *academicRepository) CreateResult(_ context.Context, r academic.Result) (academic.Result, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	r.ID = repo.db.nextPK()
	repo.db.results[r.ID] = &r
	return r, nil
}

func (repo *academicRepository) GetResult(_ context.Context, id int) (academic.Result, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if r, ok := repo.db.results[id]; ok {
		return *r, nil
	}
	return academic.Result{}, academic.ErrResultNotFound
}

func (repo *academicRepository) DeleteResult(_ context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	delete(repo.db.results, id)
	return nil
}

func (repo *academicRepository) StudentResults(_ context.Context, studentID int) ([]academic.Result, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	results := make([]academic.Result, 0)
	for _, r := range repo.db.results {
		if r.StudentID == studentID {
			cp := *r
			if s, ok := repo.db.sessions[r.SessionID]; ok {
				cp.SessionName = s.Name
			}
			results = append(results, cp)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		ri, rj := results[i], results[j]
		if ri.SessionName != rj.SessionName {
			return ri.SessionName > rj.SessionName
		}
		if ri.Semester != rj.Semester {
			return ri.Semester < rj.Semester
		}
		return ri.CourseCode < rj.CourseCode
	})
	return results, nil
}

func (repo *academicRepository) CountResults(_ context.Context) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return len(repo.db.results), nil
}
