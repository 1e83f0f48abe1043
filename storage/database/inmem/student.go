package inmem

import (
	"context"
	"sort"
	"strings"

	"github.com/uiaee/portal/core"
	"github.com/uiaee/portal/core/student"
)

type studentRepository struct {
	db *studentTable
}

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db.student}
}

func (repo *studentRepository) query() []student.Student {
	students := make([]student.Student, 0, len(repo.db.rows))
	for _, s := range repo.db.rows {
		students = append(students, *s)
	}
	sort.Slice(students, func(i, j int) bool {
		if students[i].CreatedAt.Equal(students[j].CreatedAt) {
			return students[i].ID > students[j].ID
		}
		return students[i].CreatedAt.After(students[j].CreatedAt)
	})
	return students
}

func (repo *studentRepository) CheckUniqueness(_ context.Context, matric, email string) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, s := range repo.db.rows {
		if s.MatricNumber == matric {
			return student.ErrMatricExists
		}
		if email != "" && s.Email == email {
			return student.ErrEmailExists
		}
	}
	return nil
}

func (repo *studentRepository) CreateStudent(_ context.Context, s student.Student) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, other := range repo.db.rows {
		if other.MatricNumber == s.MatricNumber {
			return student.Student{}, student.ErrMatricExists
		}
	}
	s.ID = repo.db.nextPK()
	repo.db.rows[s.ID] = &s
	return s, nil
}

func (repo *studentRepository) GetStudentByID(_ context.Context, id int) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if s, ok := repo.db.rows[id]; ok {
		return *s, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) GetStudentByMatric(_ context.Context, matric string) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, s := range repo.db.rows {
		if s.MatricNumber == matric {
			return *s, nil
		}
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) QueryStudents(
	_ context.Context,
	filter student.QueryFilter,
	paging core.Paging,
) ([]student.Student, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	search := strings.ToLower(filter.Search)
	matches := make([]student.Student, 0)
	for _, s := range repo.query() {
		if filter.IsActive != nil && s.IsActive != *filter.IsActive {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(s.Name), search) &&
			!strings.Contains(s.MatricNumber, search) &&
			!strings.Contains(strings.ToLower(s.Email), search) {
			continue
		}
		matches = append(matches, s)
	}
	start, end := pageBounds(len(matches), paging.Offset(), paging.Limit())
	return matches[start:end], len(matches), nil
}

func (repo *studentRepository) CountStudents(_ context.Context) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return len(repo.db.rows), nil
}

func (repo *studentRepository) SetStudentActive(_ context.Context, id int, isActive bool) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	s, ok := repo.db.rows[id]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	s.IsActive = isActive
	return *s, nil
}
