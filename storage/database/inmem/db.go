// Package inmem implements the repositories over mutex-guarded maps. It backs the tests and a
// database-less development server.
package inmem

import (
	"sync"

	"github.com/uiaee/portal/core/academic"
	"github.com/uiaee/portal/core/admin"
	"github.com/uiaee/portal/core/contact"
	"github.com/uiaee/portal/core/payment"
	"github.com/uiaee/portal/core/student"
)

type table struct {
	mutex sync.RWMutex
	pk    int
}

func (t *table) nextPK() int {
	t.pk++
	return t.pk
}

type (
	paymentTable struct {
		table
		rows map[int]*payment.Payment
	}
	studentTable struct {
		table
		rows map[int]*student.Student
	}
	adminTable struct {
		table
		rows map[int]*admin.Admin
	}
	contactTable struct {
		table
		rows map[int]*contact.Contact
	}
	academicTables struct {
		table
		sessions  map[int]*academic.Session
		courses   map[int]*academic.Course
		results   map[int]*academic.Result
		sessionPK int
		coursePK  int
	}
)

type DB struct {
	payment  *paymentTable
	student  *studentTable
	admin    *adminTable
	contact  *contactTable
	academic *academicTables
}

func NewDB() *DB {
	return &DB{
		payment: &paymentTable{rows: make(map[int]*payment.Payment)},
		student: &studentTable{rows: make(map[int]*student.Student)},
		admin:   &adminTable{rows: make(map[int]*admin.Admin)},
		contact: &contactTable{rows: make(map[int]*contact.Contact)},
		academic: &academicTables{
			sessions: make(map[int]*academic.Session),
			courses:  make(map[int]*academic.Course),
			results:  make(map[int]*academic.Result),
		},
	}
}

// Reset empties every table in place; repositories keep pointing at the same tables.
func (db *DB) Reset() {
	db.payment.mutex.Lock()
	db.payment.rows, db.payment.pk = make(map[int]*payment.Payment), 0
	db.payment.mutex.Unlock()

	db.student.mutex.Lock()
	db.student.rows, db.student.pk = make(map[int]*student.Student), 0
	db.student.mutex.Unlock()

	db.admin.mutex.Lock()
	db.admin.rows, db.admin.pk = make(map[int]*admin.Admin), 0
	db.admin.mutex.Unlock()

	db.contact.mutex.Lock()
	db.contact.rows, db.contact.pk = make(map[int]*contact.Contact), 0
	db.contact.mutex.Unlock()

	ac := db.academic
	ac.mutex.Lock()
	ac.sessions = make(map[int]*academic.Session)
	ac.courses = make(map[int]*academic.Course)
	ac.results = make(map[int]*academic.Result)
	ac.pk, ac.sessionPK, ac.coursePK = 0, 0, 0
	ac.mutex.Unlock()
}

func pageBounds(n, offset, limit int) (int, int) {
	if offset > n {
		offset = n
	}
	end := offset + limit
	if end > n {
		end = n
	}
	return offset, end
}
