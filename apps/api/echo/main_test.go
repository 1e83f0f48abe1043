package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"

	. "github.com/uiaee/portal/apps/api/echo"
	"github.com/uiaee/portal/core"
	"github.com/uiaee/portal/core/academic"
	"github.com/uiaee/portal/core/admin"
	"github.com/uiaee/portal/core/contact"
	"github.com/uiaee/portal/core/payment"
	"github.com/uiaee/portal/core/student"
	"github.com/uiaee/portal/services/cache"
	"github.com/uiaee/portal/services/email"
	"github.com/uiaee/portal/services/logger"
	"github.com/uiaee/portal/services/receipt"
	"github.com/uiaee/portal/storage/database/inmem"
)

var (
	db          *inmem.DB
	app         *Server
	mailSvc     *emailsvc.ConsoleService
	academicSvc *academic.Service

	paymentRepo  payment.Repository
	studentRepo  student.Repository
	adminRepo    admin.Repository
	contactRepo  contact.Repository
	academicRepo academic.Repository

	errMissingToken = ErrorResponse{Error: "missing or malformed jwt"}
	errForbidden    = ErrorResponse{Error: "permission denied"}
)

const testPwd = "Gr@ssh0pper-2025"

func TestMain(m *testing.M) {
	mediaRoot, err := os.MkdirTemp("", "aee-receipts-")
	if err != nil {
		fmt.Printf("os.MkdirTemp(): %v", err)
		os.Exit(1)
	}

	// set up DB & repos
	db = inmem.NewDB()
	paymentRepo = inmem.NewPaymentRepository(db)
	studentRepo = inmem.NewStudentRepository(db)
	adminRepo = inmem.NewAdminRepository(db)
	contactRepo = inmem.NewContactRepository(db)
	academicRepo = inmem.NewAcademicRepository(db)

	// set up services
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), core.Conf)
	store, err := receiptsvc.NewFileStore(mediaRoot, logger)
	if err != nil {
		fmt.Printf("receiptsvc.NewFileStore(): %v", err)
		os.Exit(1)
	}
	mailSvc = emailsvc.NewConsoleServiceMock()
	memCache := cachesvc.NewMemoryCache()

	paymentSvc := payment.NewService(paymentRepo, store, mailSvc, memCache, logger)
	studentSvc := student.NewService(studentRepo)
	academicSvc = academic.NewService(academicRepo, studentSvc, paymentSvc, memCache, logger)

	// set up server
	app = NewServer(ServerDeps{
		Conf:           core.Conf,
		Logger:         logger,
		DisableReqLogs: true,
		PaymentSvc:     paymentSvc,
		StudentSvc:     studentSvc,
		AdminSvc:       admin.NewService(adminRepo),
		ContactSvc:     contact.NewService(contactRepo),
		AcademicSvc:    academicSvc,
	})

	// run tests
	code := m.Run()

	// clean up
	if err = os.RemoveAll(mediaRoot); err != nil {
		fmt.Printf("os.RemoveAll(): %v", err)
		os.Exit(1)
	}

	os.Exit(code)
}

func resetDB(t *testing.T) {
	t.Helper()
	db.Reset()
	mailSvc.Reset()
	if err := academicSvc.Seed(ctx()); err != nil {
		t.Fatalf("Seed(): %v", err)
	}
}

func ctx() context.Context { return context.Background() }

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

// newMultipartRequest builds the payment form submission; an empty receiptName sends no file.
func newMultipartRequest(
	t *testing.T,
	path string,
	fields map[string]string,
	receiptName string,
	receipt []byte,
) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("WriteField(): %v", err)
		}
	}
	if receiptName != "" {
		part, err := w.CreateFormFile("receipt", receiptName)
		if err != nil {
			t.Fatalf("CreateFormFile(): %v", err)
		}
		if _, err = part.Write(receipt); err != nil {
			t.Fatalf("part.Write(): %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("multipart.Close(): %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req, httptest.NewRecorder()
}

func getAdminToken(t *testing.T, a admin.Admin) string {
	token, err := GenerateToken(GetAdminClaims(a))
	if err != nil {
		t.Fatalf("getAdminToken(): %v", err)
	}
	return token
}

func getStudentToken(t *testing.T, s student.Student) string {
	token, err := GenerateToken(GetStudentClaims(s))
	if err != nil {
		t.Fatalf("getStudentToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	return false, nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		if tt.method == "" {
			tt.method = http.MethodGet
		}
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
