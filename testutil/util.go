// Package testutil holds fixtures shared by the package tests.
package testutil

import (
	"bytes"
	"context"
	"image/color"
	"testing"
	"time"

	"github.com/disintegration/imaging"

	"github.com/uiaee/portal/core/admin"
	"github.com/uiaee/portal/core/payment"
	"github.com/uiaee/portal/core/student"
)

func CreateStudent(
	t *testing.T,
	repo student.Repository,
	name, matric, email, pwd string,
	level int,
	isActive bool,
	createdAt ...time.Time,
) student.Student {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	s := student.Student{
		Name:         name,
		MatricNumber: matric,
		Level:        level,
		Department:   student.DefaultDepartment,
		Email:        email,
		IsActive:     isActive,
		CreatedAt:    tstamp,
	}
	if pwd != "" {
		if err := s.SetPassword(pwd); err != nil {
			t.Fatalf("CreateStudent() failed: %v", err)
		}
	}
	s, err := repo.CreateStudent(context.Background(), s)
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return s
}

func CreateAdmin(t *testing.T, repo admin.Repository, name, uname, pwd, role string, isActive bool) admin.Admin {
	a := admin.Admin{
		Name:      name,
		Username:  uname,
		Role:      role,
		IsActive:  isActive,
		CreatedAt: time.Now().UTC(),
	}
	if pwd != "" {
		if err := a.SetPassword(pwd); err != nil {
			t.Fatalf("CreateAdmin() failed: %v", err)
		}
	}
	a, err := repo.CreateAdmin(context.Background(), a)
	if err != nil {
		t.Fatalf("CreateAdmin() failed: %v", err)
	}
	return a
}

func CreatePayment(
	t *testing.T,
	repo payment.Repository,
	name, matric string,
	level int,
	status payment.Status,
	items []payment.PaymentItem,
	createdAt ...time.Time,
) payment.Payment {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	p := payment.Payment{
		FullName:        name,
		MatricNumber:    matric,
		Level:           level,
		Email:           "student@example.com",
		PhoneNumber:     "08012345678",
		ReceiptFilename: matric + "_receipt.pdf",
		Items:           items,
		TotalAmount:     payment.SumItems(items),
		Status:          status,
		CreatedAt:       tstamp,
		UpdatedAt:       tstamp,
	}
	p, err := repo.CreatePayment(context.Background(), p)
	if err != nil {
		t.Fatalf("CreatePayment() failed: %v", err)
	}
	return p
}

func encodeImage(t *testing.T, format imaging.Format) []byte {
	img := imaging.New(8, 8, color.NRGBA{R: 0x2e, G: 0x7d, B: 0x32, A: 0xff})
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format); err != nil {
		t.Fatalf("encoding %s fixture failed: %v", format, err)
	}
	return buf.Bytes()
}

// PNGReceipt returns a small valid PNG file.
func PNGReceipt(t *testing.T) []byte { return encodeImage(t, imaging.PNG) }

// JPEGReceipt returns a small valid JPEG file.
func JPEGReceipt(t *testing.T) []byte { return encodeImage(t, imaging.JPEG) }

// PDFReceipt returns a minimal PDF document.
func PDFReceipt() []byte {
	return []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")
}
