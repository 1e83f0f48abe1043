package payment

import (
	"encoding/base64"
	"regexp"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"

	"github.com/uiaee/portal/core/form"
)

// MaxReceiptSize is the largest receipt accepted, in bytes.
const MaxReceiptSize = 5 << 20

// User-facing receipt and selection errors.
var (
	ErrReceiptMissing = errors.New("Please upload your payment receipt")
	ErrReceiptType    = errors.New("Please upload a valid file (JPG, PNG, or PDF)")
	ErrReceiptSize    = errors.New("File size must be less than 5MB")
	ErrNoItems        = errors.New("Please select at least one payment item")
)

var receiptTypes = []string{"image/jpeg", "image/png", "application/pdf"}

// Receipt is an uploaded proof of payment.
type Receipt struct {
	Filename string
	Content  []byte
}

func (r *Receipt) Size() int64 { return int64(len(r.Content)) }

// ContentType sniffs the content; the declared name or header is never trusted.
func (r *Receipt) ContentType() string {
	return mimetype.Detect(r.Content).String()
}

func (r *Receipt) IsImage() bool {
	return strings.HasPrefix(r.ContentType(), "image/")
}

// DetectReceiptType returns the sniffed MIME type of content when it is an accepted receipt type.
func DetectReceiptType(content []byte) (string, error) {
	mt := mimetype.Detect(content)
	for _, t := range receiptTypes {
		if mt.Is(t) {
			return t, nil
		}
	}
	return "", ErrReceiptType
}

// CheckReceipt applies the upload rules: present, JPEG/PNG/PDF, at most 5MB.
func CheckReceipt(r *Receipt) error {
	if r == nil || r.Filename == "" && len(r.Content) == 0 {
		return ErrReceiptMissing
	}
	if _, err := DetectReceiptType(r.Content); err != nil {
		return err
	}
	if r.Size() > MaxReceiptSize {
		return ErrReceiptSize
	}
	return nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// SecureFilename reduces name to a safe ASCII file name.
func SecureFilename(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	return strings.Trim(name, "._")
}

// ReceiptPreview describes what the upload area shows after a file is picked.
type ReceiptPreview struct {
	Filename    string       `json:"filename"`
	ContentType string       `json:"content_type"`
	ImageURL    string       `json:"image_url,omitempty"` // data URL for images
	Banner      *form.Banner `json:"banner,omitempty"`
}

// ReceiptInput is the view-model of the receipt file input and its drop area.
// It is safe for concurrent use; a submission reads it while the user may still pick files.
type ReceiptInput struct {
	mu       sync.Mutex
	receipt  *Receipt
	status   form.Status
	dragOver bool
}

// Current is the accepted file, nil when none.
func (in *ReceiptInput) Current() *Receipt {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.receipt
}

func (in *ReceiptInput) Status() form.Status {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.status
}

func (in *ReceiptInput) DragOver() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.dragOver
}

// Change is the single handler for a picked file. A rejected file is cleared from the input.
func (in *ReceiptInput) Change(files []Receipt) (*ReceiptPreview, error) {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.change(files)
}

func (in *ReceiptInput) change(files []Receipt) (*ReceiptPreview, error) {
	if len(files) == 0 {
		in.receipt = nil
		in.status = form.Pristine
		return nil, nil
	}

	r := files[0]
	ct, err := DetectReceiptType(r.Content)
	if err == nil && r.Size() > MaxReceiptSize {
		err = ErrReceiptSize
	}
	if err != nil {
		in.receipt = nil
		in.status = form.Invalid
		return nil, err
	}

	in.receipt = &r
	in.status = form.Valid
	preview := &ReceiptPreview{Filename: r.Filename, ContentType: ct}
	if strings.HasPrefix(ct, "image/") {
		preview.ImageURL = "data:" + ct + ";base64," + base64.StdEncoding.EncodeToString(r.Content)
	} else {
		b := form.NewBanner(form.BannerSuccess, "PDF receipt uploaded successfully", nowFunc())
		preview.Banner = &b
	}
	return preview, nil
}

func (in *ReceiptInput) DragEnter() { in.setDragOver(true) }
func (in *ReceiptInput) DragLeave() { in.setDragOver(false) }

func (in *ReceiptInput) setDragOver(v bool) {
	in.mu.Lock()
	in.dragOver = v
	in.mu.Unlock()
}

// Drop routes dropped files through Change, exactly like picking them.
func (in *ReceiptInput) Drop(files []Receipt) (*ReceiptPreview, error) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.dragOver = false
	if len(files) == 0 {
		return nil, nil
	}
	return in.change(files)
}
