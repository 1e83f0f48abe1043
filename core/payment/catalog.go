package payment

import (
	"strconv"
	"strings"
)

// Catalog item IDs.
const (
	ItemDepartmentalDues   = "departmentalDues"
	ItemExamFee            = "examFee"
	ItemLabFee             = "labFee"
	ItemFieldTrip          = "fieldTrip"
	ItemHandbook           = "handbook"
	ItemIndustrialTraining = "industrialTraining"
	ItemProjectSupervision = "projectSupervision"
)

// PaymentItem is one line of a submission, as sent over the wire.
type PaymentItem struct {
	Name   string `json:"name"`
	Amount int    `json:"amount"`
}

// CatalogItem is a payable item. MinLevel and OnlyLevel gate eligibility when non-zero.
type CatalogItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Amount    int    `json:"amount"`
	MinLevel  int    `json:"min_level,omitempty"`
	OnlyLevel int    `json:"only_level,omitempty"`
	Default   bool   `json:"default,omitempty"` // checked on a fresh form
}

// Eligible reports whether a student at level may pay for the item.
func (ci CatalogItem) Eligible(level int) bool {
	if ci.OnlyLevel != 0 && level != ci.OnlyLevel {
		return false
	}
	if ci.MinLevel != 0 && level < ci.MinLevel {
		return false
	}
	return true
}

type Catalog []CatalogItem

func (c Catalog) Item(id string) (CatalogItem, bool) {
	for _, ci := range c {
		if ci.ID == id {
			return ci, true
		}
	}
	return CatalogItem{}, false
}

// ItemByName matches the display name sent with a submission, ignoring case.
func (c Catalog) ItemByName(name string) (CatalogItem, bool) {
	name = strings.TrimSpace(name)
	for _, ci := range c {
		if strings.EqualFold(ci.Name, name) {
			return ci, true
		}
	}
	return CatalogItem{}, false
}

// Amount is the item price for a level; the exam fee follows ExamFee.
func (c Catalog) Amount(ci CatalogItem, level int) int {
	if ci.ID == ItemExamFee {
		return ExamFee(level)
	}
	return ci.Amount
}

var DefaultCatalog = Catalog{
	{ID: ItemDepartmentalDues, Name: "Departmental Dues", Amount: 5000, Default: true},
	{ID: ItemExamFee, Name: "Examination Fee", Amount: 3000, Default: true},
	{ID: ItemLabFee, Name: "Laboratory Fee", Amount: 2500},
	{ID: ItemFieldTrip, Name: "Field Trip", Amount: 4000},
	{ID: ItemHandbook, Name: "Departmental Handbook", Amount: 1500},
	{ID: ItemIndustrialTraining, Name: "Industrial Training (SIWES)", Amount: 7500, MinLevel: 400},
	{ID: ItemProjectSupervision, Name: "Project Supervision", Amount: 10000, OnlyLevel: 500},
}

// ExamFee is the examination fee charged at each level.
func ExamFee(level int) int {
	switch level {
	case 500:
		return 5000
	case 400:
		return 4000
	default:
		return 3000
	}
}

// LevelClass is the styling class for a level, or "" when none is selected.
func LevelClass(level int) string {
	if level == 0 {
		return ""
	}
	return "level-" + strconv.Itoa(level)
}

// FormatNaira renders an amount the way the portal displays it, e.g. ₦12,500.
func FormatNaira(amount int) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	digits := strconv.Itoa(amount)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "₦" + b.String()
}
