package payment

import (
	"sync"

	"github.com/pkg/errors"
)

const summaryPlaceholder = "Selected items will appear here"

var (
	ErrUnknownItem  = errors.New("unknown payment item")
	ErrItemDisabled = errors.New("payment item not available for the selected level")
)

// Calculator tracks the checked payment items of one form and derives the total from them.
// Every mutation recomputes synchronously; nothing is cached between calls.
type Calculator struct {
	catalog Catalog
	mu      sync.RWMutex
	level   int
	checked map[string]bool
}

func NewCalculator(catalog Catalog) *Calculator {
	c := &Calculator{catalog: catalog}
	c.Reset()
	return c
}

// Reset unchecks everything but the default items and clears the level.
func (c *Calculator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.level = 0
	c.checked = make(map[string]bool, len(c.catalog))
	for _, ci := range c.catalog {
		if ci.Default && ci.Eligible(0) {
			c.checked[ci.ID] = true
		}
	}
}

func (c *Calculator) Level() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.level
}

// SetLevel gates the catalog for level: items that become ineligible are unchecked.
func (c *Calculator) SetLevel(level int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.level = level
	for _, ci := range c.catalog {
		if !ci.Eligible(level) {
			delete(c.checked, ci.ID)
		}
	}
}

// Toggle checks or unchecks an item. Ineligible items can only be unchecked.
func (c *Calculator) Toggle(id string, checked bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ci, ok := c.catalog.Item(id)
	if !ok {
		return errors.Wrapf(ErrUnknownItem, "toggling %q", id)
	}
	if !checked {
		delete(c.checked, id)
		return nil
	}
	if !ci.Eligible(c.level) {
		return errors.Wrapf(ErrItemDisabled, "toggling %q", id)
	}
	c.checked[id] = true
	return nil
}

// Select replaces the checked set with ids.
func (c *Calculator) Select(ids ...string) error {
	c.mu.Lock()
	prev := c.checked
	c.checked = make(map[string]bool, len(ids))
	c.mu.Unlock()

	for _, id := range ids {
		if err := c.Toggle(id, true); err != nil {
			c.mu.Lock()
			c.checked = prev
			c.mu.Unlock()
			return err
		}
	}
	return nil
}

func (c *Calculator) Checked(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.checked[id]
}

// Items returns the checked items in catalog order.
func (c *Calculator) Items() []PaymentItem {
	c.mu.RLock()
	defer c.mu.RUnlock()

	items := make([]PaymentItem, 0, len(c.checked))
	for _, ci := range c.catalog {
		if c.checked[ci.ID] {
			items = append(items, PaymentItem{Name: ci.Name, Amount: c.catalog.Amount(ci, c.level)})
		}
	}
	return items
}

func (c *Calculator) Total() int {
	return SumItems(c.Items())
}

func SumItems(items []PaymentItem) int {
	var total int
	for _, it := range items {
		total += it.Amount
	}
	return total
}

type SummaryLine struct {
	Name      string `json:"name"`
	Amount    int    `json:"amount"`
	Formatted string `json:"formatted"`
}

type Summary struct {
	Level          int           `json:"level"`
	Lines          []SummaryLine `json:"items"`
	Placeholder    string        `json:"placeholder,omitempty"`
	Total          int           `json:"total"`
	TotalFormatted string        `json:"total_formatted"`
}

// Summary renders the itemised list, or the placeholder when nothing is checked.
func (c *Calculator) Summary() Summary {
	items := c.Items()
	s := Summary{
		Level:          c.Level(),
		Lines:          make([]SummaryLine, 0, len(items)),
		Total:          SumItems(items),
		TotalFormatted: FormatNaira(SumItems(items)),
	}
	for _, it := range items {
		s.Lines = append(s.Lines, SummaryLine{Name: it.Name, Amount: it.Amount, Formatted: FormatNaira(it.Amount)})
	}
	if len(items) == 0 {
		s.Placeholder = summaryPlaceholder
	}
	return s
}

type ItemView struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Amount    int      `json:"amount"`
	Formatted string   `json:"formatted"`
	Checked   bool     `json:"checked"`
	Disabled  bool     `json:"disabled"`
	Opacity   float64  `json:"opacity"`
	Classes   []string `json:"classes"`
}

type CalculatorView struct {
	LevelClass string     `json:"level_class,omitempty"`
	Items      []ItemView `json:"items"`
	Summary    Summary    `json:"summary"`
}

// Render derives the full checkbox panel from the current state.
func (c *Calculator) Render() CalculatorView {
	c.mu.RLock()
	level := c.level
	v := CalculatorView{LevelClass: LevelClass(level), Items: make([]ItemView, 0, len(c.catalog))}
	for _, ci := range c.catalog {
		amount := c.catalog.Amount(ci, level)
		iv := ItemView{
			ID:        ci.ID,
			Name:      ci.Name,
			Amount:    amount,
			Formatted: FormatNaira(amount),
			Checked:   c.checked[ci.ID],
			Disabled:  !ci.Eligible(level),
			Opacity:   1,
			Classes:   []string{"payment-item"},
		}
		if iv.Disabled {
			iv.Opacity = 0.6
		}
		if iv.Checked {
			iv.Classes = append(iv.Classes, "selected")
		}
		v.Items = append(v.Items, iv)
	}
	c.mu.RUnlock()

	v.Summary = c.Summary()
	return v
}
