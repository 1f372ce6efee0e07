package cart

import (
	"sort"
	"strings"
	"time"
)

const (
	minQuantity = 1
	maxQuantity = 99

	// recentWindow is how long an added line counts as "recently added".
	// Display feedback only, nothing downstream depends on it.
	recentWindow = 3 * time.Second
)

// LineItem is a single cart row. Items with the same product and the same
// selected options merge into one row; anything else gets its own row.
type LineItem struct {
	ProductID string            `json:"productId"`
	ItemType  string            `json:"itemType,omitempty"`
	Options   map[string]string `json:"selectedOptions,omitempty"`
	Quantity  int               `json:"quantity"`
	UnitPrice float64           `json:"unitPrice"`
	AddedAt   time.Time         `json:"addedAt"`
}

// Key returns the canonical identity of the line: product id plus the option
// entries sorted by name. Identical option sets compare equal regardless of
// insertion order.
func (li LineItem) Key() string {
	return identityKey(li.ProductID, li.Options)
}

func identityKey(productID string, options map[string]string) string {
	if len(options) == 0 {
		return productID
	}

	names := make([]string, 0, len(options))
	for name := range options {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(productID)
	for _, name := range names {
		b.WriteByte('|')
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(options[name])
	}
	return b.String()
}

// Cart holds the session's line items in insertion order. It is mutated by a
// single thread of control and is not safe for concurrent use.
type Cart struct {
	items  []*LineItem
	recent map[string]time.Time
	promo  *Promo

	now func() time.Time
}

func New() *Cart {
	return &Cart{
		recent: make(map[string]time.Time),
		now:    time.Now,
	}
}

// Add merges the item into the cart. An existing row with the same identity
// key gains the added quantity; otherwise the item is appended. Quantities
// are clamped to [1,99].
func (c *Cart) Add(item LineItem) {
	if item.Quantity < minQuantity {
		item.Quantity = minQuantity
	}

	key := item.Key()
	c.recent[key] = c.now()

	if existing := c.find(key); existing != nil {
		existing.Quantity = clampQuantity(existing.Quantity + item.Quantity)
		return
	}

	item.Quantity = clampQuantity(item.Quantity)
	item.AddedAt = c.now()
	c.items = append(c.items, &item)
}

// UpdateQuantity replaces the matching row's quantity, clamped to [1,99].
// A quantity of zero or less removes the row. Missing rows are a no-op.
func (c *Cart) UpdateQuantity(productID string, options map[string]string, quantity int) {
	if quantity <= 0 {
		c.Remove(productID, options)
		return
	}
	if existing := c.find(identityKey(productID, options)); existing != nil {
		existing.Quantity = clampQuantity(quantity)
	}
}

// Remove deletes the matching row. Removing an absent row is not an error.
func (c *Cart) Remove(productID string, options map[string]string) {
	key := identityKey(productID, options)
	for i, item := range c.items {
		if item.Key() == key {
			c.items = append(c.items[:i], c.items[i+1:]...)
			break
		}
	}
	delete(c.recent, key)
}

// Clear empties the cart, the recently-added markers and any applied promo.
func (c *Cart) Clear() {
	c.items = nil
	c.recent = make(map[string]time.Time)
	c.promo = nil
}

// Checkout finalizes the purchase at the current totals and empties the
// cart. The returned summary is a snapshot; the cart starts over.
func (c *Cart) Checkout() Summary {
	summary := c.Summarize()
	c.Clear()
	return summary
}

// Count is the sum of all quantities.
func (c *Cart) Count() int {
	count := 0
	for _, item := range c.items {
		count += item.Quantity
	}
	return count
}

// Total is the subtotal over current rows, recomputed on every read.
func (c *Cart) Total() float64 {
	total := 0.0
	for _, item := range c.items {
		total += item.UnitPrice * float64(item.Quantity)
	}
	return total
}

// UniqueItems is the number of rows.
func (c *Cart) UniqueItems() int {
	return len(c.items)
}

// Items returns the rows in insertion order. The slice is a copy; the rows
// are not.
func (c *Cart) Items() []*LineItem {
	out := make([]*LineItem, len(c.items))
	copy(out, c.items)
	return out
}

// RecentlyAdded reports the identity keys added or merged within the last
// three seconds.
func (c *Cart) RecentlyAdded() []string {
	cutoff := c.now().Add(-recentWindow)
	keys := make([]string, 0, len(c.recent))
	for key, at := range c.recent {
		if at.After(cutoff) {
			keys = append(keys, key)
		} else {
			delete(c.recent, key)
		}
	}
	sort.Strings(keys)
	return keys
}

func (c *Cart) find(key string) *LineItem {
	for _, item := range c.items {
		if item.Key() == key {
			return item
		}
	}
	return nil
}

func clampQuantity(q int) int {
	if q < minQuantity {
		return minQuantity
	}
	if q > maxQuantity {
		return maxQuantity
	}
	return q
}
