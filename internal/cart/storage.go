package cart

import (
	"encoding/json"
	"fmt"
)

// Storage abstracts wherever the session keeps its cart between visits
// (browser storage in the real client). Injecting it keeps the engine
// testable without any real store.
type Storage interface {
	Save(data []byte) error
	Load() ([]byte, error)
}

type savedCart struct {
	Items     []*LineItem `json:"items"`
	PromoCode string      `json:"promoCode,omitempty"`
}

// Save writes the rows and applied promo code through the storage. The
// recently-added markers are transient and not persisted.
func (c *Cart) Save(st Storage) error {
	saved := savedCart{Items: c.items}
	if c.promo != nil {
		saved.PromoCode = c.promo.Code
	}

	data, err := json.Marshal(saved)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	return st.Save(data)
}

// Load restores a cart previously written with Save. A stored promo whose
// code has since left the registry, or whose minimum is no longer met, is
// dropped silently.
func Load(st Storage) (*Cart, error) {
	data, err := st.Load()
	if err != nil {
		return nil, err
	}

	c := New()
	if len(data) == 0 {
		return c, nil
	}

	var saved savedCart
	if err := json.Unmarshal(data, &saved); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}

	c.items = saved.Items
	if saved.PromoCode != "" {
		_ = c.ApplyPromo(saved.PromoCode)
	}
	return c, nil
}

// MemoryStorage is an in-process Storage, used in tests and headless runs.
type MemoryStorage struct {
	data []byte
}

func (m *MemoryStorage) Save(data []byte) error {
	m.data = append([]byte(nil), data...)
	return nil
}

func (m *MemoryStorage) Load() ([]byte, error) {
	return m.data, nil
}
