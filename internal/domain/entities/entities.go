package entities

import (
	"errors"
	"sort"
	"strings"
)

// Common errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrCorruptDocument    = errors.New("corrupt document")
)

// User represents a registered account. Password holds a bcrypt hash for
// accounts created by this service and the raw password for legacy records.
type User struct {
	Username string `json:"username" db:"username"`
	Password string `json:"password" db:"password"`
}

// HasHashedPassword reports whether the stored password is a bcrypt hash.
func (u *User) HasHashedPassword() bool {
	return strings.HasPrefix(u.Password, "$2a$") ||
		strings.HasPrefix(u.Password, "$2b$") ||
		strings.HasPrefix(u.Password, "$2y$")
}

// Cart maps an item name to its quantity. Quantities are always >= 1;
// a missing key means quantity 0.
type Cart map[string]int

// NewCart returns an empty cart.
func NewCart() Cart {
	return Cart{}
}

// SetQuantity sets the quantity of item, removing it when quantity <= 0.
func (c Cart) SetQuantity(item string, quantity int) {
	if quantity <= 0 {
		delete(c, item)
		return
	}
	c[item] = quantity
}

// Clone returns a copy of the cart. A nil cart clones to an empty one.
func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	for item, qty := range c {
		out[item] = qty
	}
	return out
}

// Normalized returns a copy with every non-positive quantity dropped.
func (c Cart) Normalized() Cart {
	out := make(Cart, len(c))
	for item, qty := range c {
		out.SetQuantity(item, qty)
	}
	return out
}

// Items returns the item names in lexical order.
func (c Cart) Items() []string {
	items := make([]string, 0, len(c))
	for item := range c {
		items = append(items, item)
	}
	sort.Strings(items)
	return items
}

// Carts is the on-disk cart document: username to cart.
type Carts map[string]Cart

// CatalogItem is a purchasable food item.
type CatalogItem struct {
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Description string  `json:"description"`
}

// Catalog maps an item name to its details.
type Catalog map[string]CatalogItem

// Total prices cart against the catalog. Items missing from the catalog are
// returned separately and contribute nothing to the total.
func (c Catalog) Total(cart Cart) (float64, []string) {
	var (
		total   float64
		unknown []string
	)
	for _, item := range cart.Items() {
		entry, ok := c[item]
		if !ok {
			unknown = append(unknown, item)
			continue
		}
		total += entry.Price * float64(cart[item])
	}
	return total, unknown
}
