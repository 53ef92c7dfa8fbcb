package domain

// --- Session Cart ---

// Cart is session-scoped and never persisted. All mutations go through the
// pure reducers below so the single-supplier invariant is enforced in one
// place and is trivially unit-testable.

type CartItem struct {
	ProductID  string `json:"productId"`
	SupplierID string `json:"supplierId"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	UnitPrice  int64  `json:"unitPrice"`
}

// CartPromo is the promo applied to the cart, cleared by any later mutation
// because the discount is price-dependent and must never go stale.
type CartPromo struct {
	Code      string `json:"code"`
	PartnerID string `json:"partnerId"`
	Discount  int64  `json:"discount"`
}

type Cart struct {
	Items []CartItem `json:"items"`
	Promo *CartPromo `json:"promo,omitempty"`

	// Pending holds the product that triggered a supplier conflict, waiting
	// for the customer to replace the cart or cancel the add.
	Pending *CartItem `json:"pending,omitempty"`
}

func (c Cart) SupplierID() string {
	if len(c.Items) == 0 {
		return ""
	}
	return c.Items[0].SupplierID
}

func (c Cart) Subtotal() int64 {
	var total int64
	for _, it := range c.Items {
		total += it.UnitPrice * int64(it.Quantity)
	}
	return total
}

// TryAdd merges the item when the cart is empty or already belongs to the same
// supplier. Otherwise it leaves the items untouched, parks the item as Pending
// and reports a conflict for the caller to resolve.
func TryAdd(c Cart, item CartItem) (Cart, bool) {
	if len(c.Items) > 0 && item.SupplierID != c.SupplierID() {
		c.Pending = &item
		return c, true
	}

	merged := false
	for i, it := range c.Items {
		if it.ProductID == item.ProductID {
			c.Items = cloneItems(c.Items)
			c.Items[i].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		c.Items = append(cloneItems(c.Items), item)
	}
	c.Pending = nil

	// Initial add into an empty cart keeps an applied promo; anything else
	// invalidates it.
	if len(c.Items) > 1 || merged {
		c.Promo = nil
	}
	return c, false
}

// ResolveReplace discards the cart and starts over with only the pending
// product at quantity 1. The promo belongs to the discarded cart and goes
// with it.
func ResolveReplace(c Cart) Cart {
	if c.Pending == nil {
		return c
	}
	item := *c.Pending
	item.Quantity = 1
	return Cart{Items: []CartItem{item}}
}

// ResolveCancel discards the pending product; the cart is unchanged.
func ResolveCancel(c Cart) Cart {
	c.Pending = nil
	return c
}

// UpdateQuantity sets the line quantity; qty <= 0 removes the line. Clears the
// promo either way.
func UpdateQuantity(c Cart, productID string, qty int) Cart {
	if qty <= 0 {
		return RemoveItem(c, productID)
	}
	items := cloneItems(c.Items)
	for i, it := range items {
		if it.ProductID == productID {
			items[i].Quantity = qty
			break
		}
	}
	c.Items = items
	c.Promo = nil
	return c
}

func RemoveItem(c Cart, productID string) Cart {
	items := make([]CartItem, 0, len(c.Items))
	for _, it := range c.Items {
		if it.ProductID != productID {
			items = append(items, it)
		}
	}
	c.Items = items
	c.Promo = nil
	return c
}

// ApplyPromo attaches a validated promo to the cart as-is.
func ApplyPromo(c Cart, promo CartPromo) Cart {
	c.Promo = &promo
	return c
}

func cloneItems(items []CartItem) []CartItem {
	out := make([]CartItem, len(items))
	copy(out, items)
	return out
}
