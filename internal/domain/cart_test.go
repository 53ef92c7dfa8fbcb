package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(productID, supplierID string, qty int, price int64) CartItem {
	return CartItem{ProductID: productID, SupplierID: supplierID, Quantity: qty, UnitPrice: price}
}

func TestTryAddEmptyCart(t *testing.T) {
	cart, conflict := TryAdd(Cart{}, item("p1", "s1", 2, 5000))

	assert.False(t, conflict)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "s1", cart.SupplierID())
	assert.Equal(t, int64(10000), cart.Subtotal())
}

func TestTryAddSameSupplierMergesLine(t *testing.T) {
	cart, _ := TryAdd(Cart{}, item("p1", "s1", 1, 5000))
	cart, conflict := TryAdd(cart, item("p1", "s1", 2, 5000))

	assert.False(t, conflict)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
}

func TestTryAddOtherSupplierParksPending(t *testing.T) {
	cart, _ := TryAdd(Cart{}, item("p1", "s1", 1, 5000))
	cart, conflict := TryAdd(cart, item("p2", "s2", 1, 3000))

	assert.True(t, conflict)
	require.NotNil(t, cart.Pending)
	assert.Equal(t, "p2", cart.Pending.ProductID)
	// The cart itself is untouched by the conflicting add.
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "s1", cart.SupplierID())
}

func TestResolveReplaceStartsOver(t *testing.T) {
	cart, _ := TryAdd(Cart{}, item("p1", "s1", 4, 5000))
	cart = ApplyPromo(cart, CartPromo{Code: "AMI-1", PartnerID: "pt1", Discount: 500})
	cart, _ = TryAdd(cart, item("p2", "s2", 3, 3000))

	cart = ResolveReplace(cart)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, "p2", cart.Items[0].ProductID)
	assert.Equal(t, 1, cart.Items[0].Quantity, "replacement starts at quantity 1")
	assert.Equal(t, "s2", cart.SupplierID())
	assert.Nil(t, cart.Pending)
	assert.Nil(t, cart.Promo, "promo belongs to the discarded cart")
}

func TestResolveCancelKeepsCart(t *testing.T) {
	cart, _ := TryAdd(Cart{}, item("p1", "s1", 2, 5000))
	cart, _ = TryAdd(cart, item("p2", "s2", 1, 3000))

	cart = ResolveCancel(cart)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, "p1", cart.Items[0].ProductID)
	assert.Nil(t, cart.Pending)
}

func TestResolveWithoutPendingIsNoOp(t *testing.T) {
	cart, _ := TryAdd(Cart{}, item("p1", "s1", 2, 5000))

	replaced := ResolveReplace(cart)
	assert.Equal(t, cart.Items, replaced.Items)

	cancelled := ResolveCancel(cart)
	assert.Equal(t, cart.Items, cancelled.Items)
}

func TestUpdateQuantityZeroRemovesLine(t *testing.T) {
	cart, _ := TryAdd(Cart{}, item("p1", "s1", 2, 5000))
	cart, _ = TryAdd(cart, item("p2", "s1", 1, 3000))

	cart = UpdateQuantity(cart, "p1", 0)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, "p2", cart.Items[0].ProductID)
}

func TestMutationsClearPromo(t *testing.T) {
	promo := CartPromo{Code: "AMI-1", PartnerID: "pt1", Discount: 500}

	cart, _ := TryAdd(Cart{}, item("p1", "s1", 1, 5000))
	cart = ApplyPromo(cart, promo)
	cart = UpdateQuantity(cart, "p1", 3)
	assert.Nil(t, cart.Promo, "quantity change clears promo")

	cart = ApplyPromo(cart, promo)
	cart, _ = TryAdd(cart, item("p2", "s1", 1, 2000))
	assert.Nil(t, cart.Promo, "adding a second line clears promo")

	cart = ApplyPromo(cart, promo)
	cart = RemoveItem(cart, "p2")
	assert.Nil(t, cart.Promo, "removal clears promo")
}

// The single-supplier invariant must survive any mutation sequence.
func TestCartNeverMixesSuppliers(t *testing.T) {
	suppliers := []string{"s1", "s2", "s3"}
	cart := Cart{}

	for i := 0; i < 200; i++ {
		sup := suppliers[i%len(suppliers)]
		next, conflict := TryAdd(cart, item("p", sup, 1, 1000))
		if conflict {
			if i%2 == 0 {
				next = ResolveReplace(next)
			} else {
				next = ResolveCancel(next)
			}
		}
		cart = next

		seen := map[string]bool{}
		for _, it := range cart.Items {
			seen[it.SupplierID] = true
		}
		require.LessOrEqual(t, len(seen), 1, "iteration %d mixed suppliers", i)
	}
}
