package entities

import (
	"reflect"
	"testing"
)

func TestCartSetQuantity(t *testing.T) {
	tests := []struct {
		name     string
		start    Cart
		item     string
		quantity int
		want     Cart
	}{
		{name: "add", start: Cart{}, item: "Chicken Biryani", quantity: 2, want: Cart{"Chicken Biryani": 2}},
		{name: "overwrite", start: Cart{"Chicken Biryani": 2}, item: "Chicken Biryani", quantity: 5, want: Cart{"Chicken Biryani": 5}},
		{name: "zero removes", start: Cart{"Chicken Biryani": 2}, item: "Chicken Biryani", quantity: 0, want: Cart{}},
		{name: "negative removes", start: Cart{"Chicken Biryani": 2, "Vegetable Curry": 1}, item: "Chicken Biryani", quantity: -3, want: Cart{"Vegetable Curry": 1}},
		{name: "remove absent", start: Cart{}, item: "Vegetable Curry", quantity: 0, want: Cart{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cart := tt.start
			cart.SetQuantity(tt.item, tt.quantity)
			if !reflect.DeepEqual(cart, tt.want) {
				t.Fatalf("cart = %v, want %v", cart, tt.want)
			}
		})
	}
}

func TestCartNormalizedDropsNonPositive(t *testing.T) {
	in := Cart{"a": 1, "b": 0, "c": -2, "d": 4}
	got := in.Normalized()
	want := Cart{"a": 1, "d": 4}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("normalized = %v, want %v", got, want)
	}
	if len(in) != 4 {
		t.Fatalf("input mutated: %v", in)
	}
}

func TestCartCloneOfNilIsEmpty(t *testing.T) {
	var cart Cart
	clone := cart.Clone()
	if clone == nil || len(clone) != 0 {
		t.Fatalf("clone = %#v, want empty non-nil cart", clone)
	}
}

func TestCatalogTotal(t *testing.T) {
	catalog := DefaultCatalog()
	total, unknown := catalog.Total(Cart{"Chicken Biryani": 2, "Vegetable Curry": 1, "Mystery Dish": 3})
	if total != 420 {
		t.Fatalf("total = %v, want 420", total)
	}
	if !reflect.DeepEqual(unknown, []string{"Mystery Dish"}) {
		t.Fatalf("unknown = %v, want [Mystery Dish]", unknown)
	}
}

func TestUserHasHashedPassword(t *testing.T) {
	hashed := User{Username: "alice", Password: "$2a$10$abcdefghijklmnopqrstuv"}
	if !hashed.HasHashedPassword() {
		t.Fatal("expected bcrypt prefix to be detected")
	}
	plain := User{Username: "bob", Password: "pw1"}
	if plain.HasHashedPassword() {
		t.Fatal("plain text password reported as hashed")
	}
}
