package entities

// DefaultCatalog returns the food items served by the shop.
func DefaultCatalog() Catalog {
	return Catalog{
		"Vegetable Curry": {
			Price:       120,
			Image:       "./images/vb.jpg",
			Description: "A delicious mix of fresh vegetables in aromatic curry sauce.",
		},
		"Chicken Biryani": {
			Price:       150,
			Image:       "./images/cb.jpg",
			Description: "Fragrant basmati rice cooked with tender chicken and aromatic spices.",
		},
		"Paneer Butter Masala": {
			Price:       130,
			Image:       "./images/pb.jpg",
			Description: "Cottage cheese cubes in rich, creamy tomato gravy.",
		},
	}
}
