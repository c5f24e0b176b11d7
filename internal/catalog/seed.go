package catalog

// DefaultProducts is the starter catalogue written into an empty store.
func DefaultProducts() []Product {
	return []Product{
		{Name: "Selamat Tinggal - Tere Liye", Category: "Buku", Price: 70000, Image: "https://i.pinimg.com/736x/99/7c/74/997c7452cd8405547fb0775d3d5aae87.jpg", Description: "Novel terbaru dari Tere Liye yang mengisahkan tentang perjalanan hidup yang penuh makna.", Condition: "Good", Size: "One Size", Brand: "Gramedia"},
		{Name: "Laut Bercerita - Leila S. Chudori", Category: "Buku", Price: 85000, Image: "https://i.pinimg.com/1200x/b4/71/f8/b471f81470297a93aae8bc706c81ee7c.jpg", Description: "Novel sejarah yang mengisahkan tentang perjuangan dan pengorbanan di masa lalu.", Condition: "Excellent", Size: "One Size", Brand: "Kepustakaan Populer Gramedia"},
		{Name: "Hoodie Dino", Category: "Fashion", Price: 120000, Image: "https://i.pinimg.com/1200x/cb/0d/30/cb0d300987439aa123c1a8cd59dbdd5a.jpg", Description: "Hoodie dengan motif dinosaurus yang lucu dan nyaman dipakai sehari-hari.", Condition: "Very Good", Size: "L", Brand: "Uniqlo"},
		{Name: "Headphone Wireless", Category: "Elektronik", Price: 250000, Image: "https://i.pinimg.com/1200x/b5/16/64/b51664b1e415e856171d408e69a33c7a.jpg", Description: "Headphone wireless dengan kualitas suara yang jernih dan baterai tahan lama.", Condition: "Like New", Size: "One Size", Brand: "Sony"},
		{Name: "Vintage Denim Jacket", Category: "Fashion", Price: 150000, Image: "https://i.pinimg.com/1200x/c0/2b/dd/c02bddac3a2ad03ceec74b86dc0e7d3e.jpg", Description: "Jaket denim vintage dengan potongan klasik yang timeless.", Condition: "Excellent", Size: "M", Brand: "Levi's"},
		{Name: "Designer Handbag", Category: "Accessories", Price: 450000, Image: "https://i.pinimg.com/1200x/22/c5/7b/22c57b231bfe81ec1802624fe152f7bb.jpg", Description: "Tas designer dengan kualitas premium dan desain yang elegan.", Condition: "Like New", Size: "One Size", Brand: "Coach"},
		{Name: "Graphic T-Shirt", Category: "Fashion", Price: 75000, Image: "https://i.pinimg.com/1200x/61/2c/f8/612cf8de92a9ea8f813b9f0042102ee7.jpg", Description: "Kaos dengan desain grafis yang unik dan bahan yang nyaman.", Condition: "Good", Size: "L", Brand: "Uniqlo"},
		{Name: "Midi Skirt", Category: "Fashion", Price: 120000, Image: "https://i.pinimg.com/736x/69/bb/b0/69bbb06902a057ca8d280f9f79f4594e.jpg", Description: "Rok midi dengan potongan yang flattering dan cocok untuk berbagai acara.", Condition: "Excellent", Size: "S", Brand: "Zara"},
		{Name: "High-Waist Jeans", Category: "Fashion", Price: 180000, Image: "https://i.pinimg.com/1200x/27/70/82/27708210401730b2fca2221086cc7d98.jpg", Description: "Jeans high-waist dengan fit yang sempurna dan warna yang timeless.", Condition: "Very Good", Size: "M", Brand: "H&M"},
		{Name: "Leather Crossbody Bag", Category: "Accessories", Price: 200000, Image: "https://i.pinimg.com/1200x/fc/3e/1d/fc3e1d20167f4de35e4709b1dce1656d.jpg", Description: "Tas crossbody kulit dengan desain yang praktis dan stylish.", Condition: "Good", Size: "One Size", Brand: "Fossil"},
		{Name: "Wireless Headphones", Category: "Elektronik", Price: 300000, Image: "https://i.pinimg.com/1200x/b5/16/64/b51664b1e415e856171d408e69a33c7a.jpg", Description: "Headphone wireless dengan noise cancellation dan kualitas suara premium.", Condition: "Like New", Size: "One Size", Brand: "Sony"},
		{Name: "Vintage Watch", Category: "Accessories", Price: 350000, Image: "https://i.pinimg.com/1200x/2f/21/5b/2f215b7168faeed4201923fe8c8273cc.jpg", Description: "Jam tangan vintage dengan strap kulit dan desain yang timeless.", Condition: "Excellent", Size: "One Size", Brand: "Seiko"},
	}
}
