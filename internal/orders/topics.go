package orders

const TopicAvailability = "catalog.availability"

// Partition key = product id, so intents for one product keep their order.
func PartitionKey(productID string) string { return productID }
