package services

import "strings"

// Known order statuses. Others are accepted and stored as given.
var orderStatuses = []string{"Pending", "Processing", "Shipped", "Delivered", "Returned", "Cancelled"}

// NormalizeOrderStatus maps any letter case of a known status to its canonical form
func NormalizeOrderStatus(status string) string {
	status = strings.TrimSpace(status)
	for _, s := range orderStatuses {
		if strings.EqualFold(s, status) {
			return s
		}
	}
	return status
}

// IsDelivered reports whether status counts toward store earnings
func IsDelivered(status string) bool {
	return strings.EqualFold(strings.TrimSpace(status), "Delivered")
}
