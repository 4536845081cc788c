package domain

import "fmt"

// Cache tags group cached query results for joint invalidation. The realtime
// bridge maps server-pushed events onto these tags; the session cache deletes
// them so the next access refetches.

func SessionTag(userID string) string {
	return fmt.Sprintf("session:user:%s", userID)
}

func BookingsTag(userID string) string {
	return fmt.Sprintf("bookings:user:%s", userID)
}

func AssignmentsTag(counselorID string) string {
	return fmt.Sprintf("assignments:counselor:%s", counselorID)
}

func FeedbackTag(counselorID string) string {
	return fmt.Sprintf("feedback:counselor:%s", counselorID)
}

// AdminAnalyticsTag covers the admin dashboard aggregates; not per-user.
const AdminAnalyticsTag = "analytics:admin"
