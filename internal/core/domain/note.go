package domain

import (
	"sort"
	"strings"
	"time"
)

// NoteItem is a single entry inside a category.
type NoteItem struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// NoteCategory groups items under a title and belongs to exactly one user.
type NoteCategory struct {
	ID        string     `json:"id"`
	OwnerID   string     `json:"owner_id"`
	Title     string     `json:"title"`
	Items     []NoteItem `json:"items"`
	Timestamp time.Time  `json:"timestamp"`
}

// SortCategories orders categories in place according to pref. Unknown
// preferences fall back to creation order.
func SortCategories(categories []NoteCategory, pref OrderPreference) {
	var less func(a, b NoteCategory) bool
	switch pref {
	case OrderByDateDesc:
		less = func(a, b NoteCategory) bool { return a.Timestamp.After(b.Timestamp) }
	case OrderByTitle:
		less = func(a, b NoteCategory) bool { return strings.ToLower(a.Title) < strings.ToLower(b.Title) }
	case OrderByTitleDesc:
		less = func(a, b NoteCategory) bool { return strings.ToLower(a.Title) > strings.ToLower(b.Title) }
	default:
		less = func(a, b NoteCategory) bool { return a.Timestamp.Before(b.Timestamp) }
	}
	sort.SliceStable(categories, func(i, j int) bool { return less(categories[i], categories[j]) })
}
