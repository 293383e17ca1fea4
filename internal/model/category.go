package model

// Category mirrors the `categories` lookup table.
type Category struct {
	ID   uint64 // categories.id
	Name string // categories.name
}
