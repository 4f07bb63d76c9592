package guestbook

import "time"

// DefaultGuestbookName is used whenever a request does not name a guestbook.
const DefaultGuestbookName = "default_guestbook"

// Key returns the partition key for the named guestbook. All greetings of one
// guestbook share this key so that scoped, date-ordered reads are consistent.
// An empty name maps to DefaultGuestbookName.
func Key(name string) string {
	if name == "" {
		return DefaultGuestbookName
	}
	return name
}

// Author is the optional embedded record identifying who wrote a greeting.
type Author struct {
	Identity string `json:"identity" bson:"identity"`
	Email    string `json:"email" bson:"email"`
}

// Greeting is one guestbook entry. Date is assigned on write and never changes.
type Greeting struct {
	ID        string    `json:"id" bson:"-"`
	Guestbook string    `json:"guestbook" bson:"guestbook"`
	Author    *Author   `json:"author,omitempty" bson:"author,omitempty"`
	Content   string    `json:"content" bson:"content"`
	Date      time.Time `json:"date" bson:"date"`
}
