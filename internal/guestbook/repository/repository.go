package repository

import (
	"context"
	"encoding/base64"
	"errors"
	"time"

	"github.com/gogotex/guestbook/internal/guestbook"
)

var (
	// ErrBadCursor is returned by DecodeCursor for strings it did not produce.
	ErrBadCursor = errors.New("malformed cursor")
)

// Repository is the storage collaborator shared by all guestbook handlers.
//
// Latest and Since are scoped to one guestbook partition. KeysPage and
// DeleteMulti operate over every greeting regardless of guestbook.
type Repository interface {
	Put(ctx context.Context, g *guestbook.Greeting) error
	Latest(ctx context.Context, book string, limit int) ([]*guestbook.Greeting, error)
	Since(ctx context.Context, book string, since time.Time, limit int) ([]*guestbook.Greeting, error)
	KeysPage(ctx context.Context, after Cursor, limit int) (Page, error)
	DeleteMulti(ctx context.Context, keys []string) (int, error)
	Ping(ctx context.Context) error
}

// Cursor marks a position in a key-ordered scan. The zero value is the start.
type Cursor struct {
	after string
}

// CursorAfter returns a cursor positioned just after key.
func CursorAfter(key string) Cursor { return Cursor{after: key} }

// IsZero reports whether c is the start of the scan.
func (c Cursor) IsZero() bool { return c.after == "" }

// Encode returns a URL-safe representation of c. The zero cursor encodes to "".
func (c Cursor) Encode() string {
	if c.IsZero() {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString([]byte(c.after))
}

// DecodeCursor parses a string produced by Cursor.Encode.
func DecodeCursor(s string) (Cursor, error) {
	if s == "" {
		return Cursor{}, nil
	}
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil || len(b) == 0 {
		return Cursor{}, ErrBadCursor
	}
	return Cursor{after: string(b)}, nil
}

// Page is one batch of a keys-only scan.
type Page struct {
	Keys []string
	// Next resumes the scan after the last key in Keys.
	Next Cursor
	// More is true when results remain beyond this page.
	More bool
}
