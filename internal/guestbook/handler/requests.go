package handler

// Request parameters for each route. Values come from the query string or a
// urlencoded/multipart form body; absent fields keep the documented default.

// listRequest is GET /.
type listRequest struct {
	// GuestbookName defaults to guestbook.DefaultGuestbookName.
	GuestbookName string `form:"guestbook_name"`
}

// signRequest is POST /sign.
type signRequest struct {
	// GuestbookName defaults to guestbook.DefaultGuestbookName.
	GuestbookName string `form:"guestbook_name"`
	// Content is stored verbatim and may be empty.
	Content string `form:"content"`
}

// dataRequest is GET /data.
type dataRequest struct {
	// GuestbookName defaults to guestbook.DefaultGuestbookName.
	GuestbookName string `form:"guestbook_name"`
	// Ind is the column to export, default 0. Must be an integer.
	Ind int `form:"ind"`
	// LastTime defaults to service.DefaultSince and must otherwise parse
	// with service.ParseTime.
	LastTime string `form:"last_time"`
}

// deleteRequest is POST /del.
type deleteRequest struct {
	// Bookmark is the continuation of a previous page; empty starts over.
	Bookmark string `form:"bookmark"`
}
