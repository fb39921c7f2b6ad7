// Package pagination implements opaque cursor paging for list endpoints.
// A page token encodes the sort key of the last row returned, so tokens
// stay stable while rows are inserted ahead of the cursor.
package pagination

import (
	"encoding/base64"
	"encoding/json"
)

// Pagination carries the paging part of a list request.
type Pagination struct {
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size,default=10" validate:"gte=1,lte=250"`
}

// Cursor is the decoded form of a page token.
type Cursor struct {
	ID        string `json:"id,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// PageInfo is embedded in list responses.
type PageInfo struct {
	NextPageToken string `json:"next_page_token"`
	HasMore       bool   `json:"has_more"`
}

// EncodeCursor serializes a cursor into an opaque page token.
func EncodeCursor(cursor Cursor) (string, error) {
	raw, err := json.Marshal(cursor)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodeCursor reverses EncodeCursor. A tampered token yields a decode
// error, never a panic.
func DecodeCursor(token string) (*Cursor, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, err
	}
	cursor := new(Cursor)
	if err := json.Unmarshal(raw, cursor); err != nil {
		return nil, err
	}
	return cursor, nil
}

// BuildCursorPageInfo derives paging metadata from an over-fetched result
// set. Repositories query limit+1 rows so HasMore never needs a COUNT;
// the next token comes from the last row inside the page.
func BuildCursorPageInfo[T any](rows []*T, limit int32, extractCursor func(*T) string) *PageInfo {
	if len(rows) == 0 {
		return &PageInfo{}
	}
	info := &PageInfo{}
	if len(rows) > int(limit) {
		info.HasMore = true
		rows = rows[:limit]
	}
	info.NextPageToken = extractCursor(rows[len(rows)-1])
	return info
}
