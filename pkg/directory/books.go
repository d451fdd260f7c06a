package directory

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/libraria-backend/pkg/enums"
)

const (
	defaultBatchFanout = 4
	batchChunkSize     = 25
)

// Book is the directory snapshot of a title.
type Book struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	ISBN            string `json:"isbn"`
	Copies          int    `json:"copies"`
	AvailableCopies int    `json:"available_copies"`
	BorrowCount     int    `json:"borrow_count"`
}

// BooksClient talks to the book directory service.
type BooksClient struct {
	*client
	batchFanout int
}

// NewBooksClient builds a client against the book directory base URL.
// batchFanout caps how many batch chunks are fetched concurrently.
func NewBooksClient(baseURL string, batchFanout int, opts ...Option) (*BooksClient, error) {
	c, err := newClient(baseURL, opts...)
	if err != nil {
		return nil, err
	}
	if batchFanout <= 0 {
		batchFanout = defaultBatchFanout
	}
	return &BooksClient{client: c, batchFanout: batchFanout}, nil
}

// GetByID fetches one book.
func (c *BooksClient) GetByID(ctx context.Context, id int64) (*Book, error) {
	var book Book
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/books/%d", id), nil, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

// GetByIDs fetches many books through the batch endpoint, chunking the id
// list and fetching chunks concurrently. IDs the directory does not know are
// simply absent from the result.
func (c *BooksClient) GetByIDs(ctx context.Context, ids []int64) (map[int64]Book, error) {
	deduped := dedupeIDs(ids)
	if len(deduped) == 0 {
		return map[int64]Book{}, nil
	}

	var (
		mu     sync.Mutex
		result = make(map[int64]Book, len(deduped))
	)

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(c.batchFanout)

	for start := 0; start < len(deduped); start += batchChunkSize {
		end := start + batchChunkSize
		if end > len(deduped) {
			end = len(deduped)
		}
		chunk := deduped[start:end]

		group.Go(func() error {
			books, err := c.fetchBatch(ctx, chunk)
			if err != nil {
				return err
			}
			mu.Lock()
			for _, book := range books {
				result[book.ID] = book
			}
			mu.Unlock()
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// AdjustAvailability asks the directory to move available copies up or down
// by one. A decrement against an exhausted title comes back as a validation
// error carrying the directory's detail message.
func (c *BooksClient) AdjustAvailability(ctx context.Context, id int64, op enums.CounterOp) (*Book, error) {
	body := struct {
		Operation string `json:"operation"`
	}{Operation: op.String()}

	var book Book
	path := fmt.Sprintf("/api/books/%d/availability", id)
	if err := c.doJSON(ctx, http.MethodPatch, path, body, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

func (c *BooksClient) fetchBatch(ctx context.Context, ids []int64) ([]Book, error) {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatInt(id, 10))
	}

	var payload struct {
		Books []Book `json:"books"`
	}
	path := "/api/books/batch?ids=" + url.QueryEscape(strings.Join(parts, ","))
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Books, nil
}

func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
