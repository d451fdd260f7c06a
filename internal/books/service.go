package books

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/angelmondragon/libraria-backend/pkg/db"
	"github.com/angelmondragon/libraria-backend/pkg/db/models"
	"github.com/angelmondragon/libraria-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/libraria-backend/pkg/errors"
	"github.com/angelmondragon/libraria-backend/pkg/logger"
)

const popularLimit = 10

// Service defines the book directory operations.
type Service interface {
	Create(ctx context.Context, input CreateBookInput) (*BookView, error)
	GetByID(ctx context.Context, id int64) (*BookView, error)
	GetByIDs(ctx context.Context, ids []int64) (*BatchView, error)
	Search(ctx context.Context, params SearchParams) (*BookListView, error)
	Update(ctx context.Context, id int64, input UpdateBookInput) (*BookView, error)
	Delete(ctx context.Context, id int64) error
	AdjustAvailability(ctx context.Context, id int64, input AdjustAvailabilityInput) (*BookView, error)
	Popular(ctx context.Context) ([]BookView, error)
	Stats(ctx context.Context) (*StatsView, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds the book directory service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("books repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, input CreateBookInput) (*BookView, error) {
	if input.Copies <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "copies must be positive")
	}

	book := &models.Book{
		Title:           input.Title,
		Author:          input.Author,
		ISBN:            input.ISBN,
		Copies:          input.Copies,
		AvailableCopies: input.Copies,
	}
	book, err := s.repo.Create(ctx, book)
	if err != nil {
		if db.IsUniqueViolation(err, "uq_books_isbn") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "Book with this ISBN already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create book")
	}

	ctx = s.logg.WithBookID(ctx, book.ID)
	s.logg.Info(ctx, "book registered")
	return bookToView(book), nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*BookView, error) {
	book, err := s.findBook(ctx, id)
	if err != nil {
		return nil, err
	}
	return bookToView(book), nil
}

func (s *service) GetByIDs(ctx context.Context, ids []int64) (*BatchView, error) {
	records, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "batch load books")
	}
	views := make([]BookView, 0, len(records))
	for i := range records {
		views = append(views, *bookToView(&records[i]))
	}
	return &BatchView{Books: views}, nil
}

func (s *service) Search(ctx context.Context, params SearchParams) (*BookListView, error) {
	records, total, err := s.repo.Search(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "search books")
	}
	views := make([]BookView, 0, len(records))
	for i := range records {
		views = append(views, *bookToView(&records[i]))
	}
	return &BookListView{
		Books:   views,
		Total:   total,
		Page:    params.Pagination.Page,
		PerPage: params.Pagination.PerPage,
	}, nil
}

func (s *service) Update(ctx context.Context, id int64, input UpdateBookInput) (*BookView, error) {
	book, err := s.findBook(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Title != nil {
		updates["title"] = *input.Title
		book.Title = *input.Title
	}
	if input.Author != nil {
		updates["author"] = *input.Author
		book.Author = *input.Author
	}
	if input.Copies != nil {
		updates["copies"] = *input.Copies
		book.Copies = *input.Copies
	}
	if input.AvailableCopies != nil {
		updates["available_copies"] = *input.AvailableCopies
		book.AvailableCopies = *input.AvailableCopies
	}
	if book.AvailableCopies > book.Copies {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "available_copies cannot exceed copies")
	}
	if len(updates) == 0 {
		return bookToView(book), nil
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update book")
	}
	return bookToView(book), nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete book")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Book not found")
	}
	s.logg.Info(s.logg.WithBookID(ctx, id), "book removed")
	return nil
}

// AdjustAvailability moves available copies up or down by one through the
// guarded repository update. A rejected guard against an existing book means
// the mutation is out of range, not that the book vanished.
func (s *service) AdjustAvailability(ctx context.Context, id int64, input AdjustAvailabilityInput) (*BookView, error) {
	if !input.Operation.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "operation must be increment or decrement")
	}

	affected, err := s.repo.AdjustAvailability(ctx, id, input.Operation)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "adjust availability")
	}
	if affected == 0 {
		if _, err := s.findBook(ctx, id); err != nil {
			return nil, err
		}
		if input.Operation == enums.CounterOpDecrement {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "No copies available")
		}
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "All copies already available")
	}

	book, err := s.findBook(ctx, id)
	if err != nil {
		return nil, err
	}
	return bookToView(book), nil
}

func (s *service) Popular(ctx context.Context) ([]BookView, error) {
	records, err := s.repo.Popular(ctx, popularLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load popular books")
	}
	views := make([]BookView, 0, len(records))
	for i := range records {
		views = append(views, *bookToView(&records[i]))
	}
	return views, nil
}

func (s *service) Stats(ctx context.Context) (*StatsView, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load book stats")
	}
	return stats, nil
}

func (s *service) findBook(ctx context.Context, id int64) (*models.Book, error) {
	book, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Book not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load book")
	}
	return book, nil
}

func bookToView(book *models.Book) *BookView {
	return &BookView{
		ID:              book.ID,
		Title:           book.Title,
		Author:          book.Author,
		ISBN:            book.ISBN,
		Copies:          book.Copies,
		AvailableCopies: book.AvailableCopies,
		BorrowCount:     book.BorrowCount,
		CreatedAt:       book.CreatedAt,
	}
}
