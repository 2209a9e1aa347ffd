package collections

import (
	"sort"
	"time"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// View is the read model of a collection returned to clients.
type View struct {
	ID           uint          `json:"id"`
	UserID       uint          `json:"userId"`
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	ProfileImage string        `json:"profileImage"`
	CreatedAt    time.Time     `json:"createdAt"`
	BookCount    int           `json:"bookCount"`
	Books        []BookEntry   `json:"books"`
	Authors      []AuthorEntry `json:"authors"`
}

type BookEntry struct {
	BookID       uint   `json:"bookId"`
	Title        string `json:"title"`
	Author       string `json:"author"`
	DisplayOrder int    `json:"displayOrder"`
}

type AuthorEntry struct {
	AuthorID    uint   `json:"authorId"`
	Name        string `json:"name"`
	Nationality string `json:"nationality"`
}

// newView builds the read model. Books are sorted by (display order, book id)
// and authors by (name, author id) regardless of the order they were loaded in.
func newView(c *entities.Collection) *View {
	v := &View{
		ID:           c.ID,
		UserID:       c.UserID,
		Name:         c.Name,
		Description:  c.Description,
		ProfileImage: c.ProfileImage,
		CreatedAt:    c.CreatedAt,
		BookCount:    len(c.Books),
		Books:        make([]BookEntry, 0, len(c.Books)),
		Authors:      make([]AuthorEntry, 0, len(c.Authors)),
	}

	for _, cb := range c.Books {
		v.Books = append(v.Books, BookEntry{
			BookID:       cb.BookID,
			Title:        cb.Book.Title,
			Author:       cb.Book.Author,
			DisplayOrder: cb.DisplayOrder,
		})
	}
	sort.SliceStable(v.Books, func(i, j int) bool {
		if v.Books[i].DisplayOrder != v.Books[j].DisplayOrder {
			return v.Books[i].DisplayOrder < v.Books[j].DisplayOrder
		}
		return v.Books[i].BookID < v.Books[j].BookID
	})

	for _, ca := range c.Authors {
		v.Authors = append(v.Authors, AuthorEntry{
			AuthorID:    ca.AuthorID,
			Name:        ca.Author.Name,
			Nationality: ca.Author.Nationality,
		})
	}
	sort.SliceStable(v.Authors, func(i, j int) bool {
		if v.Authors[i].Name != v.Authors[j].Name {
			return v.Authors[i].Name < v.Authors[j].Name
		}
		return v.Authors[i].AuthorID < v.Authors[j].AuthorID
	})

	return v
}

// BookIDs returns the ids of the collection's books in display order.
func (v *View) BookIDs() []uint {
	ids := make([]uint, len(v.Books))
	for i, b := range v.Books {
		ids[i] = b.BookID
	}
	return ids
}
